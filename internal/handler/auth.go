// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"campuscms/internal/auth"
	"campuscms/internal/middleware"
	"campuscms/internal/model"
	"campuscms/internal/render"
	"campuscms/internal/service"
	"campuscms/internal/store"
)

// SessionKeyUserID is the session key for storing the authenticated user ID.
const SessionKeyUserID = "user_id"

// minPasswordLength is the shortest password accepted at registration.
const minPasswordLength = 8

// AuthHandler handles authentication routes.
type AuthHandler struct {
	queries         *store.Queries
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	auditService    *service.AuditService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		renderer:        renderer,
		sessionManager:  sm,
		auditService:    service.NewAuditService(db),
		loginProtection: lp,
	}
}

// LoginFormData holds data for the login template.
type LoginFormData struct {
	RedirectedFrom string
}

// LoginForm renders the login page.
// The redirectedFrom query parameter names the dashboard path the visitor
// originally asked for; it is carried through the form so a successful login
// can send them back there.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	data := LoginFormData{
		RedirectedFrom: sanitizeRedirect(r.URL.Query().Get("redirectedFrom")),
	}

	if err := h.renderer.Render(w, r, "auth/login", render.TemplateData{
		Title: "Sign In",
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	password := r.FormValue("password")
	redirectedFrom := sanitizeRedirect(r.FormValue("redirectedFrom"))

	loginURL := redirectLogin
	if redirectedFrom != "" {
		loginURL = redirectLogin + "?redirectedFrom=" + redirectedFrom
	}

	if email == "" || password == "" {
		flashError(w, r, h.renderer, loginURL, "Email and password are required")
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			_ = h.auditService.LogAuth(r.Context(), model.AuditLevelWarning, "Login attempt on locked account", nil, map[string]any{"email": email})
			flashError(w, r, h.renderer, loginURL, "Account temporarily locked. Try again in "+formatDuration(remaining))
			return
		}
	}

	user, err := h.queries.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Debug("login attempt for non-existent user", "email", email)
			_ = h.auditService.LogAuth(r.Context(), model.AuditLevelWarning, "Login failed: user not found", nil, map[string]any{"email": email})
		} else {
			slog.Error("database error during login", "error", err)
		}
		// Record failed attempt even for non-existent users to prevent enumeration
		h.recordFailure(w, r, email, loginURL)
		return
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err)
		flashError(w, r, h.renderer, loginURL, "Invalid email or password")
		return
	}

	if !valid {
		slog.Debug("invalid password attempt", "email", email)
		_ = h.auditService.LogAuth(r.Context(), model.AuditLevelWarning, "Login failed: invalid password", &user.ID, map[string]any{"email": email})
		h.recordFailure(w, r, email, loginURL)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	if err := h.queries.UpdateLastLogin(r.Context(), user.ID, time.Now()); err != nil {
		slog.Error("failed to update last login time", "error", err, "user_id", user.ID)
		// Don't block login on this error
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}

	h.sessionManager.Put(r.Context(), SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	_ = h.auditService.LogAuth(r.Context(), model.AuditLevelInfo, "User logged in", &user.ID, map[string]any{"email": user.Email})

	h.renderer.SetFlash(r, "Welcome back, "+user.FullName, "success")

	target := redirectDashboard
	if redirectedFrom != "" {
		target = redirectedFrom
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// recordFailure records a failed login attempt and redirects with the
// appropriate flash message.
func (h *AuthHandler) recordFailure(w http.ResponseWriter, r *http.Request, email, loginURL string) {
	if h.loginProtection != nil {
		if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
			_ = h.auditService.LogAuth(r.Context(), model.AuditLevelWarning, "Account locked due to failed attempts", nil, map[string]any{"email": email, "duration": lockDuration.String()})
			flashError(w, r, h.renderer, loginURL, "Too many failed attempts. Account locked for "+formatDuration(lockDuration))
			return
		}
		remaining := h.loginProtection.GetRemainingAttempts(email)
		if remaining <= 3 && remaining > 0 {
			flashError(w, r, h.renderer, loginURL, fmt.Sprintf("Invalid email or password. %d attempts remaining", remaining))
			return
		}
	}
	flashError(w, r, h.renderer, loginURL, "Invalid email or password")
}

// RegisterFormData holds data for the registration template.
type RegisterFormData struct {
	Errors     map[string]string
	FormValues map[string]string
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	data := RegisterFormData{
		Errors:     make(map[string]string),
		FormValues: make(map[string]string),
	}

	if err := h.renderer.Render(w, r, "auth/register", render.TemplateData{
		Title: "Create Account",
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// Register handles the registration form submission. New accounts always get
// the member role; admins are promoted out of band.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteRegister) {
		return
	}

	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	fullName := strings.TrimSpace(r.FormValue("full_name"))
	password := r.FormValue("password")
	passwordConfirm := r.FormValue("password_confirm")

	formValues := map[string]string{
		"email":     email,
		"full_name": fullName,
	}

	errs := make(map[string]string)

	if email == "" {
		errs["email"] = "Email is required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "Invalid email address"
	}

	if fullName == "" {
		errs["full_name"] = "Name is required"
	}

	if len(password) < minPasswordLength {
		errs["password"] = fmt.Sprintf("Password must be at least %d characters", minPasswordLength)
	} else if password != passwordConfirm {
		errs["password_confirm"] = "Passwords do not match"
	}

	if len(errs) == 0 {
		if _, err := h.queries.GetUserByEmail(r.Context(), email); err == nil {
			errs["email"] = "An account with this email already exists"
		} else if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("database error checking email", "error", err)
			errs["email"] = "Error checking email"
		}
	}

	if len(errs) > 0 {
		data := RegisterFormData{
			Errors:     errs,
			FormValues: formValues,
		}
		if err := h.renderer.Render(w, r, "auth/register", render.TemplateData{
			Title: "Create Account",
			Data:  data,
		}); err != nil {
			logAndInternalError(w, "render error", "error", err)
		}
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		logAndInternalError(w, "password hash error", "error", err)
		return
	}

	now := time.Now()
	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         model.RoleMember,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		slog.Error("failed to create user", "error", err)
		flashError(w, r, h.renderer, RouteRegister, "Error creating account")
		return
	}

	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), SessionKeyUserID, user.ID)

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	_ = h.auditService.LogAuth(r.Context(), model.AuditLevelInfo, "User registered", &user.ID, map[string]any{"email": user.Email})

	flashSuccess(w, r, h.renderer, redirectDashboard, "Account created. Welcome!")
}

// Logout handles user logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), SessionKeyUserID)

	if userID > 0 {
		_ = h.auditService.LogAuth(r.Context(), model.AuditLevelInfo, "User logged out", &userID, nil)
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("user logged out", "user_id", userID)

	flashAndRedirect(w, r, h.renderer, RouteRoot, "You have been signed out", "info")
}

// sanitizeRedirect keeps post-login redirects on this site. Anything that is
// not a local absolute path (or that starts with "//", which browsers treat
// as protocol-relative) falls back to empty, meaning the dashboard default.
func sanitizeRedirect(target string) string {
	if target == "" {
		return ""
	}
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return ""
	}
	return target
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
