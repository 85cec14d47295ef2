// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"campuscms/internal/middleware"
	"campuscms/internal/model"
	"campuscms/internal/render"
	"campuscms/internal/service"
	"campuscms/internal/store"
)

// maxTagNameLength bounds tag names to keep listings and URLs sane.
const maxTagNameLength = 50

// TagsHandler handles dashboard tag management routes.
type TagsHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	auditService   *service.AuditService
}

// NewTagsHandler creates a new TagsHandler.
func NewTagsHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *TagsHandler {
	return &TagsHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		auditService:   service.NewAuditService(db),
	}
}

// TagsListData holds data for the tags list template.
type TagsListData struct {
	Tags []model.Tag
}

// List handles GET /dashboard/tags.
func (h *TagsHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	tags, err := h.queries.ListAllTags(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list tags", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "dashboard/tags", render.TemplateData{
		Title: "Tags",
		User:  user,
		Data:  TagsListData{Tags: tags},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// Create handles POST /dashboard/tags.
// Tag names are unique; creating an existing name flashes an error instead
// of inserting a duplicate.
func (h *TagsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if !parseFormOrRedirect(w, r, h.renderer, redirectDashboardTags) {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		flashError(w, r, h.renderer, redirectDashboardTags, "Tag name is required")
		return
	}
	if len(name) > maxTagNameLength {
		flashError(w, r, h.renderer, redirectDashboardTags, "Tag name is too long")
		return
	}

	tag, err := h.queries.CreateTag(r.Context(), name)
	if err != nil {
		if isUniqueConstraintError(err) {
			flashError(w, r, h.renderer, redirectDashboardTags, "A tag with this name already exists")
			return
		}
		slog.Error("failed to create tag", "error", err, "name", name)
		flashError(w, r, h.renderer, redirectDashboardTags, "Error creating tag")
		return
	}

	slog.Info("tag created", "tag_id", tag.ID, "name", tag.Name, "created_by", user.ID)
	_ = h.auditService.LogContent(r.Context(), model.AuditLevelInfo, "Tag created", &user.ID, map[string]any{"tag_id": tag.ID, "name": tag.Name})

	flashSuccess(w, r, h.renderer, redirectDashboardTags, "Tag created successfully")
}

// Delete handles POST /dashboard/tags/{id}/delete.
// Join rows referencing the tag cascade away with it.
func (h *TagsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, ok := parseIDParam(w, r, h.renderer, redirectDashboardTags, "tag")
	if !ok {
		return
	}

	if err := h.queries.DeleteTag(r.Context(), id); err != nil {
		slog.Error("failed to delete tag", "error", err, "tag_id", id)
		flashError(w, r, h.renderer, redirectDashboardTags, "Error deleting tag")
		return
	}

	slog.Info("tag deleted", "tag_id", id, "deleted_by", user.ID)
	_ = h.auditService.LogContent(r.Context(), model.AuditLevelInfo, "Tag deleted", &user.ID, map[string]any{"tag_id": id})

	flashSuccess(w, r, h.renderer, redirectDashboardTags, "Tag deleted successfully")
}

// isUniqueConstraintError reports whether err is a UNIQUE constraint
// violation. The driver returns bare errors, so this matches on the
// message text.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
