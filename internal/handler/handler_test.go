package handler

import (
	"context"
	"database/sql"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"campuscms/internal/auth"
	"campuscms/internal/middleware"
	"campuscms/internal/model"
	"campuscms/internal/render"
	"campuscms/internal/store"
	"campuscms/internal/testutil"
	"campuscms/web"
)

// testDB creates a temporary migrated database for handler tests.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	return db
}

// testSessionManager returns an in-memory session manager.
func testSessionManager() *scs.SessionManager {
	sm := scs.New()
	sm.Lifetime = 24 * time.Hour
	return sm
}

// testRenderer builds a renderer over the embedded templates.
func testRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("fs.Sub: %v", err)
	}

	r, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sm,
		SiteName:       "Campus Test",
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return r
}

// createTestUser inserts a user with a real password hash so login works.
func createTestUser(t *testing.T, db *sql.DB, email, role, password string) model.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	now := time.Now()
	user, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		FullName:     "Test User",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

// getRequest builds a plain GET request.
func getRequest(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}

// formRequest builds a POST request with an urlencoded form body.
func formRequest(target string, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// withUser puts a user into the request context the way LoadUser does.
func withUser(r *http.Request, user model.User) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.ContextKeyUser, user)
	return r.WithContext(ctx)
}

// withURLParam attaches a chi route parameter to the request.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// serveRecorder runs a handler directly, for routes that never touch the
// session. Handlers that set flashes or log in must go through
// serveWithSession instead.
func serveRecorder(t *testing.T, h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}

// serveWithSession runs a handler inside the session middleware so that
// flash messages and session writes have somewhere to go.
func serveWithSession(t *testing.T, sm *scs.SessionManager, h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	sm.LoadAndSave(h).ServeHTTP(rec, r)
	return rec
}

// assertStatus fails the test if the recorded status differs from want.
func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("status = %d, want %d (body: %s)", rec.Code, want, rec.Body.String())
	}
}

// assertRedirect fails the test unless the response is a 303 to location.
func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	assertStatus(t, rec, http.StatusSeeOther)
	if got := rec.Header().Get("Location"); got != location {
		t.Errorf("Location = %q, want %q", got, location)
	}
}
