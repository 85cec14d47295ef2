package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"campuscms/internal/model"
	"campuscms/internal/store"
)

func TestDashboardIndex(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	h := NewDashboardHandler(db, testRenderer(t, sm))
	q := store.New(db)
	ctx := context.Background()

	editor := createTestUser(t, db, "editor@example.edu", model.RoleEditor, "editor-password")

	now := time.Now()
	createTestContent := func(slug string) {
		t.Helper()
		if _, err := q.CreateArticle(ctx, store.CreateArticleParams{
			Title:     "Count Me",
			Slug:      slug,
			Status:    model.ArticleStatusPublished,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			t.Fatalf("CreateArticle: %v", err)
		}
	}
	createTestContent("count-me-1")
	createTestContent("count-me-2")

	if _, err := q.CreateEvent(ctx, store.CreateEventParams{
		Title:     "Counted Event",
		EventDate: now.Add(24 * time.Hour),
		Status:    model.EventStatusUpcoming,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if _, err := q.CreateTag(ctx, "counted"); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	rec := serveWithSession(t, sm, h.Index, withUser(getRequest("/dashboard"), editor))
	assertStatus(t, rec, http.StatusOK)

	body := rec.Body.String()
	for _, want := range []string{`<span class="stat-value">2</span>`, `<span class="stat-value">1</span>`} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard should show the stat card %s", want)
		}
	}
}

func TestHealth(t *testing.T) {
	db := testDB(t)
	h := NewHealthHandler(db)

	t.Run("Healthy", func(t *testing.T) {
		rec := serveRecorder(t, h.Health, getRequest("/health"))
		assertStatus(t, rec, http.StatusOK)
		if !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("DegradedWhenDBClosed", func(t *testing.T) {
		_ = db.Close()
		rec := serveRecorder(t, h.Health, getRequest("/health"))
		assertStatus(t, rec, http.StatusServiceUnavailable)
		if !strings.Contains(rec.Body.String(), `"status":"degraded"`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})
}
