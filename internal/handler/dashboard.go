package handler

import (
	"database/sql"
	"net/http"

	"campuscms/internal/middleware"
	"campuscms/internal/render"
	"campuscms/internal/store"
)

// DashboardHandler serves the dashboard landing page.
type DashboardHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(db *sql.DB, renderer *render.Renderer) *DashboardHandler {
	return &DashboardHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// DashboardData holds content counts for the dashboard overview.
type DashboardData struct {
	ArticleCount int64
	EventCount   int64
	TagCount     int64
}

// Index handles GET /dashboard.
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	articleCount, err := h.queries.CountArticles(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count articles", "error", err)
		return
	}

	eventCount, err := h.queries.CountEvents(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count events", "error", err)
		return
	}

	tags, err := h.queries.ListAllTags(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list tags", "error", err)
		return
	}

	data := DashboardData{
		ArticleCount: articleCount,
		EventCount:   eventCount,
		TagCount:     int64(len(tags)),
	}

	if err := h.renderer.Render(w, r, "dashboard/index", render.TemplateData{
		Title: "Dashboard",
		User:  user,
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}
