// Package handler provides HTTP handlers for the application.
package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"campuscms/internal/model"
	"campuscms/internal/render"
	"campuscms/internal/service"
)

// homeArticleLimit caps the number of recent articles shown on the homepage.
const homeArticleLimit = 5

// FrontendHandler serves the public site: homepage, article and event pages.
type FrontendHandler struct {
	content  *service.ContentService
	renderer *render.Renderer
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(content *service.ContentService, renderer *render.Renderer) *FrontendHandler {
	return &FrontendHandler{
		content:  content,
		renderer: renderer,
	}
}

// HomeData holds data for the homepage template.
type HomeData struct {
	Articles []model.ArticleWithRelations
	Events   []model.EventWithRelations
}

// Home handles GET / - recent published articles plus upcoming events.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	articles, err := h.content.ListPublishedArticles(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list articles", "error", err)
		return
	}
	if len(articles) > homeArticleLimit {
		articles = articles[:homeArticleLimit]
	}

	events, err := h.content.UpcomingEvents(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list events", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "public/home", render.TemplateData{
		Title: "Home",
		Data:  HomeData{Articles: articles, Events: events},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// ArticleListData holds data for article listing templates.
type ArticleListData struct {
	Articles []model.ArticleWithRelations
	Tags     []model.Tag
	TagName  string
}

// ListArticles handles GET /articles - all published articles, newest first.
func (h *FrontendHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.content.ListPublishedArticles(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list articles", "error", err)
		return
	}

	tags, err := h.content.ListArticleTags(r.Context())
	if err != nil {
		slog.Error("failed to list article tags", "error", err)
		// Tag strip is decorative; keep serving the list
	}

	if err := h.renderer.Render(w, r, "public/articles", render.TemplateData{
		Title: "Articles",
		Data:  ArticleListData{Articles: articles, Tags: tags},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// ArticlesByTag handles GET /articles/tag/{name} - published articles with a tag.
// An unknown tag yields an empty list, which renders as a 404 page.
func (h *FrontendHandler) ArticlesByTag(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	articles, err := h.content.ListArticlesByTag(r.Context(), name)
	if err != nil {
		logAndInternalError(w, "failed to list articles by tag", "error", err, "tag", name)
		return
	}

	if len(articles) == 0 {
		h.NotFound(w, r)
		return
	}

	if err := h.renderer.Render(w, r, "public/articles", render.TemplateData{
		Title: "Articles tagged " + name,
		Data:  ArticleListData{Articles: articles, TagName: name},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// ArticleDetail handles GET /articles/{slug}.
// Drafts are invisible here regardless of who authored them.
func (h *FrontendHandler) ArticleDetail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	article, err := h.content.GetArticleBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.NotFound(w, r)
			return
		}
		logAndInternalError(w, "failed to get article", "error", err, "slug", slug)
		return
	}

	if !article.IsPublished() {
		h.NotFound(w, r)
		return
	}

	if err := h.renderer.Render(w, r, "public/article", render.TemplateData{
		Title: article.Title,
		Data:  article,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// EventListData holds data for event listing templates.
type EventListData struct {
	Events  []model.EventWithRelations
	Tags    []model.Tag
	TagName string
	Status  string
}

// ListEvents handles GET /events. The status query parameter switches between
// upcoming (default), done, and canceled listings.
func (h *FrontendHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if !model.IsValidEventStatus(status) {
		status = model.EventStatusUpcoming
	}

	events, err := h.content.ListEventsByStatus(r.Context(), status)
	if err != nil {
		logAndInternalError(w, "failed to list events", "error", err, "status", status)
		return
	}

	tags, err := h.content.ListEventTags(r.Context())
	if err != nil {
		slog.Error("failed to list event tags", "error", err)
	}

	if err := h.renderer.Render(w, r, "public/events", render.TemplateData{
		Title: "Events",
		Data:  EventListData{Events: events, Tags: tags, Status: status},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// EventsByTag handles GET /events/tag/{name}.
func (h *FrontendHandler) EventsByTag(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	events, err := h.content.ListEventsByTag(r.Context(), name)
	if err != nil {
		logAndInternalError(w, "failed to list events by tag", "error", err, "tag", name)
		return
	}

	if len(events) == 0 {
		h.NotFound(w, r)
		return
	}

	if err := h.renderer.Render(w, r, "public/events", render.TemplateData{
		Title: "Events tagged " + name,
		Data:  EventListData{Events: events, TagName: name},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// EventDetail handles GET /events/{id}.
func (h *FrontendHandler) EventDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.NotFound(w, r)
		return
	}

	event, err := h.content.GetEventByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.NotFound(w, r)
			return
		}
		logAndInternalError(w, "failed to get event", "error", err, "event_id", id)
		return
	}

	if err := h.renderer.Render(w, r, "public/event", render.TemplateData{
		Title: event.Title,
		Data:  event,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// NotFound renders the public 404 page.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	if err := h.renderer.Render(w, r, "public/404", render.TemplateData{
		Title: "Page Not Found",
	}); err != nil {
		slog.Error("render error", "error", err)
		http.Error(w, "Not Found", http.StatusNotFound)
	}
}
