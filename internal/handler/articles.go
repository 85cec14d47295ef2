package handler

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"campuscms/internal/middleware"
	"campuscms/internal/model"
	"campuscms/internal/render"
	"campuscms/internal/service"
	"campuscms/internal/store"
	"campuscms/internal/util"
)

// ArticlesPerPage is the number of articles per dashboard list page.
const ArticlesPerPage = 10

// ArticlesHandler handles dashboard article management routes.
type ArticlesHandler struct {
	db             *sql.DB
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	auditService   *service.AuditService
}

// NewArticlesHandler creates a new ArticlesHandler.
func NewArticlesHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *ArticlesHandler {
	return &ArticlesHandler{
		db:             db,
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		auditService:   service.NewAuditService(db),
	}
}

// ArticlesListData holds data for the articles list template.
type ArticlesListData struct {
	Articles    []store.ArticleWithAuthorRow
	CurrentPage int
	TotalPages  int
	TotalCount  int64
	HasPrev     bool
	HasNext     bool
	PrevPage    int
	NextPage    int
}

// List handles GET /dashboard/articles - a paginated list of all articles.
func (h *ArticlesHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	page := parsePageParam(r)

	totalCount, err := h.queries.CountArticles(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count articles", "error", err)
		return
	}

	totalPages := totalPagesFor(totalCount, ArticlesPerPage)
	if page > totalPages {
		page = totalPages
	}

	articles, err := h.queries.ListArticles(r.Context(), store.ListArticlesParams{
		Limit:  ArticlesPerPage,
		Offset: int64((page - 1) * ArticlesPerPage),
	})
	if err != nil {
		logAndInternalError(w, "failed to list articles", "error", err)
		return
	}

	data := ArticlesListData{
		Articles:    articles,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
		HasPrev:     page > 1,
		HasNext:     page < totalPages,
		PrevPage:    page - 1,
		NextPage:    page + 1,
	}

	if err := h.renderer.Render(w, r, "dashboard/articles", render.TemplateData{
		Title: "Articles",
		User:  user,
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// ArticleFormData holds data for the article form template.
type ArticleFormData struct {
	Article        *model.Article
	Statuses       []string
	AllTags        []model.Tag
	SelectedTagIDs map[int64]bool
	Errors         map[string]string
	FormValues     map[string]string
	IsEdit         bool
}

// NewForm handles GET /dashboard/articles/new.
func (h *ArticlesHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	allTags, err := h.queries.ListAllTags(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list tags", "error", err)
		return
	}

	data := ArticleFormData{
		Statuses:       []string{model.ArticleStatusDraft, model.ArticleStatusPublished},
		AllTags:        allTags,
		SelectedTagIDs: make(map[int64]bool),
		Errors:         make(map[string]string),
		FormValues:     make(map[string]string),
	}

	if err := h.renderer.Render(w, r, "dashboard/article_form", render.TemplateData{
		Title: "New Article",
		User:  user,
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// Create handles POST /dashboard/articles.
// When the slug field is left empty it is derived from the title; on edit
// the stored slug is never silently regenerated.
func (h *ArticlesHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if !parseFormOrRedirect(w, r, h.renderer, redirectDashboardArticlesNew) {
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	slug := strings.TrimSpace(r.FormValue("slug"))
	content := r.FormValue("content")
	imageURL := strings.TrimSpace(r.FormValue("image_url"))
	status := r.FormValue("status")
	tagIDs := parseTagIDs(r.Form["tags"])

	formValues := map[string]string{
		"title":     title,
		"slug":      slug,
		"content":   content,
		"image_url": imageURL,
		"status":    status,
	}

	errs := make(map[string]string)

	if title == "" {
		errs["title"] = "Title is required"
	}

	if slug == "" {
		slug = util.Slugify(title)
		formValues["slug"] = slug
	}

	if slug == "" {
		errs["slug"] = "Slug is required"
	} else if !util.IsValidSlug(slug) {
		errs["slug"] = "Invalid slug format (use lowercase letters, numbers, and hyphens)"
	} else {
		exists, err := h.queries.ArticleSlugExists(r.Context(), slug, 0)
		if err != nil {
			slog.Error("database error checking slug", "error", err)
			errs["slug"] = "Error checking slug"
		} else if exists {
			errs["slug"] = "Slug already exists"
		}
	}

	if status == "" {
		status = model.ArticleStatusDraft
		formValues["status"] = status
	} else if status != model.ArticleStatusDraft && status != model.ArticleStatusPublished {
		errs["status"] = "Invalid status"
	}

	if len(errs) > 0 {
		h.renderFormWithErrors(w, r, user, nil, errs, formValues, tagIDs, false)
		return
	}

	// Article row and its tag assignments commit together
	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		logAndInternalError(w, "failed to begin transaction", "error", err)
		return
	}
	defer func() { _ = tx.Rollback() }()

	qtx := h.queries.WithTx(tx)

	now := time.Now()
	article, err := qtx.CreateArticle(r.Context(), store.CreateArticleParams{
		Title:     title,
		Slug:      slug,
		Content:   util.NullStringFromValue(content),
		ImageURL:  util.NullStringFromValue(imageURL),
		AuthorID:  sql.NullInt64{Int64: user.ID, Valid: true},
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		slog.Error("failed to create article", "error", err)
		flashError(w, r, h.renderer, redirectDashboardArticlesNew, "Error creating article")
		return
	}

	if err := qtx.ReplaceArticleTags(r.Context(), article.ID, tagIDs); err != nil {
		slog.Error("failed to set article tags", "error", err, "article_id", article.ID)
		flashError(w, r, h.renderer, redirectDashboardArticlesNew, "Error creating article")
		return
	}

	if err := tx.Commit(); err != nil {
		logAndInternalError(w, "failed to commit article", "error", err)
		return
	}

	slog.Info("article created", "article_id", article.ID, "slug", article.Slug, "created_by", user.ID)
	_ = h.auditService.LogContent(r.Context(), model.AuditLevelInfo, "Article created", &user.ID, map[string]any{"article_id": article.ID, "slug": article.Slug})

	flashSuccess(w, r, h.renderer, redirectDashboardArticles, "Article created successfully")
}

// EditForm handles GET /dashboard/articles/{id}.
func (h *ArticlesHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, ok := parseIDParam(w, r, h.renderer, redirectDashboardArticles, "article")
	if !ok {
		return
	}

	row, ok := requireEntityWithRedirect(w, r, h.renderer, redirectDashboardArticles, "Article", id,
		func(id int64) (store.ArticleWithAuthorRow, error) { return h.queries.GetArticleByID(r.Context(), id) })
	if !ok {
		return
	}

	if !user.CanEdit(row.AuthorID) {
		h.forbidden(w, r, user, "article", id)
		return
	}

	allTags, err := h.queries.ListAllTags(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list tags", "error", err)
		return
	}

	selectedIDs, err := h.queries.ListTagIDsForArticle(r.Context(), id)
	if err != nil {
		logAndInternalError(w, "failed to list article tags", "error", err)
		return
	}

	data := ArticleFormData{
		Article:        &row.Article,
		Statuses:       []string{model.ArticleStatusDraft, model.ArticleStatusPublished},
		AllTags:        allTags,
		SelectedTagIDs: idSet(selectedIDs),
		Errors:         make(map[string]string),
		FormValues:     make(map[string]string),
		IsEdit:         true,
	}

	if err := h.renderer.Render(w, r, "dashboard/article_form", render.TemplateData{
		Title: "Edit Article",
		User:  user,
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// Update handles POST /dashboard/articles/{id}.
func (h *ArticlesHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, ok := parseIDParam(w, r, h.renderer, redirectDashboardArticles, "article")
	if !ok {
		return
	}

	row, ok := requireEntityWithRedirect(w, r, h.renderer, redirectDashboardArticles, "Article", id,
		func(id int64) (store.ArticleWithAuthorRow, error) { return h.queries.GetArticleByID(r.Context(), id) })
	if !ok {
		return
	}

	if !user.CanEdit(row.AuthorID) {
		h.forbidden(w, r, user, "article", id)
		return
	}

	editURL := fmt.Sprintf(redirectDashboardArticlesID, id)
	if !parseFormOrRedirect(w, r, h.renderer, editURL) {
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	slug := strings.TrimSpace(r.FormValue("slug"))
	content := r.FormValue("content")
	imageURL := strings.TrimSpace(r.FormValue("image_url"))
	status := r.FormValue("status")
	tagIDs := parseTagIDs(r.Form["tags"])

	formValues := map[string]string{
		"title":     title,
		"slug":      slug,
		"content":   content,
		"image_url": imageURL,
		"status":    status,
	}

	errs := make(map[string]string)

	if title == "" {
		errs["title"] = "Title is required"
	}

	// On edit an empty slug is a validation error; it is never regenerated
	// from the title
	if slug == "" {
		errs["slug"] = "Slug is required"
	} else if !util.IsValidSlug(slug) {
		errs["slug"] = "Invalid slug format (use lowercase letters, numbers, and hyphens)"
	} else if slug != row.Slug {
		exists, err := h.queries.ArticleSlugExists(r.Context(), slug, id)
		if err != nil {
			slog.Error("database error checking slug", "error", err)
			errs["slug"] = "Error checking slug"
		} else if exists {
			errs["slug"] = "Slug already exists"
		}
	}

	if status == "" {
		status = row.Status
		formValues["status"] = status
	} else if status != model.ArticleStatusDraft && status != model.ArticleStatusPublished {
		errs["status"] = "Invalid status"
	}

	if len(errs) > 0 {
		h.renderFormWithErrors(w, r, user, &row.Article, errs, formValues, tagIDs, true)
		return
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		logAndInternalError(w, "failed to begin transaction", "error", err)
		return
	}
	defer func() { _ = tx.Rollback() }()

	qtx := h.queries.WithTx(tx)

	err = qtx.UpdateArticle(r.Context(), store.UpdateArticleParams{
		ID:        id,
		Title:     title,
		Slug:      slug,
		Content:   util.NullStringFromValue(content),
		ImageURL:  util.NullStringFromValue(imageURL),
		Status:    status,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to update article", "error", err, "article_id", id)
		flashError(w, r, h.renderer, editURL, "Error updating article")
		return
	}

	if err := qtx.ReplaceArticleTags(r.Context(), id, tagIDs); err != nil {
		slog.Error("failed to set article tags", "error", err, "article_id", id)
		flashError(w, r, h.renderer, editURL, "Error updating article")
		return
	}

	if err := tx.Commit(); err != nil {
		logAndInternalError(w, "failed to commit article", "error", err)
		return
	}

	slog.Info("article updated", "article_id", id, "slug", slug, "updated_by", user.ID)
	_ = h.auditService.LogContent(r.Context(), model.AuditLevelInfo, "Article updated", &user.ID, map[string]any{"article_id": id, "slug": slug})

	flashSuccess(w, r, h.renderer, redirectDashboardArticles, "Article updated successfully")
}

// Delete handles POST /dashboard/articles/{id}/delete.
func (h *ArticlesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, ok := parseIDParam(w, r, h.renderer, redirectDashboardArticles, "article")
	if !ok {
		return
	}

	row, ok := requireEntityWithRedirect(w, r, h.renderer, redirectDashboardArticles, "Article", id,
		func(id int64) (store.ArticleWithAuthorRow, error) { return h.queries.GetArticleByID(r.Context(), id) })
	if !ok {
		return
	}

	if !user.CanEdit(row.AuthorID) {
		h.forbidden(w, r, user, "article", id)
		return
	}

	// Join rows cascade with the article
	if err := h.queries.DeleteArticle(r.Context(), id); err != nil {
		slog.Error("failed to delete article", "error", err, "article_id", id)
		flashError(w, r, h.renderer, redirectDashboardArticles, "Error deleting article")
		return
	}

	slog.Info("article deleted", "article_id", id, "slug", row.Slug, "deleted_by", user.ID)
	_ = h.auditService.LogContent(r.Context(), model.AuditLevelInfo, "Article deleted", &user.ID, map[string]any{"article_id": id, "slug": row.Slug})

	flashSuccess(w, r, h.renderer, redirectDashboardArticles, "Article deleted successfully")
}

// renderFormWithErrors re-renders the article form with validation errors.
func (h *ArticlesHandler) renderFormWithErrors(w http.ResponseWriter, r *http.Request, user *model.User, article *model.Article, errs, formValues map[string]string, tagIDs []int64, isEdit bool) {
	allTags, err := h.queries.ListAllTags(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list tags", "error", err)
		return
	}

	title := "New Article"
	if isEdit {
		title = "Edit Article"
	}

	data := ArticleFormData{
		Article:        article,
		Statuses:       []string{model.ArticleStatusDraft, model.ArticleStatusPublished},
		AllTags:        allTags,
		SelectedTagIDs: idSet(tagIDs),
		Errors:         errs,
		FormValues:     formValues,
		IsEdit:         isEdit,
	}

	if err := h.renderer.Render(w, r, "dashboard/article_form", render.TemplateData{
		Title: title,
		User:  user,
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// forbidden logs and rejects an edit attempt by a non-owner.
func (h *ArticlesHandler) forbidden(w http.ResponseWriter, r *http.Request, user *model.User, entity string, id int64) {
	slog.Warn("access denied",
		"status", http.StatusForbidden,
		"entity", entity,
		"entity_id", id,
		"user_id", user.ID,
		"user_role", user.Role,
	)
	_ = h.auditService.LogContent(r.Context(), model.AuditLevelWarning, "Access denied: not the author", &user.ID, map[string]any{"entity": entity, "entity_id": id})
	http.Error(w, "Forbidden: you can only modify your own content", http.StatusForbidden)
}

// parseTagIDs parses the selected tag ID strings from a form submission.
// Malformed values are skipped.
func parseTagIDs(values []string) []int64 {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// idSet converts a slice of IDs to a membership set for templates.
func idSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// parsePageParam reads the page query parameter, defaulting to 1.
func parsePageParam(r *http.Request) int {
	page := 1
	if s := r.URL.Query().Get("page"); s != "" {
		if p, err := strconv.Atoi(s); err == nil && p > 0 {
			page = p
		}
	}
	return page
}

// totalPagesFor computes the page count for a total and page size, minimum 1.
func totalPagesFor(total int64, perPage int) int {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		pages = 1
	}
	return pages
}

// parseIDParam parses the {id} URL parameter, redirecting with a flash on failure.
func parseIDParam(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, redirectURL, entityName string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		flashError(w, r, renderer, redirectURL, "Invalid "+entityName+" ID")
		return 0, false
	}
	return id, true
}
