package handler

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"campuscms/internal/middleware"
	"campuscms/internal/model"
	"campuscms/internal/render"
	"campuscms/internal/service"
	"campuscms/internal/store"
	"campuscms/internal/util"
)

// EventsPerPage is the number of events per dashboard list page.
const EventsPerPage = 10

// eventDateLayout matches the browser's datetime-local input format.
const eventDateLayout = "2006-01-02T15:04"

// EventsHandler handles dashboard event management routes.
type EventsHandler struct {
	db             *sql.DB
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	auditService   *service.AuditService
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *EventsHandler {
	return &EventsHandler{
		db:             db,
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		auditService:   service.NewAuditService(db),
	}
}

// EventsListData holds data for the events list template.
type EventsListData struct {
	Events      []store.EventWithAuthorRow
	CurrentPage int
	TotalPages  int
	TotalCount  int64
	HasPrev     bool
	HasNext     bool
	PrevPage    int
	NextPage    int
}

// List handles GET /dashboard/events - a paginated list of all events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	page := parsePageParam(r)

	totalCount, err := h.queries.CountEvents(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count events", "error", err)
		return
	}

	totalPages := totalPagesFor(totalCount, EventsPerPage)
	if page > totalPages {
		page = totalPages
	}

	events, err := h.queries.ListEvents(r.Context(), store.ListEventsParams{
		Limit:  EventsPerPage,
		Offset: int64((page - 1) * EventsPerPage),
	})
	if err != nil {
		logAndInternalError(w, "failed to list events", "error", err)
		return
	}

	data := EventsListData{
		Events:      events,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
		HasPrev:     page > 1,
		HasNext:     page < totalPages,
		PrevPage:    page - 1,
		NextPage:    page + 1,
	}

	if err := h.renderer.Render(w, r, "dashboard/events", render.TemplateData{
		Title: "Events",
		User:  user,
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// EventFormData holds data for the event form template.
type EventFormData struct {
	Event          *model.Event
	Statuses       []string
	AllTags        []model.Tag
	SelectedTagIDs map[int64]bool
	Errors         map[string]string
	FormValues     map[string]string
	IsEdit         bool
}

// NewForm handles GET /dashboard/events/new.
func (h *EventsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	allTags, err := h.queries.ListAllTags(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list tags", "error", err)
		return
	}

	data := EventFormData{
		Statuses:       model.ValidEventStatuses,
		AllTags:        allTags,
		SelectedTagIDs: make(map[int64]bool),
		Errors:         make(map[string]string),
		FormValues:     make(map[string]string),
	}

	if err := h.renderer.Render(w, r, "dashboard/event_form", render.TemplateData{
		Title: "New Event",
		User:  user,
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// eventForm is the parsed and validated event form submission.
type eventForm struct {
	title      string
	eventDate  time.Time
	status     string
	formValues map[string]string
	errs       map[string]string
}

// parseEventForm validates the shared fields of create and update submissions.
func parseEventForm(r *http.Request, defaultStatus string) eventForm {
	f := eventForm{
		title:  strings.TrimSpace(r.FormValue("title")),
		status: r.FormValue("status"),
		errs:   make(map[string]string),
	}

	dateStr := strings.TrimSpace(r.FormValue("event_date"))

	f.formValues = map[string]string{
		"title":       f.title,
		"description": r.FormValue("description"),
		"event_date":  dateStr,
		"location":    r.FormValue("location"),
		"image_url":   r.FormValue("image_url"),
		"status":      f.status,
	}

	if f.title == "" {
		f.errs["title"] = "Title is required"
	}

	if dateStr == "" {
		f.errs["event_date"] = "Event date is required"
	} else {
		parsed, err := time.ParseInLocation(eventDateLayout, dateStr, time.Local)
		if err != nil {
			f.errs["event_date"] = "Invalid date format"
		} else {
			f.eventDate = parsed
		}
	}

	if f.status == "" {
		f.status = defaultStatus
		f.formValues["status"] = f.status
	} else if !model.IsValidEventStatus(f.status) {
		f.errs["status"] = "Invalid status"
	}

	return f
}

// Create handles POST /dashboard/events.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if !parseFormOrRedirect(w, r, h.renderer, redirectDashboardEventsNew) {
		return
	}

	form := parseEventForm(r, model.EventStatusUpcoming)
	tagIDs := parseTagIDs(r.Form["tags"])

	if len(form.errs) > 0 {
		h.renderFormWithErrors(w, r, user, nil, form.errs, form.formValues, tagIDs, false)
		return
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		logAndInternalError(w, "failed to begin transaction", "error", err)
		return
	}
	defer func() { _ = tx.Rollback() }()

	qtx := h.queries.WithTx(tx)

	now := time.Now()
	event, err := qtx.CreateEvent(r.Context(), store.CreateEventParams{
		Title:       form.title,
		Description: util.NullStringFromValue(r.FormValue("description")),
		EventDate:   form.eventDate,
		Location:    util.NullStringFromValue(strings.TrimSpace(r.FormValue("location"))),
		ImageURL:    util.NullStringFromValue(strings.TrimSpace(r.FormValue("image_url"))),
		AuthorID:    sql.NullInt64{Int64: user.ID, Valid: true},
		Status:      form.status,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		slog.Error("failed to create event", "error", err)
		flashError(w, r, h.renderer, redirectDashboardEventsNew, "Error creating event")
		return
	}

	if err := qtx.ReplaceEventTags(r.Context(), event.ID, tagIDs); err != nil {
		slog.Error("failed to set event tags", "error", err, "event_id", event.ID)
		flashError(w, r, h.renderer, redirectDashboardEventsNew, "Error creating event")
		return
	}

	if err := tx.Commit(); err != nil {
		logAndInternalError(w, "failed to commit event", "error", err)
		return
	}

	slog.Info("event created", "event_id", event.ID, "created_by", user.ID)
	_ = h.auditService.LogContent(r.Context(), model.AuditLevelInfo, "Event created", &user.ID, map[string]any{"event_id": event.ID, "title": event.Title})

	flashSuccess(w, r, h.renderer, redirectDashboardEvents, "Event created successfully")
}

// EditForm handles GET /dashboard/events/{id}.
func (h *EventsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, ok := parseIDParam(w, r, h.renderer, redirectDashboardEvents, "event")
	if !ok {
		return
	}

	row, ok := requireEntityWithRedirect(w, r, h.renderer, redirectDashboardEvents, "Event", id,
		func(id int64) (store.EventWithAuthorRow, error) { return h.queries.GetEventByID(r.Context(), id) })
	if !ok {
		return
	}

	if !user.CanEdit(row.AuthorID) {
		h.forbidden(w, r, user, id)
		return
	}

	allTags, err := h.queries.ListAllTags(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list tags", "error", err)
		return
	}

	selectedIDs, err := h.queries.ListTagIDsForEvent(r.Context(), id)
	if err != nil {
		logAndInternalError(w, "failed to list event tags", "error", err)
		return
	}

	data := EventFormData{
		Event:          &row.Event,
		Statuses:       model.ValidEventStatuses,
		AllTags:        allTags,
		SelectedTagIDs: idSet(selectedIDs),
		Errors:         make(map[string]string),
		FormValues:     make(map[string]string),
		IsEdit:         true,
	}

	if err := h.renderer.Render(w, r, "dashboard/event_form", render.TemplateData{
		Title: "Edit Event",
		User:  user,
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// Update handles POST /dashboard/events/{id}.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, ok := parseIDParam(w, r, h.renderer, redirectDashboardEvents, "event")
	if !ok {
		return
	}

	row, ok := requireEntityWithRedirect(w, r, h.renderer, redirectDashboardEvents, "Event", id,
		func(id int64) (store.EventWithAuthorRow, error) { return h.queries.GetEventByID(r.Context(), id) })
	if !ok {
		return
	}

	if !user.CanEdit(row.AuthorID) {
		h.forbidden(w, r, user, id)
		return
	}

	editURL := fmt.Sprintf(redirectDashboardEventsID, id)
	if !parseFormOrRedirect(w, r, h.renderer, editURL) {
		return
	}

	form := parseEventForm(r, row.Status)
	tagIDs := parseTagIDs(r.Form["tags"])

	if len(form.errs) > 0 {
		h.renderFormWithErrors(w, r, user, &row.Event, form.errs, form.formValues, tagIDs, true)
		return
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		logAndInternalError(w, "failed to begin transaction", "error", err)
		return
	}
	defer func() { _ = tx.Rollback() }()

	qtx := h.queries.WithTx(tx)

	err = qtx.UpdateEvent(r.Context(), store.UpdateEventParams{
		ID:          id,
		Title:       form.title,
		Description: util.NullStringFromValue(r.FormValue("description")),
		EventDate:   form.eventDate,
		Location:    util.NullStringFromValue(strings.TrimSpace(r.FormValue("location"))),
		ImageURL:    util.NullStringFromValue(strings.TrimSpace(r.FormValue("image_url"))),
		Status:      form.status,
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		slog.Error("failed to update event", "error", err, "event_id", id)
		flashError(w, r, h.renderer, editURL, "Error updating event")
		return
	}

	if err := qtx.ReplaceEventTags(r.Context(), id, tagIDs); err != nil {
		slog.Error("failed to set event tags", "error", err, "event_id", id)
		flashError(w, r, h.renderer, editURL, "Error updating event")
		return
	}

	if err := tx.Commit(); err != nil {
		logAndInternalError(w, "failed to commit event", "error", err)
		return
	}

	slog.Info("event updated", "event_id", id, "updated_by", user.ID)
	_ = h.auditService.LogContent(r.Context(), model.AuditLevelInfo, "Event updated", &user.ID, map[string]any{"event_id": id, "title": form.title})

	flashSuccess(w, r, h.renderer, redirectDashboardEvents, "Event updated successfully")
}

// Delete handles POST /dashboard/events/{id}/delete.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, ok := parseIDParam(w, r, h.renderer, redirectDashboardEvents, "event")
	if !ok {
		return
	}

	row, ok := requireEntityWithRedirect(w, r, h.renderer, redirectDashboardEvents, "Event", id,
		func(id int64) (store.EventWithAuthorRow, error) { return h.queries.GetEventByID(r.Context(), id) })
	if !ok {
		return
	}

	if !user.CanEdit(row.AuthorID) {
		h.forbidden(w, r, user, id)
		return
	}

	if err := h.queries.DeleteEvent(r.Context(), id); err != nil {
		slog.Error("failed to delete event", "error", err, "event_id", id)
		flashError(w, r, h.renderer, redirectDashboardEvents, "Error deleting event")
		return
	}

	slog.Info("event deleted", "event_id", id, "title", row.Title, "deleted_by", user.ID)
	_ = h.auditService.LogContent(r.Context(), model.AuditLevelInfo, "Event deleted", &user.ID, map[string]any{"event_id": id, "title": row.Title})

	flashSuccess(w, r, h.renderer, redirectDashboardEvents, "Event deleted successfully")
}

// renderFormWithErrors re-renders the event form with validation errors.
func (h *EventsHandler) renderFormWithErrors(w http.ResponseWriter, r *http.Request, user *model.User, event *model.Event, errs, formValues map[string]string, tagIDs []int64, isEdit bool) {
	allTags, err := h.queries.ListAllTags(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list tags", "error", err)
		return
	}

	title := "New Event"
	if isEdit {
		title = "Edit Event"
	}

	data := EventFormData{
		Event:          event,
		Statuses:       model.ValidEventStatuses,
		AllTags:        allTags,
		SelectedTagIDs: idSet(tagIDs),
		Errors:         errs,
		FormValues:     formValues,
		IsEdit:         isEdit,
	}

	if err := h.renderer.Render(w, r, "dashboard/event_form", render.TemplateData{
		Title: title,
		User:  user,
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// forbidden logs and rejects an edit attempt by a non-owner.
func (h *EventsHandler) forbidden(w http.ResponseWriter, r *http.Request, user *model.User, id int64) {
	slog.Warn("access denied",
		"status", http.StatusForbidden,
		"entity", "event",
		"entity_id", id,
		"user_id", user.ID,
		"user_role", user.Role,
	)
	_ = h.auditService.LogContent(r.Context(), model.AuditLevelWarning, "Access denied: not the author", &user.ID, map[string]any{"entity": "event", "entity_id": id})
	http.Error(w, "Forbidden: you can only modify your own content", http.StatusForbidden)
}
