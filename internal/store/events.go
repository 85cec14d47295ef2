package store

import (
	"context"
	"database/sql"
	"time"

	"campuscms/internal/model"
)

const eventColumns = `e.id, e.title, e.description, e.event_date, e.location, e.image_url, e.author_id, e.status, e.created_at, e.updated_at`

// EventWithAuthorRow is an event row joined with its author's public fields.
type EventWithAuthorRow struct {
	model.Event
	AuthorFullName  sql.NullString
	AuthorAvatarURL sql.NullString
}

func scanEventWithAuthor(scan func(dest ...any) error) (EventWithAuthorRow, error) {
	var r EventWithAuthorRow
	err := scan(&r.ID, &r.Title, &r.Description, &r.EventDate, &r.Location, &r.ImageURL,
		&r.AuthorID, &r.Status, &r.CreatedAt, &r.UpdatedAt, &r.AuthorFullName, &r.AuthorAvatarURL)
	return r, err
}

const eventWithAuthorQuery = `
	SELECT ` + eventColumns + `, u.full_name, u.avatar_url
	FROM events e
	LEFT JOIN users u ON u.id = e.author_id`

// CreateEventParams holds the fields for CreateEvent.
type CreateEventParams struct {
	Title       string
	Description sql.NullString
	EventDate   time.Time
	Location    sql.NullString
	ImageURL    sql.NullString
	AuthorID    sql.NullInt64
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateEvent inserts a new event and returns the created row.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (model.Event, error) {
	var e model.Event
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO events (title, description, event_date, location, image_url, author_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, title, description, event_date, location, image_url, author_id, status, created_at, updated_at`,
		arg.Title, arg.Description, arg.EventDate, arg.Location, arg.ImageURL,
		arg.AuthorID, arg.Status, arg.CreatedAt, arg.UpdatedAt).
		Scan(&e.ID, &e.Title, &e.Description, &e.EventDate, &e.Location, &e.ImageURL,
			&e.AuthorID, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// UpdateEventParams holds the fields for UpdateEvent.
// AuthorID is deliberately absent: ownership is fixed at creation time.
type UpdateEventParams struct {
	ID          int64
	Title       string
	Description sql.NullString
	EventDate   time.Time
	Location    sql.NullString
	ImageURL    sql.NullString
	Status      string
	UpdatedAt   time.Time
}

// UpdateEvent updates an existing event by id.
func (q *Queries) UpdateEvent(ctx context.Context, arg UpdateEventParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE events
		SET title = ?, description = ?, event_date = ?, location = ?, image_url = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		arg.Title, arg.Description, arg.EventDate, arg.Location, arg.ImageURL,
		arg.Status, arg.UpdatedAt, arg.ID)
	return err
}

// DeleteEvent removes an event; join rows cascade.
func (q *Queries) DeleteEvent(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	return err
}

// GetEventByID fetches a single event with its author joined.
func (q *Queries) GetEventByID(ctx context.Context, id int64) (EventWithAuthorRow, error) {
	row := q.db.QueryRowContext(ctx, eventWithAuthorQuery+` WHERE e.id = ?`, id)
	return scanEventWithAuthor(row.Scan)
}

func (q *Queries) queryEventRows(ctx context.Context, query string, args ...any) ([]EventWithAuthorRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []EventWithAuthorRow
	for rows.Next() {
		r, err := scanEventWithAuthor(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// ListEventsByStatus returns events with the given status. Every status sorts
// by event_date ascending except "done", which sorts descending so the most
// recently finished events come first.
func (q *Queries) ListEventsByStatus(ctx context.Context, status string) ([]EventWithAuthorRow, error) {
	order := "ASC"
	if status == model.EventStatusDone {
		order = "DESC"
	}
	return q.queryEventRows(ctx, eventWithAuthorQuery+`
		WHERE e.status = ?
		ORDER BY e.event_date `+order, status)
}

// ListEventsByTagName returns events carrying the named tag, soonest first.
// An unmatched name yields an empty result, not an error.
func (q *Queries) ListEventsByTagName(ctx context.Context, name string) ([]EventWithAuthorRow, error) {
	return q.queryEventRows(ctx, eventWithAuthorQuery+`
		INNER JOIN event_tags et ON et.event_id = e.id
		INNER JOIN tags t ON t.id = et.tag_id
		WHERE t.name = ?
		ORDER BY e.event_date ASC`, name)
}

// ListEventsParams holds pagination for ListEvents.
type ListEventsParams struct {
	Limit  int64
	Offset int64
}

// ListEvents returns events of any status for the dashboard, newest first.
func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]EventWithAuthorRow, error) {
	return q.queryEventRows(ctx, eventWithAuthorQuery+`
		ORDER BY e.created_at DESC
		LIMIT ? OFFSET ?`, arg.Limit, arg.Offset)
}

// CountEvents returns the total number of events.
func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}
