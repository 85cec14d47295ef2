package store

import (
	"context"
	"database/sql"
	"time"

	"campuscms/internal/model"
)

// CreateAuditEntryParams holds the fields for CreateAuditEntry.
type CreateAuditEntryParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string
	CreatedAt time.Time
}

// CreateAuditEntry inserts an audit log row.
func (q *Queries) CreateAuditEntry(ctx context.Context, arg CreateAuditEntryParams) (model.AuditEntry, error) {
	var e model.AuditEntry
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO audit_log (level, category, message, user_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, level, category, message, user_id, metadata, created_at`,
		arg.Level, arg.Category, arg.Message, arg.UserID, arg.Metadata, arg.CreatedAt).
		Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID, &e.Metadata, &e.CreatedAt)
	return e, err
}

// ListAuditEntriesParams holds pagination for ListAuditEntries.
type ListAuditEntriesParams struct {
	Limit  int64
	Offset int64
}

// ListAuditEntries returns audit rows, newest first.
func (q *Queries) ListAuditEntries(ctx context.Context, arg ListAuditEntriesParams) ([]model.AuditEntry, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, level, category, message, user_id, metadata, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
