// Package logging provides a custom slog handler that mirrors WARN and ERROR
// level records into the database-backed audit log.
package logging

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"campuscms/internal/model"
	"campuscms/internal/store"
)

// AuditHandler is a slog.Handler that wraps another handler and also writes
// WARN and ERROR level logs to the audit log table.
type AuditHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
}

// NewAuditHandler creates an AuditHandler that forwards everything to inner
// and additionally persists records at WARN level and above.
func NewAuditHandler(inner slog.Handler, db *sql.DB) *AuditHandler {
	return &AuditHandler{
		inner:   inner,
		queries: store.New(db),
		level:   slog.LevelWarn,
	}
}

// Enabled implements slog.Handler.
func (h *AuditHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *AuditHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.writeAudit(r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *AuditHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AuditHandler{inner: h.inner.WithAttrs(attrs), queries: h.queries, level: h.level}
}

// WithGroup implements slog.Handler.
func (h *AuditHandler) WithGroup(name string) slog.Handler {
	return &AuditHandler{inner: h.inner.WithGroup(name), queries: h.queries, level: h.level}
}

func (h *AuditHandler) writeAudit(r slog.Record) {
	level := model.AuditLevelWarning
	if r.Level >= slog.LevelError {
		level = model.AuditLevelError
	}

	// Background context so the entry lands even if the request context is gone
	_, _ = h.queries.CreateAuditEntry(context.Background(), store.CreateAuditEntryParams{
		Level:     level,
		Category:  inferCategory(r.Message),
		Message:   r.Message,
		UserID:    sql.NullInt64{},
		Metadata:  attrsJSON(r),
		CreatedAt: r.Time,
	})
}

func inferCategory(message string) string {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "auth") || strings.Contains(msg, "session"):
		return model.AuditCategoryAuth
	case strings.Contains(msg, "article") || strings.Contains(msg, "event") || strings.Contains(msg, "tag"):
		return model.AuditCategoryContent
	default:
		return model.AuditCategorySystem
	}
}

// attrsJSON collects the record attributes into a small JSON object.
func attrsJSON(r slog.Record) string {
	if r.NumAttrs() == 0 {
		return "{}"
	}

	var sb strings.Builder
	sb.WriteString("{")
	first := true
	r.Attrs(func(a slog.Attr) bool {
		if !first {
			sb.WriteString(",")
		}
		first = false
		sb.WriteString(`"`)
		sb.WriteString(escapeJSON(a.Key))
		sb.WriteString(`":"`)
		sb.WriteString(escapeJSON(a.Value.String()))
		sb.WriteString(`"`)
		return true
	})
	sb.WriteString("}")
	return sb.String()
}

func escapeJSON(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
