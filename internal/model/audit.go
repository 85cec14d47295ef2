package model

import (
	"database/sql"
	"time"
)

// Audit entry levels
const (
	AuditLevelInfo    = "info"
	AuditLevelWarning = "warning"
	AuditLevelError   = "error"
)

// Audit entry categories
const (
	AuditCategoryAuth    = "auth"
	AuditCategoryContent = "content"
	AuditCategorySystem  = "system"
)

// AuditEntry represents a row in the audit log.
type AuditEntry struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string // JSON string
	CreatedAt time.Time
}
