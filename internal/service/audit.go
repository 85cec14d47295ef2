// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides business logic over the store: content shaping
// for the public site and audit logging.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"campuscms/internal/model"
	"campuscms/internal/store"
)

// AuditService records auth and content events in the audit log.
type AuditService struct {
	queries *store.Queries
}

// NewAuditService creates a new AuditService.
func NewAuditService(db *sql.DB) *AuditService {
	return &AuditService{queries: store.New(db)}
}

// Log creates a new audit log entry.
func (s *AuditService) Log(ctx context.Context, level, category, message string, userID *int64, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		if jsonBytes, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	_, err := s.queries.CreateAuditEntry(ctx, store.CreateAuditEntryParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		Metadata:  metadataJSON,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to write audit entry", "error", err)
		return err
	}

	return nil
}

// LogAuth records an authentication-related event.
func (s *AuditService) LogAuth(ctx context.Context, level, message string, userID *int64, metadata map[string]any) error {
	return s.Log(ctx, level, model.AuditCategoryAuth, message, userID, metadata)
}

// LogContent records a content-related event (creates, edits, deletes).
func (s *AuditService) LogContent(ctx context.Context, level, message string, userID *int64, metadata map[string]any) error {
	return s.Log(ctx, level, model.AuditCategoryContent, message, userID, metadata)
}
