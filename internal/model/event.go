// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Event statuses
const (
	EventStatusUpcoming = "upcoming"
	EventStatusDone     = "done"
	EventStatusCanceled = "canceled"
)

// ValidEventStatuses contains all valid event statuses.
var ValidEventStatuses = []string{EventStatusUpcoming, EventStatusDone, EventStatusCanceled}

// IsValidEventStatus checks if a status is one of the known event statuses.
func IsValidEventStatus(status string) bool {
	for _, s := range ValidEventStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Event represents a campus event.
type Event struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description sql.NullString `json:"description,omitempty"`
	EventDate   time.Time      `json:"event_date"`
	Location    sql.NullString `json:"location,omitempty"`
	ImageURL    sql.NullString `json:"image_url,omitempty"`
	AuthorID    sql.NullInt64  `json:"author_id,omitempty"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// IsUpcoming returns true if the event is still upcoming.
func (e *Event) IsUpcoming() bool {
	return e.Status == EventStatusUpcoming
}

// EventWithRelations is an event denormalized with its author and tags.
type EventWithRelations struct {
	Event
	Author *Author `json:"author,omitempty"`
	Tags   []Tag   `json:"tags,omitempty"`
}
