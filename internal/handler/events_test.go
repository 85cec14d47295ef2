// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"campuscms/internal/model"
	"campuscms/internal/store"
)

func TestEventsCreate(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	h := NewEventsHandler(db, testRenderer(t, sm), sm)
	q := store.New(db)
	ctx := context.Background()

	editor := createTestUser(t, db, "organizer@example.edu", model.RoleEditor, "organizer-password")

	t.Run("Success", func(t *testing.T) {
		r := withUser(formRequest("/dashboard/events", url.Values{
			"title":      {"Graduation Ceremony"},
			"event_date": {"2026-06-15T14:00"},
			"location":   {"Main Hall"},
			"status":     {model.EventStatusUpcoming},
		}), editor)

		rec := serveWithSession(t, sm, h.Create, r)
		assertRedirect(t, rec, "/dashboard/events")

		events, err := q.ListEventsByStatus(ctx, model.EventStatusUpcoming)
		if err != nil {
			t.Fatalf("ListEventsByStatus: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("event count = %d, want 1", len(events))
		}
		want := time.Date(2026, 6, 15, 14, 0, 0, 0, time.Local)
		if !events[0].EventDate.Equal(want) {
			t.Errorf("EventDate = %v, want %v", events[0].EventDate, want)
		}
		if events[0].Location.String != "Main Hall" {
			t.Errorf("Location = %q, want %q", events[0].Location.String, "Main Hall")
		}
	})

	t.Run("DefaultsToUpcoming", func(t *testing.T) {
		r := withUser(formRequest("/dashboard/events", url.Values{
			"title":      {"Untitled Meetup"},
			"event_date": {"2026-07-01T10:00"},
		}), editor)

		rec := serveWithSession(t, sm, h.Create, r)
		assertRedirect(t, rec, "/dashboard/events")
	})

	t.Run("MissingDateRerendersForm", func(t *testing.T) {
		r := withUser(formRequest("/dashboard/events", url.Values{
			"title": {"Dateless Event"},
		}), editor)

		rec := serveWithSession(t, sm, h.Create, r)
		assertStatus(t, rec, http.StatusOK)
		if !strings.Contains(rec.Body.String(), "Event date is required") {
			t.Error("expected date error in the re-rendered form")
		}
	})

	t.Run("MalformedDateRerendersForm", func(t *testing.T) {
		r := withUser(formRequest("/dashboard/events", url.Values{
			"title":      {"Bad Date Event"},
			"event_date": {"next tuesday"},
		}), editor)

		rec := serveWithSession(t, sm, h.Create, r)
		assertStatus(t, rec, http.StatusOK)
		if !strings.Contains(rec.Body.String(), "Invalid date format") {
			t.Error("expected format error in the re-rendered form")
		}
	})

	t.Run("InvalidStatusRejected", func(t *testing.T) {
		r := withUser(formRequest("/dashboard/events", url.Values{
			"title":      {"Odd Status Event"},
			"event_date": {"2026-07-01T10:00"},
			"status":     {"postponed"},
		}), editor)

		rec := serveWithSession(t, sm, h.Create, r)
		assertStatus(t, rec, http.StatusOK)
		if !strings.Contains(rec.Body.String(), "Invalid status") {
			t.Error("expected status error in the re-rendered form")
		}
	})
}

func TestEventsUpdate(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	h := NewEventsHandler(db, testRenderer(t, sm), sm)
	q := store.New(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.edu", model.RoleEditor, "owner-password")
	other := createTestUser(t, db, "other@example.edu", model.RoleEditor, "other-password")

	now := time.Now()
	event, err := q.CreateEvent(ctx, store.CreateEventParams{
		Title:     "Career Fair",
		EventDate: time.Date(2026, 10, 1, 9, 0, 0, 0, time.Local),
		AuthorID:  sql.NullInt64{Int64: owner.ID, Valid: true},
		Status:    model.EventStatusUpcoming,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	idStr := fmt.Sprint(event.ID)

	t.Run("OwnerCancelsEvent", func(t *testing.T) {
		r := withURLParam(withUser(formRequest("/dashboard/events/"+idStr, url.Values{
			"title":      {"Career Fair"},
			"event_date": {"2026-10-01T09:00"},
			"status":     {model.EventStatusCanceled},
		}), owner), "id", idStr)

		rec := serveWithSession(t, sm, h.Update, r)
		assertRedirect(t, rec, "/dashboard/events")

		row, err := q.GetEventByID(ctx, event.ID)
		if err != nil {
			t.Fatalf("GetEventByID: %v", err)
		}
		if row.Status != model.EventStatusCanceled {
			t.Errorf("Status = %q, want canceled", row.Status)
		}
	})

	t.Run("NonOwnerForbidden", func(t *testing.T) {
		r := withURLParam(withUser(formRequest("/dashboard/events/"+idStr, url.Values{
			"title":      {"Hijacked Fair"},
			"event_date": {"2026-10-01T09:00"},
		}), other), "id", idStr)

		rec := serveWithSession(t, sm, h.Update, r)
		assertStatus(t, rec, http.StatusForbidden)
	})

	t.Run("ReplacesTags", func(t *testing.T) {
		tag, err := q.CreateTag(ctx, "careers")
		if err != nil {
			t.Fatalf("CreateTag: %v", err)
		}

		r := withURLParam(withUser(formRequest("/dashboard/events/"+idStr, url.Values{
			"title":      {"Career Fair"},
			"event_date": {"2026-10-01T09:00"},
			"status":     {model.EventStatusUpcoming},
			"tags":       {fmt.Sprint(tag.ID)},
		}), owner), "id", idStr)

		rec := serveWithSession(t, sm, h.Update, r)
		assertRedirect(t, rec, "/dashboard/events")

		ids, err := q.ListTagIDsForEvent(ctx, event.ID)
		if err != nil {
			t.Fatalf("ListTagIDsForEvent: %v", err)
		}
		if len(ids) != 1 || ids[0] != tag.ID {
			t.Errorf("tag IDs = %v, want [%d]", ids, tag.ID)
		}
	})
}

func TestEventsDelete(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	h := NewEventsHandler(db, testRenderer(t, sm), sm)
	q := store.New(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.edu", model.RoleEditor, "owner-password")

	now := time.Now()
	event, err := q.CreateEvent(ctx, store.CreateEventParams{
		Title:     "Doomed Event",
		EventDate: now.Add(48 * time.Hour),
		AuthorID:  sql.NullInt64{Int64: owner.ID, Valid: true},
		Status:    model.EventStatusUpcoming,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	idStr := fmt.Sprint(event.ID)

	r := withURLParam(withUser(formRequest("/dashboard/events/"+idStr+"/delete", nil), owner), "id", idStr)
	rec := serveWithSession(t, sm, h.Delete, r)
	assertRedirect(t, rec, "/dashboard/events")

	if _, err := q.GetEventByID(ctx, event.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("event should be gone, got err=%v", err)
	}
}

func TestParseEventForm(t *testing.T) {
	tests := []struct {
		name     string
		form     url.Values
		wantErrs []string
	}{
		{
			name: "valid",
			form: url.Values{
				"title":      {"Test"},
				"event_date": {"2026-01-02T15:04"},
			},
			wantErrs: nil,
		},
		{
			name:     "missing everything",
			form:     url.Values{},
			wantErrs: []string{"title", "event_date"},
		},
		{
			name: "date only, seconds not accepted",
			form: url.Values{
				"title":      {"Test"},
				"event_date": {"2026-01-02T15:04:05"},
			},
			wantErrs: []string{"event_date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := formRequest("/dashboard/events", tt.form)
			if err := r.ParseForm(); err != nil {
				t.Fatalf("ParseForm: %v", err)
			}

			f := parseEventForm(r, model.EventStatusUpcoming)
			if len(f.errs) != len(tt.wantErrs) {
				t.Fatalf("errs = %v, want keys %v", f.errs, tt.wantErrs)
			}
			for _, key := range tt.wantErrs {
				if _, ok := f.errs[key]; !ok {
					t.Errorf("missing expected error for %q in %v", key, f.errs)
				}
			}
		})
	}
}
