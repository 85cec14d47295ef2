// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/robfig/cron/v3"

	"campuscms/internal/store"
)

// Scheduler handles scheduled maintenance like tag join reconciliation.
type Scheduler struct {
	db       *sql.DB
	cron     *cron.Cron
	logger   *slog.Logger
	schedule string
}

// New creates a new scheduler instance. The schedule is a standard
// five-field cron expression.
func New(db *sql.DB, logger *slog.Logger, schedule string) *Scheduler {
	return &Scheduler{
		db:       db,
		cron:     cron.New(),
		logger:   logger,
		schedule: schedule,
	}
}

// Start registers the reconciliation job and begins the scheduler.
// An empty schedule disables the job entirely.
func (s *Scheduler) Start() error {
	if s.schedule == "" {
		s.logger.Info("scheduler disabled: no schedule configured")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.reconcileTagJoins(); err != nil {
			s.logger.Error("tag reconciliation failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "schedule", s.schedule, "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// reconcileTagJoins deletes join rows whose article, event, or tag no longer
// exists. Foreign keys normally prevent these, but rows written before the
// pragma was enabled, or by external tooling, can linger.
func (s *Scheduler) reconcileTagJoins() error {
	ctx := context.Background()
	queries := store.New(s.db)

	articleRows, err := queries.DeleteOrphanedArticleTags(ctx)
	if err != nil {
		return err
	}

	eventRows, err := queries.DeleteOrphanedEventTags(ctx)
	if err != nil {
		return err
	}

	if articleRows > 0 || eventRows > 0 {
		s.logger.Info("removed orphaned tag joins",
			"article_rows", articleRows,
			"event_rows", eventRows,
		)
	}

	return nil
}
