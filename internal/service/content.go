// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"

	"campuscms/internal/model"
	"campuscms/internal/store"
)

// ContentService is the read side of the site: it fetches published articles
// and events and shapes relational join results into denormalized view
// objects (entity + author + flattened tag list).
type ContentService struct {
	queries *store.Queries
}

// NewContentService creates a new ContentService.
func NewContentService(db *sql.DB) *ContentService {
	return &ContentService{queries: store.New(db)}
}

// NewContentServiceFromQueries creates a ContentService over existing queries.
// Useful in tests that share a store handle.
func NewContentServiceFromQueries(q *store.Queries) *ContentService {
	return &ContentService{queries: q}
}

func authorFromRow(id sql.NullInt64, fullName, avatarURL sql.NullString) *model.Author {
	if !id.Valid {
		return nil
	}
	return &model.Author{
		ID:        id.Int64,
		FullName:  fullName.String,
		AvatarURL: avatarURL,
	}
}

func (s *ContentService) shapeArticles(ctx context.Context, rows []store.ArticleWithAuthorRow) ([]model.ArticleWithRelations, error) {
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}

	tagsByID, err := s.queries.ListTagsForArticles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading article tags: %w", err)
	}

	result := make([]model.ArticleWithRelations, 0, len(rows))
	for _, r := range rows {
		result = append(result, model.ArticleWithRelations{
			Article: r.Article,
			Author:  authorFromRow(r.AuthorID, r.AuthorFullName, r.AuthorAvatarURL),
			Tags:    tagsByID[r.ID],
		})
	}
	return result, nil
}

func (s *ContentService) shapeEvents(ctx context.Context, rows []store.EventWithAuthorRow) ([]model.EventWithRelations, error) {
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}

	tagsByID, err := s.queries.ListTagsForEvents(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading event tags: %w", err)
	}

	result := make([]model.EventWithRelations, 0, len(rows))
	for _, r := range rows {
		result = append(result, model.EventWithRelations{
			Event:  r.Event,
			Author: authorFromRow(r.AuthorID, r.AuthorFullName, r.AuthorAvatarURL),
			Tags:   tagsByID[r.ID],
		})
	}
	return result, nil
}

// ListPublishedArticles returns all published articles, newest first, each
// with its author and flattened tag list.
func (s *ContentService) ListPublishedArticles(ctx context.Context) ([]model.ArticleWithRelations, error) {
	rows, err := s.queries.ListPublishedArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing published articles: %w", err)
	}
	return s.shapeArticles(ctx, rows)
}

// GetArticleBySlug fetches a single article by slug with author and tags.
// Returns sql.ErrNoRows when no article matches; it does not filter by
// status, so callers must check IsPublished before public display.
func (s *ContentService) GetArticleBySlug(ctx context.Context, slug string) (model.ArticleWithRelations, error) {
	row, err := s.queries.GetArticleBySlug(ctx, slug)
	if err != nil {
		return model.ArticleWithRelations{}, err
	}

	tags, err := s.queries.ListTagsForArticle(ctx, row.ID)
	if err != nil {
		return model.ArticleWithRelations{}, fmt.Errorf("loading article tags: %w", err)
	}

	return model.ArticleWithRelations{
		Article: row.Article,
		Author:  authorFromRow(row.AuthorID, row.AuthorFullName, row.AuthorAvatarURL),
		Tags:    tags,
	}, nil
}

// ListArticlesByTag returns published articles carrying the named tag.
// A nonexistent tag name yields an empty slice, not an error; callers treat
// an empty result as page-level not-found.
func (s *ContentService) ListArticlesByTag(ctx context.Context, name string) ([]model.ArticleWithRelations, error) {
	rows, err := s.queries.ListArticlesByTagName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("listing articles by tag: %w", err)
	}
	return s.shapeArticles(ctx, rows)
}

// ListEventsByStatus returns events with the given status: event_date
// ascending for every status except done, which lists most recent first.
func (s *ContentService) ListEventsByStatus(ctx context.Context, status string) ([]model.EventWithRelations, error) {
	rows, err := s.queries.ListEventsByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("listing events by status: %w", err)
	}
	return s.shapeEvents(ctx, rows)
}

// UpcomingEvents returns events with status upcoming, soonest first.
func (s *ContentService) UpcomingEvents(ctx context.Context) ([]model.EventWithRelations, error) {
	return s.ListEventsByStatus(ctx, model.EventStatusUpcoming)
}

// GetEventByID fetches a single event with author and tags.
// Returns sql.ErrNoRows when no event matches.
func (s *ContentService) GetEventByID(ctx context.Context, id int64) (model.EventWithRelations, error) {
	row, err := s.queries.GetEventByID(ctx, id)
	if err != nil {
		return model.EventWithRelations{}, err
	}

	tags, err := s.queries.ListTagsForEvent(ctx, row.ID)
	if err != nil {
		return model.EventWithRelations{}, fmt.Errorf("loading event tags: %w", err)
	}

	return model.EventWithRelations{
		Event:  row.Event,
		Author: authorFromRow(row.AuthorID, row.AuthorFullName, row.AuthorAvatarURL),
		Tags:   tags,
	}, nil
}

// ListEventsByTag returns events carrying the named tag, soonest first.
// A nonexistent tag name yields an empty slice, not an error.
func (s *ContentService) ListEventsByTag(ctx context.Context, name string) ([]model.EventWithRelations, error) {
	rows, err := s.queries.ListEventsByTagName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("listing events by tag: %w", err)
	}
	return s.shapeEvents(ctx, rows)
}

// ListArticleTags enumerates the distinct tags referenced by any article.
func (s *ContentService) ListArticleTags(ctx context.Context) ([]model.Tag, error) {
	return s.queries.ListArticleTags(ctx)
}

// ListEventTags enumerates the distinct tags referenced by any event.
func (s *ContentService) ListEventTags(ctx context.Context) ([]model.Tag, error) {
	return s.queries.ListEventTags(ctx)
}

// ListAllTags returns every tag ordered by name.
func (s *ContentService) ListAllTags(ctx context.Context) ([]model.Tag, error) {
	return s.queries.ListAllTags(ctx)
}
