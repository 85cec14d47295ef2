// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Article statuses
const (
	ArticleStatusDraft     = "draft"
	ArticleStatusPublished = "published"
)

// Article represents a published or draft article.
type Article struct {
	ID        int64          `json:"id"`
	Title     string         `json:"title"`
	Slug      string         `json:"slug"`
	Content   sql.NullString `json:"content,omitempty"`
	ImageURL  sql.NullString `json:"image_url,omitempty"`
	AuthorID  sql.NullInt64  `json:"author_id,omitempty"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// IsPublished returns true if the article is published.
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}

// Author holds the subset of user fields joined onto public content.
type Author struct {
	ID        int64          `json:"id"`
	FullName  string         `json:"full_name"`
	AvatarURL sql.NullString `json:"avatar_url,omitempty"`
}

// ArticleWithRelations is an article denormalized with its author and tags.
type ArticleWithRelations struct {
	Article
	Author *Author `json:"author,omitempty"`
	Tags   []Tag   `json:"tags,omitempty"`
}
