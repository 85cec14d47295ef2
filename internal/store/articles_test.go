package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"campuscms/internal/model"
)

func TestListPublishedArticles_FiltersDrafts(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	q := New(db)
	ctx := context.Background()

	user := createTestUser(t, q, "author@example.com")
	createTestArticle(t, q, "published-one", model.ArticleStatusPublished, user.ID)
	createTestArticle(t, q, "draft-one", model.ArticleStatusDraft, user.ID)
	createTestArticle(t, q, "published-two", model.ArticleStatusPublished, user.ID)

	articles, err := q.ListPublishedArticles(ctx)
	if err != nil {
		t.Fatalf("ListPublishedArticles: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("len(articles) = %d, want 2", len(articles))
	}
	for _, a := range articles {
		if a.Status != model.ArticleStatusPublished {
			t.Errorf("article %q has status %q, want published", a.Slug, a.Status)
		}
	}
}

func TestGetArticleBySlug(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	q := New(db)
	ctx := context.Background()

	user := createTestUser(t, q, "author@example.com")
	created := createTestArticle(t, q, "my-article", model.ArticleStatusPublished, user.ID)

	row, err := q.GetArticleBySlug(ctx, "my-article")
	if err != nil {
		t.Fatalf("GetArticleBySlug: %v", err)
	}
	if row.ID != created.ID {
		t.Errorf("GetArticleBySlug().ID = %d, want %d", row.ID, created.ID)
	}
	if !row.AuthorFullName.Valid || row.AuthorFullName.String != "Test User" {
		t.Errorf("AuthorFullName = %+v, want Test User", row.AuthorFullName)
	}

	_, err = q.GetArticleBySlug(ctx, "no-such-slug")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("GetArticleBySlug for missing slug = %v, want sql.ErrNoRows", err)
	}
}

func TestArticleSlugExists(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	q := New(db)
	ctx := context.Background()

	user := createTestUser(t, q, "author@example.com")
	article := createTestArticle(t, q, "taken-slug", model.ArticleStatusDraft, user.ID)

	exists, err := q.ArticleSlugExists(ctx, "taken-slug", 0)
	if err != nil {
		t.Fatalf("ArticleSlugExists: %v", err)
	}
	if !exists {
		t.Error("ArticleSlugExists(taken-slug, 0) = false, want true")
	}

	// Excluding the owning article itself reports the slug as free,
	// so edits that keep the slug do not trip the uniqueness check.
	exists, err = q.ArticleSlugExists(ctx, "taken-slug", article.ID)
	if err != nil {
		t.Fatalf("ArticleSlugExists: %v", err)
	}
	if exists {
		t.Error("ArticleSlugExists(taken-slug, ownID) = true, want false")
	}

	exists, err = q.ArticleSlugExists(ctx, "free-slug", 0)
	if err != nil {
		t.Fatalf("ArticleSlugExists: %v", err)
	}
	if exists {
		t.Error("ArticleSlugExists(free-slug, 0) = true, want false")
	}
}

func TestUpdateArticle(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	q := New(db)
	ctx := context.Background()

	user := createTestUser(t, q, "author@example.com")
	article := createTestArticle(t, q, "before-update", model.ArticleStatusDraft, user.ID)

	err := q.UpdateArticle(ctx, UpdateArticleParams{
		ID:        article.ID,
		Title:     "Updated Title",
		Slug:      "after-update",
		Content:   sql.NullString{String: "new content", Valid: true},
		Status:    model.ArticleStatusPublished,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("UpdateArticle: %v", err)
	}

	row, err := q.GetArticleByID(ctx, article.ID)
	if err != nil {
		t.Fatalf("GetArticleByID: %v", err)
	}
	if row.Title != "Updated Title" {
		t.Errorf("Title = %q, want %q", row.Title, "Updated Title")
	}
	if row.Slug != "after-update" {
		t.Errorf("Slug = %q, want %q", row.Slug, "after-update")
	}
	if row.Status != model.ArticleStatusPublished {
		t.Errorf("Status = %q, want published", row.Status)
	}
}

func TestDeleteArticle_CascadesTagJoins(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	q := New(db)
	ctx := context.Background()

	user := createTestUser(t, q, "author@example.com")
	article := createTestArticle(t, q, "doomed", model.ArticleStatusPublished, user.ID)

	tag, err := q.CreateTag(ctx, "news")
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := q.ReplaceArticleTags(ctx, article.ID, []int64{tag.ID}); err != nil {
		t.Fatalf("ReplaceArticleTags: %v", err)
	}

	if err := q.DeleteArticle(ctx, article.ID); err != nil {
		t.Fatalf("DeleteArticle: %v", err)
	}

	var joins int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM article_tags WHERE article_id = ?`, article.ID).Scan(&joins); err != nil {
		t.Fatalf("counting join rows: %v", err)
	}
	if joins != 0 {
		t.Errorf("join rows after delete = %d, want 0", joins)
	}

	// The tag itself survives
	if _, err := q.GetTagByName(ctx, "news"); err != nil {
		t.Errorf("tag removed with the article: %v", err)
	}
}

func TestCountArticlesAndPagination(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	q := New(db)
	ctx := context.Background()

	user := createTestUser(t, q, "author@example.com")
	for _, slug := range []string{"a-1", "a-2", "a-3"} {
		createTestArticle(t, q, slug, model.ArticleStatusDraft, user.ID)
	}

	count, err := q.CountArticles(ctx)
	if err != nil {
		t.Fatalf("CountArticles: %v", err)
	}
	if count != 3 {
		t.Errorf("CountArticles = %d, want 3", count)
	}

	page, err := q.ListArticles(ctx, ListArticlesParams{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("len(page) = %d, want 2", len(page))
	}

	rest, err := q.ListArticles(ctx, ListArticlesParams{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if len(rest) != 1 {
		t.Errorf("len(rest) = %d, want 1", len(rest))
	}
}
