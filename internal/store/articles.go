package store

import (
	"context"
	"database/sql"
	"time"

	"campuscms/internal/model"
)

const articleColumns = `a.id, a.title, a.slug, a.content, a.image_url, a.author_id, a.status, a.created_at, a.updated_at`

// ArticleWithAuthorRow is an article row joined with its author's public fields.
type ArticleWithAuthorRow struct {
	model.Article
	AuthorFullName  sql.NullString
	AuthorAvatarURL sql.NullString
}

func scanArticleWithAuthor(scan func(dest ...any) error) (ArticleWithAuthorRow, error) {
	var r ArticleWithAuthorRow
	err := scan(&r.ID, &r.Title, &r.Slug, &r.Content, &r.ImageURL, &r.AuthorID,
		&r.Status, &r.CreatedAt, &r.UpdatedAt, &r.AuthorFullName, &r.AuthorAvatarURL)
	return r, err
}

const articleWithAuthorQuery = `
	SELECT ` + articleColumns + `, u.full_name, u.avatar_url
	FROM articles a
	LEFT JOIN users u ON u.id = a.author_id`

// CreateArticleParams holds the fields for CreateArticle.
type CreateArticleParams struct {
	Title     string
	Slug      string
	Content   sql.NullString
	ImageURL  sql.NullString
	AuthorID  sql.NullInt64
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateArticle inserts a new article and returns the created row.
func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (model.Article, error) {
	var a model.Article
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO articles (title, slug, content, image_url, author_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, title, slug, content, image_url, author_id, status, created_at, updated_at`,
		arg.Title, arg.Slug, arg.Content, arg.ImageURL, arg.AuthorID, arg.Status, arg.CreatedAt, arg.UpdatedAt).
		Scan(&a.ID, &a.Title, &a.Slug, &a.Content, &a.ImageURL, &a.AuthorID, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// UpdateArticleParams holds the fields for UpdateArticle.
// AuthorID is deliberately absent: ownership is fixed at creation time.
type UpdateArticleParams struct {
	ID        int64
	Title     string
	Slug      string
	Content   sql.NullString
	ImageURL  sql.NullString
	Status    string
	UpdatedAt time.Time
}

// UpdateArticle updates an existing article by id.
func (q *Queries) UpdateArticle(ctx context.Context, arg UpdateArticleParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE articles
		SET title = ?, slug = ?, content = ?, image_url = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		arg.Title, arg.Slug, arg.Content, arg.ImageURL, arg.Status, arg.UpdatedAt, arg.ID)
	return err
}

// DeleteArticle removes an article; join rows cascade.
func (q *Queries) DeleteArticle(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	return err
}

// GetArticleByID fetches a single article with its author joined.
func (q *Queries) GetArticleByID(ctx context.Context, id int64) (ArticleWithAuthorRow, error) {
	row := q.db.QueryRowContext(ctx, articleWithAuthorQuery+` WHERE a.id = ?`, id)
	return scanArticleWithAuthor(row.Scan)
}

// GetArticleBySlug fetches a single article by exact slug match with its
// author joined. It does not filter by status: callers must check
// IsPublished before public display.
func (q *Queries) GetArticleBySlug(ctx context.Context, slug string) (ArticleWithAuthorRow, error) {
	row := q.db.QueryRowContext(ctx, articleWithAuthorQuery+` WHERE a.slug = ?`, slug)
	return scanArticleWithAuthor(row.Scan)
}

func (q *Queries) queryArticleRows(ctx context.Context, query string, args ...any) ([]ArticleWithAuthorRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ArticleWithAuthorRow
	for rows.Next() {
		r, err := scanArticleWithAuthor(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// ListPublishedArticles returns all published articles, newest first, with authors.
func (q *Queries) ListPublishedArticles(ctx context.Context) ([]ArticleWithAuthorRow, error) {
	return q.queryArticleRows(ctx, articleWithAuthorQuery+`
		WHERE a.status = ?
		ORDER BY a.created_at DESC`, model.ArticleStatusPublished)
}

// ListArticlesByTagName returns published articles carrying the named tag,
// newest first. An unmatched name yields an empty result, not an error.
func (q *Queries) ListArticlesByTagName(ctx context.Context, name string) ([]ArticleWithAuthorRow, error) {
	return q.queryArticleRows(ctx, articleWithAuthorQuery+`
		INNER JOIN article_tags at ON at.article_id = a.id
		INNER JOIN tags t ON t.id = at.tag_id
		WHERE a.status = ? AND t.name = ?
		ORDER BY a.created_at DESC`, model.ArticleStatusPublished, name)
}

// ListArticlesParams holds pagination for ListArticles.
type ListArticlesParams struct {
	Limit  int64
	Offset int64
}

// ListArticles returns articles of any status for the dashboard, newest first.
func (q *Queries) ListArticles(ctx context.Context, arg ListArticlesParams) ([]ArticleWithAuthorRow, error) {
	return q.queryArticleRows(ctx, articleWithAuthorQuery+`
		ORDER BY a.created_at DESC
		LIMIT ? OFFSET ?`, arg.Limit, arg.Offset)
}

// CountArticles returns the total number of articles.
func (q *Queries) CountArticles(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n)
	return n, err
}

// ArticleSlugExists reports whether any article other than excludeID uses the slug.
// Pass excludeID 0 on create.
func (q *Queries) ArticleSlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE slug = ? AND id != ?`, slug, excludeID).Scan(&n)
	return n > 0, err
}
