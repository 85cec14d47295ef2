package store

import (
	"context"
	"strings"

	"campuscms/internal/model"
)

func (q *Queries) queryTags(ctx context.Context, query string, args ...any) ([]model.Tag, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// CreateTag inserts a tag and returns the created row.
// Names are unique; a duplicate insert fails with a constraint error.
func (q *Queries) CreateTag(ctx context.Context, name string) (model.Tag, error) {
	var t model.Tag
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO tags (name) VALUES (?) RETURNING id, name`, name).Scan(&t.ID, &t.Name)
	return t, err
}

// GetTagByName fetches a tag by exact name match.
func (q *Queries) GetTagByName(ctx context.Context, name string) (model.Tag, error) {
	var t model.Tag
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name FROM tags WHERE name = ?`, name).Scan(&t.ID, &t.Name)
	return t, err
}

// DeleteTag removes a tag; join rows cascade.
func (q *Queries) DeleteTag(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	return err
}

// ListAllTags returns every tag ordered by name.
func (q *Queries) ListAllTags(ctx context.Context) ([]model.Tag, error) {
	return q.queryTags(ctx, `SELECT id, name FROM tags ORDER BY name`)
}

// ListArticleTags returns the distinct tags referenced by any published
// article. Tags on drafts only are excluded so public tag links never point
// at empty pages.
func (q *Queries) ListArticleTags(ctx context.Context) ([]model.Tag, error) {
	return q.queryTags(ctx, `
		SELECT DISTINCT t.id, t.name
		FROM tags t
		INNER JOIN article_tags at ON at.tag_id = t.id
		INNER JOIN articles a ON a.id = at.article_id
		WHERE a.status = ?
		ORDER BY t.name`, model.ArticleStatusPublished)
}

// ListEventTags returns the distinct tags referenced by any event.
func (q *Queries) ListEventTags(ctx context.Context) ([]model.Tag, error) {
	return q.queryTags(ctx, `
		SELECT DISTINCT t.id, t.name
		FROM tags t
		INNER JOIN event_tags et ON et.tag_id = t.id
		ORDER BY t.name`)
}

// ListTagsForArticle returns the tags attached to one article.
func (q *Queries) ListTagsForArticle(ctx context.Context, articleID int64) ([]model.Tag, error) {
	return q.queryTags(ctx, `
		SELECT t.id, t.name
		FROM tags t
		INNER JOIN article_tags at ON at.tag_id = t.id
		WHERE at.article_id = ?
		ORDER BY t.name`, articleID)
}

// ListTagsForEvent returns the tags attached to one event.
func (q *Queries) ListTagsForEvent(ctx context.Context, eventID int64) ([]model.Tag, error) {
	return q.queryTags(ctx, `
		SELECT t.id, t.name
		FROM tags t
		INNER JOIN event_tags et ON et.tag_id = t.id
		WHERE et.event_id = ?
		ORDER BY t.name`, eventID)
}

// tagIDRows is a helper for loading tags keyed by owning content id.
func (q *Queries) queryTagsByOwner(ctx context.Context, query string, ids []int64) (map[int64][]model.Tag, error) {
	if len(ids) == 0 {
		return map[int64][]model.Tag{}, nil
	}

	args := make([]any, len(ids))
	placeholders := make([]string, len(ids))
	for i, id := range ids {
		args[i] = id
		placeholders[i] = "?"
	}

	rows, err := q.db.QueryContext(ctx, strings.Replace(query, "/*IDS*/", strings.Join(placeholders, ","), 1), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]model.Tag)
	for rows.Next() {
		var ownerID int64
		var t model.Tag
		if err := rows.Scan(&ownerID, &t.ID, &t.Name); err != nil {
			return nil, err
		}
		result[ownerID] = append(result[ownerID], t)
	}
	return result, rows.Err()
}

// ListTagsForArticles returns tags for many articles, keyed by article id.
func (q *Queries) ListTagsForArticles(ctx context.Context, articleIDs []int64) (map[int64][]model.Tag, error) {
	return q.queryTagsByOwner(ctx, `
		SELECT at.article_id, t.id, t.name
		FROM tags t
		INNER JOIN article_tags at ON at.tag_id = t.id
		WHERE at.article_id IN (/*IDS*/)
		ORDER BY t.name`, articleIDs)
}

// ListTagsForEvents returns tags for many events, keyed by event id.
func (q *Queries) ListTagsForEvents(ctx context.Context, eventIDs []int64) (map[int64][]model.Tag, error) {
	return q.queryTagsByOwner(ctx, `
		SELECT et.event_id, t.id, t.name
		FROM tags t
		INNER JOIN event_tags et ON et.tag_id = t.id
		WHERE et.event_id IN (/*IDS*/)
		ORDER BY t.name`, eventIDs)
}

// ListTagIDsForArticle returns the ids of tags attached to an article.
func (q *Queries) ListTagIDsForArticle(ctx context.Context, articleID int64) ([]int64, error) {
	return q.queryIDs(ctx, `SELECT tag_id FROM article_tags WHERE article_id = ?`, articleID)
}

// ListTagIDsForEvent returns the ids of tags attached to an event.
func (q *Queries) ListTagIDsForEvent(ctx context.Context, eventID int64) ([]int64, error) {
	return q.queryIDs(ctx, `SELECT tag_id FROM event_tags WHERE event_id = ?`, eventID)
}

func (q *Queries) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReplaceArticleTags fully replaces the tag set of an article: every existing
// join row is deleted, then one row per selected tag is inserted. Run inside
// a transaction together with the article write.
func (q *Queries) ReplaceArticleTags(ctx context.Context, articleID int64, tagIDs []int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM article_tags WHERE article_id = ?`, articleID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO article_tags (article_id, tag_id) VALUES (?, ?)`, articleID, tagID); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceEventTags fully replaces the tag set of an event.
func (q *Queries) ReplaceEventTags(ctx context.Context, eventID int64, tagIDs []int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM event_tags WHERE event_id = ?`, eventID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO event_tags (event_id, tag_id) VALUES (?, ?)`, eventID, tagID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteOrphanedArticleTags removes join rows whose article or tag no longer
// exists. Returns the number of rows removed.
func (q *Queries) DeleteOrphanedArticleTags(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		DELETE FROM article_tags
		WHERE article_id NOT IN (SELECT id FROM articles)
		   OR tag_id NOT IN (SELECT id FROM tags)`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteOrphanedEventTags removes join rows whose event or tag no longer exists.
func (q *Queries) DeleteOrphanedEventTags(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		DELETE FROM event_tags
		WHERE event_id NOT IN (SELECT id FROM events)
		   OR tag_id NOT IN (SELECT id FROM tags)`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
