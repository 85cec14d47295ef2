package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"campuscms/internal/model"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "campuscms-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

// createTestUser inserts a user and returns it.
func createTestUser(t *testing.T, q *Queries, email string) model.User {
	t.Helper()

	now := time.Now()
	user, err := q.CreateUser(context.Background(), CreateUserParams{
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
		FullName:     "Test User",
		Role:         model.RoleEditor,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

// createTestArticle inserts an article and returns it.
func createTestArticle(t *testing.T, q *Queries, slug, status string, authorID int64) model.Article {
	t.Helper()

	now := time.Now()
	article, err := q.CreateArticle(context.Background(), CreateArticleParams{
		Title:     "Article " + slug,
		Slug:      slug,
		Content:   sql.NullString{String: "Some **markdown** content", Valid: true},
		AuthorID:  sql.NullInt64{Int64: authorID, Valid: true},
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}
	return article
}

// createTestEvent inserts an event and returns it.
func createTestEvent(t *testing.T, q *Queries, title, status string, date time.Time, authorID int64) model.Event {
	t.Helper()

	now := time.Now()
	event, err := q.CreateEvent(context.Background(), CreateEventParams{
		Title:     title,
		EventDate: date,
		AuthorID:  sql.NullInt64{Int64: authorID, Valid: true},
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	return event
}
