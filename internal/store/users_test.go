package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"
)

func TestCreateUserAndGet(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	q := New(db)
	ctx := context.Background()

	user := createTestUser(t, q, "alice@example.com")
	if user.ID == 0 {
		t.Fatal("CreateUser returned zero ID")
	}

	byID, err := q.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if byID.Email != "alice@example.com" {
		t.Errorf("GetUserByID().Email = %q, want %q", byID.Email, "alice@example.com")
	}

	byEmail, err := q.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("GetUserByEmail().ID = %d, want %d", byEmail.ID, user.ID)
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	q := New(db)

	_, err := q.GetUserByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("GetUserByEmail for missing user = %v, want sql.ErrNoRows", err)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	q := New(db)

	createTestUser(t, q, "dupe@example.com")

	now := time.Now()
	_, err := q.CreateUser(context.Background(), CreateUserParams{
		Email:        "dupe@example.com",
		PasswordHash: "hash",
		FullName:     "Second User",
		Role:         "member",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err == nil {
		t.Fatal("Expected unique constraint error for duplicate email")
	}
}

func TestUpdateLastLogin(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	q := New(db)
	ctx := context.Background()

	user := createTestUser(t, q, "login@example.com")
	if user.LastLoginAt.Valid {
		t.Fatal("New user should have no last login time")
	}

	at := time.Now()
	if err := q.UpdateLastLogin(ctx, user.ID, at); err != nil {
		t.Fatalf("UpdateLastLogin: %v", err)
	}

	updated, err := q.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if !updated.LastLoginAt.Valid {
		t.Fatal("LastLoginAt not set after UpdateLastLogin")
	}
}
