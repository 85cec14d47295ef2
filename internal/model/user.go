// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including User, Article, Event and Tag.
package model

import (
	"database/sql"
	"time"
)

// User roles.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleMember = "member"
)

// User represents a CMS user.
type User struct {
	ID           int64          `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"` // Never expose in JSON
	FullName     string         `json:"full_name"`
	Role         string         `json:"role"`
	AvatarURL    sql.NullString `json:"avatar_url,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	LastLoginAt  sql.NullTime   `json:"last_login_at,omitempty"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanEdit reports whether the user may modify a record owned by authorID.
// Admins may edit anything; everyone else only their own records.
func (u *User) CanEdit(authorID sql.NullInt64) bool {
	if u.IsAdmin() {
		return true
	}
	return authorID.Valid && authorID.Int64 == u.ID
}
