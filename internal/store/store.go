// Package store provides database access for users, articles, events, tags
// and the audit log. Queries follow a single contract: context first, typed
// params structs for multi-field writes, sql.ErrNoRows signalling not-found.
package store

import (
	"context"
	"database/sql"
)

// DBTX is the subset of *sql.DB / *sql.Tx the queries need.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds a database handle and exposes all query methods.
type Queries struct {
	db DBTX
}

// New creates a Queries bound to the given database handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}
