// Package slamdb persists filter runs to SQLite for post-processing:
// the run parameters, the per-event state history, and the final
// landmark estimates. Schema versioning is handled by golang-migrate
// over the migrations directory at the repository root.
package slamdb

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the run database connection.
type DB struct {
	*sql.DB
}

// Open opens (and creates if missing) the run database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows one writer; the run pipeline is sequential anyway.
	db.SetMaxOpenConns(1)
	return &DB{db}, nil
}
