// Package db is the job persistence layer: a pure-Go SQLite store behind
// database/sql, migrated with goose.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure Go SQLite driver (no CGO)

	"github.com/tycoonteritory/AutoCut/internal/db/migrations"
	"github.com/tycoonteritory/AutoCut/internal/logging"
)

// NewSQLite opens (creating if needed) the SQLite database at path, runs
// pending migrations, and returns a Store.
//
// SQLite serializes writers at the file level, so the connection pool is
// pinned to one connection: concurrent job writes queue on the Go side
// rather than fighting SQLITE_BUSY.
func NewSQLite(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrations.Run(conn); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logging.Infof("sqlite database ready at %s", path)
	return NewStore(conn), nil
}
