package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// Open opens (creating it if needed) the sqlite database at path and applies
// the schema. ":memory:" opens a database that lives as long as its single
// connection.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0o755)
		if err != nil {
			return nil, fmt.Errorf("mkdir: %w", err)
		}
	}

	sqlite, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		sqlite.SetMaxOpenConns(1)
	}

	for _, p := range pragmas {
		_, err = sqlite.Exec(p)
		if err != nil {
			sqlite.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	_, err = sqlite.Exec(Schema)
	if err != nil {
		sqlite.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return sqlite, nil
}
