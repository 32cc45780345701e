package db

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const migrationsSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	engine      TEXT NOT NULL,
	title       TEXT,
	url         TEXT,
	text        TEXT NOT NULL,
	token_count INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS tokens (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	surface     TEXT NOT NULL,
	raw         TEXT NOT NULL,
	UNIQUE(document_id, position)
);
CREATE INDEX IF NOT EXISTS idx_tokens_surface ON tokens(surface);
`

// InitDB runs migrations on the given DB connection.
func InitDB(db *sql.DB) error {
	stmts := strings.Split(migrationsSQL, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
