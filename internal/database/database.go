package database

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	conn *sql.DB
	path string
}

func New(path string) (*DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(2)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// DatabaseSizeBytes returns the file size of the database.
func (db *DB) DatabaseSizeBytes() (int64, error) {
	info, err := os.Stat(db.path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func parseTime(s string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04:05", s)
}

func (db *DB) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS rewrite_log (
			id            TEXT    PRIMARY KEY,
			chat_id       INTEGER NOT NULL,
			style_source  TEXT    NOT NULL DEFAULT '',
			keyword       TEXT    NOT NULL DEFAULT '',
			example_count INTEGER NOT NULL DEFAULT 0,
			source_chars  INTEGER NOT NULL DEFAULT 0,
			output_chars  INTEGER NOT NULL DEFAULT 0,
			provider      TEXT    NOT NULL DEFAULT '',
			model         TEXT    NOT NULL DEFAULT '',
			status        TEXT    NOT NULL,
			error_kind    TEXT    NOT NULL DEFAULT '',
			duration_ms   INTEGER NOT NULL DEFAULT 0,
			created_at    TEXT    NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rewrite_log_created_at ON rewrite_log(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w\nstatement: %s", err, stmt)
		}
	}
	return nil
}
