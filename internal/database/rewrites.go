package database

import (
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/thinkscotty/stylebot/internal/models"
)

// LogRewrite records a finished run. An empty ID is filled with a new ULID.
func (db *DB) LogRewrite(entry models.RewriteLog) error {
	if entry.ID == "" {
		entry.ID = ulid.Make().String()
	}
	_, err := db.conn.Exec(`
		INSERT INTO rewrite_log (id, chat_id, style_source, keyword, example_count, source_chars,
		                         output_chars, provider, model, status, error_kind, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.ChatID, entry.StyleSource, entry.Keyword, entry.ExampleCount,
		entry.SourceChars, entry.OutputChars, entry.Provider, entry.Model,
		string(entry.Status), entry.ErrorKind, entry.DurationMs)
	return err
}

func (db *DB) GetStats() (models.Stats, error) {
	var s models.Stats

	err := db.conn.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'ok' THEN 1 ELSE 0 END), 0),
		       COUNT(DISTINCT chat_id)
		FROM rewrite_log`).Scan(&s.TotalRewrites, &s.SucceededRewrites, &s.DistinctChats)
	if err != nil {
		return s, err
	}
	s.FailedRewrites = s.TotalRewrites - s.SucceededRewrites

	size, _ := db.DatabaseSizeBytes()
	s.DatabaseSizeBytes = size

	return s, nil
}

// RecentRewrites returns the N most recent rewrite log entries.
func (db *DB) RecentRewrites(limit int) ([]models.RewriteLog, error) {
	rows, err := db.conn.Query(`
		SELECT id, chat_id, style_source, keyword, example_count, source_chars, output_chars,
		       provider, model, status, error_kind, duration_ms, created_at
		FROM rewrite_log
		ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.RewriteLog
	for rows.Next() {
		var entry models.RewriteLog
		var status, createdAt string
		if err := rows.Scan(&entry.ID, &entry.ChatID, &entry.StyleSource, &entry.Keyword,
			&entry.ExampleCount, &entry.SourceChars, &entry.OutputChars,
			&entry.Provider, &entry.Model, &status, &entry.ErrorKind,
			&entry.DurationMs, &createdAt); err != nil {
			return nil, err
		}
		entry.Status = models.RewriteStatus(status)
		entry.CreatedAt, _ = parseTime(createdAt)
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

// CleanOldRewriteLogs removes entries older than the given number of days.
func (db *DB) CleanOldRewriteLogs(days int) (int64, error) {
	res, err := db.conn.Exec(`DELETE FROM rewrite_log WHERE created_at < datetime('now', ?)`,
		fmt.Sprintf("-%d days", days))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
