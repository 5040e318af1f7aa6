package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Times are stored as unix milliseconds so they order correctly as
// integers. Structured payloads are stored as JSON text.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS quizzes (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		questions TEXT NOT NULL,
		question_count INTEGER NOT NULL,
		is_public INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		sequence INTEGER NOT NULL UNIQUE,
		quiz_id TEXT NOT NULL,
		score INTEGER NOT NULL,
		total INTEGER NOT NULL,
		percentage INTEGER NOT NULL,
		answers TEXT NOT NULL,
		study_mode INTEGER NOT NULL,
		timed INTEGER NOT NULL,
		max_streak INTEGER NOT NULL,
		time_taken_seconds INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS attempts_quiz_id ON attempts (quiz_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS review_cards (
		id TEXT PRIMARY KEY,
		quiz_id TEXT NOT NULL,
		question TEXT NOT NULL,
		stage INTEGER NOT NULL,
		consecutive_hits INTEGER NOT NULL,
		lapses INTEGER NOT NULL,
		graduated INTEGER NOT NULL,
		next_review_at INTEGER NOT NULL,
		last_review_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS review_cards_due ON review_cards (next_review_at)`,
	`CREATE TABLE IF NOT EXISTS progress (
		quiz_id TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		saved_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		sequence INTEGER PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		latency_ms INTEGER NOT NULL,
		success INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
}

// migrate creates every table and index that does not exist yet.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema: %w", err)
		}
	}
	return nil
}
