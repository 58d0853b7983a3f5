// Package history implements SQLite persistence for terminal task outcomes.
//
// The live task table stays in memory and is swept aggressively; the
// archive is the durable record of what the service processed. Only
// completed and failed tasks land here, written once when the task
// reaches its terminal state.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aizithy/audio-extractor-cloud/internal/shared"
	"github.com/aizithy/audio-extractor-cloud/internal/tasks"
)

const schema = `
	CREATE TABLE IF NOT EXISTS outcomes (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		status TEXT NOT NULL,
		title TEXT,
		duration INTEGER,
		audio_file TEXT,
		video_file TEXT,
		error_detail TEXT,
		created_at TIMESTAMP NOT NULL,
		recorded_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_outcomes_status ON outcomes (status);
`

// Outcome is one archived terminal task.
type Outcome struct {
	ID          string
	URL         string
	Status      string
	Title       string
	Duration    int
	AudioFile   string
	VideoFile   string
	ErrorDetail string
	CreatedAt   time.Time
	RecordedAt  time.Time
}

// Archive persists terminal task outcomes to SQLite.
type Archive struct {
	db *sql.DB
}

// Open creates an Archive backed by the database at path, applying the
// schema if needed. The path can be ":memory:".
func Open(path string) (*Archive, error) {
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Record inserts one terminal task. Re-recording the same task id
// overwrites the earlier row, so retried archival stays idempotent.
func (a *Archive) Record(t *tasks.Task) error {
	if !t.Status.Terminal() {
		return fmt.Errorf("%w: only terminal tasks are archived", shared.ErrInvalidArgument)
	}

	query := `
		INSERT OR REPLACE INTO outcomes (
			id, url, status, title, duration, audio_file, video_file,
			error_detail, created_at, recorded_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := a.db.Exec(query,
		t.ID,
		t.URL,
		string(t.Status),
		t.Title,
		t.Duration,
		t.AudioFile,
		t.VideoFile,
		t.ErrorDetail,
		t.CreatedAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert outcome: %w", err)
	}

	return nil
}

// Recent returns up to limit outcomes, newest first.
func (a *Archive) Recent(limit int) ([]Outcome, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, url, status, title, duration, audio_file, video_file,
			error_detail, created_at, recorded_at
		FROM outcomes
		ORDER BY recorded_at DESC
		LIMIT ?
	`

	rows, err := a.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []Outcome
	for rows.Next() {
		var o Outcome
		err := rows.Scan(
			&o.ID, &o.URL, &o.Status, &o.Title, &o.Duration,
			&o.AudioFile, &o.VideoFile, &o.ErrorDetail,
			&o.CreatedAt, &o.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}

	return outcomes, rows.Err()
}

// Counts returns the number of completed and failed outcomes on record.
func (a *Archive) Counts() (completed, failed int, err error) {
	query := `SELECT status, COUNT(*) FROM outcomes GROUP BY status`

	rows, err := a.db.Query(query)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return 0, 0, fmt.Errorf("failed to scan count: %w", err)
		}
		switch tasks.Status(status) {
		case tasks.StatusCompleted:
			completed = n
		case tasks.StatusFailed:
			failed = n
		}
	}

	return completed, failed, rows.Err()
}
