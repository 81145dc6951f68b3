// Package store keeps the local practice history in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/codetutor/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when an attempt id is unknown.
var ErrNotFound = errors.New("attempt not found")

// timeLayout is fixed width so started_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RouteEditor marks an attempt as completed when recorded.
const RouteEditor = "editor"

// Store wraps SQLite access for attempt history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to migrate history: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			task TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			lang TEXT NOT NULL,
			route TEXT NOT NULL DEFAULT '',
			quiz_score INTEGER NOT NULL DEFAULT 0,
			quiz_total INTEGER NOT NULL DEFAULT 0,
			runs INTEGER NOT NULL DEFAULT 0,
			completed INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_started_at ON attempts(started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_lang ON attempts(lang);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// StartAttempt inserts a new attempt. Missing id and start time are filled in.
func (s *Store) StartAttempt(ctx context.Context, attempt model.Attempt) (model.Attempt, error) {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.StartedAt.IsZero() {
		attempt.StartedAt = s.now()
	}
	attempt.StartedAt = attempt.StartedAt.UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (id, started_at, task, difficulty, lang, route, quiz_score, quiz_total, runs, completed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.ID,
		attempt.StartedAt.Format(timeLayout),
		attempt.Task,
		string(attempt.Difficulty),
		string(attempt.Language),
		attempt.Route,
		attempt.QuizScore,
		attempt.QuizTotal,
		attempt.Runs,
		boolToInt(attempt.Completed),
	)
	if err != nil {
		return model.Attempt{}, fmt.Errorf("failed to insert attempt: %w", err)
	}
	return attempt, nil
}

// RecordQuiz stores the quiz score of an attempt.
func (s *Store) RecordQuiz(ctx context.Context, id string, score, total int) error {
	return s.update(ctx, id, `UPDATE attempts SET quiz_score = ?, quiz_total = ? WHERE id = ?`, score, total, id)
}

// RecordRoute appends a screen to the route taken. Reaching the editor completes the attempt.
func (s *Store) RecordRoute(ctx context.Context, id, route string) error {
	return s.update(ctx, id,
		`UPDATE attempts
		 SET route = CASE WHEN route = '' THEN ? ELSE route || '>' || ? END,
		     completed = CASE WHEN ? = ? THEN 1 ELSE completed END
		 WHERE id = ?`,
		route, route, route, RouteEditor, id)
}

// IncrementRuns counts one code execution.
func (s *Store) IncrementRuns(ctx context.Context, id string) error {
	return s.update(ctx, id, `UPDATE attempts SET runs = runs + 1 WHERE id = ?`, id)
}

func (s *Store) update(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update attempt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update attempt: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ListAttempts returns attempts oldest first. Last keeps only the most recent N.
func (s *Store) ListAttempts(ctx context.Context, filter model.HistoryFilter) ([]model.Attempt, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Language != "" {
		clauses = append(clauses, "lang = ?")
		args = append(args, string(filter.Language))
	}
	query := fmt.Sprintf(`SELECT id, started_at, task, difficulty, lang, route, quiz_score, quiz_total, runs, completed
		FROM attempts
		WHERE %s
		ORDER BY started_at DESC`, strings.Join(clauses, " AND "))
	if filter.Last > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Last)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.Attempt
	for rows.Next() {
		var (
			a          model.Attempt
			startedAt  string
			difficulty string
			lang       string
			completed  int
		)
		if err := rows.Scan(&a.ID, &startedAt, &a.Task, &difficulty, &lang, &a.Route, &a.QuizScore, &a.QuizTotal, &a.Runs, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		parsed, err := time.Parse(timeLayout, startedAt)
		if err != nil {
			parsed, err = time.Parse(time.RFC3339Nano, startedAt)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse attempt time: %w", err)
		}
		a.StartedAt = parsed
		a.Difficulty = model.Difficulty(difficulty)
		a.Language = model.Language(lang)
		a.Completed = completed != 0
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attempts: %w", err)
	}
	for i, j := 0, len(attempts)-1; i < j; i, j = i+1, j-1 {
		attempts[i], attempts[j] = attempts[j], attempts[i]
	}
	return attempts, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
