// Package analytics persists routing decisions to a local SQLite database.
// Only a hash and the length of each prompt are stored, never the text.
package analytics

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/zen-systems/helmsman/pkg/router"
)

// ErrClosed is returned when the store is used after Close.
var ErrClosed = errors.New("analytics: store closed")

const createTableSQL = `
CREATE TABLE IF NOT EXISTS decisions (
    id               TEXT PRIMARY KEY,
    prompt_sha256    TEXT NOT NULL,
    prompt_len       INTEGER NOT NULL,
    task_type        TEXT NOT NULL DEFAULT '',
    stakes           TEXT NOT NULL DEFAULT '',
    confidence       TEXT NOT NULL,
    model            TEXT NOT NULL,
    reason           TEXT NOT NULL DEFAULT '',
    expected_success INTEGER NOT NULL DEFAULT 0,
    strategy         TEXT NOT NULL,
    created_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decisions_created_at ON decisions(created_at);
`

// Record is one persisted routing decision.
type Record struct {
	ID              string    `json:"id"`
	PromptSHA256    string    `json:"prompt_sha256"`
	PromptLen       int       `json:"prompt_len"`
	TaskType        string    `json:"task_type,omitempty"`
	Stakes          string    `json:"stakes,omitempty"`
	Confidence      string    `json:"confidence"`
	Model           string    `json:"model"`
	Reason          string    `json:"reason,omitempty"`
	ExpectedSuccess int       `json:"expected_success,omitempty"`
	Strategy        string    `json:"strategy"`
	CreatedAt       time.Time `json:"created_at"`
}

// Summary aggregates the stored decisions.
type Summary struct {
	Total    int            `json:"total"`
	ByTask   map[string]int `json:"by_task"`
	ByStakes map[string]int `json:"by_stakes"`
	ByModel  map[string]int `json:"by_model"`
}

// Store is a SQLite-backed decision log.
type Store struct {
	db *sql.DB

	mu     sync.Mutex
	closed bool
}

// Open opens (or creates) the decision database at dbPath and ensures the
// schema exists.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Single writer; the sqlite driver serializes anyway but this keeps
	// pool behavior predictable.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// HashPrompt returns the hex SHA-256 of a prompt.
func HashPrompt(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// FromDecision builds a record from a routing decision. The prompt itself is
// reduced to its hash and length before it reaches the store.
func FromDecision(prompt string, d router.Decision) Record {
	return Record{
		PromptSHA256:    HashPrompt(prompt),
		PromptLen:       len(prompt),
		TaskType:        string(d.TaskType),
		Stakes:          string(d.Stakes),
		Confidence:      string(d.Confidence),
		Model:           d.Model,
		Reason:          d.Reason,
		ExpectedSuccess: d.ExpectedSuccess,
		Strategy:        d.Strategy,
	}
}

// Insert writes a record. A missing ID or timestamp is filled in.
func (s *Store) Insert(ctx context.Context, rec Record) error {
	if err := s.ok(); err != nil {
		return err
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decisions
			(id, prompt_sha256, prompt_len, task_type, stakes, confidence, model, reason, expected_success, strategy, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.PromptSHA256,
		rec.PromptLen,
		rec.TaskType,
		rec.Stakes,
		rec.Confidence,
		rec.Model,
		rec.Reason,
		rec.ExpectedSuccess,
		rec.Strategy,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

// Recent returns up to n records, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Record, error) {
	if err := s.ok(); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, prompt_sha256, prompt_len, task_type, stakes, confidence, model, reason, expected_success, strategy, created_at
		FROM decisions ORDER BY created_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var createdAt string
		if err := rows.Scan(
			&rec.ID, &rec.PromptSHA256, &rec.PromptLen,
			&rec.TaskType, &rec.Stakes, &rec.Confidence,
			&rec.Model, &rec.Reason, &rec.ExpectedSuccess,
			&rec.Strategy, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Summarize aggregates counts by task type, stakes and model.
func (s *Store) Summarize(ctx context.Context) (*Summary, error) {
	if err := s.ok(); err != nil {
		return nil, err
	}

	summary := &Summary{
		ByTask:   make(map[string]int),
		ByStakes: make(map[string]int),
		ByModel:  make(map[string]int),
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM decisions`).Scan(&summary.Total); err != nil {
		return nil, fmt.Errorf("count decisions: %w", err)
	}

	for _, q := range []struct {
		column string
		into   map[string]int
	}{
		{"task_type", summary.ByTask},
		{"stakes", summary.ByStakes},
		{"model", summary.ByModel},
	} {
		rows, err := s.db.QueryContext(ctx,
			fmt.Sprintf(`SELECT %s, COUNT(*) FROM decisions WHERE %s != '' GROUP BY %s`, q.column, q.column, q.column))
		if err != nil {
			return nil, fmt.Errorf("summarize by %s: %w", q.column, err)
		}
		for rows.Next() {
			var key string
			var count int
			if err := rows.Scan(&key, &count); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan %s summary: %w", q.column, err)
			}
			q.into[key] = count
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return summary, nil
}

// Close releases the database handle. Further calls return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) ok() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}
