package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codemend/internal/protect"
)

// SQLiteStore persists session baselines in a local SQLite database, so a
// guard survives process restarts within the same editing conversation.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		baseline JSON,
		original_snippet TEXT,
		updated_at INTEGER
	);`)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (*protect.Registry, bool, error) {
	var (
		baseline []byte
		original string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT baseline, original_snippet FROM sessions WHERE id = ?", sessionID,
	).Scan(&baseline, &original)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query session %s: %w", sessionID, err)
	}

	if len(baseline) == 0 {
		return protect.NewRegistry(), true, nil
	}
	var ids protect.Identifiers
	if err := json.Unmarshal(baseline, &ids); err != nil {
		return nil, false, fmt.Errorf("failed to decode baseline for session %s: %w", sessionID, err)
	}
	return protect.NewRegistryFromBaseline(ids, original), true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, sessionID string, reg *protect.Registry) error {
	var (
		baseline []byte
		original string
	)
	if ids, snippet, ok := reg.Baseline(); ok {
		encoded, err := json.Marshal(ids)
		if err != nil {
			return fmt.Errorf("failed to encode baseline: %w", err)
		}
		baseline = encoded
		original = snippet
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, baseline, original_snippet, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			baseline=excluded.baseline,
			original_snippet=excluded.original_snippet,
			updated_at=excluded.updated_at
	`, sessionID, baseline, original, time.Now().Unix())
	return err
}

func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
