package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/bybit_dca_bot/internal/domain"
)

// SQLiteStore implements domain.DocumentStore over a single documents
// table keyed by type tag and ordered by timestamp, the same shape the
// strategy documents have in the exchange-orders table upstream.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type_id TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			payload TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_type_timestamp ON documents(type_id, timestamp);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// lastDocument returns the most recent payload of the given type.
func (s *SQLiteStore) lastDocument(ctx context.Context, typeID string, out interface{}) error {
	query := `SELECT payload FROM documents WHERE type_id = ? ORDER BY timestamp DESC, id DESC LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, typeID)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", domain.ErrNoDocument, typeID)
		}
		return err
	}
	return json.Unmarshal([]byte(payload), out)
}

func (s *SQLiteStore) putDocument(ctx context.Context, typeID string, ts time.Time, doc interface{}) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	query := `INSERT INTO documents (type_id, timestamp, payload) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, typeID, ts.UnixMilli(), string(payload)); err != nil {
		return fmt.Errorf("failed to put %s document: %w", typeID, err)
	}
	return nil
}

func (s *SQLiteStore) GetConfig(ctx context.Context) (*domain.StrategyConfig, error) {
	var cfg domain.StrategyConfig
	if err := s.lastDocument(ctx, domain.DocTypeConfig, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *SQLiteStore) GetTriggerState(ctx context.Context) (*domain.TriggerState, error) {
	var state domain.TriggerState
	if err := s.lastDocument(ctx, domain.DocTypeTrigger, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *SQLiteStore) GetLastEntryRecord(ctx context.Context) (*domain.EntryRecord, error) {
	var record domain.EntryRecord
	if err := s.lastDocument(ctx, domain.DocTypeEntry, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *SQLiteStore) AppendEntryRecord(ctx context.Context, record *domain.EntryRecord) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	return s.putDocument(ctx, domain.DocTypeEntry, record.Timestamp, record)
}

func (s *SQLiteStore) SaveConfig(ctx context.Context, cfg *domain.StrategyConfig) error {
	return s.putDocument(ctx, domain.DocTypeConfig, time.Now(), cfg)
}

func (s *SQLiteStore) SaveTriggerState(ctx context.Context, state *domain.TriggerState) error {
	return s.putDocument(ctx, domain.DocTypeTrigger, time.Now(), state)
}
