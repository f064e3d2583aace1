// Package sqlite provides a SQLite-backed persistent registry store. It keeps
// the in-memory transactional semantics and snapshots the full state to a
// single table as JSON blobs after every successful transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"creaturecore/internal/infra/persistence/memory"
	"creaturecore/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Compile-time contract assertion.
var _ domain.PersistentStore = (*Store)(nil)

const defaultPath = "creaturecore.db"

// Store persists the registry state to SQLite.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) the database at path and hydrates the in-memory
// store from any existing snapshot.
func NewStore(path string, engine *domain.RulesEngine, maxOwned uint32) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(engine, maxOwned), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

var buckets = []string{"creatures", "ownership", "count"}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snapshot := memory.Snapshot{}
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		switch bucket {
		case "creatures":
			if err := json.Unmarshal(payload, &snapshot.Creatures); err != nil {
				return fmt.Errorf("decode creatures: %w", err)
			}
		case "ownership":
			if err := json.Unmarshal(payload, &snapshot.Ownership); err != nil {
				return fmt.Errorf("decode ownership: %w", err)
			}
		case "count":
			if err := json.Unmarshal(payload, &snapshot.Count); err != nil {
				return fmt.Errorf("decode count: %w", err)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	s.ImportState(snapshot)
	return nil
}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range buckets {
		var data []byte
		switch bucket {
		case "creatures":
			data, err = json.Marshal(snapshot.Creatures)
		case "ownership":
			data, err = json.Marshal(snapshot.Ownership)
		case "count":
			data, err = json.Marshal(snapshot.Count)
		}
		if err != nil {
			retErr = err
			return retErr
		}
		if _, err = tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	return tx.Commit()
}

// RunInTransaction applies fn within a transaction, then snapshots state to
// SQLite when the transaction commits. A failed snapshot rolls the in-memory
// state back to the last durable one, so the caller can retry the operation
// against state that matches what survives a restart.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if pErr := s.persist(); pErr != nil {
		if rErr := s.load(); rErr != nil {
			return res, fmt.Errorf("persist snapshot: %w (memory not restored: %v)", pErr, rErr)
		}
		return res, fmt.Errorf("persist snapshot: %w", pErr)
	}
	return res, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
