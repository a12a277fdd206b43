package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"driver-sync/internal/core/apierror"
	"driver-sync/internal/features/session/domain"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the session in a preferences table of a local SQLite file.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apierror.Storage("failed to open session database", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s, err := NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore wraps an open database and creates the table if missing.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, apierror.Storage("failed to prepare session table", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
    CREATE TABLE IF NOT EXISTS preferences (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL
    );`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// Load implements ports.Store.
func (s *SQLiteStore) Load(ctx context.Context) (domain.Values, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM preferences`)
	if err != nil {
		return nil, apierror.Storage("failed to read session", err)
	}
	defer func() { _ = rows.Close() }()

	values := domain.Values{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, apierror.Storage("failed to read session", err)
		}
		values[domain.Key(k)] = v
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.Storage("failed to read session", err)
	}
	return values, nil
}

// Save implements ports.Store. The replacement happens in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, values domain.Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apierror.Storage("failed to write session", err)
	}
	if err := replaceAll(ctx, tx, values); err != nil {
		_ = tx.Rollback()
		return apierror.Storage("failed to write session", err)
	}
	if err := tx.Commit(); err != nil {
		return apierror.Storage("failed to write session", err)
	}
	return nil
}

func replaceAll(ctx context.Context, tx *sql.Tx, values domain.Values) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM preferences`); err != nil {
		return fmt.Errorf("clear preferences: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO preferences (key, value) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for k, v := range values {
		if _, err := stmt.ExecContext(ctx, string(k), v); err != nil {
			return fmt.Errorf("insert %s: %w", k, err)
		}
	}
	return nil
}

// Clear implements ports.Store.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences`); err != nil {
		return apierror.Storage("failed to clear session", err)
	}
	return nil
}

// Close implements ports.Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
