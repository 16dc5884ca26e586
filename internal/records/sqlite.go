package records

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	importLockRetryDelay    = 50 * time.Millisecond
)

// SQLiteStore reads and writes records in a SQLite table.
type SQLiteStore struct {
	db         *sql.DB
	path       string
	table      string
	fetchQuery string
	putQuery   string
}

// OpenSQLite opens the database at path and ensures the record table exists.
// The table name must be a plain identifier; it is the only part of any query
// that is not bound as a parameter.
func OpenSQLite(ctx context.Context, path, table string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if !validTable(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{
		db:    db,
		path:  path,
		table: table,
		fetchQuery: fmt.Sprintf(
			"SELECT sr_id, title, artists, contributors, isrcs FROM %s WHERE sr_id IN (?, ?)", table),
		putQuery: fmt.Sprintf(
			`INSERT INTO %s (sr_id, title, artists, contributors, isrcs) VALUES (?, ?, ?, ?, ?)
            ON CONFLICT(sr_id) DO UPDATE SET
                title = excluded.title,
                artists = excluded.artists,
                contributors = excluded.contributors,
                isrcs = excluded.isrcs`, table),
	}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	ddl := strings.ReplaceAll(schemaSQL, "{{table}}", s.table)
	return retryOnBusy(ctx, func() error {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	})
}

// Name implements Fetcher.
func (s *SQLiteStore) Name() string { return "sqlite" }

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

// FetchPair implements Fetcher with one parameterized query.
func (s *SQLiteStore) FetchPair(ctx context.Context, queryID, matchID string) ([]Record, error) {
	ctx = ensureContext(ctx)
	var recs []Record
	err := retryOnBusy(ctx, func() error {
		recs = recs[:0]
		rows, err := s.db.QueryContext(ctx, s.fetchQuery, queryID, matchID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var rec Record
			if err := rows.Scan(&rec.ID, &rec.Title, &rec.Artists, &rec.Contributors, &rec.ISRCs); err != nil {
				return err
			}
			recs = append(recs, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	return recs, nil
}

// Put implements Writer. Concurrent importers are serialized with a lock file
// next to the database.
func (s *SQLiteStore) Put(ctx context.Context, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}
	ctx = ensureContext(ctx)

	lock := flock.New(s.path + ".lock")
	locked, err := lock.TryLockContext(ctx, importLockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire import lock: %w", err)
	}
	if !locked {
		return errors.New("acquire import lock: database is being written by another process")
	}
	defer func() { _ = lock.Unlock() }()

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin import tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx, s.putQuery)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range recs {
			if _, err := stmt.ExecContext(ctx, rec.ID, rec.Title, rec.Artists, rec.Contributors, rec.ISRCs); err != nil {
				return fmt.Errorf("insert record %s: %w", rec.ID, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit import: %w", err)
		}
		return nil
	})
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ensureContext(ctx), fmt.Sprintf("SELECT COUNT(1) FROM %s", s.table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func validTable(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
