package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docloader/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docloader/internal/adapters/driven/storeformat"
	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
)

// Ensure Writer implements the interface.
var _ driven.BatchWriter = (*Writer)(nil)

// Writer persists document batches to a SQLite database.
type Writer struct {
	path    string
	adapter storeformat.Adapter

	mu sync.Mutex
	db *sql.DB
}

// Option configures the SQLite writer.
type Option func(*Writer)

// WithAdapter sets the record adapter.
func WithAdapter(a storeformat.Adapter) Option {
	return func(w *Writer) { w.adapter = a }
}

// NewWriter creates a writer for the database file at path.
// The database is opened by Initialize.
func NewWriter(path string, opts ...Option) *Writer {
	w := &Writer{
		path:    path,
		adapter: storeformat.NewAdapter(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the database file path.
func (w *Writer) Path() string {
	return w.path
}

// Initialize opens the database and runs pending migrations.
// Calling it again on an open writer is a no-op.
func (w *Writer) Initialize(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.db != nil {
		return nil
	}
	if w.path == "" {
		return fmt.Errorf("%w: sqlite path is required", domain.ErrConfiguration)
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", w.path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrate(ctx, db, migrations.FS); err != nil {
		db.Close()
		return fmt.Errorf("running migrations: %w", err)
	}

	w.db = db
	return nil
}

// Write upserts every document of the batch in one transaction.
func (w *Writer) Write(ctx context.Context, batch []*domain.Document) error {
	db, err := w.conn()
	if err != nil {
		return err
	}

	records, err := w.adapter.AdaptBatch(batch)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrWrite, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", domain.ErrWrite, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now().UTC()
	batchID := uuid.New().String()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO batches (id, documents, written_at) VALUES (?, ?, ?)`,
		batchID, len(records), now); err != nil {
		return fmt.Errorf("%w: saving batch: %w", domain.ErrWrite, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (uri, format, content, quality, collections, permissions, properties, batch_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uri) DO UPDATE SET
			format = excluded.format,
			content = excluded.content,
			quality = excluded.quality,
			collections = excluded.collections,
			permissions = excluded.permissions,
			properties = excluded.properties,
			batch_id = excluded.batch_id,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing statement: %w", domain.ErrWrite, err)
	}
	defer stmt.Close()

	for _, r := range records {
		collections, perms, props, err := encodeMetadata(r)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrWrite, r.URI, err)
		}
		if _, err := stmt.ExecContext(ctx, r.URI, r.Format, r.Content, r.Quality,
			collections, perms, props, batchID, now); err != nil {
			return fmt.Errorf("%w: saving %s: %w", domain.ErrWrite, r.URI, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", domain.ErrWrite, err)
	}
	return nil
}

// WaitForCompletion returns once the database is reachable; writes are synchronous.
func (w *Writer) WaitForCompletion(ctx context.Context) error {
	db, err := w.conn()
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrWrite, err)
	}
	return nil
}

// Close closes the database connection.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.db == nil {
		return nil
	}
	err := w.db.Close()
	w.db = nil
	return err
}

// Get retrieves a stored record by URI.
func (w *Writer) Get(ctx context.Context, uri string) (storeformat.Record, error) {
	db, err := w.conn()
	if err != nil {
		return storeformat.Record{}, err
	}

	var (
		r                          storeformat.Record
		collections, perms, props string
	)
	row := db.QueryRowContext(ctx, `
		SELECT uri, format, content, quality, collections, permissions, properties
		FROM documents WHERE uri = ?
	`, uri)
	err = row.Scan(&r.URI, &r.Format, &r.Content, &r.Quality, &collections, &perms, &props)
	if errors.Is(err, sql.ErrNoRows) {
		return storeformat.Record{}, domain.ErrNotFound
	}
	if err != nil {
		return storeformat.Record{}, fmt.Errorf("getting document: %w", err)
	}

	if err := json.Unmarshal([]byte(collections), &r.Collections); err != nil {
		return storeformat.Record{}, fmt.Errorf("unmarshalling collections: %w", err)
	}
	if err := json.Unmarshal([]byte(perms), &r.Permissions); err != nil {
		return storeformat.Record{}, fmt.Errorf("unmarshalling permissions: %w", err)
	}
	if err := json.Unmarshal([]byte(props), &r.Properties); err != nil {
		return storeformat.Record{}, fmt.Errorf("unmarshalling properties: %w", err)
	}
	return r, nil
}

// Count returns the number of stored documents.
func (w *Writer) Count(ctx context.Context) (int, error) {
	return w.count(ctx, "SELECT COUNT(*) FROM documents")
}

// BatchCount returns the number of written batches.
func (w *Writer) BatchCount(ctx context.Context) (int, error) {
	return w.count(ctx, "SELECT COUNT(*) FROM batches")
}

func (w *Writer) count(ctx context.Context, query string) (int, error) {
	db, err := w.conn()
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting: %w", err)
	}
	return n, nil
}

func (w *Writer) conn() (*sql.DB, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.db == nil {
		return nil, fmt.Errorf("%w: sqlite writer not initialized", domain.ErrWriterState)
	}
	return w.db, nil
}

func encodeMetadata(r storeformat.Record) (collections, perms, props string, err error) {
	c := r.Collections
	if c == nil {
		c = []string{}
	}
	cb, err := json.Marshal(c)
	if err != nil {
		return "", "", "", fmt.Errorf("marshalling collections: %w", err)
	}
	pb, err := json.Marshal(r.Permissions)
	if err != nil {
		return "", "", "", fmt.Errorf("marshalling permissions: %w", err)
	}
	prb, err := json.Marshal(r.Properties)
	if err != nil {
		return "", "", "", fmt.Errorf("marshalling properties: %w", err)
	}
	return string(cb), string(pb), string(prb), nil
}

// migrate runs all pending migrations.
func migrate(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
