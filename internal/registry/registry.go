// Package registry keeps a small durable record of ingested documents:
// which file a document id refers to, who uploaded it and how many chunks
// it produced. Identity itself is an external concern; the owner is stored
// as an opaque string.
package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a document id has no registry row.
var ErrNotFound = errors.New("document not found")

// Document is one registry row.
type Document struct {
	ID         string
	Filename   string
	Owner      string
	Collection string
	Chunks     int
	CreatedAt  time.Time
}

// Registry is a SQLite-backed document registry.
type Registry struct {
	db *sql.DB
}

// Open creates or opens the registry database at the given path.
func Open(path string) (*Registry, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating registry directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening registry: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging registry: %w", err)
	}

	r := &Registry{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating registry: %w", err)
	}
	return r, nil
}

// OpenMemory creates an in-memory registry, useful for tests.
func OpenMemory() (*Registry, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory registry: %w", err)
	}
	r := &Registry{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating registry: %w", err)
	}
	return r, nil
}

func (r *Registry) migrate() error {
	_, err := r.db.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    filename TEXT NOT NULL,
    owner TEXT NOT NULL DEFAULT '',
    collection TEXT NOT NULL,
    chunks INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_documents_filename ON documents(filename);
`

// Close releases the underlying database handle.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Upsert inserts the document row, replacing an earlier row with the same
// id (re-ingesting a document keeps a single registry entry).
func (r *Registry) Upsert(doc Document) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(`
		INSERT INTO documents (id, filename, owner, collection, chunks, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			owner = excluded.owner,
			collection = excluded.collection,
			chunks = excluded.chunks`,
		doc.ID, doc.Filename, doc.Owner, doc.Collection, doc.Chunks, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting document %s: %w", doc.ID, err)
	}
	return nil
}

// Get returns the document with the given id.
func (r *Registry) Get(id string) (*Document, error) {
	row := r.db.QueryRow(`
		SELECT id, filename, owner, collection, chunks, created_at
		FROM documents WHERE id = ?`, id)

	var doc Document
	err := row.Scan(&doc.ID, &doc.Filename, &doc.Owner, &doc.Collection, &doc.Chunks, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", id, err)
	}
	return &doc, nil
}

// FindByFilename returns the most recent document ingested under the given
// filename, or ErrNotFound. Uploads use it to reuse document ids so
// re-uploading a file overwrites its index records.
func (r *Registry) FindByFilename(filename string) (*Document, error) {
	row := r.db.QueryRow(`
		SELECT id, filename, owner, collection, chunks, created_at
		FROM documents WHERE filename = ?
		ORDER BY created_at DESC LIMIT 1`, filename)

	var doc Document
	err := row.Scan(&doc.ID, &doc.Filename, &doc.Owner, &doc.Collection, &doc.Chunks, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding document by filename %s: %w", filename, err)
	}
	return &doc, nil
}

// List returns all documents, newest first.
func (r *Registry) List() ([]Document, error) {
	rows, err := r.db.Query(`
		SELECT id, filename, owner, collection, chunks, created_at
		FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.Owner, &doc.Collection, &doc.Chunks, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
