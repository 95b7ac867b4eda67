// Package store provides the two vector-store gateway roles the pipeline
// composes against: a SQLite-backed table role for document and chunk
// metadata, and a Qdrant-backed index role for chunk vectors. Neither role
// offers transactionality across calls — each write is atomic at
// single-record granularity, and the pipeline is written to tolerate that.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // register "sqlite" driver

	"github.com/emilianobilli/SemanticSearch/internal/search"
)

// SQLiteTables implements search.TableStore backed by a local SQLite database.
type SQLiteTables struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the metadata database.
// It resolves to ~/.semsearch/semsearch.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".semsearch")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("store: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "semsearch.db"), nil
}

// Open opens (or creates) a SQLiteTables at the given path and runs the
// schema migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteTables, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteTables{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteTables) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
    id           TEXT PRIMARY KEY,
    title        TEXT NOT NULL,
    author       TEXT NOT NULL,
    source       TEXT NOT NULL,
    published_at TEXT NOT NULL,
    raw_text     TEXT NOT NULL,
    metadata     TEXT NOT NULL  -- JSON array of tags, order preserved
);
CREATE TABLE IF NOT EXISTS chunks (
    id           TEXT PRIMARY KEY,
    document_id  TEXT NOT NULL,
    content      TEXT NOT NULL,
    position     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunks_document
    ON chunks (document_id, position);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// PutDocument upserts a document row keyed by id.
func (s *SQLiteTables) PutDocument(ctx context.Context, doc search.Document) error {
	tags, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("store: encode metadata of %s: %w", doc.ID, err)
	}

	const q = `
INSERT INTO documents (id, title, author, source, published_at, raw_text, metadata)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    title = excluded.title, author = excluded.author, source = excluded.source,
    published_at = excluded.published_at, raw_text = excluded.raw_text,
    metadata = excluded.metadata`
	if _, err := s.db.ExecContext(ctx, q,
		doc.ID, doc.Title, doc.Author, doc.Source, doc.PublishedAt, doc.RawText, string(tags)); err != nil {
		return fmt.Errorf("store: put document %s: %w", doc.ID, err)
	}
	return nil
}

// GetDocument returns the document stored under id, or search.ErrNotFound.
func (s *SQLiteTables) GetDocument(ctx context.Context, id string) (search.Document, error) {
	const q = `SELECT id, title, author, source, published_at, raw_text, metadata
FROM documents WHERE id = ?`

	var doc search.Document
	var tags string
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&doc.ID, &doc.Title, &doc.Author, &doc.Source, &doc.PublishedAt, &doc.RawText, &tags)
	if errors.Is(err, sql.ErrNoRows) {
		return search.Document{}, fmt.Errorf("store: document %s: %w", id, search.ErrNotFound)
	}
	if err != nil {
		return search.Document{}, fmt.Errorf("store: get document %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(tags), &doc.Metadata); err != nil {
		return search.Document{}, fmt.Errorf("store: decode metadata of %s: %w", id, err)
	}
	return doc, nil
}

// DeleteDocument removes the document row. Deleting an absent id is a no-op.
func (s *SQLiteTables) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete document %s: %w", id, err)
	}
	return nil
}

// PutChunk upserts a chunk row keyed by id.
func (s *SQLiteTables) PutChunk(ctx context.Context, chunk search.DocumentChunk) error {
	const q = `
INSERT INTO chunks (id, document_id, content, position)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    document_id = excluded.document_id, content = excluded.content,
    position = excluded.position`
	if _, err := s.db.ExecContext(ctx, q, chunk.ID, chunk.DocumentID, chunk.Text, chunk.Position); err != nil {
		return fmt.Errorf("store: put chunk %s: %w", chunk.ID, err)
	}
	return nil
}

// GetChunk returns the chunk stored under id, or search.ErrNotFound.
func (s *SQLiteTables) GetChunk(ctx context.Context, id string) (search.DocumentChunk, error) {
	const q = `SELECT id, document_id, content, position FROM chunks WHERE id = ?`

	var ch search.DocumentChunk
	err := s.db.QueryRowContext(ctx, q, id).Scan(&ch.ID, &ch.DocumentID, &ch.Text, &ch.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return search.DocumentChunk{}, fmt.Errorf("store: chunk %s: %w", id, search.ErrNotFound)
	}
	if err != nil {
		return search.DocumentChunk{}, fmt.Errorf("store: get chunk %s: %w", id, err)
	}
	return ch, nil
}

// DeleteChunk removes the chunk row. Deleting an absent id is a no-op.
func (s *SQLiteTables) DeleteChunk(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete chunk %s: %w", id, err)
	}
	return nil
}

// ChunksByDocument returns all chunks of a document ordered by position.
func (s *SQLiteTables) ChunksByDocument(ctx context.Context, documentID string) ([]search.DocumentChunk, error) {
	const q = `SELECT id, document_id, content, position
FROM chunks WHERE document_id = ? ORDER BY position ASC`

	rows, err := s.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, fmt.Errorf("store: chunks of %s: %w", documentID, err)
	}
	defer rows.Close()

	var chunks []search.DocumentChunk
	for rows.Next() {
		var ch search.DocumentChunk
		if err := rows.Scan(&ch.ID, &ch.DocumentID, &ch.Text, &ch.Position); err != nil {
			return nil, fmt.Errorf("store: chunks of %s scan: %w", documentID, err)
		}
		chunks = append(chunks, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: chunks of %s rows: %w", documentID, err)
	}
	return chunks, nil
}

// Ping verifies the database file is still reachable and writable enough to
// answer a trivial query. Used by the readiness endpoint.
func (s *SQLiteTables) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteTables) Close() error {
	return s.db.Close()
}
