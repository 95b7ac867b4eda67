// Package search implements the document ingest and retrieval pipelines:
// chunk → embed → store on the way in, embed → nearest-neighbour query →
// aggregate on the way out. The gateways it composes (embedding model, vector
// index, metadata table store) are defined here as interfaces so the pipeline
// can be tested with deterministic fakes instead of a live model or database.
//
// The pipeline keeps no state between calls; everything lives in the external
// stores. Concurrent calls are safe. Concurrent ingests of the SAME document
// id are not coordinated — the outcome is last-writer-wins at the granularity
// of each individual gateway call.
package search

import "context"

// Document is a unit of searchable content. RawText is the sole source of
// truth for chunk content; chunks are derived from it, never edited on their
// own.
type Document struct {
	// ID is the stable unique identifier, assigned at first successful
	// ingest and immutable afterwards.
	ID string `json:"id"`

	// Title is prepended to every chunk before embedding so chunks stay
	// meaningful out of context. Opaque to ranking otherwise.
	Title string `json:"title"`

	// Author, Source, and PublishedAt are descriptive metadata, opaque to
	// ranking.
	Author      string `json:"author"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`

	// RawText is the original full text, retained for chunk regeneration
	// and debugging.
	RawText string `json:"raw_text"`

	// Metadata is an ordered sequence of free-form tags.
	Metadata []string `json:"metadata"`
}

// DocumentChunk is one overlapping, title-prefixed segment of a document —
// the unit actually embedded and indexed.
type DocumentChunk struct {
	// ID is derived deterministically from DocumentID and Position, so
	// re-ingesting the same document overwrites rather than duplicates.
	ID string

	// DocumentID references the parent document. Every chunk belongs to
	// exactly one document.
	DocumentID string

	// Text is the chunk text, title prefix included.
	Text string

	// Position is the zero-based ordinal of the chunk within its document.
	// Positions of a document's chunks form a contiguous range from 0.
	Position int
}

// Result pairs a document with its aggregated similarity score.
type Result struct {
	Document Document `json:"document"`
	// Score is the best (maximum) similarity among the document's matching
	// chunks. Higher is closer.
	Score float32 `json:"score"`
}

// Hit is a single nearest-neighbour match returned by the vector index.
type Hit struct {
	// ID is the chunk id the vector was inserted under.
	ID string
	// Score is the cosine similarity to the query vector; higher is closer.
	Score float32
}

// Embedder converts text into dense, L2-normalized vector embeddings of a
// fixed dimension. The returned slice is parallel to the input slice. The
// pipeline relies on those invariants and never renormalizes.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex is the nearest-neighbour index role of the vector store.
// Each call is an independent, possibly-failing remote operation; the
// pipeline assumes no transactionality across calls.
// Implementations must be safe to call from multiple goroutines.
type VectorIndex interface {
	// Insert stores vector under id, overwriting any previous vector with
	// the same id.
	Insert(ctx context.Context, id string, vector []float32) error

	// Query returns up to limit hits ordered by descending similarity.
	Query(ctx context.Context, vector []float32, limit int) ([]Hit, error)

	// Delete removes the vectors with the given ids. Missing ids are not
	// an error.
	Delete(ctx context.Context, ids []string) error
}

// TableStore is the metadata table role of the vector store: document and
// chunk records keyed by id. Put operations are idempotent upserts; Get
// operations return ErrNotFound for absent ids.
// Implementations must be safe to call from multiple goroutines.
type TableStore interface {
	PutDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, id string) (Document, error)
	DeleteDocument(ctx context.Context, id string) error

	PutChunk(ctx context.Context, chunk DocumentChunk) error
	GetChunk(ctx context.Context, id string) (DocumentChunk, error)
	DeleteChunk(ctx context.Context, id string) error

	// ChunksByDocument returns all chunks of a document ordered by
	// position. Used by the delete cascade and by re-ingest cleanup.
	ChunksByDocument(ctx context.Context, documentID string) ([]DocumentChunk, error)
}
