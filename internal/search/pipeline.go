package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/emilianobilli/SemanticSearch/internal/chunker"
)

// Config holds the tunable parameters of the pipeline. All values are
// injected — nothing here is hardcoded into the algorithms.
type Config struct {
	// ChunkTargetLen is the token count of each chunk window.
	// Defaults to chunker.DefaultTargetLen if zero.
	ChunkTargetLen int

	// ChunkOverlap is the token overlap between consecutive windows.
	// Defaults to chunker.DefaultOverlap if zero.
	ChunkOverlap int

	// DefaultResults is the document count returned when the caller passes
	// top <= 0. Defaults to 10.
	DefaultResults int

	// MaxResults caps the document count of a single search. Defaults to 50.
	MaxResults int

	// Overfetch is the ratio of chunk hits requested from the index to the
	// document count requested by the caller. Multiple top hits may belong
	// to the same document, so the index query needs headroom to still
	// yield top distinct documents after aggregation. Defaults to 4.
	Overfetch int
}

// IngestResult reports a successful ingest.
type IngestResult struct {
	// DocumentID is the id under which the document was stored.
	DocumentID string
	// Chunks is the number of chunks embedded and indexed.
	Chunks int
}

// Pipeline composes the chunker with the embedding and vector store gateways
// to implement ingest, search, fetch, and delete. It is stateless per call
// and safe for concurrent use.
type Pipeline struct {
	embedder Embedder
	index    VectorIndex
	tables   TableStore
	chunker  *chunker.Chunker
	cfg      Config
}

// NewPipeline constructs a Pipeline from the given gateways and config,
// applying defaults for unset config fields.
func NewPipeline(embedder Embedder, index VectorIndex, tables TableStore, cfg Config) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("search: embedder must not be nil")
	}
	if index == nil {
		return nil, fmt.Errorf("search: vector index must not be nil")
	}
	if tables == nil {
		return nil, fmt.Errorf("search: table store must not be nil")
	}
	if cfg.DefaultResults <= 0 {
		cfg.DefaultResults = 10
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 50
	}
	if cfg.DefaultResults > cfg.MaxResults {
		cfg.DefaultResults = cfg.MaxResults
	}
	if cfg.Overfetch <= 0 {
		cfg.Overfetch = 4
	}

	return &Pipeline{
		embedder: embedder,
		index:    index,
		tables:   tables,
		chunker:  chunker.New(cfg.ChunkTargetLen, cfg.ChunkOverlap),
		cfg:      cfg,
	}, nil
}

// ChunkID derives the deterministic chunk id for a document id and chunk
// position. The same (documentID, position) always maps to the same UUID, so
// a re-ingest overwrites rather than duplicates — and the result is a valid
// vector index point id.
func ChunkID(documentID string, position int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(documentID+"#"+strconv.Itoa(position))).String()
}

// Ingest chunks, embeds, and stores a document. The document row is written
// first, then each chunk's metadata row and vector under its deterministic
// id. On doc.ID == "" a fresh id is assigned and reported in the result.
//
// All chunk texts are embedded in a single batch call — one embedding round
// trip per document. If any chunk's pair of writes fails, ingestion continues
// with the remaining chunks and a *PartialIngestError listing the failed
// positions is returned; already-written chunks stay in place so a re-run
// repairs the document in place.
func (p *Pipeline) Ingest(ctx context.Context, doc *Document) (*IngestResult, error) {
	if strings.TrimSpace(doc.RawText) == "" {
		return nil, ErrEmptyDocument
	}

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	// Chunks left over from a previous, longer version of this document
	// must go away, or stale positions would keep matching queries.
	stale, err := p.tables.ChunksByDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("search: listing existing chunks of %s: %w", doc.ID, err)
	}

	if err := p.tables.PutDocument(ctx, *doc); err != nil {
		return nil, fmt.Errorf("search: storing document %s: %w", doc.ID, err)
	}

	texts := p.chunker.Chunk(doc.Title, doc.RawText)
	if len(texts) == 0 {
		// TrimSpace passed but tokenization found nothing — cannot happen
		// with whitespace tokenization, kept as a guard.
		return nil, ErrEmptyDocument
	}

	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("search: embedding %d chunks of %s: %w", len(texts), doc.ID, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("search: embedder returned %d vectors for %d chunks", len(vectors), len(texts))
	}

	var failed []int
	var firstErr error
	for i, text := range texts {
		chunk := DocumentChunk{
			ID:         ChunkID(doc.ID, i),
			DocumentID: doc.ID,
			Text:       text,
			Position:   i,
		}
		if err := p.tables.PutChunk(ctx, chunk); err != nil {
			failed = append(failed, i)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := p.index.Insert(ctx, chunk.ID, vectors[i]); err != nil {
			failed = append(failed, i)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if len(failed) > 0 {
		return nil, &PartialIngestError{DocumentID: doc.ID, Failed: failed, Err: firstErr}
	}

	if err := p.removeStaleChunks(ctx, stale, len(texts)); err != nil {
		return nil, err
	}

	return &IngestResult{DocumentID: doc.ID, Chunks: len(texts)}, nil
}

// removeStaleChunks deletes chunks whose position is beyond the freshly
// written range, keeping the contiguous-positions invariant when a document
// shrinks between ingests.
func (p *Pipeline) removeStaleChunks(ctx context.Context, stale []DocumentChunk, freshCount int) error {
	var ids []string
	for _, ch := range stale {
		if ch.Position >= freshCount {
			ids = append(ids, ch.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	if err := p.index.Delete(ctx, ids); err != nil {
		return fmt.Errorf("search: removing %d stale vectors: %w", len(ids), err)
	}
	for _, id := range ids {
		if err := p.tables.DeleteChunk(ctx, id); err != nil {
			return fmt.Errorf("search: removing stale chunk %s: %w", id, err)
		}
	}
	return nil
}

// Search embeds the query once, over-fetches nearest chunk hits from the
// index, and aggregates them into a ranked list of at most top documents.
// top <= 0 selects the configured default; values above the configured
// maximum are clamped. Zero matching chunks yields an empty slice, not an
// error. Empty queries are rejected with ErrEmptyQuery.
func (p *Pipeline) Search(ctx context.Context, query string, top int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	top = p.clampTop(top)

	vectors, err := p.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("search: embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("search: embedder returned %d vectors for one query", len(vectors))
	}

	hits, err := p.index.Query(ctx, vectors[0], top*p.cfg.Overfetch)
	if err != nil {
		return nil, fmt.Errorf("search: index query: %w", err)
	}

	// Hydrate each hit into its parent document id. Hits whose chunk row
	// has vanished (e.g. a concurrent delete) are skipped, not fatal.
	joined := make([]chunkHit, 0, len(hits))
	for _, h := range hits {
		chunk, err := p.tables.GetChunk(ctx, h.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("search: hydrating chunk %s: %w", h.ID, err)
		}
		joined = append(joined, chunkHit{documentID: chunk.DocumentID, score: h.Score})
	}

	// Rank the full hit set and truncate only after hydration: a document
	// row deleted mid-search is skipped, and the next-ranked candidate
	// takes its place instead of shrinking the page below top.
	ranked := aggregate(joined, len(joined))

	results := make([]Result, 0, top)
	for _, ds := range ranked {
		if len(results) == top {
			break
		}
		doc, err := p.tables.GetDocument(ctx, ds.documentID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("search: hydrating document %s: %w", ds.documentID, err)
		}
		results = append(results, Result{Document: doc, Score: ds.score})
	}
	return results, nil
}

// Get returns the document stored under id, or ErrNotFound.
func (p *Pipeline) Get(ctx context.Context, id string) (Document, error) {
	return p.tables.GetDocument(ctx, id)
}

// Delete removes a document and every chunk whose DocumentID matches, from
// both the index and the table store. Returns ErrNotFound when the document
// does not exist. Failures mid-cascade are surfaced with the failing stage;
// re-running Delete is safe.
func (p *Pipeline) Delete(ctx context.Context, id string) error {
	if _, err := p.tables.GetDocument(ctx, id); err != nil {
		return err
	}

	chunks, err := p.tables.ChunksByDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("search: listing chunks of %s: %w", id, err)
	}

	if len(chunks) > 0 {
		ids := make([]string, len(chunks))
		for i, ch := range chunks {
			ids[i] = ch.ID
		}
		if err := p.index.Delete(ctx, ids); err != nil {
			return fmt.Errorf("search: deleting %d vectors of %s: %w", len(ids), id, err)
		}
		for _, chunkID := range ids {
			if err := p.tables.DeleteChunk(ctx, chunkID); err != nil {
				return fmt.Errorf("search: deleting chunk %s: %w", chunkID, err)
			}
		}
	}

	if err := p.tables.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("search: deleting document %s: %w", id, err)
	}
	return nil
}

// clampTop normalizes the caller-supplied result count into [1, MaxResults],
// substituting the default for non-positive values.
func (p *Pipeline) clampTop(top int) int {
	switch {
	case top <= 0:
		return p.cfg.DefaultResults
	case top > p.cfg.MaxResults:
		return p.cfg.MaxResults
	default:
		return top
	}
}
