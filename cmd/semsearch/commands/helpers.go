package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/emilianobilli/SemanticSearch/internal/chunker"
	"github.com/emilianobilli/SemanticSearch/internal/embedder"
	"github.com/emilianobilli/SemanticSearch/internal/search"
	"github.com/emilianobilli/SemanticSearch/internal/store"
)

// deps bundles the wired pipeline and the backends it runs on, so commands
// can register pingers and close everything on exit.
type deps struct {
	// pipeline is the assembled ingest/search pipeline.
	pipeline *search.Pipeline
	// embedder is the embedding backend.
	embedder search.Embedder
	// index is the Qdrant vector index.
	index *store.QdrantIndex
	// tables is the SQLite document/chunk store.
	tables *store.SQLiteTables
	// close releases the index and tables connections.
	close func()
}

// buildDeps wires the embedder, Qdrant index, SQLite tables, and pipeline
// from the environment. Callers must invoke deps.close when done.
func buildDeps(ctx context.Context, log *slog.Logger) (*deps, error) {
	if err := embedder.Validate(log); err != nil {
		return nil, err
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to initialise embedder: %w", err)
	}
	backend := getEnvOrDefault("EMBEDDING_PROVIDER", "ollama")
	log.Info("embedder initialised", slog.String("backend", backend))

	qdrantHost := getEnvOrDefault("QDRANT_HOST", "localhost")
	qdrantPort := getEnvInt("QDRANT_PORT", 6334)
	collection := getEnvOrDefault("QDRANT_COLLECTION", "semsearch-chunks")
	vectorSize := uint64(embedder.DefaultDimensions(backend)) //nolint:gosec // dimensions are bounded

	index, err := store.NewQdrantIndex(ctx, &store.QdrantConfig{
		Host:       qdrantHost,
		Port:       qdrantPort,
		Collection: collection,
		VectorSize: vectorSize,
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     os.Getenv("QDRANT_TLS") == "true",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", qdrantHost, qdrantPort, err)
	}
	log.Info("qdrant index ready",
		slog.String("host", qdrantHost),
		slog.Int("port", qdrantPort),
		slog.String("collection", collection),
	)

	dbPath := os.Getenv("SEMSEARCH_DB")
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			index.Close()
			return nil, fmt.Errorf("could not resolve default DB path: %w", err)
		}
	}
	tables, err := store.Open(dbPath)
	if err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to open document store at %s: %w", dbPath, err)
	}
	log.Info("document store opened", slog.String("path", dbPath))

	pipeline, err := search.NewPipeline(emb, index, tables, search.Config{
		ChunkTargetLen: getEnvInt("CHUNK_TARGET_LEN", chunker.DefaultTargetLen),
		ChunkOverlap:   getEnvInt("CHUNK_OVERLAP", chunker.DefaultOverlap),
		DefaultResults: getEnvInt("SEARCH_DEFAULT_RESULTS", 0),
		MaxResults:     getEnvInt("SEARCH_MAX_RESULTS", 0),
		Overfetch:      getEnvInt("SEARCH_OVERFETCH", 0),
	})
	if err != nil {
		index.Close()
		_ = tables.Close()
		return nil, fmt.Errorf("failed to assemble pipeline: %w", err)
	}

	return &deps{
		pipeline: pipeline,
		embedder: emb,
		index:    index,
		tables:   tables,
		close: func() {
			_ = index.Close()
			_ = tables.Close()
		},
	}, nil
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
