package server

import (
	"context"
	"fmt"

	"github.com/emilianobilli/SemanticSearch/internal/search"
)

// EmbedderPinger probes an embedding backend by embedding a single short
// string. It satisfies the Pinger interface and is used by GET /api/ready.
type EmbedderPinger struct {
	// embedder is the embedding backend to probe.
	embedder search.Embedder
	// name identifies the backend in readiness responses (e.g. "ollama").
	name string
}

// NewEmbedderPinger constructs an EmbedderPinger for the given backend.
func NewEmbedderPinger(e search.Embedder, name string) *EmbedderPinger {
	return &EmbedderPinger{embedder: e, name: name}
}

// Name returns the backend label used in readiness responses.
func (p *EmbedderPinger) Name() string { return p.name }

// Ping embeds a one-word probe string. A reachable backend with a loaded
// model returns exactly one non-empty vector.
func (p *EmbedderPinger) Ping(ctx context.Context) error {
	vecs, err := p.embedder.Embed(ctx, []string{"ping"})
	if err != nil {
		return fmt.Errorf("embed failed: %w", err)
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return fmt.Errorf("embed returned no vector")
	}
	return nil
}

// pinger is the common shape of the storage backends' health probes.
type pinger interface {
	Ping(ctx context.Context) error
}

// NamedPinger adapts any Ping-able dependency (the SQLite tables, the Qdrant
// index) into a Pinger with a readiness label.
type NamedPinger struct {
	// target is the dependency to probe.
	target pinger
	// name is the label used in readiness responses (e.g. "sqlite", "qdrant").
	name string
}

// NewNamedPinger wraps target as a Pinger reporting under name.
func NewNamedPinger(target pinger, name string) *NamedPinger {
	return &NamedPinger{target: target, name: name}
}

// Name returns the dependency label used in readiness responses.
func (p *NamedPinger) Name() string { return p.name }

// Ping delegates to the wrapped dependency's Ping.
func (p *NamedPinger) Ping(ctx context.Context) error {
	return p.target.Ping(ctx)
}
