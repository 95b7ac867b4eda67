package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/emilianobilli/SemanticSearch/internal/search"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [slog.Default] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
}

// searcher is the interface the handlers call to run the ingest/search
// pipeline. *search.Pipeline satisfies it; tests inject a fake.
type searcher interface {
	// Ingest chunks, embeds, and indexes a document.
	Ingest(ctx context.Context, doc *search.Document) (*search.IngestResult, error)
	// Search returns up to top documents ranked by best-chunk similarity.
	Search(ctx context.Context, query string, top int) ([]search.Result, error)
	// Get fetches a stored document by id.
	Get(ctx context.Context, id string) (search.Document, error)
	// Delete removes a document and all of its chunks.
	Delete(ctx context.Context, id string) error
}

// Server is the HTTP server that exposes the search pipeline.
type Server struct {
	// pipeline handles all ingest and query operations.
	pipeline searcher
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus instruments owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// ingestRequest is the JSON body for POST /api/document.
type ingestRequest struct {
	// Title is the human-readable document title.
	Title string `json:"title"`
	// Author is the optional document author.
	Author string `json:"author,omitempty"`
	// Source identifies where the document came from (URL, path, feed name).
	Source string `json:"source,omitempty"`
	// PublishedAt is the optional publication date.
	PublishedAt string `json:"published_at,omitempty"`
	// RawText is the full document body. Must be non-empty.
	RawText string `json:"raw_text"`
	// Metadata is an optional list of free-form tags.
	Metadata []string `json:"metadata,omitempty"`
}

// ingestResponse is the JSON response for POST /api/document.
type ingestResponse struct {
	// Success is true when the document was fully ingested.
	Success bool `json:"success"`
	// Message is a human-readable outcome description.
	Message string `json:"message"`
	// DocumentID is the id assigned to the document. Empty on rejection.
	DocumentID string `json:"document_id,omitempty"`
	// Chunks is the number of chunks indexed.
	Chunks int `json:"chunks,omitempty"`
}

// bulkIngestRequest is the JSON body for POST /api/documents.
type bulkIngestRequest struct {
	// Documents is the batch to ingest. Each entry is processed independently.
	Documents []ingestRequest `json:"documents"`
}

// bulkIngestResult is the per-document outcome within a bulk ingest response.
type bulkIngestResult struct {
	// Title echoes the submitted title so clients can correlate results.
	Title string `json:"title"`
	// Success is true when this document was fully ingested.
	Success bool `json:"success"`
	// DocumentID is the assigned id. Empty on failure.
	DocumentID string `json:"document_id,omitempty"`
	// Error contains the failure reason when Success is false.
	Error string `json:"error,omitempty"`
}

// bulkIngestResponse is the JSON response for POST /api/documents.
type bulkIngestResponse struct {
	// Total is the number of documents submitted.
	Total int `json:"total"`
	// Succeeded is the number of documents fully ingested.
	Succeeded int `json:"succeeded"`
	// Failed is the number of documents rejected or partially ingested.
	Failed int `json:"failed"`
	// Results holds the per-document outcomes in submission order.
	Results []bulkIngestResult `json:"results"`
}

// searchResultDoc is a single ranked document in a search response.
type searchResultDoc struct {
	// ID is the document id.
	ID string `json:"id"`
	// Title is the document title.
	Title string `json:"title"`
	// Author is the document author, if any.
	Author string `json:"author,omitempty"`
	// Source is the document source, if any.
	Source string `json:"source,omitempty"`
	// PublishedAt is the publication date, if any.
	PublishedAt string `json:"published_at,omitempty"`
	// Metadata is the document's tag list.
	Metadata []string `json:"metadata,omitempty"`
	// Score is the best chunk similarity for this document. Higher is closer.
	Score float32 `json:"score"`
}

// searchResponse is the JSON response for GET /api/search.
type searchResponse struct {
	// Query echoes the search query.
	Query string `json:"query"`
	// TotalResults is the number of documents returned.
	TotalResults int `json:"total_results"`
	// Documents holds the ranked results, best first.
	Documents []searchResultDoc `json:"documents"`
}

// errorResponse is the JSON body for all error statuses.
type errorResponse struct {
	// Error is the human-readable failure reason.
	Error string `json:"error"`
}
