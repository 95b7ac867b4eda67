package search

import (
	"errors"
	"fmt"
)

// Validation errors. These are rejected before any gateway call is made and
// must never be retried automatically.
var (
	// ErrEmptyDocument is returned by Ingest when RawText is empty or
	// whitespace-only.
	ErrEmptyDocument = errors.New("search: document raw_text is empty")

	// ErrEmptyQuery is returned by Search for an empty or whitespace-only
	// query string.
	ErrEmptyQuery = errors.New("search: query is empty")
)

// ErrNotFound is returned when a requested document or chunk id is absent.
// Table store implementations return it from their Get methods so callers
// can branch with errors.Is rather than parsing messages.
var ErrNotFound = errors.New("search: not found")

// PartialIngestError reports an ingest where some chunks were written and
// others were not. Already-written chunks are NOT rolled back: chunk ids are
// deterministic, so re-running Ingest for the same document overwrites every
// chunk and repairs the gap.
type PartialIngestError struct {
	// DocumentID is the document whose ingest partially failed.
	DocumentID string

	// Failed lists the chunk positions whose table write or index insert
	// failed.
	Failed []int

	// Err is the first underlying gateway error encountered.
	Err error
}

// Error implements the error interface.
func (e *PartialIngestError) Error() string {
	return fmt.Sprintf("search: partial ingest of document %s: %d chunk(s) failed at positions %v: %v",
		e.DocumentID, len(e.Failed), e.Failed, e.Err)
}

// Unwrap exposes the underlying gateway error to errors.Is / errors.As.
func (e *PartialIngestError) Unwrap() error { return e.Err }
