package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/emilianobilli/SemanticSearch/internal/logging"
	"github.com/emilianobilli/SemanticSearch/internal/search"
)

// handleIngest handles POST /api/document: chunk, embed, and index a single
// document. Empty raw text is rejected with 400 before any backend call.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc := req.toDocument()
	res, err := s.pipeline.Ingest(r.Context(), &doc)
	if err != nil {
		s.writeIngestError(w, log, err)
		s.metrics.ingestTotal.WithLabelValues("error").Inc()
		return
	}

	s.metrics.ingestTotal.WithLabelValues("ok").Inc()
	s.metrics.ingestChunksTotal.Add(float64(res.Chunks))

	writeJSON(w, http.StatusOK, ingestResponse{
		Success:    true,
		Message:    "document ingested",
		DocumentID: res.DocumentID,
		Chunks:     res.Chunks,
	})
}

// handleBulkIngest handles POST /api/documents. Each document in the batch is
// processed independently; one failure never aborts the rest.
func (s *Server) handleBulkIngest(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req bulkIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, "documents must not be empty")
		return
	}

	resp := bulkIngestResponse{Total: len(req.Documents)}
	for _, entry := range req.Documents {
		doc := entry.toDocument()
		result := bulkIngestResult{Title: entry.Title}

		res, err := s.pipeline.Ingest(r.Context(), &doc)
		if err != nil {
			result.Error = err.Error()
			resp.Failed++
			s.metrics.ingestTotal.WithLabelValues("error").Inc()
			log.Warn("bulk ingest: document failed",
				slog.String("title", entry.Title),
				slog.Any("error", err),
			)
			// A partial ingest still assigned an id — report it so the
			// client can retry the same document.
			var partial *search.PartialIngestError
			if errors.As(err, &partial) {
				result.DocumentID = partial.DocumentID
			}
		} else {
			result.Success = true
			result.DocumentID = res.DocumentID
			resp.Succeeded++
			s.metrics.ingestTotal.WithLabelValues("ok").Inc()
			s.metrics.ingestChunksTotal.Add(float64(res.Chunks))
		}
		resp.Results = append(resp.Results, result)
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleSearch handles GET /api/search?q=&top=.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	query := r.URL.Query().Get("q")
	top := 0
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "top must be an integer")
			return
		}
		top = n
	}

	timer := s.metrics.searchTimer()
	results, err := s.pipeline.Search(r.Context(), query, top)
	if err != nil {
		switch {
		case errors.Is(err, search.ErrEmptyQuery):
			s.metrics.observeSearch(timer, "rejected")
			writeError(w, http.StatusBadRequest, "query must not be empty")
		default:
			s.metrics.observeSearch(timer, "error")
			log.Error("search failed", slog.Any("error", err))
			writeError(w, http.StatusBadGateway, "search backend unavailable")
		}
		return
	}
	s.metrics.observeSearch(timer, "ok")

	resp := searchResponse{
		Query:        query,
		TotalResults: len(results),
		Documents:    make([]searchResultDoc, 0, len(results)),
	}
	for _, res := range results {
		resp.Documents = append(resp.Documents, searchResultDoc{
			ID:          res.Document.ID,
			Title:       res.Document.Title,
			Author:      res.Document.Author,
			Source:      res.Document.Source,
			PublishedAt: res.Document.PublishedAt,
			Metadata:    res.Document.Metadata,
			Score:       res.Score,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleGetDocument handles GET /api/documents/{id}.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	doc, err := s.pipeline.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, search.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		logging.FromContext(r.Context()).Error("get document failed", slog.Any("error", err))
		writeError(w, http.StatusBadGateway, "storage backend unavailable")
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// handleDeleteDocument handles DELETE /api/documents/{id}. Deletion cascades
// to the document's chunks and their index vectors.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.pipeline.Delete(r.Context(), id); err != nil {
		if errors.Is(err, search.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		logging.FromContext(r.Context()).Error("delete document failed", slog.Any("error", err))
		writeError(w, http.StatusBadGateway, "storage backend unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeIngestError maps a pipeline ingest error to the right status code.
func (s *Server) writeIngestError(w http.ResponseWriter, log *slog.Logger, err error) {
	var partial *search.PartialIngestError
	switch {
	case errors.Is(err, search.ErrEmptyDocument):
		writeError(w, http.StatusBadRequest, "raw_text must not be empty")
	case errors.As(err, &partial):
		log.Warn("ingest partially failed",
			slog.String("document_id", partial.DocumentID),
			slog.Int("failed_chunks", len(partial.Failed)),
		)
		writeJSON(w, http.StatusBadGateway, ingestResponse{
			Success:    false,
			Message:    err.Error(),
			DocumentID: partial.DocumentID,
		})
	default:
		log.Error("ingest failed", slog.Any("error", err))
		writeError(w, http.StatusBadGateway, "ingest backend unavailable")
	}
}

// toDocument converts an ingest request into the pipeline's document type.
// The id is left empty — the pipeline assigns one.
func (req ingestRequest) toDocument() search.Document {
	return search.Document{
		Title:       req.Title,
		Author:      req.Author,
		Source:      req.Source,
		PublishedAt: req.PublishedAt,
		RawText:     req.RawText,
		Metadata:    req.Metadata,
	}
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body with the given status code.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
