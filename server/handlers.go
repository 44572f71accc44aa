package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	tmrnasearch "github.com/wolfeidau/tmrna-search"
	"github.com/wolfeidau/tmrna-search/aligner"
	"github.com/wolfeidau/tmrna-search/corpus"
	"github.com/wolfeidau/tmrna-search/search"
	"github.com/wolfeidau/tmrna-search/telemetry"
)

// maxBodySize bounds search request bodies. Queries are short sequences; a
// megabyte is already generous.
const maxBodySize = 1 << 20

func (s *Server) handleSearchPeptide(w http.ResponseWriter, r *http.Request) {
	s.handleSearch(w, r, "search_peptide", corpus.KindPeptide, s.peptide)
}

func (s *Server) handleSearchCodon(w http.ResponseWriter, r *http.Request) {
	s.handleSearch(w, r, "search_codon", corpus.KindCodon, s.codon)
}

// handleSearch is the shared search flow: fingerprint the raw body, serve
// from the result cache on a hit, otherwise run the searcher and cache the
// successful response. Error responses are never cached.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request, op string, kind corpus.Kind, searcher search.Searcher) {
	ctx := r.Context()
	telemetry.SetEndpoint(r, op)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body failed")
		return
	}

	var req search.Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return
	}

	key, err := tmrnasearch.Fingerprint(op, body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return
	}

	if cached, ok := s.cache.Get(ctx, key); ok {
		telemetry.SetCacheResult(r, telemetry.CacheHit)
		telemetry.RecordCacheLookup(ctx, op, telemetry.CacheHit)
		writeRawJSON(w, http.StatusOK, cached)
		return
	}
	telemetry.SetCacheResult(r, telemetry.CacheMiss)
	telemetry.RecordCacheLookup(ctx, op, telemetry.CacheMiss)

	start := time.Now()
	resp, err := searcher.Search(ctx, kind, req)
	if err != nil {
		s.writeSearchError(w, r, op, err)
		return
	}
	telemetry.RecordScan(ctx, string(kind), resp.Total, time.Since(start))

	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("encoding search response failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := s.cache.Put(ctx, key, op, payload); err != nil {
		// Serving the response matters more than caching it.
		s.logger.Warn("caching search response failed", "op", op, "error", err)
	}

	writeRawJSON(w, http.StatusOK, payload)
}

// writeSearchError maps search failures to status codes: validation errors
// are the client's fault, aligner timeouts are a gateway timeout, everything
// else is a plain 500 with the detail kept in the logs.
func (s *Server) writeSearchError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *search.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, aligner.ErrTimeout):
		s.logger.Error("aligner timed out", "op", op, "error", err)
		writeError(w, http.StatusGatewayTimeout, "search timed out")
	case errors.Is(err, r.Context().Err()):
		// Client went away; nobody is reading the response.
		s.logger.Debug("search canceled", "op", op, "error", err)
	default:
		s.logger.Error("search failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// handleHealth reports liveness plus whether the major dependencies look
// usable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	databaseOK := true
	if _, err := s.store.Stats(r.Context()); err != nil {
		databaseOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"database": databaseOK,
		"aligner":  s.alignerConfigured,
	})
}

// handleInfo returns corpus-level statistics.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("reading corpus stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
