package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/tmrna-search/corpus"
	"github.com/wolfeidau/tmrna-search/search"
)

type stubStore struct {
	records       map[string]corpus.Record
	sequenceCalls int
	failStats     bool
}

func (s *stubStore) Sequences(_ context.Context, kind corpus.Kind) ([]corpus.SequenceRow, error) {
	s.sequenceCalls++
	var rows []corpus.SequenceRow
	for _, rec := range s.records {
		seq := rec.TagPeptide
		if kind == corpus.KindCodon {
			seq = rec.Codons
		}
		rows = append(rows, corpus.SequenceRow{Identifier: rec.Identifier, Sequence: seq})
	}
	return rows, nil
}

func (s *stubStore) Get(_ context.Context, id string) (*corpus.Record, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, corpus.ErrNotFound
	}
	return &rec, nil
}

func (s *stubStore) Stats(context.Context) (*corpus.Stats, error) {
	if s.failStats {
		return nil, errors.New("database unavailable")
	}
	organisms := map[string]struct{}{}
	for _, rec := range s.records {
		if rec.OrganismName != "" {
			organisms[rec.OrganismName] = struct{}{}
		}
	}
	return &corpus.Stats{TotalRecords: len(s.records), UniqueOrganisms: len(organisms)}, nil
}

func newTestServer(t *testing.T, store corpus.Store) *Server {
	t.Helper()
	srv, err := New(Config{
		CachePath: t.TempDir(),
		Store:     store,
	})
	require.NoError(t, err)
	t.Cleanup(func() { srv.cache.Close() })
	return srv
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, r)
	return rec
}

func TestSearchPeptide(t *testing.T) {
	store := &stubStore{records: map[string]corpus.Record{
		"rec-1": {Identifier: "rec-1", TagPeptide: "AANDENYALAA"},
	}}
	srv := newTestServer(t, store)

	rec := doRequest(srv, http.MethodPost, "/api/search/peptide", `{"sequence":"AANDENYALAA"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp search.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	require.Equal(t, "rec-1", resp.Results[0].Identifier)
	require.Equal(t, 100.0, resp.Results[0].Similarity)
	require.Equal(t, search.AlgorithmPeptide, resp.Algorithm)
	require.Equal(t, 11, resp.QueryLength)
	require.Equal(t, search.DefaultThreshold, resp.Threshold)
}

func TestSearchCodon(t *testing.T) {
	store := &stubStore{records: map[string]corpus.Record{
		"rec-1": {Identifier: "rec-1", Codons: "aaaaaaaaaaaaaaa"},
	}}
	srv := newTestServer(t, store)

	rec := doRequest(srv, http.MethodPost, "/api/search/codon", `{"sequence":"aaaaaaaaaaaaaaa"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp search.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	require.Equal(t, search.AlgorithmCodon, resp.Algorithm)
}

func TestSearchServedFromCache(t *testing.T) {
	store := &stubStore{records: map[string]corpus.Record{
		"rec-1": {Identifier: "rec-1", TagPeptide: "AANDENYALAA"},
	}}
	srv := newTestServer(t, store)

	first := doRequest(srv, http.MethodPost, "/api/search/peptide", `{"sequence":"AANDENYALAA","threshold":50}`)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, 1, store.sequenceCalls)

	// Same request with permuted keys fingerprints identically, so the
	// corpus is not scanned again.
	second := doRequest(srv, http.MethodPost, "/api/search/peptide", `{"threshold":50,"sequence":"AANDENYALAA"}`)
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, 1, store.sequenceCalls)
	require.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestSearchValidationErrorsNotCached(t *testing.T) {
	store := &stubStore{}
	srv := newTestServer(t, store)

	for range 2 {
		rec := doRequest(srv, http.MethodPost, "/api/search/peptide", `{"sequence":"AN"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Contains(t, body["error"], "too short")
	}

	// Both attempts reached the searcher; neither produced a cache entry,
	// and validation rejects before the corpus is touched.
	require.Equal(t, 0, store.sequenceCalls)
}

func TestSearchMalformedBody(t *testing.T) {
	srv := newTestServer(t, &stubStore{})

	rec := doRequest(srv, http.MethodPost, "/api/search/peptide", `{"sequence":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["error"])
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubStore{})

	rec := doRequest(srv, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "healthy", body["status"])
	require.Equal(t, true, body["database"])
	require.Equal(t, false, body["aligner"])
}

func TestHealthReportsDatabaseDown(t *testing.T) {
	srv := newTestServer(t, &stubStore{failStats: true})

	rec := doRequest(srv, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "healthy", body["status"])
	require.Equal(t, false, body["database"])
}

func TestInfo(t *testing.T) {
	store := &stubStore{records: map[string]corpus.Record{
		"rec-1": {Identifier: "rec-1", OrganismName: "Escherichia coli"},
		"rec-2": {Identifier: "rec-2", OrganismName: "Escherichia coli"},
		"rec-3": {Identifier: "rec-3", OrganismName: "Bacillus subtilis"},
	}}
	srv := newTestServer(t, store)

	rec := doRequest(srv, http.MethodGet, "/api/info", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats corpus.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, 3, stats.TotalRecords)
	require.Equal(t, 2, stats.UniqueOrganisms)
}

func TestInfoStoreFailure(t *testing.T) {
	srv := newTestServer(t, &stubStore{failStats: true})

	rec := doRequest(srv, http.MethodGet, "/api/info", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, &stubStore{})

	rec := doRequest(srv, http.MethodOptions, "/api/search/peptide", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORSHeadersOnResponses(t *testing.T) {
	srv := newTestServer(t, &stubStore{})

	rec := doRequest(srv, http.MethodGet, "/api/health", "")
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsNotFoundWhenDisabled(t *testing.T) {
	srv := newTestServer(t, &stubStore{})

	rec := doRequest(srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(Config{CachePath: t.TempDir()})
	require.Error(t, err)
}
