// Package server provides the HTTP front door for the similarity search
// service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/tmrna-search/aligner"
	"github.com/wolfeidau/tmrna-search/backend"
	"github.com/wolfeidau/tmrna-search/cache"
	"github.com/wolfeidau/tmrna-search/corpus"
	"github.com/wolfeidau/tmrna-search/search"
	"github.com/wolfeidau/tmrna-search/telemetry"
)

// Config holds server configuration.
type Config struct {
	// Address to listen on (e.g., ":8000")
	Address string

	// CachePath is the root path for the result cache
	CachePath string

	// Store is the corpus store, opened by the caller
	Store corpus.Store

	// CacheTTL is the time-to-live for cached search responses.
	// Zero uses the cache default of one hour.
	CacheTTL time.Duration

	// AlignerBin is the path to the external aligner binary (optional).
	// When set together with AlignerDB, peptide searches run through the
	// aligner instead of the in-process scanner.
	AlignerBin string

	// AlignerDB is the aligner's preformatted peptide database path.
	AlignerDB string

	// AlignerTimeout bounds a single aligner invocation.
	// Zero uses the aligner default.
	AlignerTimeout time.Duration

	// Logger for the server
	Logger *slog.Logger
}

// Server is the HTTP server for the similarity search service.
type Server struct {
	config     Config
	httpServer *http.Server
	logger     *slog.Logger

	store   corpus.Store
	cache   *cache.Cache
	peptide search.Searcher
	codon   search.Searcher

	// alignerConfigured drives the health report.
	alignerConfigured bool
}

// New creates a new server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Address == "" {
		cfg.Address = ":8000"
	}
	if cfg.CachePath == "" {
		cfg.CachePath = "./cache"
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("corpus store is required")
	}

	fsBackend, err := backend.NewFilesystem(cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("creating filesystem backend: %w", err)
	}

	cacheOpts := []cache.Option{
		cache.WithLogger(cfg.Logger.With("component", "cache")),
	}
	if cfg.CacheTTL > 0 {
		cacheOpts = append(cacheOpts, cache.WithTTL(cfg.CacheTTL))
	}
	resultCache, err := cache.New(fsBackend, cacheOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating result cache: %w", err)
	}

	scanner := search.NewScanner(cfg.Store,
		search.WithLogger(cfg.Logger.With("component", "scanner")),
	)

	// Peptide searches go through the external aligner when one is
	// configured, otherwise through the in-process scanner. Codon searches
	// always use the scanner.
	var peptide search.Searcher = scanner
	alignerConfigured := cfg.AlignerBin != "" && cfg.AlignerDB != ""
	if alignerConfigured {
		runnerOpts := []aligner.RunnerOption{
			aligner.WithLogger(cfg.Logger.With("component", "aligner")),
		}
		if cfg.AlignerTimeout > 0 {
			runnerOpts = append(runnerOpts, aligner.WithTimeout(cfg.AlignerTimeout))
		}
		runner := aligner.NewRunner(cfg.AlignerBin, cfg.AlignerDB, runnerOpts...)
		peptide = aligner.NewSearcher(runner, cfg.Store, cfg.Logger.With("component", "aligner"))
	}

	s := &Server{
		config:            cfg,
		logger:            cfg.Logger,
		store:             cfg.Store,
		cache:             resultCache,
		peptide:           peptide,
		codon:             scanner,
		alignerConfigured: alignerConfigured,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.loggingMiddleware(s.corsMiddleware(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // aligner runs can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the server's root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// registerRoutes sets up the HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/search/peptide", s.handleSearchPeptide)
	mux.HandleFunc("POST /api/search/codon", s.handleSearchCodon)

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/info", s.handleInfo)

	// Prometheus metrics endpoint (returns 404 if not enabled)
	mux.Handle("GET /metrics", telemetry.PrometheusHandler())
}

// corsMiddleware adds permissive CORS headers and answers OPTIONS preflight
// requests so a browser frontend on another origin can call the API.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		h.Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests with structured fields for analysis.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		// Inject request tags so handlers can set cache_result and endpoint.
		r = telemetry.InjectTags(r)
		tags := telemetry.GetTags(r)

		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)

		attrs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"status_class", telemetry.StatusClass(wrapped.status),
			"duration_ms", duration.Milliseconds(),
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		}
		if tags.Endpoint != "" {
			attrs = append(attrs, "endpoint", tags.Endpoint)
		}
		if tags.CacheResult != "" {
			attrs = append(attrs, "cache_result", string(tags.CacheResult))
		}

		s.logger.Info("http request", attrs...)

		telemetry.RecordHTTP(r.Context(), r, wrapped.status, duration)
	})
}

// Start starts the server.
func (s *Server) Start() error {
	s.logger.Info("starting server", "address", s.config.Address)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	err := s.httpServer.Shutdown(ctx)
	s.cache.Close()
	return err
}

// Address returns the server's listen address.
func (s *Server) Address() string {
	return s.config.Address
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap returns the underlying ResponseWriter.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
