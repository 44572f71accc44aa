// Command tmrna-search serves similarity searches over a tmRNA corpus.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"github.com/wolfeidau/tmrna-search/corpus"
	"github.com/wolfeidau/tmrna-search/server"
	"github.com/wolfeidau/tmrna-search/telemetry"
)

var version = "dev"

var cli struct {
	Listen    string        `help:"Address to listen on." default:":8000"`
	DB        string        `help:"Path to the corpus database file." default:"./tmrna.db"`
	CacheDir  string        `help:"Directory for the result cache." default:"./cache"`
	CacheTTL  time.Duration `help:"Result cache time-to-live." default:"1h"`
	Import    string        `help:"Load records from a JSON array file into the corpus, then exit." type:"existingfile"`
	LogLevel  string        `help:"Log level." enum:"debug,info,warn,error" default:"info"`
	LogFormat string        `help:"Log format." enum:"text,json" default:"text"`

	AlignerBin     string        `help:"Path to the external aligner binary. Peptide searches use it when set together with --aligner-db."`
	AlignerDB      string        `help:"Path to the aligner's preformatted peptide database."`
	AlignerTimeout time.Duration `help:"Timeout for a single aligner invocation." default:"60s"`

	OTLPEndpoint string           `help:"OTLP gRPC endpoint for metrics export (disabled when empty)."`
	Prometheus   bool             `help:"Expose Prometheus metrics at /metrics." default:"true" negatable:""`
	Version      kong.VersionFlag `help:"Print version and exit."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("tmrna-search"),
		kong.Description("tmRNA similarity search service."),
		kong.Vars{"version": version},
	)
	kctx.FatalIfErrorf(run())
}

func run() error {
	logger := newLogger()
	slog.SetDefault(logger)

	store, err := corpus.OpenBolt(cli.DB, corpus.WithLogger(logger.With("component", "corpus")))
	if err != nil {
		return fmt.Errorf("opening corpus database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cli.Import != "" {
		return importRecords(ctx, logger, store)
	}

	shutdownMetrics, err := telemetry.InitMetrics(ctx, telemetry.MetricsConfig{
		ServiceName:      "tmrna-search",
		ServiceVersion:   version,
		OTLPEndpoint:     cli.OTLPEndpoint,
		EnablePrometheus: cli.Prometheus,
	})
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			logger.Warn("metrics shutdown failed", "error", err)
		}
	}()

	srv, err := server.New(server.Config{
		Address:        cli.Listen,
		CachePath:      cli.CacheDir,
		Store:          store,
		CacheTTL:       cli.CacheTTL,
		AlignerBin:     cli.AlignerBin,
		AlignerDB:      cli.AlignerDB,
		AlignerTimeout: cli.AlignerTimeout,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	logger.Info("server started",
		"version", version,
		"address", srv.Address(),
		"db", cli.DB,
		"cache_ttl", cli.CacheTTL,
		"aligner", cli.AlignerBin != "" && cli.AlignerDB != "",
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// importRecords bulk-loads a JSON array of records into the corpus.
func importRecords(ctx context.Context, logger *slog.Logger, store *corpus.BoltStore) error {
	f, err := os.Open(cli.Import)
	if err != nil {
		return fmt.Errorf("opening import file: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, err := corpus.ReadRecords(f)
	if err != nil {
		return fmt.Errorf("reading records: %w", err)
	}

	start := time.Now()
	if err := store.Import(ctx, records); err != nil {
		return fmt.Errorf("importing records: %w", err)
	}

	logger.Info("import complete",
		"records", len(records),
		"db", cli.DB,
		"duration", time.Since(start).String(),
	)
	return nil
}

func newLogger() *slog.Logger {
	var level slog.Level
	switch cli.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cli.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{Level: level})
	}
	return slog.New(handler)
}
