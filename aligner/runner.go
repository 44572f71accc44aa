// Package aligner adapts an external high-performance aligner (DIAMOND or
// compatible) to the same result shape the in-process scanner produces, so
// ranking and caching downstream are algorithm-agnostic.
package aligner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// DefaultTimeout is the hard wall-clock bound on one aligner invocation.
const DefaultTimeout = 60 * time.Second

// ErrTimeout is returned when the aligner exceeds its wall-clock bound.
// The operation is treated as failed and is not retried.
var ErrTimeout = errors.New("aligner timed out")

// Runner invokes the external aligner binary against a prebuilt database.
type Runner struct {
	bin     string
	db      string
	timeout time.Duration
	logger  *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTimeout sets the wall-clock bound for one invocation.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithLogger sets the logger for the runner.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a runner for the given binary and database paths.
func NewRunner(bin, db string, opts ...RunnerOption) *Runner {
	r := &Runner{
		bin:     bin,
		db:      db,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run aligns the query sequence against the database and returns the parsed
// hits. Temporary query and output files are removed on every path, success
// or failure. A run that exceeds the timeout returns ErrTimeout.
func (r *Runner) Run(ctx context.Context, query string, minIdentity float64) ([]Hit, error) {
	dir, err := os.MkdirTemp("", "tmrna-aligner-*")
	if err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	queryPath := filepath.Join(dir, "query.fa")
	outPath := filepath.Join(dir, "hits.tsv")

	fasta := fmt.Sprintf(">query\n%s\n", query)
	if err := os.WriteFile(queryPath, []byte(fasta), 0o600); err != nil {
		return nil, fmt.Errorf("writing query file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.bin,
		"blastp",
		"--db", r.db,
		"--query", queryPath,
		"--out", outPath,
		"--outfmt", "6", "sseqid", "pident", "evalue", "bitscore", "length",
		"--id", fmt.Sprintf("%.2f", minIdentity),
		"--quiet",
	)

	start := time.Now()
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			r.logger.Warn("aligner timed out", "timeout", r.timeout)
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("aligner failed: %w: %s", err, output)
	}

	out, err := os.Open(outPath)
	if err != nil {
		return nil, fmt.Errorf("opening aligner output: %w", err)
	}
	defer func() { _ = out.Close() }()

	hits, err := ParseTabular(out, r.logger)
	if err != nil {
		return nil, err
	}

	r.logger.Info("aligner run complete",
		"hits", len(hits),
		"duration", time.Since(start),
	)
	return hits, nil
}
