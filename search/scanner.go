package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/wolfeidau/tmrna-search/corpus"
	"github.com/wolfeidau/tmrna-search/scoring"
)

// Searcher produces a ranked response for a search request. Scanner is the
// in-process implementation; the aligner adapter provides another.
type Searcher interface {
	Search(ctx context.Context, kind corpus.Kind, req Request) (*Response, error)
}

// Scanner scores a query against every record in the corpus. The scan is a
// linear pass over the full dataset with no indexing; that is acceptable
// because the corpus is bounded and static, and it is the principal
// scalability ceiling of this service.
type Scanner struct {
	store  corpus.Store
	matrix scoring.Matrix
	logger *slog.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithLogger sets the logger for the scanner.
func WithLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithMatrix sets the substitution matrix used for peptide scoring.
func WithMatrix(m scoring.Matrix) ScannerOption {
	return func(s *Scanner) {
		s.matrix = m
	}
}

// NewScanner creates a scanner over the given corpus store. The default
// substitution matrix is BLOSUM62.
func NewScanner(store corpus.Store, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		store:  store,
		matrix: scoring.Blosum62(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search validates the request, scans the corpus, and returns matches with
// similarity >= threshold ranked descending and truncated to MaxResults.
// Validation failures return *ValidationError before any store access.
func (s *Scanner) Search(ctx context.Context, kind corpus.Kind, req Request) (*Response, error) {
	start := time.Now()

	query, err := ValidateQuery(kind, req)
	if err != nil {
		return nil, err
	}
	threshold := req.EffectiveThreshold()

	rows, err := s.store.Sequences(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("fetching %s projection: %w", kind, err)
	}

	var results []ScoredResult
	scanned := 0
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidate := normalize(kind, row.Sequence)
		if len(candidate) < minLength(kind) {
			continue
		}
		scanned++

		similarity := s.score(kind, query, candidate)
		if similarity < threshold {
			continue
		}

		rec, err := s.store.Get(ctx, row.Identifier)
		if err != nil {
			return nil, fmt.Errorf("fetching record %s: %w", row.Identifier, err)
		}

		result := ScoredResult{
			Record:     *rec,
			Similarity: round2(similarity),
			EValue:     "N/A",
		}
		if kind == corpus.KindPeptide {
			result.Algorithm = AlgorithmPeptide
		}
		results = append(results, result)
	}

	Rank(results)
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}

	elapsed := time.Since(start)
	s.logger.Info("corpus scan complete",
		"kind", string(kind),
		"scanned", scanned,
		"matches", len(results),
		"threshold", threshold,
		"duration", elapsed,
	)

	return &Response{
		Results:     results,
		Total:       len(results),
		SearchTime:  round2(elapsed.Seconds()),
		QueryLength: len(query),
		Threshold:   threshold,
		Algorithm:   algorithm(kind),
	}, nil
}

// ValidateQuery normalizes the request sequence and enforces the minimum
// length for the kind. It returns the normalized query.
func ValidateQuery(kind corpus.Kind, req Request) (string, error) {
	if req.Sequence == "" {
		return "", validationErrorf("sequence is required")
	}

	query := normalize(kind, req.Sequence)
	if minLen := minLength(kind); len(query) < minLen {
		unit := "amino acids"
		if kind == corpus.KindCodon {
			unit = "nucleotides"
		}
		return "", validationErrorf("sequence too short (minimum %d %s)", minLen, unit)
	}

	return query, nil
}

func (s *Scanner) score(kind corpus.Kind, query, candidate string) float64 {
	if kind == corpus.KindPeptide {
		return scoring.PeptideSimilarity(s.matrix, query, candidate)
	}
	return scoring.NucleotideSimilarity(query, candidate)
}

func normalize(kind corpus.Kind, raw string) string {
	if kind == corpus.KindPeptide {
		return scoring.NormalizePeptide(raw)
	}
	return scoring.NormalizeCodon(raw)
}

func minLength(kind corpus.Kind) int {
	if kind == corpus.KindPeptide {
		return MinPeptideLength
	}
	return MinCodonLength
}

func algorithm(kind corpus.Kind) string {
	if kind == corpus.KindPeptide {
		return AlgorithmPeptide
	}
	return AlgorithmCodon
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
