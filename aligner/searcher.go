package aligner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/wolfeidau/tmrna-search/corpus"
	"github.com/wolfeidau/tmrna-search/search"
)

// Algorithm names the external aligner in responses.
const Algorithm = "DIAMOND"

// Searcher runs peptide searches through the external aligner and joins the
// hits back to the corpus store. It satisfies search.Searcher so the front
// door can swap it in for the in-process scanner without changing the
// caching or ranking behavior.
type Searcher struct {
	runner *Runner
	store  corpus.Store
	logger *slog.Logger
}

// NewSearcher creates an aligner-backed searcher.
func NewSearcher(runner *Runner, store corpus.Store, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{runner: runner, store: store, logger: logger}
}

// Search validates the request, runs the aligner, filters hits below the
// threshold, and joins surviving subject IDs to full corpus records.
func (s *Searcher) Search(ctx context.Context, kind corpus.Kind, req search.Request) (*search.Response, error) {
	start := time.Now()

	query, err := search.ValidateQuery(kind, req)
	if err != nil {
		return nil, err
	}
	threshold := req.EffectiveThreshold()

	hits, err := s.runner.Run(ctx, query, threshold)
	if err != nil {
		return nil, err
	}

	var results []search.ScoredResult
	for _, hit := range hits {
		if hit.PercentIdentity < threshold {
			continue
		}

		rec, err := s.store.Get(ctx, hit.SubjectID)
		if err != nil {
			if errors.Is(err, corpus.ErrNotFound) {
				s.logger.Warn("aligner hit has no corpus record", "subject_id", hit.SubjectID)
				continue
			}
			return nil, fmt.Errorf("fetching record %s: %w", hit.SubjectID, err)
		}

		results = append(results, search.ScoredResult{
			Record:          *rec,
			Similarity:      math.Round(hit.PercentIdentity*100) / 100,
			EValue:          hit.EValue,
			Algorithm:       Algorithm,
			BitScore:        hit.BitScore,
			AlignmentLength: hit.AlignmentLength,
		})
	}

	search.Rank(results)
	if len(results) > search.MaxResults {
		results = results[:search.MaxResults]
	}

	elapsed := time.Since(start)
	return &search.Response{
		Results:     results,
		Total:       len(results),
		SearchTime:  math.Round(elapsed.Seconds()*100) / 100,
		QueryLength: len(query),
		Threshold:   threshold,
		Algorithm:   Algorithm,
	}, nil
}

var _ search.Searcher = (*Searcher)(nil)
