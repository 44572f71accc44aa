// Package search implements the corpus scan: it applies the similarity
// scorers to every stored sequence, filters by threshold, and ranks the
// surviving records.
package search

import (
	"fmt"

	"github.com/wolfeidau/tmrna-search/corpus"
)

const (
	// DefaultThreshold is used when a request omits the threshold.
	DefaultThreshold = 50.0

	// MinPeptideLength is the minimum normalized peptide length accepted
	// for both queries and stored candidates.
	MinPeptideLength = 3

	// MinCodonLength is the minimum normalized codon length accepted for
	// both queries and stored candidates.
	MinCodonLength = 15

	// MaxResults caps the ranked result set.
	MaxResults = 500

	// AlgorithmPeptide names the in-process peptide scorer in responses.
	AlgorithmPeptide = "BLOSUM62"

	// AlgorithmCodon names the in-process nucleotide scorer in responses.
	AlgorithmCodon = "Simple Nucleotide Alignment"
)

// Request is a transient search input. Threshold is a percentage in [0,100];
// nil means DefaultThreshold.
type Request struct {
	Sequence  string   `json:"sequence"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// EffectiveThreshold resolves the threshold default.
func (r Request) EffectiveThreshold() float64 {
	if r.Threshold == nil {
		return DefaultThreshold
	}
	return *r.Threshold
}

// ScoredResult is a full corpus record augmented with scoring metadata.
// EValue is "N/A" for in-process scoring; the aligner adapter fills in the
// real value along with bit score and alignment length.
type ScoredResult struct {
	corpus.Record
	Similarity      float64 `json:"similarity"`
	EValue          string  `json:"e_value"`
	Algorithm       string  `json:"algorithm,omitempty"`
	BitScore        float64 `json:"bit_score,omitempty"`
	AlignmentLength int     `json:"alignment_length,omitempty"`
}

// Response is the search result envelope returned to the front door.
type Response struct {
	Results     []ScoredResult `json:"results"`
	Total       int            `json:"total"`
	SearchTime  float64        `json:"search_time"`
	QueryLength int            `json:"query_length"`
	Threshold   float64        `json:"threshold"`
	Algorithm   string         `json:"algorithm"`
}

// ValidationError reports a rejected request, an empty or too-short
// sequence. It maps to a 4xx status and is never cached.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
