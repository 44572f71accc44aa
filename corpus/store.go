package corpus

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record identifier does not exist.
var ErrNotFound = errors.New("record not found")

// Kind selects which sequence column a scan reads.
type Kind string

const (
	// KindPeptide selects the tag_peptide column.
	KindPeptide Kind = "peptide"
	// KindCodon selects the codons column.
	KindCodon Kind = "codon"
)

// SequenceRow is the minimal projection fetched for a corpus scan:
// the record identifier plus one raw sequence column.
type SequenceRow struct {
	Identifier string
	Sequence   string
}

// Stats describes the corpus for the info endpoint.
type Stats struct {
	TotalRecords    int `json:"total_records"`
	UniqueOrganisms int `json:"unique_organisms"`
}

// Store is the corpus query capability consumed by the scanner. The corpus
// is read-only from the search path; implementations must support
// concurrent readers.
type Store interface {
	// Sequences returns the identifier plus the sequence column for the
	// given kind, for every record in the corpus.
	Sequences(ctx context.Context, kind Kind) ([]SequenceRow, error)

	// Get returns the full record for an identifier, or ErrNotFound.
	Get(ctx context.Context, identifier string) (*Record, error)

	// Stats returns corpus-level statistics.
	Stats(ctx context.Context) (*Stats, error)
}
