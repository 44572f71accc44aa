// Package corpus provides the read-only tmRNA record store. Records are
// bulk-loaded once and never mutated by the search path.
package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Record is one stored tmRNA entry. Identifier is unique across the corpus
// and is the join key between scan-time scoring and full-record retrieval.
type Record struct {
	Identifier     string `json:"identifier"`
	TagPeptide     string `json:"tag_peptide"`
	Codons         string `json:"codons"`
	TmrnaSequence  string `json:"tmrna_sequence"`
	OrganismName   string `json:"organism_name"`
	Accession      string `json:"accession"`
	PeptideLength  int    `json:"peptide_length"`
	SequenceLength int    `json:"sequence_length"`
}

// derive fills in attributes that are computed at ingestion time when the
// source data omits them: organism name (last word of the identifier),
// accession (identifier prefix before the first underscore), and the two
// cached length columns.
func (r *Record) derive() {
	if r.OrganismName == "" {
		if parts := strings.Fields(r.Identifier); len(parts) > 1 {
			r.OrganismName = parts[len(parts)-1]
		}
	}
	if r.Accession == "" {
		if idx := strings.IndexByte(r.Identifier, '_'); idx > 0 {
			r.Accession = r.Identifier[:idx]
		} else {
			r.Accession = r.Identifier
		}
	}
	if r.PeptideLength == 0 {
		stripped := strings.NewReplacer("?", "", "*", "").Replace(r.TagPeptide)
		r.PeptideLength = len(stripped)
	}
	if r.SequenceLength == 0 {
		r.SequenceLength = len(r.TmrnaSequence)
	}
}

// ReadRecords decodes a JSON array of records from r, deriving the
// computed columns for each.
func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}
	for i := range records {
		if records[i].Identifier == "" {
			return nil, fmt.Errorf("record %d: missing identifier", i)
		}
		records[i].derive()
	}
	return records, nil
}
