package aligner

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Hit is one row of the aligner's tabular output.
type Hit struct {
	SubjectID       string
	PercentIdentity float64
	EValue          string
	BitScore        float64
	AlignmentLength int
}

// ParseTabular reads tab-separated aligner output with fields
// [subject_id, percent_identity, e_value, bit_score, alignment_length, ...].
// Comment lines and malformed lines (short field count, non-numeric fields)
// are skipped with a warning; they never fail the whole parse.
func ParseTabular(r io.Reader, logger *slog.Logger) ([]Hit, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var hits []Hit
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			logger.Warn("skipping malformed aligner line",
				"line", lineNo,
				"fields", len(fields),
			)
			continue
		}

		pident, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			logger.Warn("skipping aligner line with bad identity",
				"line", lineNo,
				"value", fields[1],
			)
			continue
		}
		bitScore, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			logger.Warn("skipping aligner line with bad bit score",
				"line", lineNo,
				"value", fields[3],
			)
			continue
		}
		alnLen, err := strconv.Atoi(fields[4])
		if err != nil {
			logger.Warn("skipping aligner line with bad alignment length",
				"line", lineNo,
				"value", fields[4],
			)
			continue
		}

		hits = append(hits, Hit{
			SubjectID:       fields[0],
			PercentIdentity: pident,
			EValue:          fields[2],
			BitScore:        bitScore,
			AlignmentLength: alnLen,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading aligner output: %w", err)
	}
	return hits, nil
}
