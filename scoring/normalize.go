package scoring

import "strings"

// NormalizePeptide strips annotation characters from a raw tag peptide and
// uppercases it: placeholder residues ('?', '*') and all whitespace are
// removed. Empty input yields empty output. The same normalization must be
// applied to both the query and every stored sequence before scoring.
func NormalizePeptide(raw string) string {
	return strings.ToUpper(stripSequence(raw, func(c byte) bool {
		return c == '?' || c == '*'
	}))
}

// NormalizeCodon strips gap characters ('-') and whitespace from a raw
// codon sequence and lowercases it.
func NormalizeCodon(raw string) string {
	return strings.ToLower(stripSequence(raw, func(c byte) bool {
		return c == '-'
	}))
}

func stripSequence(raw string, drop func(byte) bool) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if drop(c) || c == ' ' || c == '\n' || c == '\r' || c == '\t' {
			continue
		}
		b.WriteByte(c)
	}
	return strings.TrimSpace(b.String())
}
