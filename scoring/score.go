package scoring

// PeptideSimilarity scores two normalized peptide sequences against the
// substitution matrix and returns a similarity percentage in [0, 100].
//
// This is an ungapped, zero-offset comparison, not a true alignment: each
// position of the shorter sequence is scored against the same position of
// the other, the total is divided by the best score the query could attain
// against itself, and the ratio is scaled by a length penalty
// (minLen/maxLen). Because the denominator derives from q alone, the
// function is not symmetric in its arguments; PeptideSimilarity(q, s) need
// not equal PeptideSimilarity(s, q). That asymmetry is intentional and
// relied upon by callers.
func PeptideSimilarity(m Matrix, q, s string) float64 {
	minLen := len(q)
	maxLen := len(s)
	if minLen > maxLen {
		minLen, maxLen = maxLen, minLen
	}
	if minLen == 0 {
		return 0
	}

	score := 0
	maxPossible := 0
	for i := 0; i < minLen; i++ {
		score += m.Score(q[i], s[i])
		maxPossible += m.Score(q[i], q[i])
	}

	lengthPenalty := float64(minLen) / float64(maxLen)

	similarity := 0.0
	if maxPossible > 0 {
		similarity = (float64(score) / float64(maxPossible)) * 100 * lengthPenalty
	}
	if similarity < 0 {
		return 0
	}
	return similarity
}

// NucleotideSimilarity returns the positional identity of two normalized
// codon sequences as a percentage of matching positions over the shorter
// length. No length penalty is applied, so unlike the peptide scorer this
// comparison is symmetric for equal-length inputs.
func NucleotideSimilarity(q, s string) float64 {
	minLen := len(q)
	if len(s) < minLen {
		minLen = len(s)
	}
	if minLen == 0 {
		return 0
	}

	matches := 0
	for i := 0; i < minLen; i++ {
		if q[i] == s[i] {
			matches++
		}
	}
	return (float64(matches) / float64(minLen)) * 100
}
