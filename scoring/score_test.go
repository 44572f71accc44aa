package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPeptideSelfSimilarity(t *testing.T) {
	m := Blosum62()

	for _, q := range []string{"AND", "MKTAYIAKQR", "W", "ACDEFGHIKLMNPQRSTVWY"} {
		require.InDelta(t, 100.0, PeptideSimilarity(m, q, q), 1e-9, "self similarity for %q", q)
	}
}

func TestPeptideSimilarityBounds(t *testing.T) {
	m := Blosum62()

	pairs := [][2]string{
		{"AND", "WWW"},
		{"AAAA", "WYWY"},
		{"MKT", "MKTAYIAKQR"},
		{"PPPPP", "GGGGG"},
	}
	for _, p := range pairs {
		sim := PeptideSimilarity(m, p[0], p[1])
		require.GreaterOrEqual(t, sim, 0.0, "%q vs %q", p[0], p[1])
		require.LessOrEqual(t, sim, 100.0, "%q vs %q", p[0], p[1])
	}
}

// The denominator is the query's self-identity score, so swapping the
// arguments changes the result. This mirrors the behavior of the system
// this service replaces and is deliberately preserved.
func TestPeptideSimilarityAsymmetric(t *testing.T) {
	m := Blosum62()

	// A scores 4 against itself, C scores 9; the cross score C/A is 0.
	// q="AC": 4+0 over 4+9 -> 30.77. q="AA": 4+0 over 4+4 -> 50.
	ab := PeptideSimilarity(m, "AC", "AA")
	ba := PeptideSimilarity(m, "AA", "AC")

	require.InDelta(t, 100.0*4.0/13.0, ab, 1e-9)
	require.InDelta(t, 50.0, ba, 1e-9)
	require.NotEqual(t, ab, ba)
}

func TestPeptideSimilarityLengthPenalty(t *testing.T) {
	m := Blosum62()

	// Identical prefix, double-length subject: raw 100 scaled by 3/6.
	require.InDelta(t, 50.0, PeptideSimilarity(m, "AND", "ANDAND"), 1e-9)
}

func TestPeptideSimilarityEmpty(t *testing.T) {
	m := Blosum62()

	require.Zero(t, PeptideSimilarity(m, "", "AND"))
	require.Zero(t, PeptideSimilarity(m, "AND", ""))
	require.Zero(t, PeptideSimilarity(m, "", ""))
}

func TestPeptideSimilarityUnknownResidues(t *testing.T) {
	m := Blosum62()

	// All-unknown query: max possible score is negative, similarity is 0.
	require.Zero(t, PeptideSimilarity(m, "XXX", "XXX"))

	// Unknown pairs take the default penalty.
	require.Equal(t, -4, m.Score('X', 'A'))
	require.Equal(t, -4, m.Score('A', 'X'))
}

func TestMatrixSymmetricLookup(t *testing.T) {
	m := Blosum62()

	// Only one order is present in the table; lookup tries both.
	require.Equal(t, m.Score('A', 'R'), m.Score('R', 'A'))
	require.Equal(t, -1, m.Score('R', 'A'))
	require.Equal(t, 11, m.Score('W', 'W'))
}

func TestNewMatrixInjectable(t *testing.T) {
	m := NewMatrix(map[Pair]int{{'A', 'A'}: 1, {'B', 'B'}: 1, {'A', 'B'}: 1}, -9)

	require.InDelta(t, 100.0, PeptideSimilarity(m, "AB", "BA"), 1e-9)
	require.Equal(t, -9, m.Score('A', 'Z'))
	require.Equal(t, -9, m.DefaultPenalty())
}

func TestNucleotideSimilarityExact(t *testing.T) {
	q := "aaaaaaaaaaaaaaa" // 15 a's
	require.InDelta(t, 100.0, NucleotideSimilarity(q, q), 1e-9)
}

func TestNucleotideSimilarityMismatches(t *testing.T) {
	q := "aaaaaaaaaaaaaaa"
	s := "aaaatataaaaaaag" // 3 positions differ
	require.InDelta(t, 80.0, NucleotideSimilarity(q, s), 1e-9)
}

func TestNucleotideSimilaritySymmetricEqualLength(t *testing.T) {
	q := "acgtacgtacgtacg"
	s := "acgaacgtacctacg"
	require.Equal(t, NucleotideSimilarity(q, s), NucleotideSimilarity(s, q))
}

func TestNucleotideSimilarityNoLengthPenalty(t *testing.T) {
	// The shorter length is the denominator; a longer subject costs nothing.
	require.InDelta(t, 100.0, NucleotideSimilarity("acgtacgtacgtacg", "acgtacgtacgtacgtttttt"), 1e-9)
}

func TestNucleotideSimilarityEmpty(t *testing.T) {
	require.Zero(t, NucleotideSimilarity("", "acg"))
	require.Zero(t, NucleotideSimilarity("acg", ""))
}

func TestNormalizePeptide(t *testing.T) {
	require.Equal(t, "AND", NormalizePeptide("a?n*d"))
	require.Equal(t, "MKT", NormalizePeptide("  m k\nt  "))
	require.Equal(t, "AND", NormalizePeptide("AND"))
	require.Equal(t, "", NormalizePeptide(""))
	require.Equal(t, "", NormalizePeptide("?*? \n"))
}

func TestNormalizeCodon(t *testing.T) {
	require.Equal(t, "acgt", NormalizeCodon("AC-GT"))
	require.Equal(t, "acgt", NormalizeCodon(" ac\ngt "))
	require.Equal(t, "", NormalizeCodon("---"))
}
