package aligner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/tmrna-search/corpus"
	"github.com/wolfeidau/tmrna-search/search"
)

type mapStore struct {
	records map[string]corpus.Record
}

func (m *mapStore) Sequences(context.Context, corpus.Kind) ([]corpus.SequenceRow, error) {
	return nil, nil
}

func (m *mapStore) Get(_ context.Context, id string) (*corpus.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, corpus.ErrNotFound
	}
	return &rec, nil
}

func (m *mapStore) Stats(context.Context) (*corpus.Stats, error) {
	return &corpus.Stats{TotalRecords: len(m.records)}, nil
}

// fakeAligner writes a script that emits canned tabular output to the path
// given as the --out argument, standing in for the real binary.
func fakeAligner(t *testing.T, tsv string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake aligner script requires a POSIX shell")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "fake-aligner")
	body := `#!/bin/sh
out=""
prev=""
for arg in "$@"; do
	if [ "$prev" = "--out" ]; then out="$arg"; fi
	prev="$arg"
done
cat > "$out" <<'EOF'
` + tsv + `
EOF
`
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))
	return script
}

func TestSearcherJoinsHitsToRecords(t *testing.T) {
	bin := fakeAligner(t, "rec-1\t98.50\t1.2e-30\t120.5\t11\nrec-2\t40.00\t0.5\t20.0\t11\nghost\t99.00\t1e-40\t130.0\t11")
	store := &mapStore{records: map[string]corpus.Record{
		"rec-1": {Identifier: "rec-1", TagPeptide: "AANDENYALAA"},
		"rec-2": {Identifier: "rec-2", TagPeptide: "GKTNSFNQNVA"},
	}}

	searcher := NewSearcher(NewRunner(bin, "peptide_db"), store, nil)

	th := 50.0
	resp, err := searcher.Search(context.Background(), corpus.KindPeptide, search.Request{
		Sequence:  "AANDENYALAA",
		Threshold: &th,
	})
	require.NoError(t, err)

	// rec-2 is under threshold; ghost has no corpus record.
	require.Equal(t, 1, resp.Total)
	require.Equal(t, "rec-1", resp.Results[0].Identifier)
	require.Equal(t, 98.5, resp.Results[0].Similarity)
	require.Equal(t, "1.2e-30", resp.Results[0].EValue)
	require.Equal(t, 120.5, resp.Results[0].BitScore)
	require.Equal(t, 11, resp.Results[0].AlignmentLength)
	require.Equal(t, Algorithm, resp.Algorithm)
}

func TestSearcherValidatesBeforeRunning(t *testing.T) {
	// Binary path that does not exist: validation must fail first.
	searcher := NewSearcher(NewRunner("/nonexistent/aligner", "db"), &mapStore{}, nil)

	_, err := searcher.Search(context.Background(), corpus.KindPeptide, search.Request{Sequence: "AN"})

	var verr *search.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRunnerTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("sleep script requires a POSIX shell")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "slow-aligner")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsleep 10\n"), 0o755))

	runner := NewRunner(script, "db", WithTimeout(100*time.Millisecond))

	_, err := runner.Run(context.Background(), "AANDENYALAA", 50)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestRunnerCleansUpTempFiles(t *testing.T) {
	bin := fakeAligner(t, "rec-1\t98.50\t1.2e-30\t120.5\t11")
	runner := NewRunner(bin, "db")

	before := countTempDirs(t)
	_, err := runner.Run(context.Background(), "AANDENYALAA", 50)
	require.NoError(t, err)
	require.Equal(t, before, countTempDirs(t))
}

func countTempDirs(t *testing.T) int {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "tmrna-aligner-*"))
	require.NoError(t, err)
	return len(matches)
}
