package duckdb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-fpsnp/internal/reconcile"
	"github.com/inodb/vibe-fpsnp/internal/variant"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRun(id string, started time.Time) *Run {
	return &Run{
		ID:        id,
		StartedAt: started,
		Input: FileFingerprint{
			Path:    "/data/FP_SNPs_10k_GB38_twoAllelsFormat.tsv",
			Size:    4096,
			ModTime: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		},
		ReferenceDir: "/ref/hg38",
		Assembly:     "GRCh38",
		Total:        3,
		Accepted:     2,
		Rejected:     1,
	}
}

func testDecisions() []reconcile.Decision {
	cands := []*variant.Candidate{
		{Chrom: "chr1", Pos: 100, ID: "rs5", AlleleA: "A", AlleleB: "G"},
		{Chrom: "chr1", Pos: 200, ID: "rs6", AlleleA: "C", AlleleB: "T"},
		{Chrom: "chr2", Pos: 50, ID: "rs7", AlleleA: "A", AlleleB: "C"},
	}
	bases := []string{"G", "G", "C"} // rs6 mismatches

	decisions := make([]reconcile.Decision, len(cands))
	for i, c := range cands {
		decisions[i] = reconcile.Decision{Index: i, Candidate: c, Outcome: reconcile.Classify(c, bases[i])}
	}
	return decisions
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	runs, err := s.Runs()
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, s.Close())
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestWriteAndGetRun(t *testing.T) {
	s := openInMemory(t)
	started := time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)

	require.NoError(t, s.WriteRun(testRun("run-1", started)))

	got, err := s.GetRun("run-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "run-1", got.ID)
	assert.True(t, got.StartedAt.Equal(started))
	assert.Equal(t, "/data/FP_SNPs_10k_GB38_twoAllelsFormat.tsv", got.Input.Path)
	assert.Equal(t, int64(4096), got.Input.Size)
	assert.Equal(t, "GRCh38", got.Assembly)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 2, got.Accepted)
	assert.Equal(t, 1, got.Rejected)

	missing, err := s.GetRun("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWriteRunDuplicateID(t *testing.T) {
	s := openInMemory(t)
	started := time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)

	require.NoError(t, s.WriteRun(testRun("run-1", started)))
	assert.Error(t, s.WriteRun(testRun("run-1", started)))
}

func TestRunsOrdered(t *testing.T) {
	s := openInMemory(t)
	base := time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)

	require.NoError(t, s.WriteRun(testRun("later", base.Add(time.Hour))))
	require.NoError(t, s.WriteRun(testRun("earlier", base)))

	runs, err := s.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "earlier", runs[0].ID)
	assert.Equal(t, "later", runs[1].ID)
}

func TestNewRun(t *testing.T) {
	fp := FileFingerprint{Path: "/x.tsv", Size: 1}
	a := NewRun(fp, "/ref", "GRCh38")
	b := NewRun(fp, "/ref", "GRCh38")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, fp, a.Input)
	assert.False(t, a.StartedAt.IsZero())
}

func TestFromDecision(t *testing.T) {
	decisions := testDecisions()

	swapped := FromDecision("run-1", decisions[0])
	assert.Equal(t, DispositionRecord{
		RunID: "run-1", Seq: 0, Chrom: "chr1", Pos: 100, ID: "rs5",
		AlleleA: "A", AlleleB: "G", RefBase: "G", Ref: "G", Alt: "A",
		Disposition: "accepted",
	}, swapped)

	rejected := FromDecision("run-1", decisions[1])
	assert.Equal(t, "rejected_mismatch", rejected.Disposition)
	assert.Equal(t, "G", rejected.RefBase)
	assert.Empty(t, rejected.Ref)
	assert.Empty(t, rejected.Alt)
}

func TestWriteDispositionsAndRejections(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteRun(testRun("run-1", time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC))))

	var records []DispositionRecord
	for _, d := range testDecisions() {
		records = append(records, FromDecision("run-1", d))
	}
	require.NoError(t, s.WriteDispositions(records))

	rejections, err := s.Rejections("run-1")
	require.NoError(t, err)
	require.Len(t, rejections, 1)
	assert.Equal(t, "rs6", rejections[0].ID)
	assert.Equal(t, int64(1), rejections[0].Seq)

	none, err := s.Rejections("run-2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestWriteDispositionsEmpty(t *testing.T) {
	s := openInMemory(t)
	assert.NoError(t, s.WriteDispositions(nil))
}

func TestLookupSNPAcrossRuns(t *testing.T) {
	s := openInMemory(t)
	base := time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)
	decisions := testDecisions()

	for i, id := range []string{"run-1", "run-2"} {
		require.NoError(t, s.WriteRun(testRun(id, base.Add(time.Duration(i)*time.Hour))))
		require.NoError(t, s.WriteDispositions([]DispositionRecord{FromDecision(id, decisions[0])}))
	}

	found, err := s.LookupSNP("rs5")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "run-1", found[0].RunID)
	assert.Equal(t, "run-2", found[1].RunID)
	assert.Equal(t, "G", found[0].Ref)

	found, err = s.LookupSNP("rs404")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestStatFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.tsv")
	content := []byte("CHROM\tPOS\tID\tREF\tALT\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	fp, err := StatFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, fp.Path)
	assert.Equal(t, int64(len(content)), fp.Size)
	assert.False(t, fp.ModTime.IsZero())

	_, err = StatFile(filepath.Join(dir, "missing.tsv"))
	assert.True(t, os.IsNotExist(err))

	stdin, err := StatFile(StdinPath)
	require.NoError(t, err)
	assert.Equal(t, FileFingerprint{Path: "-"}, stdin)
}

func TestSaveRun(t *testing.T) {
	s := openInMemory(t)
	run := testRun("run-1", time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC))

	var records []DispositionRecord
	for _, d := range testDecisions() {
		records = append(records, FromDecision(run.ID, d))
	}
	require.NoError(t, s.SaveRun(run, records))

	got, err := s.GetRun("run-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	found, err := s.LookupSNP("rs7")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestSaveRun_FailedAppendLeavesNoRun(t *testing.T) {
	s := openInMemory(t)
	run := testRun("run-1", time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC))

	rec := FromDecision(run.ID, testDecisions()[0])
	err := s.SaveRun(run, []DispositionRecord{rec, rec}) // duplicate (run_id, seq)
	require.Error(t, err)

	got, err := s.GetRun("run-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	found, err := s.LookupSNP(rec.ID)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDeleteRun(t *testing.T) {
	s := openInMemory(t)
	base := time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)
	decisions := testDecisions()

	for i, id := range []string{"run-1", "run-2"} {
		run := testRun(id, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, s.SaveRun(run, []DispositionRecord{FromDecision(id, decisions[1])}))
	}

	require.NoError(t, s.DeleteRun("run-1"))
	require.NoError(t, s.DeleteRun("never-existed"))

	runs, err := s.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-2", runs[0].ID)

	rejections, err := s.Rejections("run-1")
	require.NoError(t, err)
	assert.Empty(t, rejections)
}
