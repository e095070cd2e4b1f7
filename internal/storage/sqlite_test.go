package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := &Run{Mode: "ortho", SourceTaxon: "NCBITaxon:9606", TargetTaxon: "NCBITaxon:10090"}
	require.NoError(t, store.BeginRun(ctx, run))
	require.NotEmpty(t, run.ID)
	assert.Equal(t, "running", run.Status)

	run.Status = "ok"
	run.OutputPath = "output/mgi-hgnc-ortho.gaf"
	run.Counters = map[string]float64{"generated": 12, "output_rows": 10}
	require.NoError(t, store.FinishRun(ctx, run))

	loaded, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "ortho", loaded.Mode)
	assert.Equal(t, "ok", loaded.Status)
	assert.Equal(t, "output/mgi-hgnc-ortho.gaf", loaded.OutputPath)
	assert.Equal(t, 12.0, loaded.Counters["generated"])
	assert.False(t, loaded.FinishedAt.IsZero())
}

func TestSQLiteStore_GetRun_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.FinishRun(context.Background(), &Run{ID: "missing", Status: "ok"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListRuns_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, mode := range []string{"ortho", "p2g", "ortho"} {
		r := &Run{Mode: mode, StartedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, store.BeginRun(ctx, r))
	}

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
	assert.Equal(t, "p2g", runs[1].Mode)
}

func TestSQLiteStore_Diagnostics(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := &Run{Mode: "ortho"}
	require.NoError(t, store.BeginRun(ctx, run))

	require.NoError(t, store.SaveRejections(ctx, run.ID, []Rejection{
		{Bucket: "evidence", Subject: "HGNC:1", Object: "GO:0005515", Evidence: "IEA"},
		{Bucket: "evidence", Subject: "HGNC:2", Object: "GO:0005515", Evidence: "ND"},
		{Bucket: "negated", Subject: "HGNC:3", Object: "GO:0003674"},
	}))
	require.NoError(t, store.SaveSkips(ctx, run.ID, []Skip{
		{Reason: "non_1to1_bp", Subject: "HGNC:4", Target: "MGI:1", Object: "GO:0008150"},
	}))

	rejections, err := store.RejectionCounts(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"evidence": 2, "negated": 1}, rejections)

	skips, err := store.SkipCounts(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"non_1to1_bp": 1}, skips)

	list, err := store.Skips(ctx, run.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "MGI:1", list[0].Target)

	other, err := store.RejectionCounts(ctx, "other-run")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSQLiteStore_SaveRejections_Empty(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveRejections(context.Background(), "r", nil))
}
