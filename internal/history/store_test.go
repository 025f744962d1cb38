package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(StoreConfig{Path: filepath.Join(t.TempDir(), "history.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewStore(StoreConfig{Path: dbPath})
	require.NoError(t, err)
	defer store.Close()

	assert.FileExists(t, dbPath)
}

func TestRecordAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	runs := []*Run{
		{RunID: "r1", StandardID: 10, Name: "Frontend", Organization: "acme", Provider: "gh",
			Source: ".eslintrc.js", PatternsCount: 40, Enabled: 38, Disabled: 260, Unmatched: 2,
			Promoted: true, Status: StatusSucceeded, CreatedAt: base, Duration: 1500 * time.Millisecond},
		{RunID: "r2", StandardID: 11, Name: "Frontend", Organization: "acme", Provider: "gh",
			Source: ".eslintrc.js", Status: StatusFailed, Error: "update tool: HTTP 500",
			CreatedAt: base.Add(time.Hour)},
		{RunID: "r3", Name: "Backend", Organization: "other", Provider: "gl",
			Source: "eslint.json", Status: StatusFailed, Error: "create coding standard: HTTP 401",
			CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, r := range runs {
		require.NoError(t, store.Record(ctx, r))
		assert.NotZero(t, r.ID, "run id is set after insert")
	}

	all, err := store.List(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "r3", all[0].RunID, "newest first")
	assert.Equal(t, "r1", all[2].RunID)
	assert.Zero(t, all[0].StandardID)

	first := all[2]
	assert.Equal(t, 1500*time.Millisecond, first.Duration)
	assert.True(t, first.Promoted)
	assert.Equal(t, 38, first.Enabled)
	assert.Equal(t, 2, first.Unmatched)
	assert.True(t, first.CreatedAt.Equal(base), "created_at %s", first.CreatedAt)

	acme, err := store.List(ctx, Query{Organization: "acme", Status: StatusFailed})
	require.NoError(t, err)
	require.Len(t, acme, 1)
	assert.Equal(t, "update tool: HTTP 500", acme[0].Error)

	limited, err := store.List(ctx, Query{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestLatestAndStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	latest, err := store.Latest(ctx, "acme")
	require.NoError(t, err)
	assert.Nil(t, latest)

	for i, status := range []string{StatusSucceeded, StatusSucceeded, StatusFailed} {
		run := &Run{
			RunID: "r", StandardID: int64(100 + i), Name: "Frontend", Organization: "acme",
			Provider: "gh", Source: ".eslintrc.js", Status: status, CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, store.Record(ctx, run))
	}

	latest, err = store.Latest(ctx, "acme")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, int64(101), latest.StandardID, "latest success skips the failed run")

	other, err := store.Latest(ctx, "other")
	require.NoError(t, err)
	assert.Nil(t, other)

	stats, err := store.Stats(ctx, Query{Organization: "acme"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 2, stats.Succeeded)
	assert.EqualValues(t, 1, stats.Failed)
	assert.Equal(t, int64(101), stats.LastStandardID)
}

func TestPrune(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		run := &Run{RunID: "r", Name: "n", Organization: "acme", Provider: "gh", Source: "s",
			Status: StatusSucceeded, CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour)}
		require.NoError(t, store.Record(ctx, run))
	}

	removed, err := store.Prune(ctx, base.Add(48*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	left, err := store.List(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, left, 2)
}
