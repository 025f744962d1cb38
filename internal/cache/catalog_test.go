package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JNZader/eslintsync/internal/codacy"
)

const tool = "f8b29663-2cb2-498d-b923-a10c6a8c05cd"

func newTestCache(t *testing.T, ttl time.Duration) *CatalogCache {
	t.Helper()
	c, err := Open(Options{InMemory: true, TTL: ttl})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func catalog(n int) []codacy.CatalogPattern {
	out := make([]codacy.CatalogPattern, n)
	for i := range out {
		out[i] = codacy.CatalogPattern{PatternDefinition: codacy.PatternDefinition{ID: fmt.Sprintf("ESLint8_rule-%d", i)}}
	}
	return out
}

func TestCatalogCache_PutGet(t *testing.T) {
	c := newTestCache(t, 0)

	require.NoError(t, c.Put(tool, catalog(3)))

	entry, err := c.Get(tool)
	require.NoError(t, err)
	assert.Equal(t, tool, entry.ToolUUID)
	assert.Equal(t, catalog(3), entry.Patterns)
	assert.WithinDuration(t, time.Now(), entry.FetchedAt, time.Minute)

	require.NoError(t, c.Put(tool, catalog(1)))
	entry, err = c.Get(tool)
	require.NoError(t, err)
	assert.Len(t, entry.Patterns, 1)
}

func TestCatalogCache_Miss(t *testing.T) {
	c := newTestCache(t, 0)

	_, err := c.Get("unknown-tool")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogCache_Expired(t *testing.T) {
	c := newTestCache(t, time.Hour)
	fetched := time.Now()
	c.now = func() time.Time { return fetched }
	require.NoError(t, c.Put(tool, catalog(2)))

	c.now = func() time.Time { return fetched.Add(30 * time.Minute) }
	_, err := c.Get(tool)
	require.NoError(t, err)

	c.now = func() time.Time { return fetched.Add(2 * time.Hour) }
	_, err = c.Get(tool)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogCache_Clear(t *testing.T) {
	c := newTestCache(t, 0)
	require.NoError(t, c.Put(tool, catalog(2)))
	require.NoError(t, c.Put("other", catalog(1)))

	require.NoError(t, c.Clear())

	_, err := c.Get(tool)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Get("other")
	assert.ErrorIs(t, err, ErrNotFound)
}
