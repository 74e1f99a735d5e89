package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMissingKey(t *testing.T) {
	c := New[string](time.Minute)

	_, ok := c.Get("never-inserted")
	assert.False(t, ok)
}

func TestPutThenGet(t *testing.T) {
	c := New[string](time.Minute)

	c.Put("tourist", "payload")

	got, ok := c.Get("tourist")
	require.True(t, ok)
	assert.Equal(t, "payload", got)
}

func TestExpiredEntryReadsAsAbsent(t *testing.T) {
	now := time.Now()
	c := New[string](10 * time.Minute)
	c.now = func() time.Time { return now }

	c.Put("tourist", "payload")

	now = now.Add(10*time.Minute - time.Second)
	_, ok := c.Get("tourist")
	assert.True(t, ok, "entry should still be visible just inside the TTL")

	now = now.Add(2 * time.Second)
	_, ok = c.Get("tourist")
	assert.False(t, ok, "entry should read as absent once the TTL elapses")
}

func TestPutResetsTTL(t *testing.T) {
	now := time.Now()
	c := New[string](10 * time.Minute)
	c.now = func() time.Time { return now }

	c.Put("tourist", "first")

	now = now.Add(9 * time.Minute)
	c.Put("tourist", "second")

	now = now.Add(9 * time.Minute)
	got, ok := c.Get("tourist")
	require.True(t, ok, "overwrite should have restarted the clock")
	assert.Equal(t, "second", got)
}

func TestSweepDropsOnlyExpired(t *testing.T) {
	now := time.Now()
	c := New[int](10 * time.Minute)
	c.now = func() time.Time { return now }

	c.Put("old", 1)
	now = now.Add(11 * time.Minute)
	c.Put("fresh", 2)

	removed := c.Sweep()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("fresh")
	assert.True(t, ok)
}
