package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestCache_SetGet(t *testing.T) {
	c := newTestCache(t)

	require.True(t, c.Set("/api/genres/", Entry{Status: 200, ContentType: "application/json", Body: []byte(`{}`)}, time.Minute))

	got, ok := c.Get("/api/genres/")
	require.True(t, ok)
	assert.Equal(t, 200, got.Status)
	assert.Equal(t, []byte(`{}`), got.Body)

	_, ok = c.Get("/api/other/")
	assert.False(t, ok)
}

func TestCache_Expires(t *testing.T) {
	c := newTestCache(t)

	require.True(t, c.Set("k", Entry{Status: 200, Body: []byte("x")}, 50*time.Millisecond))
	assert.Eventually(t, func() bool {
		_, ok := c.Get("k")
		return !ok
	}, 3*time.Second, 20*time.Millisecond)
}

func TestCache_DeleteAndClear(t *testing.T) {
	c := newTestCache(t)

	c.Set("a", Entry{Body: []byte("a")}, time.Minute)
	c.Set("b", Entry{Body: []byte("b")}, time.Minute)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	_, ok = c.Get("b")
	assert.False(t, ok)
}
