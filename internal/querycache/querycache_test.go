package querycache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "products/all", AllKey("products"))
	assert.Equal(t, "products/page/2/10/lamp", PageKey("products", 2, 10, " Lamp "))
	assert.Equal(t, "products/page/1/10/", PageKey("products", 1, 10, ""))
}

func TestInvalidateByResource(t *testing.T) {
	c := New(time.Minute)
	c.Set(AllKey("products"), 1)
	c.Set(PageKey("products", 1, 10, ""), 2)
	c.Set(AllKey("product-bundles"), 3)
	c.Set(AllKey("users"), 4)

	assert.Equal(t, 2, c.Invalidate("products"))
	_, ok := c.Get(AllKey("products"))
	assert.False(t, ok)
	_, ok = c.Get(AllKey("product-bundles"))
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())

	c.Flush()
	assert.Equal(t, 0, c.Len())
}

func TestFetch(t *testing.T) {
	c := New(time.Minute)
	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"a"}, nil
	}

	v, err := Fetch(c, "k", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, v)
	_, err = Fetch(c, "k", load)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = Fetch(c, "bad", func() (int, error) { return 0, errors.New("boom") })
	assert.Error(t, err)
	_, ok := c.Get("bad")
	assert.False(t, ok, "errors are not cached")
}

func TestDisabled(t *testing.T) {
	c := New(0)
	c.Set("k", 1)
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Invalidate("k"))

	var nilCache *Cache
	assert.Equal(t, 0, nilCache.Len())
}
