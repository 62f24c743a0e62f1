// Package querycache keeps recent collection reads so that paging back and
// forth does not hit the database, and drops them when a resource changes.
package querycache

import (
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache holds query results keyed by resource.
type Cache struct {
	c *gocache.Cache
}

// New creates a cache whose entries expire after ttl. A ttl of zero or less
// disables caching.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		return &Cache{}
	}
	return &Cache{c: gocache.New(ttl, 2*ttl)}
}

// AllKey names the full listing of resource.
func AllKey(resource string) string {
	return resource + "/all"
}

// PageKey names one page of a (possibly filtered) listing of resource.
func PageKey(resource string, page, limit int, query string) string {
	return fmt.Sprintf("%s/page/%d/%d/%s", resource, page, limit, strings.ToLower(strings.TrimSpace(query)))
}

// Get returns the cached value for key.
func (c *Cache) Get(key string) (any, bool) {
	if c == nil || c.c == nil {
		return nil, false
	}
	return c.c.Get(key)
}

// Set stores v under key with the default expiry.
func (c *Cache) Set(key string, v any) {
	if c == nil || c.c == nil {
		return
	}
	c.c.SetDefault(key, v)
}

// Invalidate drops every entry of resource.
func (c *Cache) Invalidate(resource string) int {
	if c == nil || c.c == nil {
		return 0
	}
	prefix := resource + "/"
	n := 0
	for key := range c.c.Items() {
		if strings.HasPrefix(key, prefix) {
			c.c.Delete(key)
			n++
		}
	}
	return n
}

// Flush drops everything.
func (c *Cache) Flush() {
	if c == nil || c.c == nil {
		return
	}
	c.c.Flush()
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	if c == nil || c.c == nil {
		return 0
	}
	return c.c.ItemCount()
}

// Fetch returns the cached value for key, or calls load and caches its
// result on success.
func Fetch[T any](c *Cache, key string, load func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}
