package pipeline

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// ResultCache keeps finished renders for a while so resubmitting the same
// document with the same options skips the work.
type ResultCache struct {
	c *cache.Cache
}

// NewResultCache returns a cache whose entries live for ttl.
func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{c: cache.New(ttl, 2*ttl)}
}

func (r *ResultCache) Get(key string) (*Output, bool) {
	v, ok := r.c.Get(key)
	if !ok {
		return nil, false
	}
	out, ok := v.(*Output)
	return out, ok
}

func (r *ResultCache) Put(key string, out *Output) {
	r.c.SetDefault(key, out)
}

// Len returns the number of cached results, including expired ones not yet
// swept.
func (r *ResultCache) Len() int {
	return r.c.ItemCount()
}

func extOf(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
