package pipeline

import (
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Result locates the output of a finished conversion.
type Result struct {
	OutDir  string `json:"-"`
	ZipPath string `json:"-"`
	Tables  int    `json:"tables"`
	Rows    int    `json:"rows"`
}

// ResultCache remembers finished conversions by content and output options,
// so identical uploads reuse the existing archive.
type ResultCache struct {
	cache *lru.Cache[string, Result]
}

func NewResultCache(size int) (*ResultCache, error) {
	cache, err := lru.New[string, Result](size)
	if err != nil {
		return nil, fmt.Errorf("create result cache: %w", err)
	}
	return &ResultCache{cache: cache}, nil
}

// CacheKey identifies a conversion of text with the given output options.
func CacheKey(text string, bom, flat bool) string {
	return ContentHashHex([]byte(fmt.Sprintf("bom=%t flat=%t\n%s", bom, flat, text)))
}

// Get returns a cached result whose archive still exists on disk.
func (c *ResultCache) Get(key string) (Result, bool) {
	res, ok := c.cache.Get(key)
	if !ok {
		return Result{}, false
	}
	if _, err := os.Stat(res.ZipPath); err != nil {
		c.cache.Remove(key)
		return Result{}, false
	}
	return res, true
}

func (c *ResultCache) Add(key string, res Result) {
	c.cache.Add(key, res)
}

func (c *ResultCache) Remove(key string) {
	c.cache.Remove(key)
}

func (c *ResultCache) Len() int {
	return c.cache.Len()
}
