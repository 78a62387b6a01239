package mapping

import (
	"fmt"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/xxh3"
)

// DefaultCacheSize is the number of parsed tables a Cache keeps.
const DefaultCacheSize = 8

type cacheKey struct {
	sum      xxh3.Uint128
	reversed bool
}

// Cache keeps recently parsed tables keyed by file content, so repeated remaps
// in one process parse each mapping file once. Tables are immutable, so a
// cached table can be shared by concurrent invocations.
type Cache struct {
	tables *lru.Cache[cacheKey, *Table]
}

// NewCache creates a cache holding up to size tables.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	tables, err := lru.New[cacheKey, *Table](size)
	if err != nil {
		return nil, fmt.Errorf("create mapping cache: %w", err)
	}

	return &Cache{tables: tables}, nil
}

// Load returns the table stored in path, parsing it only if no table with
// the same content and direction is cached. A nil Cache loads directly.
func (c *Cache) Load(path string, reversed bool) (*Table, error) {
	if c == nil {
		return LoadFile(path, reversed)
	}

	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	key := cacheKey{sum: xxh3.Hash128(data), reversed: reversed}
	if t, ok := c.tables.Get(key); ok {
		return t, nil
	}

	t, err := parse(filepath.Base(path), data, reversed)
	if err != nil {
		return nil, err
	}

	c.tables.Add(key, t)

	return t, nil
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}

	return c.tables.Len()
}
