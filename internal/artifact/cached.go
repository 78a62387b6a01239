package artifact

import (
	"context"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCachedEntries bounds a Cached resolver created with size 0.
const DefaultCachedEntries = 256

// Cached remembers the files returned for each coordinate. Misses are not
// cached, so an artifact installed later is found on the next call.
type Cached struct {
	next  Resolver
	cache *lru.Cache[Coordinate, []string]
}

// NewCached wraps next with a memo of at most size coordinates.
func NewCached(next Resolver, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCachedEntries
	}

	cache, err := lru.New[Coordinate, []string](size)
	if err != nil {
		return nil, err
	}

	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) Resolve(ctx context.Context, coord Coordinate) ([]string, error) {
	if files, ok := c.cache.Get(coord); ok {
		return slices.Clone(files), nil
	}

	files, err := c.next.Resolve(ctx, coord)
	if err != nil {
		return nil, err
	}

	c.cache.Add(coord, slices.Clone(files))

	return files, nil
}

// Len returns the number of memoized coordinates.
func (c *Cached) Len() int { return c.cache.Len() }
