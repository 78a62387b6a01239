package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"

	"remapper/internal/diagnostic"
)

// Resolver materializes the files of a coordinate on local disk.
type Resolver interface {
	Resolve(ctx context.Context, c Coordinate) ([]string, error)
}

// NotFound returns the error resolvers report for a coordinate they cannot
// supply.
func NotFound(c Coordinate, cause error) error {
	return &diagnostic.Error{
		Kind:       diagnostic.ErrArtifactNotFound,
		Op:         "resolve artifact",
		Coordinate: c.String(),
		Err:        cause,
	}
}

// Static serves explicit coordinate overrides, keyed by Coordinate.String().
type Static map[string][]string

// Resolve returns the configured files, all of which must exist.
func (s Static) Resolve(_ context.Context, c Coordinate) ([]string, error) {
	files, ok := s[c.String()]
	if !ok || len(files) == 0 {
		return nil, NotFound(c, errors.New("no static override"))
	}

	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return nil, NotFound(c, err)
		}
	}

	return files, nil
}

// Chain asks each resolver in order and returns the first hit. Errors other
// than not-found stop the chain.
type Chain []Resolver

func (ch Chain) Resolve(ctx context.Context, c Coordinate) ([]string, error) {
	var misses []error

	for _, r := range ch {
		files, err := r.Resolve(ctx, c)
		if err == nil {
			return files, nil
		}

		if !errors.Is(err, diagnostic.ErrArtifactNotFound) {
			return nil, err
		}

		misses = append(misses, err)
	}

	if len(misses) == 0 {
		return nil, NotFound(c, fmt.Errorf("no resolvers configured"))
	}

	return nil, NotFound(c, errors.Join(misses...))
}
