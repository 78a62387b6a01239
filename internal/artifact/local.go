package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LocalRepository resolves coordinates in a Maven repository on disk, such
// as ~/.m2/repository after BuildTools has installed the server artifacts.
type LocalRepository struct {
	Root string
}

// DefaultLocalRoot returns the user's Maven repository directory.
func DefaultLocalRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}

	return filepath.Join(home, ".m2", "repository"), nil
}

func (l LocalRepository) Resolve(ctx context.Context, c Coordinate) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := filepath.Join(l.Root, filepath.FromSlash(c.Path()))

	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NotFound(c, err)
		}

		return nil, fmt.Errorf("failed to stat %s: %w", p, err)
	}

	if info.IsDir() {
		return nil, NotFound(c, fmt.Errorf("%s is a directory", p))
	}

	return []string{p}, nil
}
