package pipeline

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
)

// Arena tracks the scratch files of one invocation.
type Arena struct {
	dir string

	mu    sync.Mutex
	files []string
}

// NewArena creates scratch files in dir, or the system temp directory if dir
// is empty.
func NewArena(dir string) *Arena {
	return &Arena{dir: dir}
}

// New creates an empty scratch file named after stage and returns its path.
func (a *Arena) New(stage string) (string, error) {
	f, err := os.CreateTemp(a.dir, "remap-"+scratchName(stage)+"-*.jar")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch file: %w", err)
	}

	path := f.Name()

	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to create scratch file: %w", err)
	}

	a.mu.Lock()
	a.files = append(a.files, path)
	a.mu.Unlock()

	return path, nil
}

// Release deletes one scratch file. Paths the arena did not create are
// ignored.
func (a *Arena) Release(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := slices.Index(a.files, path)
	if i < 0 {
		return nil
	}

	a.files = slices.Delete(a.files, i, i+1)

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove scratch file %s: %w", path, err)
	}

	return nil
}

// Paths returns the scratch files still held.
func (a *Arena) Paths() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return slices.Clone(a.files)
}

// Sweep deletes every scratch file still held.
func (a *Arena) Sweep() error {
	a.mu.Lock()
	files := a.files
	a.files = nil
	a.mu.Unlock()

	var errs []error

	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func scratchName(stage string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, stage)
}
