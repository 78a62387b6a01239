package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"remapper/internal/diagnostic"
)

// JobsFile is a batch of remap jobs. Top-level fields fill in what a job
// leaves empty.
type JobsFile struct {
	Version   string    `yaml:"version"`
	Project   string    `yaml:"project"`
	Directory string    `yaml:"directory"`
	Jobs      []Options `yaml:"jobs"`
}

// LoadJobs reads and validates a jobs file. Relative input paths and
// directories are resolved against the file's directory.
func LoadJobs(path string) ([]Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read jobs file %s: %w", diagnostic.ErrConfiguration, path, err)
	}

	jobs, err := ParseJobs(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return jobs, nil
}

// ParseJobs decodes a jobs file; unknown keys are errors.
func ParseJobs(data []byte, baseDir string) ([]Options, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f JobsFile
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", diagnostic.ErrConfiguration, err)
	}

	if len(f.Jobs) == 0 {
		return nil, fmt.Errorf("%w: no jobs defined", diagnostic.ErrConfiguration)
	}

	out := slices.Clone(f.Jobs)

	for i := range out {
		j := &out[i]

		if j.Version == "" {
			j.Version = f.Version
		}

		if j.Project == "" {
			j.Project = f.Project
		}

		if j.Directory == "" && !j.Skip {
			j.Directory = f.Directory
		}

		j.Input = resolve(baseDir, j.Input)
		j.Directory = resolve(baseDir, j.Directory)

		if err := j.Validate(); err != nil {
			return nil, fmt.Errorf("job %d: %w", i+1, err)
		}
	}

	return out, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) || base == "" {
		return p
	}

	return filepath.Join(base, p)
}
