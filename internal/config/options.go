package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"remapper/internal/diagnostic"
	"remapper/internal/pipeline"
	"remapper/internal/plan"
)

// Options configure one remap job.
type Options struct {
	// Skip makes the job a no-op. It cannot be combined with output overrides.
	Skip bool `yaml:"skip"`
	// Kind is the requested translation.
	Kind plan.Kind `yaml:"kind"`
	// Version identifies the server release whose mappings are used. Required.
	Version string `yaml:"version"`
	// Input is the archive to remap.
	Input string `yaml:"input"`
	// Name replaces the destination file name.
	Name string `yaml:"name"`
	// Classifier derives the destination name as <base>[-<archive version>]-<classifier>.jar.
	Classifier string `yaml:"classifier"`
	// BaseName and ArchiveVersion feed the classifier name. BaseName
	// defaults to the input file name without its extension.
	BaseName       string `yaml:"base_name"`
	ArchiveVersion string `yaml:"archive_version"`
	// Directory holds the destination; defaults to the input's directory.
	Directory string `yaml:"directory"`
	// Project names the module in messages.
	Project string `yaml:"project"`
}

// Validate checks the options once, before any work starts.
func (o Options) Validate() error {
	if o.Skip {
		var conflicts []string

		for _, override := range [][2]string{{"name", o.Name}, {"classifier", o.Classifier}, {"directory", o.Directory}} {
			if override[1] != "" {
				conflicts = append(conflicts, override[0])
			}
		}

		if len(conflicts) > 0 {
			return o.configError(fmt.Sprintf("skip cannot be combined with output overrides (%s)", strings.Join(conflicts, ", ")))
		}

		return nil
	}

	switch {
	case strings.TrimSpace(o.Version) == "":
		return o.configError("version identifier is required")
	case !o.Kind.Valid():
		return o.configError("translation kind is required")
	case strings.TrimSpace(o.Input) == "":
		return o.configError("input archive is required")
	case strings.ContainsAny(o.Name, `/\`):
		return o.configError(fmt.Sprintf("archive name %q must not contain a path separator", o.Name))
	case strings.ContainsAny(o.Classifier, `/\`):
		return o.configError(fmt.Sprintf("classifier %q must not contain a path separator", o.Classifier))
	}

	return nil
}

// Destination returns where the result is written: the explicit name, else
// the classifier-derived name, else the input archive itself.
func (o Options) Destination() string {
	dir := o.Directory
	if dir == "" {
		dir = filepath.Dir(o.Input)
	}

	switch {
	case o.Name != "":
		return filepath.Join(dir, o.Name)
	case o.Classifier != "":
		base := o.BaseName
		if base == "" {
			base = strings.TrimSuffix(filepath.Base(o.Input), filepath.Ext(o.Input))
		}

		if o.ArchiveVersion != "" {
			base += "-" + o.ArchiveVersion
		}

		return filepath.Join(dir, base+"-"+o.Classifier+".jar")
	default:
		return filepath.Join(dir, filepath.Base(o.Input))
	}
}

// Request validates o and turns it into a pipeline request. ok is false for
// a skipped job.
func (o Options) Request() (req pipeline.Request, ok bool, err error) {
	if err := o.Validate(); err != nil {
		return pipeline.Request{}, false, err
	}

	if o.Skip {
		return pipeline.Request{}, false, nil
	}

	return pipeline.Request{
		Input:       o.Input,
		Destination: o.Destination(),
		Kind:        o.Kind,
		Version:     o.Version,
		Project:     o.Project,
	}, true, nil
}

func (o Options) configError(msg string) error {
	var kind string
	if o.Kind.Valid() {
		kind = o.Kind.String()
	}

	return &diagnostic.Error{
		Kind:        diagnostic.ErrConfiguration,
		Op:          "validate options",
		Translation: kind,
		Project:     o.Project,
		Err:         errors.New(msg),
	}
}
