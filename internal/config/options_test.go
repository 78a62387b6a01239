package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remapper/internal/diagnostic"
	"remapper/internal/plan"
)

func validOptions() Options {
	return Options{
		Kind:    plan.MojangToSpigot,
		Version: "1.20.4-R0.1-SNAPSHOT",
		Input:   filepath.Join("build", "libs", "example-1.0.jar"),
		Project: "example",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(o *Options)
		errSubstr string
	}{
		{name: "valid", modify: func(*Options) {}},
		{name: "skip alone", modify: func(o *Options) { *o = Options{Skip: true} }},
		{name: "missing version", modify: func(o *Options) { o.Version = " " }, errSubstr: "version identifier is required"},
		{name: "missing kind", modify: func(o *Options) { o.Kind = 0 }, errSubstr: "translation kind is required"},
		{name: "missing input", modify: func(o *Options) { o.Input = "" }, errSubstr: "input archive is required"},
		{name: "name with separator", modify: func(o *Options) { o.Name = "out/x.jar" }, errSubstr: "path separator"},
		{name: "classifier with separator", modify: func(o *Options) { o.Classifier = `a\b` }, errSubstr: "path separator"},
		{
			name:      "skip with overrides",
			modify:    func(o *Options) { o.Skip, o.Name, o.Directory = true, "x.jar", "out" },
			errSubstr: "skip cannot be combined with output overrides (name, directory)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOptions()
			tt.modify(&o)

			err := o.Validate()
			if tt.errSubstr == "" {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, diagnostic.ErrConfiguration)
			assert.ErrorContains(t, err, tt.errSubstr)
		})
	}
}

func TestValidateErrorCarriesContext(t *testing.T) {
	o := validOptions()
	o.Version = ""

	var de *diagnostic.Error
	require.ErrorAs(t, o.Validate(), &de)
	assert.Equal(t, "MOJANG_TO_SPIGOT", de.Translation)
	assert.Equal(t, "example", de.Project)
}

func TestDestination(t *testing.T) {
	libs := filepath.Join("build", "libs")

	tests := []struct {
		name   string
		modify func(o *Options)
		want   string
	}{
		{"input itself", func(*Options) {}, filepath.Join(libs, "example-1.0.jar")},
		{"explicit name", func(o *Options) { o.Name, o.Classifier = "plugin.jar", "ignored" }, filepath.Join(libs, "plugin.jar")},
		{"classifier from input", func(o *Options) { o.Classifier = "remapped" }, filepath.Join(libs, "example-1.0-remapped.jar")},
		{
			"classifier from base and version",
			func(o *Options) { o.Classifier, o.BaseName, o.ArchiveVersion = "remapped", "example", "2.0" },
			filepath.Join(libs, "example-2.0-remapped.jar"),
		},
		{"directory override", func(o *Options) { o.Directory = "dist" }, filepath.Join("dist", "example-1.0.jar")},
		{"directory and name", func(o *Options) { o.Directory, o.Name = "dist", "p.jar" }, filepath.Join("dist", "p.jar")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOptions()
			tt.modify(&o)
			assert.Equal(t, tt.want, o.Destination())
		})
	}
}

func TestRequest(t *testing.T) {
	o := validOptions()
	o.Classifier = "remapped"

	req, ok, err := o.Request()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, o.Input, req.Input)
	assert.Equal(t, filepath.Join("build", "libs", "example-1.0-remapped.jar"), req.Destination)
	assert.Equal(t, plan.MojangToSpigot, req.Kind)
	assert.Equal(t, "example", req.Project)

	_, ok, err = Options{Skip: true}.Request()
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = Options{}.Request()
	require.ErrorIs(t, err, diagnostic.ErrConfiguration)
}
