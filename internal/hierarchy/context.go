package hierarchy

import (
	"archive/zip"
	"context"
	"io"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"remapper/internal/classfile"
	"remapper/internal/diagnostic"
)

// Node holds the direct parents of one class.
type Node struct {
	Name       string
	Super      string
	Interfaces []string
	// Source is the archive the class was first seen in.
	Source string
}

// Context is an immutable class-hierarchy index.
type Context struct {
	nodes map[string]*Node
}

// Option configures Build.
type Option func(*builder)

// WithLogger sets the logger used for informational output while indexing.
func WithLogger(log logrus.FieldLogger) Option {
	return func(b *builder) { b.log = log }
}

// WithDiagnostics records duplicate or skipped classes into d.
func WithDiagnostics(d *diagnostic.Diagnostics) Option {
	return func(b *builder) { b.diags = d }
}

type builder struct {
	log   logrus.FieldLogger
	diags *diagnostic.Diagnostics
	nodes map[string]*Node
}

// Build indexes every class entry of the given archives. On failure no
// context is returned.
func Build(ctx context.Context, archives []string, opts ...Option) (*Context, error) {
	b := &builder{
		log:   logrus.StandardLogger(),
		nodes: make(map[string]*Node),
	}

	for _, opt := range opts {
		opt(b)
	}

	for _, archive := range archives {
		if err := b.addArchive(ctx, archive); err != nil {
			return nil, err
		}
	}

	b.log.WithField("classes", len(b.nodes)).Debug("Inheritance context built")

	return &Context{nodes: b.nodes}, nil
}

func (b *builder) addArchive(ctx context.Context, archive string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return archiveError(archive, "", err)
	}
	defer zr.Close()

	added := 0

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !isClassEntry(f.Name) {
			continue
		}

		data, err := readEntry(f)
		if err != nil {
			return archiveError(archive, f.Name, err)
		}

		h, err := classfile.ReadHeader(data)
		if err != nil {
			return archiveError(archive, f.Name, err)
		}

		if h.Access&classfile.AccModule != 0 {
			b.log.WithField("entry", f.Name).Debug("Skipping module descriptor")
			continue
		}

		b.add(archive, h)
		added++
	}

	b.log.WithFields(logrus.Fields{"archive": archive, "classes": added}).Debug("Indexed archive")

	return nil
}

func (b *builder) add(archive string, h *classfile.Header) {
	n, ok := b.nodes[h.Name]
	if !ok {
		b.nodes[h.Name] = &Node{
			Name:       h.Name,
			Super:      h.Super,
			Interfaces: slices.Clone(h.Interfaces),
			Source:     archive,
		}

		return
	}

	if n.Source != archive {
		b.log.WithFields(logrus.Fields{"class": h.Name, "first": n.Source, "again": archive}).
			Info("Class present in more than one inheritance source")
		b.diags.AddInfo("duplicate_class", "also declared in "+archive, h.Name, "")
	}

	if n.Super == "" {
		n.Super = h.Super
	}

	for _, i := range h.Interfaces {
		if !slices.Contains(n.Interfaces, i) {
			n.Interfaces = append(n.Interfaces, i)
		}
	}
}

// Parents returns the superclass followed by the interfaces of class, or nil
// when the class is not in any indexed archive.
func (c *Context) Parents(class string) []string {
	n, ok := c.nodes[class]
	if !ok {
		return nil
	}

	out := make([]string, 0, len(n.Interfaces)+1)
	if n.Super != "" {
		out = append(out, n.Super)
	}

	return append(out, n.Interfaces...)
}

// Len returns the number of indexed classes.
func (c *Context) Len() int { return len(c.nodes) }

func isClassEntry(name string) bool {
	return strings.HasSuffix(name, ".class") && !strings.HasSuffix(name, "/")
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

func archiveError(archive, entry string, err error) error {
	path := archive
	if entry != "" {
		path = archive + "!" + entry
	}

	return &diagnostic.Error{
		Kind: diagnostic.ErrArchiveRead,
		Op:   "index class hierarchy",
		Path: path,
		Err:  err,
	}
}
