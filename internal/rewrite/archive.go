package rewrite

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"remapper/internal/diagnostic"
)

const versionsPrefix = "META-INF/versions/"

// Stats counts what a rewrite did.
type Stats struct {
	Classes   int
	Renamed   int
	Resources int
}

// Option configures Archive.
type Option func(*archiveRewriter)

// WithLogger sets the logger for per-entry output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *archiveRewriter) { a.log = log }
}

type archiveRewriter struct {
	in  string
	r   Remapper
	log logrus.FieldLogger

	seen  map[string]string
	stats Stats
}

// Archive writes a renamed copy of the jar at in to out. out is created or
// truncated; on failure its content is undefined and the caller discards it.
func Archive(ctx context.Context, in, out string, r Remapper, opts ...Option) (Stats, error) {
	a := &archiveRewriter{
		in:   in,
		r:    r,
		log:  logrus.StandardLogger(),
		seen: make(map[string]string),
	}

	for _, opt := range opts {
		opt(a)
	}

	zr, err := zip.OpenReader(in)
	if err != nil {
		return Stats{}, &diagnostic.Error{Kind: diagnostic.ErrArchiveRead, Op: "open input archive", Path: in, Err: err}
	}
	defer zr.Close()

	f, err := os.Create(out)
	if err != nil {
		return Stats{}, outputError("create output archive", out, err)
	}

	if err := a.copyAll(ctx, &zr.Reader, f); err != nil {
		_ = f.Close()
		return a.stats, outputError("write output archive", out, err)
	}

	if err := f.Close(); err != nil {
		return a.stats, outputError("close output archive", out, err)
	}

	a.log.WithFields(logrus.Fields{
		"archive":   in,
		"classes":   a.stats.Classes,
		"renamed":   a.stats.Renamed,
		"resources": a.stats.Resources,
	}).Debug("Archive rewritten")

	return a.stats, nil
}

func (a *archiveRewriter) copyAll(ctx context.Context, zr *zip.Reader, w io.Writer) error {
	zw := zip.NewWriter(w)

	if zr.Comment != "" {
		if err := zw.SetComment(zr.Comment); err != nil {
			return err
		}
	}

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := a.entry(zw, f); err != nil {
			return err
		}
	}

	return zw.Close()
}

func (a *archiveRewriter) entry(zw *zip.Writer, f *zip.File) error {
	if !isClassEntry(f.Name) || isModuleInfo(f.Name) {
		if err := a.claim(f.Name, f.Name); err != nil {
			return err
		}

		if !f.FileInfo().IsDir() {
			a.stats.Resources++
		}

		return zw.Copy(f)
	}

	data, err := readEntry(f)
	if err != nil {
		return &diagnostic.Error{Kind: diagnostic.ErrArchiveRead, Op: "read class entry", Path: a.in + "!" + f.Name, Err: err}
	}

	from, to, out, err := remapClass(data, a.r)
	if err != nil {
		return a.rewriteError(f.Name, err)
	}

	name := entryName(f.Name, from, to)
	if err := a.claim(name, f.Name); err != nil {
		return err
	}

	hdr := f.FileHeader
	hdr.Name = name
	hdr.CompressedSize64 = 0
	hdr.UncompressedSize64 = 0
	hdr.CRC32 = 0
	hdr.Extra = nil

	w, err := zw.CreateHeader(&hdr)
	if err != nil {
		return err
	}

	if _, err := w.Write(out); err != nil {
		return err
	}

	a.stats.Classes++
	if from != to {
		a.stats.Renamed++
		a.log.WithFields(logrus.Fields{"from": from, "to": to}).Trace("Renamed class")
	}

	return nil
}

// claim records that name is written for source and rejects a second writer.
func (a *archiveRewriter) claim(name, source string) error {
	if prev, ok := a.seen[name]; ok {
		return a.rewriteError(source, fmt.Errorf("output entry %s already written for %s", name, prev))
	}

	a.seen[name] = source

	return nil
}

// outputError gives failures writing out the rewrite kind. Errors that
// already carry a kind, and cancellation, pass through.
func outputError(op, out string, err error) error {
	var de *diagnostic.Error
	if errors.As(err, &de) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return &diagnostic.Error{Kind: diagnostic.ErrRewrite, Op: op, Path: out, Err: err}
}

func (a *archiveRewriter) rewriteError(entry string, err error) error {
	return &diagnostic.Error{
		Kind: diagnostic.ErrRewrite,
		Op:   "rewrite class",
		Path: a.in + "!" + entry,
		Err:  err,
	}
}

func isClassEntry(name string) bool {
	return strings.HasSuffix(name, ".class") && !strings.HasSuffix(name, "/")
}

func isModuleInfo(name string) bool {
	return name == "module-info.class" || strings.HasSuffix(name, "/module-info.class")
}

// entryName places the renamed class at the entry path of the original,
// keeping any directory prefix in front of the class name. Entries whose
// path does not end in the class name are placed by class name.
func entryName(entry, from, to string) string {
	if prefix, ok := strings.CutSuffix(entry, from+".class"); ok && (prefix == "" || strings.HasSuffix(prefix, "/")) {
		return prefix + to + ".class"
	}

	return versionPrefix(entry) + to + ".class"
}

// versionPrefix returns the "META-INF/versions/N/" part of a multi-release entry.
func versionPrefix(name string) string {
	rest, ok := strings.CutPrefix(name, versionsPrefix)
	if !ok {
		return ""
	}

	i := strings.IndexByte(rest, '/')
	if i < 0 {
		return ""
	}

	return name[:len(versionsPrefix)+i+1]
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}
