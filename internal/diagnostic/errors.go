package diagnostic

import (
	"errors"
	"strings"
)

// Error kinds. Every failure surfaced by a remap wraps exactly one of these.
var (
	ErrConfiguration    = errors.New("configuration error")
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrMappingFormat    = errors.New("mapping format error")
	ErrArchiveRead      = errors.New("archive read error")
	ErrRewrite          = errors.New("rewrite error")
)

// Error attaches invocation context to a failure so the caller can tell which
// translation, coordinate or project was involved.
type Error struct {
	// Kind is one of the Err* sentinels.
	Kind error
	// Op names the step that failed, e.g. "resolve mapping".
	Op string
	// Translation is the requested translation kind.
	Translation string
	// Coordinate is the artifact coordinate involved (if any).
	Coordinate string
	// Project identifies the project or module being remapped (if known).
	Project string
	// Path is the file involved (if any).
	Path string
	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder

	if e.Op != "" {
		b.WriteString(e.Op)
	} else if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}

	var ctx []string
	if e.Translation != "" {
		ctx = append(ctx, "translation "+e.Translation)
	}

	if e.Coordinate != "" {
		ctx = append(ctx, "coordinate "+e.Coordinate)
	}

	if e.Project != "" {
		ctx = append(ctx, "project "+e.Project)
	}

	if e.Path != "" {
		ctx = append(ctx, "file "+e.Path)
	}

	if len(ctx) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(ctx, ", "))
		b.WriteString(")")
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}

	if e.Err != nil {
		out = append(out, e.Err)
	}

	return out
}

// KindOf returns the sentinel kind wrapped by err, or nil if there is none.
func KindOf(err error) error {
	for _, kind := range []error{ErrConfiguration, ErrArtifactNotFound, ErrMappingFormat, ErrArchiveRead, ErrRewrite} {
		if errors.Is(err, kind) {
			return kind
		}
	}

	return nil
}
