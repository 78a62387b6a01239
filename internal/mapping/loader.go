package mapping

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"remapper/internal/diagnostic"
)

//go:generate go tool stringer -type=Format -trimprefix=Format -output=format_string.go

// Format identifies an on-disk mapping format.
type Format int

const (
	FormatUnknown Format = iota
	FormatProGuard
	FormatCSRG
	FormatSRG
	FormatCSV
)

// LoadFile loads and parses a mapping file from the given path.
// When reversed is set every entry is inverted before the table is returned.
func LoadFile(path string, reversed bool) (*Table, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	return parse(filepath.Base(path), data, reversed)
}

// Parse parses mapping data in any supported format.
func Parse(data []byte, reversed bool) (*Table, error) {
	return parse("<input>", data, reversed)
}

// Detect reports the format of mapping data from its first meaningful line.
func Detect(data []byte) Format {
	sc := newLineScanner(data)
	if !sc.next() {
		return FormatUnknown
	}

	return detectLine(sc.text)
}

func detectLine(line string) Format {
	switch {
	case strings.Contains(line, " -> ") && strings.HasSuffix(line, ":"):
		return FormatProGuard
	case hasSRGPrefix(line):
		return FormatSRG
	case strings.Contains(line, ","):
		return FormatCSV
	default:
		return FormatCSRG
	}
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: mapping file %s: %w", diagnostic.ErrArtifactNotFound, path, err)
		}

		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	return data, nil
}

func parse(name string, data []byte, reversed bool) (*Table, error) {
	var (
		t   *Table
		err error
	)

	switch Detect(data) {
	case FormatUnknown:
		return nil, formatError(name, 0, "no mapping entries")
	case FormatProGuard:
		t, err = parseProGuard(name, data)
	case FormatSRG:
		t, err = parseSRG(name, data)
	case FormatCSV:
		t, err = parseCSV(name, data)
	default:
		t, err = parseCSRG(name, data)
	}

	if err != nil {
		return nil, err
	}

	if t.Counts() == (Counts{}) {
		return nil, formatError(name, 0, "no mapping entries")
	}

	if reversed {
		t = t.Reverse()
	}

	return t, nil
}

// checkColumns rejects columns that cannot be JVM names or descriptors,
// which is how binary content shows up when it is read as text.
func checkColumns(name string, line int, cols []string) error {
	for _, c := range cols {
		if !utf8.ValidString(c) {
			return formatError(name, line, "column %q is not valid UTF-8", c)
		}

		if strings.ContainsFunc(c, unicode.IsControl) {
			return formatError(name, line, "column %q contains control characters", c)
		}
	}

	return nil
}

func formatError(name string, line int, format string, args ...any) error {
	return fmt.Errorf("%w: %s:%d: %s", diagnostic.ErrMappingFormat, name, line, fmt.Sprintf(format, args...))
}

// lineScanner yields trimmed lines, skipping blanks and '#' comments.
// raw keeps the untrimmed line for formats where indentation matters.
type lineScanner struct {
	sc   *bufio.Scanner
	line int
	raw  string
	text string
}

func newLineScanner(data []byte) *lineScanner {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	return &lineScanner{sc: sc}
}

func (s *lineScanner) next() bool {
	for s.sc.Scan() {
		s.line++
		s.raw = strings.TrimRight(s.sc.Text(), " \t\r")
		s.text = strings.TrimSpace(s.raw)

		if s.line == 1 {
			s.text = strings.TrimPrefix(s.text, "\ufeff")
		}

		if s.text == "" || strings.HasPrefix(s.text, "#") {
			continue
		}

		return true
	}

	return false
}

func (s *lineScanner) err() error { return s.sc.Err() }
