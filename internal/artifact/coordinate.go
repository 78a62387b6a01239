package artifact

import (
	"fmt"
	"path"
	"strings"

	"remapper/internal/diagnostic"
)

// DefaultExtension is used when a coordinate names no extension.
const DefaultExtension = "jar"

// Coordinate identifies one artifact file in a repository.
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
	Extension  string
}

// ParseCoordinate parses "group:artifact:version[:classifier][@extension]".
func ParseCoordinate(s string) (Coordinate, error) {
	body, ext, hasExt := strings.Cut(strings.TrimSpace(s), "@")
	if hasExt && ext == "" {
		return Coordinate{}, coordinateError(s, "empty extension")
	}

	parts := strings.Split(body, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return Coordinate{}, coordinateError(s, "want group:artifact:version[:classifier][@extension]")
	}

	for i, p := range parts[:3] {
		if p == "" {
			return Coordinate{}, coordinateError(s, fmt.Sprintf("empty part %d", i+1))
		}
	}

	c := Coordinate{Group: parts[0], Artifact: parts[1], Version: parts[2], Extension: ext}
	if len(parts) == 4 {
		c.Classifier = parts[3]
	}

	if c.Extension == "" {
		c.Extension = DefaultExtension
	}

	return c, nil
}

// MustParseCoordinate is ParseCoordinate for literals known to be valid.
func MustParseCoordinate(s string) Coordinate {
	c, err := ParseCoordinate(s)
	if err != nil {
		panic(err)
	}

	return c
}

func (c Coordinate) String() string {
	s := c.Group + ":" + c.Artifact + ":" + c.Version
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}

	if c.Extension != "" && c.Extension != DefaultExtension {
		s += "@" + c.Extension
	}

	return s
}

// FileName returns "artifact-version[-classifier].extension".
func (c Coordinate) FileName() string {
	name := c.Artifact + "-" + c.Version
	if c.Classifier != "" {
		name += "-" + c.Classifier
	}

	ext := c.Extension
	if ext == "" {
		ext = DefaultExtension
	}

	return name + "." + ext
}

// Path returns the slash-separated location of the file in a Maven
// repository layout.
func (c Coordinate) Path() string {
	return path.Join(strings.ReplaceAll(c.Group, ".", "/"), c.Artifact, c.Version, c.FileName())
}

func coordinateError(s, msg string) error {
	return &diagnostic.Error{
		Kind:       diagnostic.ErrConfiguration,
		Op:         "parse coordinate",
		Coordinate: s,
		Err:        fmt.Errorf("%s", msg),
	}
}
