package mapping

import (
	"strings"
)

// parseCSRG reads compact SRG: whitespace separated columns, one entry per line.
//
//	a b                 class a -> b
//	pkg/ renamed/       package
//	owner name target   field
//	owner name desc target   method
func parseCSRG(name string, data []byte) (*Table, error) {
	t := newTable(FormatCSRG)

	sc := newLineScanner(data)
	for sc.next() {
		cols := strings.Fields(sc.text)
		if err := checkColumns(name, sc.line, cols); err != nil {
			return nil, err
		}

		switch len(cols) {
		case 2:
			if strings.HasSuffix(cols[0], "/") {
				t.addPackage(packageName(cols[0]), packageName(cols[1]))
			} else {
				t.addClass(cols[0], cols[1])
			}
		case 3:
			t.addField(cols[0], cols[1], cols[2])
		case 4:
			if !strings.HasPrefix(cols[2], "(") {
				return nil, formatError(name, sc.line, "method descriptor %q must start with '('", cols[2])
			}

			t.addMethod(cols[0], cols[1], cols[2], cols[3])
		default:
			return nil, formatError(name, sc.line, "expected 2 to 4 columns, got %d", len(cols))
		}
	}

	if err := sc.err(); err != nil {
		return nil, formatError(name, sc.line, "%v", err)
	}

	return t, nil
}

func hasSRGPrefix(line string) bool {
	for _, p := range []string{"PK:", "CL:", "FD:", "MD:"} {
		if strings.HasPrefix(line, p) {
			return true
		}
	}

	return false
}

// parseSRG reads prefixed SRG lines (PK:, CL:, FD:, MD:).
func parseSRG(name string, data []byte) (*Table, error) {
	t := newTable(FormatSRG)

	sc := newLineScanner(data)
	for sc.next() {
		kind, rest, ok := strings.Cut(sc.text, ":")
		if !ok {
			return nil, formatError(name, sc.line, "missing entry kind")
		}

		cols := strings.Fields(rest)
		if err := checkColumns(name, sc.line, cols); err != nil {
			return nil, err
		}

		switch kind {
		case "PK":
			if len(cols) != 2 {
				return nil, formatError(name, sc.line, "PK expects 2 columns, got %d", len(cols))
			}

			t.addPackage(packageName(cols[0]), packageName(cols[1]))
		case "CL":
			if len(cols) != 2 {
				return nil, formatError(name, sc.line, "CL expects 2 columns, got %d", len(cols))
			}

			t.addClass(cols[0], cols[1])
		case "FD":
			var src, dst string

			switch len(cols) {
			case 2:
				src, dst = cols[0], cols[1]
			case 4:
				src, dst = cols[0], cols[2]
			default:
				return nil, formatError(name, sc.line, "FD expects 2 or 4 columns, got %d", len(cols))
			}

			owner, field, ok := splitMember(src)
			if !ok {
				return nil, formatError(name, sc.line, "field %q has no owner", src)
			}

			_, target, _ := splitMember(dst)
			t.addField(owner, field, target)
		case "MD":
			if len(cols) != 4 {
				return nil, formatError(name, sc.line, "MD expects 4 columns, got %d", len(cols))
			}

			owner, method, ok := splitMember(cols[0])
			if !ok {
				return nil, formatError(name, sc.line, "method %q has no owner", cols[0])
			}

			_, target, _ := splitMember(cols[2])
			t.addMethod(owner, method, cols[1], target)
		default:
			return nil, formatError(name, sc.line, "unknown entry kind %q", kind)
		}
	}

	if err := sc.err(); err != nil {
		return nil, formatError(name, sc.line, "%v", err)
	}

	return t, nil
}

// splitMember splits "owner/name" at the last slash.
func splitMember(s string) (owner, name string, ok bool) {
	i := strings.LastIndexByte(s, '/')
	if i < 0 {
		return "", s, false
	}

	return s[:i], s[i+1:], true
}

// packageName normalizes a package column to "a/b/" form; "." and "./" mean
// the default package.
func packageName(s string) string {
	s = strings.TrimSuffix(s, "/")
	if s == "." || s == "" {
		return ""
	}

	return s + "/"
}
