package mapping

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// parseCSV reads the columnar format: kind,owner,name,descriptor,target.
// kind is one of class, package, field, method; for class and package rows
// owner is the source name and name/descriptor are empty. A leading header
// row whose first column is "kind" is skipped.
func parseCSV(name string, data []byte) (*Table, error) {
	t := newTable(FormatCSV)

	r := csv.NewReader(bytes.NewReader(data))
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	for first := true; ; first = false {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, formatError(name, pe.Line, "%v", pe.Err)
			}

			return nil, formatError(name, 0, "%v", err)
		}

		line, _ := r.FieldPos(0)

		if first && strings.EqualFold(strings.TrimSpace(rec[0]), "kind") {
			continue
		}

		if len(rec) != 5 {
			return nil, formatError(name, line, "expected 5 columns, got %d", len(rec))
		}

		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}

		kind, owner, member, desc, target := rec[0], rec[1], rec[2], rec[3], rec[4]
		if owner == "" || target == "" {
			return nil, formatError(name, line, "owner and target are required")
		}

		switch strings.ToLower(kind) {
		case "class":
			t.addClass(owner, target)
		case "package":
			t.addPackage(packageName(owner), packageName(target))
		case "field":
			if member == "" {
				return nil, formatError(name, line, "field row needs a name")
			}

			t.addField(owner, member, target)
		case "method":
			if member == "" || !strings.HasPrefix(desc, "(") {
				return nil, formatError(name, line, "method row needs a name and a descriptor")
			}

			t.addMethod(owner, member, desc, target)
		default:
			return nil, formatError(name, line, "unknown kind %q", kind)
		}
	}

	return t, nil
}
