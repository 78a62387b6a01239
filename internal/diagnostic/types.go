package diagnostic

import (
	"fmt"
	"strings"
	"sync"
)

// Diagnostics holds all diagnostic information from one remap invocation.
// It is safe for concurrent use.
type Diagnostics struct {
	mu       sync.Mutex
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Class identifies which class this relates to (if any).
	Class string
	// Member identifies which field or method this relates to (if any).
	Member string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// AddWarning adds a warning diagnostic. Adding to a nil Diagnostics is a
// no-op.
func (d *Diagnostics) AddWarning(code, message, class, member string) {
	if d == nil {
		return
	}

	d.add(&d.Warnings, DiagnosticWarning, code, message, class, member)
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, class, member string) {
	if d == nil {
		return
	}

	d.add(&d.Infos, DiagnosticInfo, code, message, class, member)
}

func (d *Diagnostics) add(dst *[]Diagnostic, sev DiagnosticSeverity, code, message, class, member string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	*dst = append(*dst, Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  message,
		Class:    class,
		Member:   member,
	})
}

// Count returns the number of diagnostics recorded with the given code.
func (d *Diagnostics) Count(code string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0

	for _, list := range [][]Diagnostic{d.Warnings, d.Infos} {
		for _, diag := range list {
			if diag.Code == code {
				n++
			}
		}
	}

	return n
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Class != "" {
		prefix = append(prefix, "["+d.Class+"]")
	}

	if d.Member != "" {
		prefix = append(prefix, d.Member)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
