package mapping

import (
	"strings"
)

// MapDescriptor renames every class named in a field or method descriptor.
// A descriptor with an unterminated class name is returned unchanged.
func MapDescriptor(desc string, mapClass func(string) string) string {
	if strings.IndexByte(desc, 'L') < 0 {
		return desc
	}

	var b strings.Builder
	b.Grow(len(desc))

	for i := 0; i < len(desc); i++ {
		c := desc[i]
		if c != 'L' {
			b.WriteByte(c)
			continue
		}

		end := strings.IndexByte(desc[i:], ';')
		if end < 0 {
			return desc
		}

		b.WriteByte('L')
		b.WriteString(mapClass(desc[i+1 : i+end]))
		b.WriteByte(';')

		i += end
	}

	return b.String()
}

// MapSignature renames every class named in a generic signature (class, method
// or field form). Nested class segments ("Outer<T>.Inner") keep the simple
// name the target naming gives them. A signature that does not parse is
// returned unchanged.
func MapSignature(sig string, mapClass func(string) string) string {
	if sig == "" {
		return sig
	}

	m := &sigMapper{s: sig, mapClass: mapClass}
	m.out.Grow(len(sig))

	if !m.signature() || m.pos != len(m.s) {
		return sig
	}

	return m.out.String()
}

type sigMapper struct {
	s        string
	pos      int
	out      strings.Builder
	mapClass func(string) string
}

func (m *sigMapper) peek() byte {
	if m.pos >= len(m.s) {
		return 0
	}

	return m.s[m.pos]
}

func (m *sigMapper) copyByte() {
	m.out.WriteByte(m.s[m.pos])
	m.pos++
}

func (m *sigMapper) signature() bool {
	if m.peek() == '<' && !m.typeParams() {
		return false
	}

	for m.pos < len(m.s) {
		switch m.peek() {
		case '(', ')', '^':
			m.copyByte()
		default:
			if !m.typeSig() {
				return false
			}
		}
	}

	return true
}

func (m *sigMapper) typeParams() bool {
	m.copyByte()

	for m.peek() != '>' {
		end := strings.IndexByte(m.s[m.pos:], ':')
		if end <= 0 {
			return false
		}

		m.out.WriteString(m.s[m.pos : m.pos+end])
		m.pos += end

		for m.peek() == ':' {
			m.copyByte()

			switch m.peek() {
			case 'L', 'T', '[':
				if !m.typeSig() {
					return false
				}
			}
		}

		if m.pos >= len(m.s) {
			return false
		}
	}

	m.copyByte()

	return true
}

func (m *sigMapper) typeSig() bool {
	switch c := m.peek(); c {
	case 'L':
		return m.classType()
	case 'T':
		end := strings.IndexByte(m.s[m.pos:], ';')
		if end < 0 {
			return false
		}

		m.out.WriteString(m.s[m.pos : m.pos+end+1])
		m.pos += end + 1

		return true
	case '[':
		m.copyByte()
		return m.typeSig()
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 'V':
		m.copyByte()
		return true
	default:
		return false
	}
}

func (m *sigMapper) ident() string {
	start := m.pos
	for m.pos < len(m.s) {
		switch m.s[m.pos] {
		case '<', ';', '.':
			return m.s[start:m.pos]
		}

		m.pos++
	}

	return m.s[start:m.pos]
}

func (m *sigMapper) classType() bool {
	m.copyByte()

	orig := m.ident()
	if orig == "" {
		return false
	}

	mapped := m.mapClass(orig)
	m.out.WriteString(mapped)

	for {
		switch m.peek() {
		case '<':
			if !m.typeArgs() {
				return false
			}
		case '.':
			m.copyByte()

			inner := m.ident()
			if inner == "" {
				return false
			}

			full := orig + "$" + inner
			mappedFull := m.mapClass(full)

			simple := inner
			if strings.HasPrefix(mappedFull, mapped+"$") {
				simple = mappedFull[len(mapped)+1:]
			} else if mappedFull != full {
				simple = mappedFull[strings.LastIndexByte(mappedFull, '$')+1:]
			}

			m.out.WriteString(simple)

			orig, mapped = full, mappedFull
		case ';':
			m.copyByte()
			return true
		default:
			return false
		}
	}
}

func (m *sigMapper) typeArgs() bool {
	m.copyByte()

	for m.peek() != '>' {
		switch m.peek() {
		case '*':
			m.copyByte()
		case '+', '-':
			m.copyByte()

			if !m.typeSig() {
				return false
			}
		case 0:
			return false
		default:
			if !m.typeSig() {
				return false
			}
		}
	}

	m.copyByte()

	return true
}
