package mapping

import (
	"fmt"
	"strings"
)

type pgMember struct {
	line     int
	javaType string
	name     string
	// args is nil for fields.
	args []string
	obf  string
}

type pgClass struct {
	named, obf string
	members    []pgMember
}

// parseProGuard reads a ProGuard mapping ("named -> obfuscated") into a table
// whose source side is the obfuscated naming.
func parseProGuard(name string, data []byte) (*Table, error) {
	var (
		classes []*pgClass
		current *pgClass
	)

	sc := newLineScanner(data)
	for sc.next() {
		left, right, ok := strings.Cut(sc.text, " -> ")
		if !ok {
			return nil, formatError(name, sc.line, "missing ' -> ' in %q", sc.text)
		}

		if !strings.HasPrefix(sc.raw, " ") && !strings.HasPrefix(sc.raw, "\t") {
			obf, ok := strings.CutSuffix(right, ":")
			if !ok {
				return nil, formatError(name, sc.line, "class line must end with ':'")
			}

			current = &pgClass{named: internalName(left), obf: internalName(obf)}
			classes = append(classes, current)

			continue
		}

		if current == nil {
			return nil, formatError(name, sc.line, "member outside of a class")
		}

		m, err := parseProGuardMember(left, right)
		if err != nil {
			return nil, formatError(name, sc.line, "%v", err)
		}

		if strings.Contains(m.name, ".") {
			// inlined from another class
			continue
		}

		m.line = sc.line
		current.members = append(current.members, m)
	}

	if err := sc.err(); err != nil {
		return nil, formatError(name, sc.line, "%v", err)
	}

	namedToObf := make(map[string]string, len(classes))
	for _, c := range classes {
		namedToObf[c.named] = c.obf
	}

	toObf := func(n string) string {
		if v, ok := namedToObf[n]; ok {
			return v
		}

		return n
	}

	t := newTable(FormatProGuard)

	for _, c := range classes {
		t.addClass(c.obf, c.named)

		for _, m := range c.members {
			if m.args == nil {
				t.addField(c.obf, m.obf, m.name)
				continue
			}

			desc, err := javaMethodDescriptor(m.args, m.javaType, toObf)
			if err != nil {
				return nil, formatError(name, m.line, "%v", err)
			}

			t.addMethod(c.obf, m.obf, desc, m.name)
		}
	}

	return t, nil
}

func parseProGuardMember(left, obf string) (pgMember, error) {
	left = stripLineNumbers(strings.TrimSpace(left))
	obf = strings.TrimSpace(obf)

	if obf == "" {
		return pgMember{}, fmt.Errorf("empty obfuscated name")
	}

	open := strings.IndexByte(left, '(')
	if open < 0 {
		typ, fieldName, ok := strings.Cut(left, " ")
		if !ok || typ == "" || fieldName == "" {
			return pgMember{}, fmt.Errorf("malformed field %q", left)
		}

		return pgMember{javaType: typ, name: strings.TrimSpace(fieldName), obf: obf}, nil
	}

	closing := strings.IndexByte(left, ')')
	if closing < open {
		return pgMember{}, fmt.Errorf("malformed method %q", left)
	}

	head := left[:open]

	sp := strings.LastIndexByte(head, ' ')
	if sp <= 0 {
		return pgMember{}, fmt.Errorf("malformed method %q", left)
	}

	args := []string{}
	if inner := strings.TrimSpace(left[open+1 : closing]); inner != "" {
		for _, a := range strings.Split(inner, ",") {
			args = append(args, strings.TrimSpace(a))
		}
	}

	return pgMember{javaType: head[:sp], name: head[sp+1:], args: args, obf: obf}, nil
}

// stripLineNumbers drops the "start:end:" prefix ProGuard puts on methods.
func stripLineNumbers(s string) string {
	for range 2 {
		i := strings.IndexByte(s, ':')
		if i <= 0 || !isDigits(s[:i]) {
			break
		}

		s = s[i+1:]
	}

	return s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return s != ""
}

func internalName(javaName string) string {
	return strings.ReplaceAll(strings.TrimSpace(javaName), ".", "/")
}

var primitiveDescriptors = map[string]string{
	"boolean": "Z",
	"byte":    "B",
	"char":    "C",
	"short":   "S",
	"int":     "I",
	"long":    "J",
	"float":   "F",
	"double":  "D",
	"void":    "V",
}

// javaTypeDescriptor converts a Java source type ("java.lang.String[]") into a
// descriptor, renaming classes with mapClass.
func javaTypeDescriptor(typ string, mapClass func(string) string) (string, error) {
	typ = strings.TrimSpace(typ)

	dims := 0
	for strings.HasSuffix(typ, "[]") {
		dims++
		typ = strings.TrimSpace(typ[:len(typ)-2])
	}

	if typ == "" {
		return "", fmt.Errorf("empty type")
	}

	prefix := strings.Repeat("[", dims)

	if p, ok := primitiveDescriptors[typ]; ok {
		return prefix + p, nil
	}

	return prefix + "L" + mapClass(internalName(typ)) + ";", nil
}

func javaMethodDescriptor(args []string, ret string, mapClass func(string) string) (string, error) {
	var b strings.Builder

	b.WriteByte('(')

	for _, a := range args {
		d, err := javaTypeDescriptor(a, mapClass)
		if err != nil {
			return "", err
		}

		b.WriteString(d)
	}

	b.WriteByte(')')

	d, err := javaTypeDescriptor(ret, mapClass)
	if err != nil {
		return "", err
	}

	b.WriteString(d)

	return b.String(), nil
}
