package mapping

import (
	"sort"
	"strings"
)

// Inheritance answers "which classes does this class directly extend or implement".
type Inheritance interface {
	// Parents returns the superclass followed by the interfaces of class,
	// or nil when the class is unknown.
	Parents(class string) []string
}

type memberKey struct {
	owner, name, desc string
}

// Table is an immutable rename table. It is safe for concurrent use once loaded.
type Table struct {
	format   Format
	classes  map[string]string
	packages map[string]string
	fields   map[memberKey]string
	methods  map[memberKey]string
}

// Counts summarizes the number of entries in a table.
type Counts struct {
	Classes, Packages, Fields, Methods int
}

func newTable(format Format) *Table {
	return &Table{
		format:   format,
		classes:  make(map[string]string),
		packages: make(map[string]string),
		fields:   make(map[memberKey]string),
		methods:  make(map[memberKey]string),
	}
}

// Format returns the on-disk format the table was loaded from.
func (t *Table) Format() Format { return t.format }

// Counts returns the number of entries of each kind.
func (t *Table) Counts() Counts {
	return Counts{
		Classes:  len(t.classes),
		Packages: len(t.packages),
		Fields:   len(t.fields),
		Methods:  len(t.methods),
	}
}

func (t *Table) addClass(src, dst string) { t.classes[src] = dst }

func (t *Table) addPackage(src, dst string) { t.packages[src] = dst }

func (t *Table) addField(owner, name, dst string) {
	t.fields[memberKey{owner: owner, name: name}] = dst
}

func (t *Table) addMethod(owner, name, desc, dst string) {
	t.methods[memberKey{owner: owner, name: name, desc: desc}] = dst
}

// MapClass returns the target name of an internal class name. Nested classes
// without their own entry follow their outer class; classes without any
// entry follow the longest mapped package prefix.
func (t *Table) MapClass(name string) string {
	if v, ok := t.classes[name]; ok {
		return v
	}

	if i := strings.LastIndexByte(name, '$'); i > 0 {
		outer := name[:i]
		if mapped := t.MapClass(outer); mapped != outer {
			return mapped + name[i:]
		}
	}

	if len(t.packages) == 0 {
		return name
	}

	pkg := name
	for {
		i := strings.LastIndexByte(pkg, '/')
		if i < 0 {
			break
		}

		pkg = pkg[:i]
		if v, ok := t.packages[pkg+"/"]; ok {
			return v + name[len(pkg)+1:]
		}
	}

	if v, ok := t.packages[""]; ok && !strings.Contains(name, "/") {
		return v + name
	}

	return name
}

// Field returns the direct entry for a field, without climbing the hierarchy.
func (t *Table) Field(owner, name string) (string, bool) {
	v, ok := t.fields[memberKey{owner: owner, name: name}]
	return v, ok
}

// Method returns the direct entry for a method, without climbing the hierarchy.
func (t *Table) Method(owner, name, desc string) (string, bool) {
	v, ok := t.methods[memberKey{owner: owner, name: name, desc: desc}]
	return v, ok
}

// Reverse returns a table mapping every target name back to its source.
// Member owners and method descriptors are re-expressed in target naming.
// When two sources share a target the lexically first source wins.
func (t *Table) Reverse() *Table {
	r := newTable(t.format)

	for _, src := range sortedKeys(t.classes) {
		dst := t.classes[src]
		if _, ok := r.classes[dst]; !ok {
			r.classes[dst] = src
		}
	}

	for _, src := range sortedKeys(t.packages) {
		dst := t.packages[src]
		if _, ok := r.packages[dst]; !ok {
			r.packages[dst] = src
		}
	}

	for _, k := range sortedMemberKeys(t.fields) {
		rk := memberKey{owner: t.MapClass(k.owner), name: t.fields[k]}
		if _, ok := r.fields[rk]; !ok {
			r.fields[rk] = k.name
		}
	}

	for _, k := range sortedMemberKeys(t.methods) {
		rk := memberKey{owner: t.MapClass(k.owner), name: t.methods[k], desc: MapDescriptor(k.desc, t.MapClass)}
		if _, ok := r.methods[rk]; !ok {
			r.methods[rk] = k.name
		}
	}

	return r
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func sortedMemberKeys(m map[memberKey]string) []memberKey {
	keys := make([]memberKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.owner != b.owner {
			return a.owner < b.owner
		}

		if a.name != b.name {
			return a.name < b.name
		}

		return a.desc < b.desc
	})

	return keys
}
