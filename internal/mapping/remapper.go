package mapping

import (
	"strings"
)

// Remapper answers rename queries for one class hierarchy. It binds a Table to
// the Inheritance used to find the declaring class of inherited members.
type Remapper struct {
	table *Table
	inh   Inheritance
}

// NewRemapper binds table to inh. inh may be nil, in which case members are
// only found on their literal owner.
func NewRemapper(table *Table, inh Inheritance) *Remapper {
	return &Remapper{table: table, inh: inh}
}

// MapClass renames an internal class name or an array descriptor.
func (r *Remapper) MapClass(name string) string {
	if strings.HasPrefix(name, "[") {
		return r.MapDescriptor(name)
	}

	return r.table.MapClass(name)
}

// MapField renames a field referenced through owner.
func (r *Remapper) MapField(owner, name, _ string) string {
	if v, ok := r.climb(owner, func(cls string) (string, bool) {
		return r.table.Field(cls, name)
	}); ok {
		return v
	}

	return name
}

// MapMethod renames a method referenced through owner. Constructors, static
// initializers and methods on array types keep their names.
func (r *Remapper) MapMethod(owner, name, desc string) string {
	if name == "<init>" || name == "<clinit>" || strings.HasPrefix(owner, "[") {
		return name
	}

	if v, ok := r.climb(owner, func(cls string) (string, bool) {
		return r.table.Method(cls, name, desc)
	}); ok {
		return v
	}

	return name
}

// MapDescriptor renames the classes in a field or method descriptor.
func (r *Remapper) MapDescriptor(desc string) string {
	return MapDescriptor(desc, r.table.MapClass)
}

// MapSignature renames the classes in a generic signature.
func (r *Remapper) MapSignature(sig string) string {
	return MapSignature(sig, r.table.MapClass)
}

// climb walks owner and its ancestors breadth-first, superclass before
// interfaces, and returns the first entry found.
func (r *Remapper) climb(owner string, lookup func(cls string) (string, bool)) (string, bool) {
	if v, ok := lookup(owner); ok {
		return v, true
	}

	if r.inh == nil {
		return "", false
	}

	seen := map[string]struct{}{owner: {}}
	queue := r.inh.Parents(owner)

	for len(queue) > 0 {
		cls := queue[0]
		queue = queue[1:]

		if _, ok := seen[cls]; ok {
			continue
		}

		seen[cls] = struct{}{}

		if v, ok := lookup(cls); ok {
			return v, true
		}

		queue = append(queue, r.inh.Parents(cls)...)
	}

	return "", false
}
