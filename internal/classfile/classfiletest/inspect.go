package classfiletest

import (
	"encoding/binary"
	"sort"
	"testing"

	"remapper/internal/classfile"
)

// Info lists the symbolic names of a class file.
type Info struct {
	Name       string
	Super      string
	Interfaces []string
	Signature  string
	// Fields and Methods hold "name desc" for each declaration.
	Fields  []string
	Methods []string
	// FieldRefs and MethodRefs hold "owner.name desc" for each pool reference.
	FieldRefs  []string
	MethodRefs []string
	// FieldSignatures maps field name to its generic signature.
	FieldSignatures map[string]string
	// InnerNames maps inner class name to its simple name.
	InnerNames map[string]string
	// Lambdas hold "name desc" for each invokedynamic site.
	Lambdas []string
}

// Inspect decodes data and collects its names.
func Inspect(t testing.TB, data []byte) Info {
	t.Helper()

	cls, err := classfile.Parse(data)
	if err != nil {
		t.Fatalf("parse class: %v", err)
	}

	p := cls.Pool
	str := func(i uint16) string {
		t.Helper()

		s, err := p.Utf8(i)
		if err != nil {
			t.Fatalf("utf8 %d: %v", i, err)
		}

		return s
	}
	className := func(i uint16) string {
		t.Helper()

		s, err := p.ClassName(i)
		if err != nil {
			t.Fatalf("class %d: %v", i, err)
		}

		return s
	}

	info := Info{
		Name:            className(cls.This),
		FieldSignatures: map[string]string{},
		InnerNames:      map[string]string{},
	}

	if cls.Super != 0 {
		info.Super = className(cls.Super)
	}

	for _, i := range cls.Interfaces {
		info.Interfaces = append(info.Interfaces, className(i))
	}

	for _, f := range cls.Fields {
		name := str(f.Name)
		info.Fields = append(info.Fields, name+" "+str(f.Desc))

		for _, a := range f.Attributes {
			if str(a.Name) == "Signature" {
				info.FieldSignatures[name] = str(binary.BigEndian.Uint16(a.Data))
			}
		}
	}

	for _, m := range cls.Methods {
		info.Methods = append(info.Methods, str(m.Name)+" "+str(m.Desc))
	}

	for _, a := range cls.Attributes {
		switch str(a.Name) {
		case "Signature":
			info.Signature = str(binary.BigEndian.Uint16(a.Data))
		case "InnerClasses":
			n := int(binary.BigEndian.Uint16(a.Data))
			for k := 0; k < n; k++ {
				e := a.Data[2+k*8:]
				simple := binary.BigEndian.Uint16(e[4:])

				if simple != 0 {
					info.InnerNames[className(binary.BigEndian.Uint16(e))] = str(simple)
				}
			}
		}
	}

	for i := 1; i < p.Len(); i++ {
		c, err := p.At(uint16(i))
		if err != nil {
			continue
		}

		if c.Tag == classfile.TagInvokeDynamic {
			name, desc, err := p.NameAndType(c.B)
			if err != nil {
				t.Fatalf("indy %d: %v", i, err)
			}

			info.Lambdas = append(info.Lambdas, name+" "+desc)

			continue
		}

		if c.Tag != classfile.TagFieldref && c.Tag != classfile.TagMethodref {
			continue
		}

		name, desc, err := p.NameAndType(c.B)
		if err != nil {
			t.Fatalf("ref %d: %v", i, err)
		}

		ref := className(c.A) + "." + name + " " + desc
		if c.Tag == classfile.TagFieldref {
			info.FieldRefs = append(info.FieldRefs, ref)
		} else {
			info.MethodRefs = append(info.MethodRefs, ref)
		}
	}

	sort.Strings(info.FieldRefs)
	sort.Strings(info.MethodRefs)

	return info
}
