// Package classfiletest assembles small class files and jars for tests and
// reads back the names that matter to a remap.
package classfiletest

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"os"
	"sort"
	"testing"

	"remapper/internal/classfile"
)

// Ref is a member reference emitted into a method body.
type Ref struct {
	Owner, Name, Desc string
	// Method selects a Methodref (invokevirtual) instead of a Fieldref (getfield).
	Method bool
}

// Field returns a field reference.
func Field(owner, name, desc string) Ref { return Ref{Owner: owner, Name: name, Desc: desc} }

// Method returns a method reference.
func Method(owner, name, desc string) Ref {
	return Ref{Owner: owner, Name: name, Desc: desc, Method: true}
}

type member struct {
	name, desc string
	sig        string
	refs       []Ref
}

// Builder assembles a class file.
type Builder struct {
	name       string
	super      string
	interfaces []string
	sig        string
	fields     []member
	methods    []member
	inner      [][3]string
	lambdas    [][3]string
}

// Class starts a class with the given internal name and superclass.
func Class(name, super string, interfaces ...string) *Builder {
	return &Builder{name: name, super: super, interfaces: interfaces}
}

// Signature sets the class-level generic signature.
func (b *Builder) Signature(sig string) *Builder {
	b.sig = sig
	return b
}

// Field declares a field.
func (b *Builder) Field(name, desc string) *Builder {
	b.fields = append(b.fields, member{name: name, desc: desc})
	return b
}

// GenericField declares a field with a Signature attribute.
func (b *Builder) GenericField(name, desc, sig string) *Builder {
	b.fields = append(b.fields, member{name: name, desc: desc, sig: sig})
	return b
}

// Method declares a method whose body touches every ref in order.
func (b *Builder) Method(name, desc string, refs ...Ref) *Builder {
	b.methods = append(b.methods, member{name: name, desc: desc, refs: refs})
	return b
}

// Inner records an InnerClasses entry.
func (b *Builder) Inner(inner, outer, simple string) *Builder {
	b.inner = append(b.inner, [3]string{inner, outer, simple})
	return b
}

// Lambda records a LambdaMetafactory call site producing iface, whose
// functional method is name with erased descriptor samDesc.
func (b *Builder) Lambda(iface, name, samDesc string) *Builder {
	b.lambdas = append(b.lambdas, [3]string{iface, name, samDesc})
	return b
}

// Bytes assembles the class file.
func (b *Builder) Bytes(t testing.TB) []byte {
	t.Helper()

	p := classfile.NewPool()
	must := func(i uint16, err error) uint16 {
		t.Helper()

		if err != nil {
			t.Fatalf("assemble %s: %v", b.name, err)
		}

		return i
	}

	cls := &classfile.Class{Major: 52, Pool: p, Access: 0x0021}
	cls.This = must(p.AddClass(b.name))

	if b.super != "" {
		cls.Super = must(p.AddClass(b.super))
	}

	for _, i := range b.interfaces {
		cls.Interfaces = append(cls.Interfaces, must(p.AddClass(i)))
	}

	signature := func(sig string) classfile.Attribute {
		data := binary.BigEndian.AppendUint16(nil, must(p.AddUtf8(sig)))
		return classfile.Attribute{Name: must(p.AddUtf8("Signature")), Data: data}
	}

	for _, f := range b.fields {
		m := classfile.Member{Access: 0x0001, Name: must(p.AddUtf8(f.name)), Desc: must(p.AddUtf8(f.desc))}
		if f.sig != "" {
			m.Attributes = append(m.Attributes, signature(f.sig))
		}

		cls.Fields = append(cls.Fields, m)
	}

	for _, mm := range b.methods {
		var code []byte

		for _, r := range mm.refs {
			nat := must(p.AddNameAndType(r.Name, r.Desc))
			owner := must(p.AddClass(r.Owner))

			if r.Method {
				ref := must(p.Add(classfile.Constant{Tag: classfile.TagMethodref, A: owner, B: nat}))
				code = append(code, 0x2a, 0xb6)
				code = binary.BigEndian.AppendUint16(code, ref)
			} else {
				ref := must(p.Add(classfile.Constant{Tag: classfile.TagFieldref, A: owner, B: nat}))
				code = append(code, 0x2a, 0xb4)
				code = binary.BigEndian.AppendUint16(code, ref)
			}

			code = append(code, 0x57)
		}

		code = append(code, 0xb1)

		var body []byte
		body = binary.BigEndian.AppendUint16(body, 2)
		body = binary.BigEndian.AppendUint16(body, 1)
		body = binary.BigEndian.AppendUint32(body, uint32(len(code)))
		body = append(body, code...)
		body = binary.BigEndian.AppendUint16(body, 0)
		body = binary.BigEndian.AppendUint16(body, 0)

		cls.Methods = append(cls.Methods, classfile.Member{
			Access:     0x0001,
			Name:       must(p.AddUtf8(mm.name)),
			Desc:       must(p.AddUtf8(mm.desc)),
			Attributes: []classfile.Attribute{{Name: must(p.AddUtf8("Code")), Data: body}},
		})
	}

	if b.sig != "" {
		cls.Attributes = append(cls.Attributes, signature(b.sig))
	}

	if len(b.inner) > 0 {
		data := binary.BigEndian.AppendUint16(nil, uint16(len(b.inner)))

		for _, e := range b.inner {
			data = binary.BigEndian.AppendUint16(data, must(p.AddClass(e[0])))

			var outer, simple uint16
			if e[1] != "" {
				outer = must(p.AddClass(e[1]))
			}

			if e[2] != "" {
				simple = must(p.AddUtf8(e[2]))
			}

			data = binary.BigEndian.AppendUint16(data, outer)
			data = binary.BigEndian.AppendUint16(data, simple)
			data = binary.BigEndian.AppendUint16(data, 0x0009)
		}

		cls.Attributes = append(cls.Attributes, classfile.Attribute{Name: must(p.AddUtf8("InnerClasses")), Data: data})
	}

	if len(b.lambdas) > 0 {
		factory := must(p.Add(classfile.Constant{
			Tag: classfile.TagMethodref,
			A:   must(p.AddClass("java/lang/invoke/LambdaMetafactory")),
			B: must(p.AddNameAndType("metafactory",
				"(Ljava/lang/invoke/MethodHandles$Lookup;Ljava/lang/String;Ljava/lang/invoke/MethodType;"+
					"Ljava/lang/invoke/MethodType;Ljava/lang/invoke/MethodHandle;Ljava/lang/invoke/MethodType;)"+
					"Ljava/lang/invoke/CallSite;")),
		}))
		handle := must(p.Add(classfile.Constant{Tag: classfile.TagMethodHandle, Kind: 6, A: factory}))

		data := binary.BigEndian.AppendUint16(nil, uint16(len(b.lambdas)))

		for i, l := range b.lambdas {
			sam := must(p.Add(classfile.Constant{Tag: classfile.TagMethodType, A: must(p.AddUtf8(l[2]))}))

			data = binary.BigEndian.AppendUint16(data, handle)
			data = binary.BigEndian.AppendUint16(data, 2)
			data = binary.BigEndian.AppendUint16(data, sam)
			data = binary.BigEndian.AppendUint16(data, sam)

			must(p.Add(classfile.Constant{
				Tag: classfile.TagInvokeDynamic,
				A:   uint16(i),
				B:   must(p.AddNameAndType(l[1], "()L"+l[0]+";")),
			}))
		}

		cls.Attributes = append(cls.Attributes, classfile.Attribute{Name: must(p.AddUtf8("BootstrapMethods")), Data: data})
	}

	return cls.Bytes()
}

// WriteJar writes a zip archive holding entries (path -> content) in sorted order.
func WriteJar(t testing.TB, path string, entries map[string][]byte) {
	t.Helper()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}

	sort.Strings(names)

	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}

		if _, err := w.Write(entries[name]); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("close jar: %v", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write jar %s: %v", path, err)
	}
}

// ReadJar returns every file entry of a zip archive.
func ReadJar(t testing.TB, path string) map[string][]byte {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open jar %s: %v", path, err)
	}
	defer zr.Close()

	out := make(map[string][]byte)

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}

		var b bytes.Buffer
		if _, err := b.ReadFrom(rc); err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}

		_ = rc.Close()
		out[f.Name] = b.Bytes()
	}

	return out
}
