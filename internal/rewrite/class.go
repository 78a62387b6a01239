package rewrite

import (
	"fmt"
	"strings"

	"remapper/internal/classfile"
)

// Remapper answers the rename queries of one rewrite. Member queries take the
// owner and descriptor in source naming.
type Remapper interface {
	MapClass(name string) string
	MapField(owner, name, desc string) string
	MapMethod(owner, name, desc string) string
	MapDescriptor(desc string) string
	MapSignature(sig string) string
}

const lambdaMetafactory = "java/lang/invoke/LambdaMetafactory"

type bootstrapMethod struct {
	lambda  bool
	samDesc string
}

// classRewriter renames the symbols of one class. Original pool entries keep
// their indices; renamed uses point at appended entries.
type classRewriter struct {
	cls *classfile.Class
	r   Remapper

	// classNames holds the original name behind each Class entry.
	classNames map[uint16]string
	thisName   string
	bootstrap  []bootstrapMethod
}

// remapClass rewrites data and returns the original and new class names with
// the new bytes.
func remapClass(data []byte, r Remapper) (from, to string, out []byte, err error) {
	cls, err := classfile.Parse(data)
	if err != nil {
		return "", "", nil, err
	}

	cr := &classRewriter{cls: cls, r: r, classNames: make(map[uint16]string)}

	if err := cr.run(); err != nil {
		return "", "", nil, err
	}

	return cr.thisName, r.MapClass(cr.thisName), cls.Bytes(), nil
}

func (cr *classRewriter) run() error {
	p := cr.cls.Pool
	n := p.Len()

	for i := 1; i < n; i++ {
		c, err := p.At(uint16(i))
		if err != nil || c.Tag != classfile.TagClass {
			continue
		}

		name, err := p.Utf8(c.A)
		if err != nil {
			return err
		}

		cr.classNames[uint16(i)] = name
	}

	var ok bool
	if cr.thisName, ok = cr.classNames[cr.cls.This]; !ok {
		return fmt.Errorf("%w: this_class %d is not a Class entry", classfile.ErrMalformed, cr.cls.This)
	}

	if err := cr.readBootstrap(); err != nil {
		return err
	}

	if err := cr.constants(n); err != nil {
		return err
	}

	if err := cr.members(cr.cls.Fields, true); err != nil {
		return err
	}

	if err := cr.members(cr.cls.Methods, false); err != nil {
		return err
	}

	return cr.attributes(cr.cls.Attributes)
}

// constants rewrites the first n pool entries.
func (cr *classRewriter) constants(n int) error {
	p := cr.cls.Pool

	for i := 1; i < n; i++ {
		idx := uint16(i)

		c, err := p.At(idx)
		if err != nil {
			continue
		}

		switch c.Tag {
		case classfile.TagClass:
			name := cr.classNames[idx]

			if c.A, err = cr.utf8(name, cr.r.MapClass(name), c.A); err != nil {
				return err
			}
		case classfile.TagFieldref, classfile.TagMethodref, classfile.TagInterfaceMethodref:
			owner, ok := cr.classNames[c.A]
			if !ok {
				return fmt.Errorf("%w: reference %d has no Class owner", classfile.ErrMalformed, i)
			}

			name, desc, err := p.NameAndType(c.B)
			if err != nil {
				return err
			}

			newName := cr.r.MapMethod(owner, name, desc)
			if c.Tag == classfile.TagFieldref {
				newName = cr.r.MapField(owner, name, desc)
			}

			if c.B, err = cr.nameAndType(name, desc, newName, cr.r.MapDescriptor(desc), c.B); err != nil {
				return err
			}
		case classfile.TagMethodType:
			desc, err := p.Utf8(c.A)
			if err != nil {
				return err
			}

			if c.A, err = cr.utf8(desc, cr.r.MapDescriptor(desc), c.A); err != nil {
				return err
			}
		case classfile.TagInvokeDynamic, classfile.TagDynamic:
			name, desc, err := p.NameAndType(c.B)
			if err != nil {
				return err
			}

			newName := name
			if c.Tag == classfile.TagInvokeDynamic {
				newName = cr.lambdaName(c.A, name, desc)
			}

			if c.B, err = cr.nameAndType(name, desc, newName, cr.r.MapDescriptor(desc), c.B); err != nil {
				return err
			}
		default:
			continue
		}

		p.Set(idx, c)
	}

	return nil
}

// lambdaName renames the functional-interface method of a LambdaMetafactory
// call site. The interface is the return type of the site descriptor.
func (cr *classRewriter) lambdaName(bsm uint16, name, desc string) string {
	if int(bsm) >= len(cr.bootstrap) || !cr.bootstrap[bsm].lambda {
		return name
	}

	ret := desc[strings.LastIndexByte(desc, ')')+1:]
	if !strings.HasPrefix(ret, "L") || !strings.HasSuffix(ret, ";") {
		return name
	}

	return cr.r.MapMethod(ret[1:len(ret)-1], name, cr.bootstrap[bsm].samDesc)
}

// readBootstrap decodes the BootstrapMethods attribute. It must run before
// the pool is rewritten: the erased method type of a lambda site is read in
// source naming.
func (cr *classRewriter) readBootstrap() error {
	for _, a := range cr.cls.Attributes {
		name, err := cr.cls.AttributeName(a)
		if err != nil {
			return err
		}

		if name != "BootstrapMethods" {
			continue
		}

		c := classfile.NewCursor(a.Data)

		n, err := c.U2()
		if err != nil {
			return err
		}

		cr.bootstrap = make([]bootstrapMethod, n)

		for i := range cr.bootstrap {
			ref, err := c.U2()
			if err != nil {
				return err
			}

			argc, err := c.U2()
			if err != nil {
				return err
			}

			args := make([]uint16, argc)
			for k := range args {
				if args[k], err = c.U2(); err != nil {
					return err
				}
			}

			if cr.bootstrap[i], err = cr.resolveBootstrap(ref, args); err != nil {
				return err
			}
		}
	}

	return nil
}

// resolveBootstrap reports whether ref is LambdaMetafactory and, if so, the
// erased method type passed as its first argument.
func (cr *classRewriter) resolveBootstrap(ref uint16, args []uint16) (bootstrapMethod, error) {
	p := cr.cls.Pool

	handle, err := p.At(ref)
	if err != nil || handle.Tag != classfile.TagMethodHandle || len(args) == 0 {
		return bootstrapMethod{}, err
	}

	target, err := p.At(handle.A)
	if err != nil {
		return bootstrapMethod{}, err
	}

	if cr.classNames[target.A] != lambdaMetafactory {
		return bootstrapMethod{}, nil
	}

	sam, err := p.At(args[0])
	if err != nil || sam.Tag != classfile.TagMethodType {
		return bootstrapMethod{}, err
	}

	desc, err := p.Utf8(sam.A)
	if err != nil {
		return bootstrapMethod{}, err
	}

	return bootstrapMethod{lambda: true, samDesc: desc}, nil
}

func (cr *classRewriter) members(members []classfile.Member, field bool) error {
	p := cr.cls.Pool

	for i := range members {
		m := &members[i]

		name, err := p.Utf8(m.Name)
		if err != nil {
			return err
		}

		desc, err := p.Utf8(m.Desc)
		if err != nil {
			return err
		}

		newName := cr.r.MapMethod(cr.thisName, name, desc)
		if field {
			newName = cr.r.MapField(cr.thisName, name, desc)
		}

		if m.Name, err = cr.utf8(name, newName, m.Name); err != nil {
			return err
		}

		if m.Desc, err = cr.utf8(desc, cr.r.MapDescriptor(desc), m.Desc); err != nil {
			return err
		}

		if err := cr.attributes(m.Attributes); err != nil {
			return err
		}
	}

	return nil
}

// utf8 returns the index to use for a string that was old at index idx and
// should now read s.
func (cr *classRewriter) utf8(old, s string, idx uint16) (uint16, error) {
	if old == s {
		return idx, nil
	}

	return cr.cls.Pool.AddUtf8(s)
}

func (cr *classRewriter) nameAndType(name, desc, newName, newDesc string, idx uint16) (uint16, error) {
	if name == newName && desc == newDesc {
		return idx, nil
	}

	return cr.cls.Pool.AddNameAndType(newName, newDesc)
}

func (cr *classRewriter) attributes(attrs []classfile.Attribute) error {
	for _, a := range attrs {
		name, err := cr.cls.AttributeName(a)
		if err != nil {
			return err
		}

		if err := cr.attribute(name, classfile.NewCursor(a.Data)); err != nil {
			return fmt.Errorf("attribute %s: %w", name, err)
		}
	}

	return nil
}

func (cr *classRewriter) attribute(name string, c *classfile.Cursor) error {
	switch name {
	case "Signature":
		return cr.patch(c, cr.r.MapSignature)
	case "Code":
		return cr.code(c)
	case "LocalVariableTable":
		return cr.localVariables(c, cr.r.MapDescriptor)
	case "LocalVariableTypeTable":
		return cr.localVariables(c, cr.r.MapSignature)
	case "InnerClasses":
		return cr.innerClasses(c)
	case "EnclosingMethod":
		return cr.enclosingMethod(c)
	case "Record":
		return cr.record(c)
	case "RuntimeVisibleAnnotations", "RuntimeInvisibleAnnotations":
		return cr.annotations(c)
	case "RuntimeVisibleParameterAnnotations", "RuntimeInvisibleParameterAnnotations":
		params, err := c.U1()
		if err != nil {
			return err
		}

		for range params {
			if err := cr.annotations(c); err != nil {
				return err
			}
		}

		return nil
	case "RuntimeVisibleTypeAnnotations", "RuntimeInvisibleTypeAnnotations":
		return cr.typeAnnotations(c)
	case "AnnotationDefault":
		return cr.elementValue(c)
	default:
		return nil
	}
}

// patch reads a Utf8 index, maps its string and redirects the index.
func (cr *classRewriter) patch(c *classfile.Cursor, mapFn func(string) string) error {
	idx, err := c.U2()
	if err != nil {
		return err
	}

	s, err := cr.cls.Pool.Utf8(idx)
	if err != nil {
		return err
	}

	n, err := cr.utf8(s, mapFn(s), idx)
	if err != nil {
		return err
	}

	c.Patch2(n)

	return nil
}

func (cr *classRewriter) code(c *classfile.Cursor) error {
	if err := c.Skip(4); err != nil {
		return err
	}

	size, err := c.U4()
	if err != nil {
		return err
	}

	if err := c.Skip(int(size)); err != nil {
		return err
	}

	handlers, err := c.U2()
	if err != nil {
		return err
	}

	if err := c.Skip(int(handlers) * 8); err != nil {
		return err
	}

	return cr.nestedAttributes(c)
}

// nestedAttributes walks an attribute table embedded in another attribute.
func (cr *classRewriter) nestedAttributes(c *classfile.Cursor) error {
	n, err := c.U2()
	if err != nil {
		return err
	}

	for range n {
		nameIdx, err := c.U2()
		if err != nil {
			return err
		}

		size, err := c.U4()
		if err != nil {
			return err
		}

		body, err := c.Bytes(int(size))
		if err != nil {
			return err
		}

		name, err := cr.cls.Pool.Utf8(nameIdx)
		if err != nil {
			return err
		}

		if err := cr.attribute(name, classfile.NewCursor(body)); err != nil {
			return fmt.Errorf("attribute %s: %w", name, err)
		}
	}

	return nil
}

func (cr *classRewriter) localVariables(c *classfile.Cursor, mapFn func(string) string) error {
	n, err := c.U2()
	if err != nil {
		return err
	}

	for range n {
		// start_pc, length, name_index
		if err := c.Skip(6); err != nil {
			return err
		}

		if err := cr.patch(c, mapFn); err != nil {
			return err
		}

		if err := c.Skip(2); err != nil {
			return err
		}
	}

	return nil
}

func (cr *classRewriter) innerClasses(c *classfile.Cursor) error {
	n, err := c.U2()
	if err != nil {
		return err
	}

	for range n {
		inner, err := c.U2()
		if err != nil {
			return err
		}

		if err := c.Skip(2); err != nil {
			return err
		}

		simpleIdx, err := c.U2()
		if err != nil {
			return err
		}

		if simpleIdx != 0 {
			if err := cr.innerName(c, inner, simpleIdx); err != nil {
				return err
			}
		}

		if err := c.Skip(2); err != nil {
			return err
		}
	}

	return nil
}

// innerName renames the simple name of an InnerClasses entry to the part of
// the new binary name after the last '$'.
func (cr *classRewriter) innerName(c *classfile.Cursor, inner, simpleIdx uint16) error {
	orig, ok := cr.classNames[inner]
	if !ok {
		return nil
	}

	mapped := cr.r.MapClass(orig)
	if mapped == orig {
		return nil
	}

	simple, err := cr.cls.Pool.Utf8(simpleIdx)
	if err != nil {
		return err
	}

	newSimple := mapped[strings.LastIndexAny(mapped, "$/")+1:]
	if newSimple == "" {
		return nil
	}

	n, err := cr.utf8(simple, newSimple, simpleIdx)
	if err != nil {
		return err
	}

	c.Patch2(n)

	return nil
}

func (cr *classRewriter) enclosingMethod(c *classfile.Cursor) error {
	class, err := c.U2()
	if err != nil {
		return err
	}

	natIdx, err := c.U2()
	if err != nil || natIdx == 0 {
		return err
	}

	name, desc, err := cr.cls.Pool.NameAndType(natIdx)
	if err != nil {
		return err
	}

	owner := cr.classNames[class]

	n, err := cr.nameAndType(name, desc, cr.r.MapMethod(owner, name, desc), cr.r.MapDescriptor(desc), natIdx)
	if err != nil {
		return err
	}

	c.Patch2(n)

	return nil
}

func (cr *classRewriter) record(c *classfile.Cursor) error {
	n, err := c.U2()
	if err != nil {
		return err
	}

	p := cr.cls.Pool

	for range n {
		nameIdx, err := c.U2()
		if err != nil {
			return err
		}

		name, err := p.Utf8(nameIdx)
		if err != nil {
			return err
		}

		descIdx, err := c.U2()
		if err != nil {
			return err
		}

		desc, err := p.Utf8(descIdx)
		if err != nil {
			return err
		}

		newDesc, err := cr.utf8(desc, cr.r.MapDescriptor(desc), descIdx)
		if err != nil {
			return err
		}

		c.Patch2(newDesc)

		newName, err := cr.utf8(name, cr.r.MapField(cr.thisName, name, desc), nameIdx)
		if err != nil {
			return err
		}

		c.PatchAt(c.Pos()-4, newName)

		if err := cr.nestedAttributes(c); err != nil {
			return err
		}
	}

	return nil
}

func (cr *classRewriter) annotations(c *classfile.Cursor) error {
	n, err := c.U2()
	if err != nil {
		return err
	}

	for range n {
		if err := cr.annotation(c); err != nil {
			return err
		}
	}

	return nil
}

func (cr *classRewriter) annotation(c *classfile.Cursor) error {
	if err := cr.patch(c, cr.r.MapDescriptor); err != nil {
		return err
	}

	pairs, err := c.U2()
	if err != nil {
		return err
	}

	for range pairs {
		if err := c.Skip(2); err != nil {
			return err
		}

		if err := cr.elementValue(c); err != nil {
			return err
		}
	}

	return nil
}

func (cr *classRewriter) elementValue(c *classfile.Cursor) error {
	tag, err := c.U1()
	if err != nil {
		return err
	}

	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		return c.Skip(2)
	case 'e':
		typeIdx, err := c.U2()
		if err != nil {
			return err
		}

		typ, err := cr.cls.Pool.Utf8(typeIdx)
		if err != nil {
			return err
		}

		newType, err := cr.utf8(typ, cr.r.MapDescriptor(typ), typeIdx)
		if err != nil {
			return err
		}

		c.Patch2(newType)

		constIdx, err := c.U2()
		if err != nil {
			return err
		}

		constant, err := cr.cls.Pool.Utf8(constIdx)
		if err != nil {
			return err
		}

		owner := strings.TrimSuffix(strings.TrimPrefix(typ, "L"), ";")

		n, err := cr.utf8(constant, cr.r.MapField(owner, constant, typ), constIdx)
		if err != nil {
			return err
		}

		c.Patch2(n)

		return nil
	case 'c':
		return cr.patch(c, cr.r.MapDescriptor)
	case '@':
		return cr.annotation(c)
	case '[':
		n, err := c.U2()
		if err != nil {
			return err
		}

		for range n {
			if err := cr.elementValue(c); err != nil {
				return err
			}
		}

		return nil
	default:
		return fmt.Errorf("%w: unknown element value tag %q", classfile.ErrMalformed, tag)
	}
}

func (cr *classRewriter) typeAnnotations(c *classfile.Cursor) error {
	n, err := c.U2()
	if err != nil {
		return err
	}

	for range n {
		target, err := c.U1()
		if err != nil {
			return err
		}

		if err := skipTargetInfo(c, target); err != nil {
			return err
		}

		pathLen, err := c.U1()
		if err != nil {
			return err
		}

		if err := c.Skip(int(pathLen) * 2); err != nil {
			return err
		}

		if err := cr.annotation(c); err != nil {
			return err
		}
	}

	return nil
}

func skipTargetInfo(c *classfile.Cursor, target uint8) error {
	switch {
	case target <= 0x01, target == 0x16:
		return c.Skip(1)
	case target == 0x10, target == 0x17, target >= 0x42 && target <= 0x46:
		return c.Skip(2)
	case target == 0x11, target == 0x12:
		return c.Skip(2)
	case target >= 0x13 && target <= 0x15:
		return nil
	case target == 0x40, target == 0x41:
		n, err := c.U2()
		if err != nil {
			return err
		}

		return c.Skip(int(n) * 6)
	case target >= 0x47 && target <= 0x4B:
		return c.Skip(3)
	default:
		return fmt.Errorf("%w: unknown type annotation target %#x", classfile.ErrMalformed, target)
	}
}
