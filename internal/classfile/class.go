package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const magic = 0xCAFEBABE

// Access flags used by this package's callers.
const (
	AccInterface uint16 = 0x0200
	AccModule    uint16 = 0x8000
)

// Attribute is an attribute whose body is kept undecoded.
type Attribute struct {
	Name uint16
	Data []byte
}

// Member is a field or method declaration.
type Member struct {
	Access     uint16
	Name       uint16
	Desc       uint16
	Attributes []Attribute
}

// Class is a decoded class file.
type Class struct {
	Minor, Major uint16
	Pool         *Pool
	Access       uint16
	This, Super  uint16
	Interfaces   []uint16
	Fields       []Member
	Methods      []Member
	Attributes   []Attribute
}

// Header is the part of a class file needed to index the class hierarchy.
type Header struct {
	Access     uint16
	Name       string
	Super      string
	Interfaces []string
}

// Parse decodes a complete class file. The returned Class owns a copy of data,
// so attribute bodies may be patched without affecting the caller's buffer.
func Parse(data []byte) (*Class, error) {
	c := NewCursor(bytes.Clone(data))

	cls, err := readPrologue(c)
	if err != nil {
		return nil, err
	}

	if cls.Fields, err = readMembers(c); err != nil {
		return nil, err
	}

	if cls.Methods, err = readMembers(c); err != nil {
		return nil, err
	}

	if cls.Attributes, err = readAttributes(c); err != nil {
		return nil, err
	}

	if c.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, c.Len())
	}

	return cls, nil
}

// ReadHeader decodes only the class name, superclass and interfaces.
func ReadHeader(data []byte) (*Header, error) {
	cls, err := readPrologue(NewCursor(data))
	if err != nil {
		return nil, err
	}

	h := &Header{Access: cls.Access}

	if h.Name, err = cls.Pool.ClassName(cls.This); err != nil {
		return nil, err
	}

	if cls.Super != 0 {
		if h.Super, err = cls.Pool.ClassName(cls.Super); err != nil {
			return nil, err
		}
	}

	for _, i := range cls.Interfaces {
		name, err := cls.Pool.ClassName(i)
		if err != nil {
			return nil, err
		}

		h.Interfaces = append(h.Interfaces, name)
	}

	return h, nil
}

// Name returns the internal name of the class.
func (cls *Class) Name() (string, error) {
	return cls.Pool.ClassName(cls.This)
}

// AttributeName returns the name of an attribute.
func (cls *Class) AttributeName(a Attribute) (string, error) {
	return cls.Pool.Utf8(a.Name)
}

// Bytes encodes the class.
func (cls *Class) Bytes() []byte {
	var buf bytes.Buffer

	w := func(v any) { _ = binary.Write(&buf, binary.BigEndian, v) }

	w(uint32(magic))
	w(cls.Minor)
	w(cls.Major)

	w(uint16(cls.Pool.Len()))

	for i := 1; i < cls.Pool.Len(); i++ {
		e := cls.Pool.entries[i]
		if e.Tag == 0 {
			continue
		}

		buf.WriteByte(e.Tag)

		switch e.Tag {
		case TagUtf8:
			w(uint16(len(e.Raw)))
			buf.Write(e.Raw)
		case TagInteger, TagFloat, TagLong, TagDouble:
			buf.Write(e.Raw)
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			w(e.A)
		case TagMethodHandle:
			buf.WriteByte(e.Kind)
			w(e.A)
		default:
			w(e.A)
			w(e.B)
		}
	}

	w(cls.Access)
	w(cls.This)
	w(cls.Super)
	w(uint16(len(cls.Interfaces)))

	for _, i := range cls.Interfaces {
		w(i)
	}

	for _, members := range [][]Member{cls.Fields, cls.Methods} {
		w(uint16(len(members)))

		for _, m := range members {
			w(m.Access)
			w(m.Name)
			w(m.Desc)
			writeAttributes(&buf, m.Attributes)
		}
	}

	writeAttributes(&buf, cls.Attributes)

	return buf.Bytes()
}

func readPrologue(c *Cursor) (*Class, error) {
	m, err := c.U4()
	if err != nil {
		return nil, err
	}

	if m != magic {
		return nil, fmt.Errorf("%w: bad magic %#x", ErrMalformed, m)
	}

	cls := &Class{}

	if cls.Minor, err = c.U2(); err != nil {
		return nil, err
	}

	if cls.Major, err = c.U2(); err != nil {
		return nil, err
	}

	if cls.Pool, err = readPool(c); err != nil {
		return nil, err
	}

	if cls.Access, err = c.U2(); err != nil {
		return nil, err
	}

	if cls.This, err = c.U2(); err != nil {
		return nil, err
	}

	if cls.Super, err = c.U2(); err != nil {
		return nil, err
	}

	n, err := c.U2()
	if err != nil {
		return nil, err
	}

	cls.Interfaces = make([]uint16, n)
	for i := range cls.Interfaces {
		if cls.Interfaces[i], err = c.U2(); err != nil {
			return nil, err
		}
	}

	return cls, nil
}

func readMembers(c *Cursor) ([]Member, error) {
	n, err := c.U2()
	if err != nil {
		return nil, err
	}

	members := make([]Member, n)

	for i := range members {
		m := &members[i]

		if m.Access, err = c.U2(); err != nil {
			return nil, err
		}

		if m.Name, err = c.U2(); err != nil {
			return nil, err
		}

		if m.Desc, err = c.U2(); err != nil {
			return nil, err
		}

		if m.Attributes, err = readAttributes(c); err != nil {
			return nil, err
		}
	}

	return members, nil
}

func readAttributes(c *Cursor) ([]Attribute, error) {
	n, err := c.U2()
	if err != nil {
		return nil, err
	}

	attrs := make([]Attribute, n)

	for i := range attrs {
		if attrs[i].Name, err = c.U2(); err != nil {
			return nil, err
		}

		size, err := c.U4()
		if err != nil {
			return nil, err
		}

		if attrs[i].Data, err = c.Bytes(int(size)); err != nil {
			return nil, err
		}
	}

	return attrs, nil
}

func writeAttributes(buf *bytes.Buffer, attrs []Attribute) {
	var hdr [6]byte

	binary.BigEndian.PutUint16(hdr[:2], uint16(len(attrs)))
	buf.Write(hdr[:2])

	for _, a := range attrs {
		binary.BigEndian.PutUint16(hdr[:2], a.Name)
		binary.BigEndian.PutUint32(hdr[2:], uint32(len(a.Data)))
		buf.Write(hdr[:])
		buf.Write(a.Data)
	}
}
