package classfile

import (
	"bytes"
	"fmt"
)

// Constant-pool tags.
const (
	TagUtf8               uint8 = 1
	TagInteger            uint8 = 3
	TagFloat              uint8 = 4
	TagLong               uint8 = 5
	TagDouble             uint8 = 6
	TagClass              uint8 = 7
	TagString             uint8 = 8
	TagFieldref           uint8 = 9
	TagMethodref          uint8 = 10
	TagInterfaceMethodref uint8 = 11
	TagNameAndType        uint8 = 12
	TagMethodHandle       uint8 = 15
	TagMethodType         uint8 = 16
	TagDynamic            uint8 = 17
	TagInvokeDynamic      uint8 = 18
	TagModule             uint8 = 19
	TagPackage            uint8 = 20
)

// maxUtf8Length is the largest byte length a Utf8 constant can encode.
const maxUtf8Length = 0xFFFF

// maxPoolSize is the largest constant_pool_count a class file can declare.
const maxPoolSize = 0xFFFF

// Constant is one constant-pool entry. Which fields are meaningful depends on Tag:
//
//	Utf8                       Raw
//	Integer, Float, Long, Double Raw (4 or 8 bytes)
//	Class, String, MethodType, Module, Package   A
//	Fieldref, Methodref, InterfaceMethodref      A = class, B = name-and-type
//	NameAndType                A = name, B = descriptor
//	MethodHandle               Kind, A = reference
//	Dynamic, InvokeDynamic     A = bootstrap method, B = name-and-type
//
// The second slot of a Long or Double has Tag 0.
type Constant struct {
	Tag  uint8
	Kind uint8
	A, B uint16
	Raw  []byte
}

// Pool is a constant pool indexed from 1; index 0 is unused.
type Pool struct {
	entries []Constant
	utf8    map[string]uint16
	nat     map[[2]uint16]uint16
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{entries: make([]Constant, 1)}
}

// Len returns constant_pool_count, i.e. one more than the highest index.
func (p *Pool) Len() int { return len(p.entries) }

// At returns the entry at index i.
func (p *Pool) At(i uint16) (Constant, error) {
	if i == 0 || int(i) >= len(p.entries) || p.entries[i].Tag == 0 {
		return Constant{}, fmt.Errorf("%w: bad constant pool index %d", ErrMalformed, i)
	}

	return p.entries[i], nil
}

// Set replaces the entry at index i.
func (p *Pool) Set(i uint16, c Constant) {
	p.entries[i] = c
}

// Utf8 returns the string stored in the Utf8 entry at index i.
func (p *Pool) Utf8(i uint16) (string, error) {
	c, err := p.At(i)
	if err != nil {
		return "", err
	}

	if c.Tag != TagUtf8 {
		return "", fmt.Errorf("%w: constant %d is tag %d, want Utf8", ErrMalformed, i, c.Tag)
	}

	return decodeMUTF8(c.Raw), nil
}

// ClassName returns the internal name referenced by the Class entry at index i.
func (p *Pool) ClassName(i uint16) (string, error) {
	c, err := p.At(i)
	if err != nil {
		return "", err
	}

	if c.Tag != TagClass {
		return "", fmt.Errorf("%w: constant %d is tag %d, want Class", ErrMalformed, i, c.Tag)
	}

	return p.Utf8(c.A)
}

// NameAndType returns the name and descriptor of the NameAndType entry at index i.
func (p *Pool) NameAndType(i uint16) (name, desc string, err error) {
	c, err := p.At(i)
	if err != nil {
		return "", "", err
	}

	if c.Tag != TagNameAndType {
		return "", "", fmt.Errorf("%w: constant %d is tag %d, want NameAndType", ErrMalformed, i, c.Tag)
	}

	if name, err = p.Utf8(c.A); err != nil {
		return "", "", err
	}

	if desc, err = p.Utf8(c.B); err != nil {
		return "", "", err
	}

	return name, desc, nil
}

// AddUtf8 returns the index of a Utf8 entry holding s, appending one if needed.
func (p *Pool) AddUtf8(s string) (uint16, error) {
	p.index()

	if i, ok := p.utf8[s]; ok {
		return i, nil
	}

	raw := encodeMUTF8(s)
	if len(raw) > maxUtf8Length {
		return 0, fmt.Errorf("%w: Utf8 constant of %d bytes exceeds %d", ErrMalformed, len(raw), maxUtf8Length)
	}

	i, err := p.append(Constant{Tag: TagUtf8, Raw: raw})
	if err != nil {
		return 0, err
	}

	p.utf8[s] = i

	return i, nil
}

// AddNameAndType returns the index of a NameAndType entry for name and desc,
// appending one (and its Utf8 entries) if needed.
func (p *Pool) AddNameAndType(name, desc string) (uint16, error) {
	n, err := p.AddUtf8(name)
	if err != nil {
		return 0, err
	}

	d, err := p.AddUtf8(desc)
	if err != nil {
		return 0, err
	}

	key := [2]uint16{n, d}
	if i, ok := p.nat[key]; ok {
		return i, nil
	}

	i, err := p.append(Constant{Tag: TagNameAndType, A: n, B: d})
	if err != nil {
		return 0, err
	}

	p.nat[key] = i

	return i, nil
}

// Add appends c without deduplication and returns its index.
func (p *Pool) Add(c Constant) (uint16, error) {
	i, err := p.append(c)
	if err != nil {
		return 0, err
	}

	if c.Tag == TagLong || c.Tag == TagDouble {
		if _, err := p.append(Constant{}); err != nil {
			return 0, err
		}
	}

	return i, nil
}

// AddClass returns the index of a Class entry naming name, appending one if needed.
func (p *Pool) AddClass(name string) (uint16, error) {
	n, err := p.AddUtf8(name)
	if err != nil {
		return 0, err
	}

	for i := 1; i < len(p.entries); i++ {
		if e := p.entries[i]; e.Tag == TagClass && e.A == n {
			return uint16(i), nil
		}
	}

	return p.Add(Constant{Tag: TagClass, A: n})
}

func (p *Pool) append(c Constant) (uint16, error) {
	if len(p.entries) >= maxPoolSize {
		return 0, fmt.Errorf("%w: constant pool overflow", ErrMalformed)
	}

	p.entries = append(p.entries, c)

	return uint16(len(p.entries) - 1), nil
}

// index builds the lookup tables used to deduplicate appended entries.
func (p *Pool) index() {
	if p.utf8 != nil {
		return
	}

	p.utf8 = make(map[string]uint16)
	p.nat = make(map[[2]uint16]uint16)

	for i := 1; i < len(p.entries); i++ {
		c := p.entries[i]

		switch c.Tag {
		case TagUtf8:
			// Only entries that encode back to the same bytes can be shared.
			s := decodeMUTF8(c.Raw)
			if !bytes.Equal(encodeMUTF8(s), c.Raw) {
				continue
			}

			if _, ok := p.utf8[s]; !ok {
				p.utf8[s] = uint16(i)
			}
		case TagNameAndType:
			key := [2]uint16{c.A, c.B}
			if _, ok := p.nat[key]; !ok {
				p.nat[key] = uint16(i)
			}
		}
	}
}

func readPool(c *Cursor) (*Pool, error) {
	count, err := c.U2()
	if err != nil {
		return nil, err
	}

	if count == 0 {
		return nil, fmt.Errorf("%w: empty constant pool", ErrMalformed)
	}

	p := &Pool{entries: make([]Constant, count)}

	for i := 1; i < int(count); i++ {
		tag, err := c.U1()
		if err != nil {
			return nil, err
		}

		e := Constant{Tag: tag}

		switch tag {
		case TagUtf8:
			n, err := c.U2()
			if err != nil {
				return nil, err
			}

			if e.Raw, err = c.Bytes(int(n)); err != nil {
				return nil, err
			}
		case TagInteger, TagFloat:
			if e.Raw, err = c.Bytes(4); err != nil {
				return nil, err
			}
		case TagLong, TagDouble:
			if e.Raw, err = c.Bytes(8); err != nil {
				return nil, err
			}
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			if e.A, err = c.U2(); err != nil {
				return nil, err
			}
		case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType, TagDynamic, TagInvokeDynamic:
			if e.A, err = c.U2(); err != nil {
				return nil, err
			}

			if e.B, err = c.U2(); err != nil {
				return nil, err
			}
		case TagMethodHandle:
			if e.Kind, err = c.U1(); err != nil {
				return nil, err
			}

			if e.A, err = c.U2(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: unknown constant tag %d at index %d", ErrMalformed, tag, i)
		}

		p.entries[i] = e

		if tag == TagLong || tag == TagDouble {
			i++
		}
	}

	return p, nil
}
