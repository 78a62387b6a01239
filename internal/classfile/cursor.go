package classfile

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformed is returned for class data that does not follow the class-file format.
var ErrMalformed = errors.New("malformed class file")

// Cursor reads big-endian values from a byte slice and can patch two-byte
// values at the position it just read.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor creates a Cursor over data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Pos returns the current offset.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the number of unread bytes.
func (c *Cursor) Len() int { return len(c.data) - c.pos }

func (c *Cursor) need(n int) error {
	if n < 0 || c.pos+n > len(c.data) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrMalformed, n, c.pos, len(c.data)-c.pos)
	}

	return nil
}

// U1 reads one byte.
func (c *Cursor) U1() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}

	v := c.data[c.pos]
	c.pos++

	return v, nil
}

// U2 reads a two-byte value.
func (c *Cursor) U2() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}

	v := binary.BigEndian.Uint16(c.data[c.pos:])
	c.pos += 2

	return v, nil
}

// U4 reads a four-byte value.
func (c *Cursor) U4() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}

	v := binary.BigEndian.Uint32(c.data[c.pos:])
	c.pos += 4

	return v, nil
}

// Bytes reads n bytes. The returned slice aliases the underlying data.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}

	v := c.data[c.pos : c.pos+n]
	c.pos += n

	return v, nil
}

// Skip advances n bytes.
func (c *Cursor) Skip(n int) error {
	if err := c.need(n); err != nil {
		return err
	}

	c.pos += n

	return nil
}

// Patch2 overwrites the two-byte value that ends at the current offset.
func (c *Cursor) Patch2(v uint16) {
	binary.BigEndian.PutUint16(c.data[c.pos-2:], v)
}

// PatchAt overwrites the two-byte value at offset off.
func (c *Cursor) PatchAt(off int, v uint16) {
	binary.BigEndian.PutUint16(c.data[off:], v)
}
