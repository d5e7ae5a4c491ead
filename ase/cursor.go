package ase

// This file contains the sequential little-endian reader every other decoder
// in the package is built upon.

import (
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// cursor reads little-endian primitives from a seekable source.
//
// Errors are sticky: once a read fails, every later read returns a zero
// value and err keeps the first failure. Decoders read a run of fields and
// check err once, much like bufio.Scanner.
type cursor struct {
	r    io.ReadSeeker
	off  int64
	size int64
	err  error

	buf [8]byte
}

func newCursor(r io.ReadSeeker) (*cursor, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errors.Wrap(err, "ase: finding start of source")
	}
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrap(err, "ase: finding size of source")
	}
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "ase: rewinding source")
	}
	return &cursor{r: r, off: start, size: end}, nil
}

func (c *cursor) pos() int64 {
	return c.off
}

func (c *cursor) remaining() int64 {
	return c.size - c.off
}

// seek moves to an absolute offset. Seeking past the end is allowed; the
// next read will fail.
func (c *cursor) seek(off int64) {
	if c.err != nil {
		return
	}
	if _, err := c.r.Seek(off, io.SeekStart); err != nil {
		c.err = errors.Wrapf(err, "ase: seeking to %d", off)
		return
	}
	c.off = off
}

func (c *cursor) skip(n int) {
	c.seek(c.off + int64(n))
}

// Read implements io.Reader so fixed-layout structs can be decoded with
// binary.Read.
func (c *cursor) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.off += int64(n)
	return n, err
}

func (c *cursor) fail(err error, n int64) {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		c.err = errors.Wrapf(ErrUnexpectedEOF, "reading %d bytes at offset %d", n, c.off)
		return
	}
	c.err = errors.Wrapf(err, "ase: reading %d bytes at offset %d", n, c.off)
}

// fill reads exactly len(p) bytes.
func (c *cursor) fill(p []byte) bool {
	if c.err != nil {
		return false
	}
	if int64(len(p)) > c.remaining() {
		c.err = errors.Wrapf(ErrUnexpectedEOF, "reading %d bytes at offset %d, %d left", len(p), c.off, c.remaining())
		return false
	}
	if _, err := io.ReadFull(c, p); err != nil {
		c.fail(err, int64(len(p)))
		return false
	}
	return true
}

// read decodes a fixed-layout struct.
func (c *cursor) read(v interface{}) bool {
	if c.err != nil {
		return false
	}
	n := binary.Size(v)
	if n < 0 {
		c.err = errors.Errorf("ase: %T has no fixed size", v)
		return false
	}
	if int64(n) > c.remaining() {
		c.err = errors.Wrapf(ErrUnexpectedEOF, "reading %T (%d bytes) at offset %d, %d left", v, n, c.off, c.remaining())
		return false
	}
	if err := binary.Read(c, binary.LittleEndian, v); err != nil {
		c.fail(err, int64(n))
		return false
	}
	return true
}

// bytes returns a freshly allocated run of n bytes. A length larger than
// what is left in the source fails before allocating.
func (c *cursor) bytes(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 {
		n = 0
	}
	if int64(n) > c.remaining() {
		c.err = errors.Wrapf(ErrUnexpectedEOF, "reading %d bytes at offset %d, %d left", n, c.off, c.remaining())
		return nil
	}
	p := make([]byte, n)
	if !c.fill(p) {
		return nil
	}
	return p
}

func (c *cursor) u8() uint8 {
	if !c.fill(c.buf[:1]) {
		return 0
	}
	return c.buf[0]
}

func (c *cursor) u16() uint16 {
	if !c.fill(c.buf[:2]) {
		return 0
	}
	return binary.LittleEndian.Uint16(c.buf[:2])
}

func (c *cursor) u32() uint32 {
	if !c.fill(c.buf[:4]) {
		return 0
	}
	return binary.LittleEndian.Uint32(c.buf[:4])
}

func (c *cursor) u64() uint64 {
	if !c.fill(c.buf[:8]) {
		return 0
	}
	return binary.LittleEndian.Uint64(c.buf[:8])
}

func (c *cursor) i8() int8   { return int8(c.u8()) }
func (c *cursor) i16() int16 { return int16(c.u16()) }
func (c *cursor) i32() int32 { return int32(c.u32()) }
func (c *cursor) i64() int64 { return int64(c.u64()) }

// fixed reads a signed 16.16 fixed point number.
func (c *cursor) fixed() Fixed { return Fixed(c.i32()) }

func (c *cursor) f32() float32 { return math.Float32frombits(c.u32()) }
func (c *cursor) f64() float64 { return math.Float64frombits(c.u64()) }

// strict reads a WORD-length-prefixed string. The bytes are consumed even
// when they are not valid UTF-8; in that case ErrInvalidEncoding is returned
// and the cursor stays usable.
func (c *cursor) strict() (string, error) {
	n := c.u16()
	b := c.bytes(int(n))
	if c.err != nil {
		return "", c.err
	}
	if !utf8.Valid(b) {
		return "", errors.Wrapf(ErrInvalidEncoding, "%d byte string ending at offset %d", n, c.off)
	}
	return string(b), nil
}

// str is strict for decoders: malformed text degrades to "".
func (c *cursor) str() string {
	s, err := c.strict()
	if err != nil && c.err == nil {
		glog.Warningf("ase: %v; using empty string", err)
	}
	return s
}
