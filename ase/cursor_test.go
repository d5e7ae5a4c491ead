package ase

import (
	"bytes"
	"testing"

	"badc0de.net/pkg/go-aseprite/ttesting"
)

func TestCursorPrimitives(t *testing.T) {
	var b le
	b.u8(0xAB).u16(0xBEEF).u32(0xDEADBEEF).i16(-2).i32(-70000)
	b.put(int32(3 << 16 / 2)) // 1.5 as 16.16
	b.put(uint64(1) << 40)
	b.str("héllo")

	c, err := newCursor(bytes.NewReader(b.Bytes()))
	if err != nil {
		t.Fatalf("newCursor: %v", err)
	}
	ttesting.AssertEqualInt(t, "u8", int(c.u8()), 0xAB)
	ttesting.AssertEqualInt(t, "u16", int(c.u16()), 0xBEEF)
	ttesting.AssertEqualUint32(t, "u32", c.u32(), 0xDEADBEEF)
	ttesting.AssertEqualInt(t, "i16", int(c.i16()), -2)
	ttesting.AssertEqualInt(t, "i32", int(c.i32()), -70000)
	if f := c.fixed(); f.Float64() != 1.5 {
		t.Errorf("fixed: got %v, want 1.5", f)
	}
	if v := c.u64(); v != 1<<40 {
		t.Errorf("u64: got %d, want %d", v, uint64(1)<<40)
	}
	ttesting.AssertEqualString(t, "str", c.str(), "héllo")
	if c.err != nil {
		t.Fatalf("unexpected error: %v", c.err)
	}
	ttesting.AssertEqualInt(t, "remaining", int(c.remaining()), 0)
}

func TestCursorEOFIsSticky(t *testing.T) {
	c, err := newCursor(bytes.NewReader([]byte{1, 2, 3}))
	if err != nil {
		t.Fatalf("newCursor: %v", err)
	}
	c.u16()
	if v := c.u32(); v != 0 {
		t.Errorf("u32 past end: got %d, want 0", v)
	}
	ttesting.AssertErrorIs(t, "u32 past end", c.err, ErrUnexpectedEOF)

	// Later reads keep the first failure and return zero values.
	first := c.err
	if v := c.u8(); v != 0 {
		t.Errorf("u8 after failure: got %d, want 0", v)
	}
	if c.err != first {
		t.Errorf("error changed after failure: %v", c.err)
	}
}

func TestCursorHugeLengthFailsWithoutAllocating(t *testing.T) {
	c, err := newCursor(bytes.NewReader(make([]byte, 16)))
	if err != nil {
		t.Fatalf("newCursor: %v", err)
	}
	if p := c.bytes(1 << 40); p != nil {
		t.Errorf("got %d bytes, want nil", len(p))
	}
	ttesting.AssertErrorIs(t, "bytes", c.err, ErrUnexpectedEOF)
}

func TestCursorInvalidString(t *testing.T) {
	var b le
	b.u16(2).raw([]byte{0xC3, 0x28}).u8(7)
	c, err := newCursor(bytes.NewReader(b.Bytes()))
	if err != nil {
		t.Fatalf("newCursor: %v", err)
	}
	s, err := c.strict()
	ttesting.AssertErrorIs(t, "strict", err, ErrInvalidEncoding)
	ttesting.AssertEqualString(t, "strict", s, "")

	// The string bytes were consumed and the cursor is still usable.
	ttesting.AssertEqualInt(t, "after string", int(c.u8()), 7)
	if c.err != nil {
		t.Errorf("unexpected sticky error: %v", c.err)
	}
}

func TestCursorReadStruct(t *testing.T) {
	var b le
	b.u32(0x1234).u16(frameMagic).u16(3).u16(50).zero(2).u32(0)
	c, err := newCursor(bytes.NewReader(b.Bytes()))
	if err != nil {
		t.Fatalf("newCursor: %v", err)
	}
	var fh frameHeader
	if !c.read(&fh) {
		t.Fatalf("read: %v", c.err)
	}
	ttesting.AssertEqualInt(t, "pos", int(c.pos()), frameHeaderSize)
	ttesting.AssertEqualInt(t, "magic", int(fh.Magic), frameMagic)
	ttesting.AssertEqualInt(t, "duration", int(fh.Duration), 50)

	if c.read(&fh) {
		t.Errorf("second read succeeded past end")
	}
	ttesting.AssertErrorIs(t, "second read", c.err, ErrUnexpectedEOF)
}
