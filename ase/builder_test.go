package ase

// This file contains a little-endian writer used by the tests to build
// documents in memory.

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"

	"github.com/bradfitz/iter"
	"github.com/klauspost/compress/zlib"
)

type le struct {
	bytes.Buffer
}

func (b *le) u8(v uint8) *le {
	b.WriteByte(v)
	return b
}

func (b *le) put(v interface{}) *le {
	binary.Write(&b.Buffer, binary.LittleEndian, v)
	return b
}

func (b *le) u16(v uint16) *le { return b.put(v) }
func (b *le) u32(v uint32) *le { return b.put(v) }
func (b *le) i16(v int16) *le  { return b.put(v) }
func (b *le) i32(v int32) *le  { return b.put(v) }

func (b *le) zero(n int) *le {
	b.Write(make([]byte, n))
	return b
}

func (b *le) raw(p []byte) *le {
	b.Write(p)
	return b
}

func (b *le) str(s string) *le {
	b.u16(uint16(len(s)))
	b.WriteString(s)
	return b
}

// testChunk is a chunk payload; declared overrides the size written in the
// chunk header, and the payload is zero padded up to it.
type testChunk struct {
	typ      chunkType
	body     []byte
	declared int
}

type testFrame struct {
	duration uint16
	chunks   []testChunk
	magic    uint16 // 0 means frameMagic
	pad      int    // trailing bytes counted in the frame size
}

type testFile struct {
	width, height int
	depth         ColorDepth
	flags         HeaderFlags
	colors        uint16
	transparent   uint8
	magic         uint16 // 0 means fileMagic
	frameCount    int    // 0 means len(frames)
	frames        []testFrame
}

func (f *testFile) bytes() []byte {
	var frames le
	for _, fr := range f.frames {
		var body le
		for _, ch := range fr.chunks {
			size := chunkHeaderSize + len(ch.body)
			if ch.declared != 0 {
				size = ch.declared
			}
			body.u32(uint32(size)).u16(uint16(ch.typ)).raw(ch.body)
			if pad := size - chunkHeaderSize - len(ch.body); pad > 0 {
				body.zero(pad)
			}
		}
		magic := fr.magic
		if magic == 0 {
			magic = frameMagic
		}
		duration := fr.duration
		if duration == 0 {
			duration = 100
		}
		frames.u32(uint32(frameHeaderSize + body.Len() + fr.pad)).u16(magic)
		frames.u16(0xFFFF).u16(duration).zero(2).u32(uint32(len(fr.chunks)))
		frames.raw(body.Bytes()).zero(fr.pad)
	}

	magic := f.magic
	if magic == 0 {
		magic = fileMagic
	}
	depth := f.depth
	if depth == 0 {
		depth = RGBA32
	}
	count := f.frameCount
	if count == 0 {
		count = len(f.frames)
	}
	var out le
	out.u32(uint32(128 + frames.Len())).u16(magic).u16(uint16(count))
	out.u16(uint16(f.width)).u16(uint16(f.height)).u16(uint16(depth))
	out.u32(uint32(f.flags)).u16(100).zero(8)
	out.u8(f.transparent).zero(3).u16(f.colors)
	out.u8(1).u8(1).i16(0).i16(0).u16(16).u16(16).zero(84)
	out.raw(frames.Bytes())
	return out.Bytes()
}

func (f *testFile) reader() *bytes.Reader {
	return bytes.NewReader(f.bytes())
}

func compress(p []byte) []byte {
	var b bytes.Buffer
	w := zlib.NewWriter(&b)
	w.Write(p)
	w.Close()
	return b.Bytes()
}

func layerChunkOf(name string, kind LayerKind, depth int, flags LayerFlags) testChunk {
	var b le
	b.u16(uint16(flags)).u16(uint16(kind)).u16(uint16(depth))
	b.u16(0).u16(0).u16(uint16(BlendNormal)).u8(255).zero(3)
	b.str(name)
	if kind == LayerTilemap {
		b.u32(0)
	}
	return testChunk{typ: chunkLayer, body: b.Bytes()}
}

func celPrefix(b *le, layer, x, y int, typ uint16) {
	b.u16(uint16(layer)).i16(int16(x)).i16(int16(y)).u8(255).u16(typ).i16(0).zero(5)
}

func rawCelChunk(layer, x, y, w, h int, px []byte) testChunk {
	var b le
	celPrefix(&b, layer, x, y, celRaw)
	b.u16(uint16(w)).u16(uint16(h)).raw(px)
	return testChunk{typ: chunkCel, body: b.Bytes()}
}

func compressedCelChunk(layer, x, y, w, h int, zdata []byte) testChunk {
	var b le
	celPrefix(&b, layer, x, y, celCompressed)
	b.u16(uint16(w)).u16(uint16(h)).raw(zdata)
	return testChunk{typ: chunkCel, body: b.Bytes()}
}

func linkedCelChunk(layer, frame int) testChunk {
	var b le
	celPrefix(&b, layer, 0, 0, celLinked)
	b.u16(uint16(frame))
	return testChunk{typ: chunkCel, body: b.Bytes()}
}

func tilemapCelChunk(layer, w, h int, tiles []uint32) testChunk {
	var b le
	celPrefix(&b, layer, 0, 0, celCompressedTilemap)
	b.u16(uint16(w)).u16(uint16(h)).u16(32)
	b.u32(0x1fffffff).u32(0x20000000).u32(0x40000000).u32(0x80000000).zero(10)
	var raw le
	for _, t := range tiles {
		raw.u32(t)
	}
	b.raw(compress(raw.Bytes()))
	return testChunk{typ: chunkCel, body: b.Bytes()}
}

func celExtraChunkOf(x, y, w, h Fixed) testChunk {
	var b le
	b.u32(1).i32(int32(x)).i32(int32(y)).i32(int32(w)).i32(int32(h)).zero(16)
	return testChunk{typ: chunkCelExtra, body: b.Bytes()}
}

type oldPacket struct {
	skip   uint8
	colors [][3]uint8
}

func oldPaletteChunk(sixBit bool, packets ...oldPacket) testChunk {
	var b le
	b.u16(uint16(len(packets)))
	for _, p := range packets {
		b.u8(p.skip).u8(uint8(len(p.colors))) // 256 wraps to 0
		for _, c := range p.colors {
			b.u8(c[0]).u8(c[1]).u8(c[2])
		}
	}
	typ := chunkOldPalette
	if sixBit {
		typ = chunkOldPalette64
	}
	return testChunk{typ: typ, body: b.Bytes()}
}

func paletteChunkOf(size, first int, entries ...PaletteEntry) testChunk {
	var b le
	b.u32(uint32(size)).u32(uint32(first)).u32(uint32(first + len(entries) - 1)).zero(8)
	for _, e := range entries {
		if e.Name != "" {
			b.u16(1)
		} else {
			b.u16(0)
		}
		b.u8(e.Color.R).u8(e.Color.G).u8(e.Color.B).u8(e.Color.A)
		if e.Name != "" {
			b.str(e.Name)
		}
	}
	return testChunk{typ: chunkPalette, body: b.Bytes()}
}

func tagsChunkOf(tags ...Tag) testChunk {
	var b le
	b.u16(uint16(len(tags))).zero(8)
	for _, t := range tags {
		b.u16(uint16(t.From)).u16(uint16(t.To)).u8(uint8(t.Direction)).u16(t.Repeat)
		b.zero(6).u8(t.Color.R).u8(t.Color.G).u8(t.Color.B).zero(1)
		b.str(t.Name)
	}
	return testChunk{typ: chunkTags, body: b.Bytes()}
}

func sliceChunkOf(name string, flags SliceFlags, keys ...SliceKey) testChunk {
	var b le
	b.u32(uint32(len(keys))).u32(uint32(flags)).u32(0).str(name)
	for _, k := range keys {
		b.u32(uint32(k.Frame)).i32(int32(k.Bounds.Min.X)).i32(int32(k.Bounds.Min.Y))
		b.u32(uint32(k.Bounds.Dx())).u32(uint32(k.Bounds.Dy()))
		if flags&SliceNinePatch != 0 {
			b.i32(int32(k.Center.Min.X)).i32(int32(k.Center.Min.Y))
			b.u32(uint32(k.Center.Dx())).u32(uint32(k.Center.Dy()))
		}
		if flags&SlicePivot != 0 {
			b.i32(int32(k.Pivot.X)).i32(int32(k.Pivot.Y))
		}
	}
	return testChunk{typ: chunkSlice, body: b.Bytes()}
}

func tilesetChunkOf(id uint32, name string, tw, th, count int, px []byte) testChunk {
	var b le
	b.u32(id).u32(uint32(TilesetEmbedded | TilesetZeroIsEmpty)).u32(uint32(count))
	b.u16(uint16(tw)).u16(uint16(th)).i16(1).zero(14).str(name)
	z := compress(px)
	b.u32(uint32(len(z))).raw(z)
	return testChunk{typ: chunkTileset, body: b.Bytes()}
}

func userDataChunkOf(text string, col *color.NRGBA, props []byte) testChunk {
	var b le
	var flags uint32
	if text != "" {
		flags |= userDataText
	}
	if col != nil {
		flags |= userDataColor
	}
	if props != nil {
		flags |= userDataProperties
	}
	b.u32(flags)
	if text != "" {
		b.str(text)
	}
	if col != nil {
		b.u8(col.R).u8(col.G).u8(col.B).u8(col.A)
	}
	if props != nil {
		b.u32(uint32(8 + len(props))).raw(props)
	}
	return testChunk{typ: chunkUserData, body: b.Bytes()}
}

// pattern returns n bytes counting up from seed.
func pattern(n int, seed byte) []byte {
	p := make([]byte, n)
	for i := range iter.N(n) {
		p[i] = seed + byte(i)
	}
	return p
}

func rect(x, y, w, h int) image.Rectangle {
	return image.Rect(x, y, x+w, y+h)
}
