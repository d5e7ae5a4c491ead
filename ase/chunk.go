package ase

// This file contains the chunk dispatch table and the decoders for chunk
// types that do not warrant a file of their own.

import (
	"fmt"
	"image"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

type chunkType uint16

const (
	chunkOldPalette   chunkType = 0x0004 // 8-bit components
	chunkOldPalette64 chunkType = 0x0011 // 6-bit components
	chunkLayer        chunkType = 0x2004
	chunkCel          chunkType = 0x2005
	chunkCelExtra     chunkType = 0x2006
	chunkColorProfile chunkType = 0x2007
	chunkExternal     chunkType = 0x2008
	chunkMask         chunkType = 0x2016
	chunkPath         chunkType = 0x2017
	chunkTags         chunkType = 0x2018
	chunkPalette      chunkType = 0x2019
	chunkUserData     chunkType = 0x2020
	chunkSlice        chunkType = 0x2022
	chunkTileset      chunkType = 0x2023
)

var chunkNames = map[chunkType]string{
	chunkOldPalette:   "old palette",
	chunkOldPalette64: "old palette (6-bit)",
	chunkLayer:        "layer",
	chunkCel:          "cel",
	chunkCelExtra:     "cel extra",
	chunkColorProfile: "color profile",
	chunkExternal:     "external files",
	chunkMask:         "mask",
	chunkPath:         "path",
	chunkTags:         "tags",
	chunkPalette:      "palette",
	chunkUserData:     "user data",
	chunkSlice:        "slice",
	chunkTileset:      "tileset",
}

func (t chunkType) String() string {
	if n, ok := chunkNames[t]; ok {
		return n
	}
	return fmt.Sprintf("chunk 0x%04x", uint16(t))
}

// chunkHeaderSize is the size of the DWORD length plus WORD type.
const chunkHeaderSize = 6

// chunkHeader locates a chunk in the source. size includes the header.
type chunkHeader struct {
	start int64
	size  int64
	typ   chunkType
}

func (h chunkHeader) end() int64 {
	return h.start + h.size
}

// chunk is a decoded chunk payload. The set of implementations is closed;
// rawChunk catches every type without a decoder.
type chunk interface {
	chunkType() chunkType
}

type layerChunk struct{ layer Layer }
type celChunk struct{ cel Cel }
type celExtraChunk struct {
	precise bool
	bounds  PreciseBounds
}
type paletteChunk struct {
	size int // palette size declared by the chunk, 0 if none
	runs []paletteRun
}
type tagsChunk struct{ tags []Tag }
type sliceChunk struct{ slice Slice }
type tilesetChunk struct{ tileset Tileset }
type userDataChunk struct{ data UserData }
type colorProfileChunk struct{ profile ColorProfile }
type externalFilesChunk struct{ files []ExternalFile }
type maskChunk struct{ mask Mask }
type pathChunk struct{ data []byte }
type rawChunk struct {
	typ  chunkType
	size int64
}

func (layerChunk) chunkType() chunkType         { return chunkLayer }
func (celChunk) chunkType() chunkType           { return chunkCel }
func (celExtraChunk) chunkType() chunkType      { return chunkCelExtra }
func (paletteChunk) chunkType() chunkType       { return chunkPalette }
func (tagsChunk) chunkType() chunkType          { return chunkTags }
func (sliceChunk) chunkType() chunkType         { return chunkSlice }
func (tilesetChunk) chunkType() chunkType       { return chunkTileset }
func (userDataChunk) chunkType() chunkType      { return chunkUserData }
func (colorProfileChunk) chunkType() chunkType  { return chunkColorProfile }
func (externalFilesChunk) chunkType() chunkType { return chunkExternal }
func (maskChunk) chunkType() chunkType          { return chunkMask }
func (pathChunk) chunkType() chunkType          { return chunkPath }
func (c rawChunk) chunkType() chunkType         { return c.typ }

// decodeChunk decodes the payload of one chunk; the cursor is positioned
// right after the chunk header. The caller seeks to h.end() afterwards no
// matter how much was consumed.
//
// A non-nil error that is not fatal means the chunk should be skipped.
func (d *decoder) decodeChunk(h chunkHeader, frame int) (chunk, error) {
	c := d.c
	var (
		ch  chunk
		err error
	)
	switch h.typ {
	case chunkOldPalette, chunkOldPalette64:
		ch = d.decodeOldPalette(h.typ == chunkOldPalette64)
	case chunkPalette:
		ch = d.decodePalette()
	case chunkLayer:
		ch, err = d.decodeLayer()
	case chunkCel:
		ch, err = d.decodeCel(h, frame)
	case chunkCelExtra:
		ch = d.decodeCelExtra()
	case chunkColorProfile:
		ch, err = d.decodeColorProfile()
	case chunkExternal:
		ch = d.decodeExternalFiles()
	case chunkMask:
		ch = d.decodeMask()
	case chunkPath:
		ch = pathChunk{data: c.bytes(int(h.end() - c.pos()))}
	case chunkTags:
		ch = d.decodeTags()
	case chunkUserData:
		ch = d.decodeUserData()
	case chunkSlice:
		ch = d.decodeSlice()
	case chunkTileset:
		ch = d.decodeTileset(h)
	default:
		glog.V(2).Infof("ase: frame %d: skipping %v (%d bytes)", frame, h.typ, h.size)
		ch = rawChunk{typ: h.typ, size: h.size}
	}
	if c.err != nil {
		return nil, c.err
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%v at offset %d", h.typ, h.start)
	}
	return ch, nil
}

type layerHeader struct {
	Flags         uint16
	Type          uint16
	Depth         uint16
	DefaultWidth  uint16
	DefaultHeight uint16
	BlendMode     uint16
	Opacity       uint8
	_             [3]byte
}

func (d *decoder) decodeLayer() (chunk, error) {
	c := d.c
	var lh layerHeader
	if !c.read(&lh) {
		return nil, nil
	}
	l := Layer{
		Name:      c.str(),
		Kind:      LayerKind(lh.Type),
		Depth:     int(lh.Depth),
		Parent:    -1,
		Flags:     LayerFlags(lh.Flags),
		BlendMode: BlendMode(lh.BlendMode),
		Opacity:   lh.Opacity,
	}
	switch l.Kind {
	case LayerNormal, LayerGroup:
	case LayerTilemap:
		l.TilesetIndex = c.u32()
	default:
		// The remaining fields depend on the type, so stop at the name.
		l.Err = errors.Wrapf(ErrUnsupportedVariant, "layer type %d", lh.Type)
		glog.Warningf("ase: layer %q: %v", l.Name, l.Err)
		return layerChunk{layer: l}, nil
	}
	if d.header.Flags&HeaderLayerUUIDs != 0 {
		var u UUID
		if c.fill(u[:]) {
			l.UUID = &u
		}
	}
	return layerChunk{layer: l}, nil
}

func (d *decoder) decodeCelExtra() chunk {
	c := d.c
	flags := c.u32()
	ch := celExtraChunk{
		precise: flags&1 != 0,
		bounds: PreciseBounds{
			X:      c.fixed(),
			Y:      c.fixed(),
			Width:  c.fixed(),
			Height: c.fixed(),
		},
	}
	return ch
}

func (d *decoder) decodeColorProfile() (chunk, error) {
	c := d.c
	p := ColorProfile{Type: ColorProfileType(c.u16())}
	flags := c.u16()
	p.FixedGamma = flags&1 != 0
	p.Gamma = c.fixed()
	c.skip(8)
	switch p.Type {
	case ProfileNone, ProfileSRGB:
	case ProfileICC:
		p.ICC = c.bytes(int(c.u32()))
	default:
		return nil, errors.Wrapf(ErrUnsupportedVariant, "color profile type %d", p.Type)
	}
	return colorProfileChunk{profile: p}, nil
}

func (d *decoder) decodeExternalFiles() chunk {
	c := d.c
	n := c.u32()
	c.skip(8)
	var ch externalFilesChunk
	for i := uint32(0); i < n && c.err == nil; i++ {
		f := ExternalFile{ID: c.u32(), Type: ExternalFileType(c.u8())}
		c.skip(7)
		f.Name = c.str()
		ch.files = append(ch.files, f)
	}
	return ch
}

func (d *decoder) decodeMask() chunk {
	c := d.c
	m := Mask{X: c.i16(), Y: c.i16(), Width: c.u16(), Height: c.u16()}
	c.skip(8)
	m.Name = c.str()
	m.Bitmap = c.bytes(int(m.Height) * ((int(m.Width) + 7) / 8))
	return maskChunk{mask: m}
}

func (d *decoder) decodeTags() chunk {
	c := d.c
	n := c.u16()
	c.skip(8)
	var ch tagsChunk
	for i := uint16(0); i < n && c.err == nil; i++ {
		t := Tag{
			From:      int(c.u16()),
			To:        int(c.u16()),
			Direction: LoopDirection(c.u8()),
			Repeat:    c.u16(),
		}
		c.skip(6)
		t.Color.R, t.Color.G, t.Color.B, t.Color.A = c.u8(), c.u8(), c.u8(), 0xFF
		c.skip(1)
		t.Name = c.str()
		ch.tags = append(ch.tags, t)
	}
	return ch
}

func (d *decoder) decodeSlice() chunk {
	c := d.c
	n := c.u32()
	s := Slice{Flags: SliceFlags(c.u32())}
	c.skip(4)
	s.Name = c.str()
	for i := uint32(0); i < n && c.err == nil; i++ {
		k := SliceKey{Frame: int(c.u32())}
		x, y := int(c.i32()), int(c.i32())
		w, h := int(c.u32()), int(c.u32())
		k.Bounds = image.Rect(x, y, x+w, y+h)
		if s.Flags&SliceNinePatch != 0 {
			cx, cy := int(c.i32()), int(c.i32())
			cw, chh := int(c.u32()), int(c.u32())
			r := image.Rect(cx, cy, cx+cw, cy+chh)
			k.Center = &r
		}
		if s.Flags&SlicePivot != 0 {
			p := image.Pt(int(c.i32()), int(c.i32()))
			k.Pivot = &p
		}
		s.Keys = append(s.Keys, k)
	}
	return sliceChunk{slice: s}
}

func (d *decoder) decodeTileset(h chunkHeader) chunk {
	c := d.c
	t := Tileset{
		ID:         c.u32(),
		Flags:      TilesetFlags(c.u32()),
		Count:      int(c.u32()),
		TileWidth:  int(c.u16()),
		TileHeight: int(c.u16()),
		BaseIndex:  c.i16(),
	}
	c.skip(14)
	t.Name = c.str()
	if t.Flags&TilesetExternal != 0 {
		t.External = &ExternalTileset{FileID: c.u32(), TilesetID: c.u32()}
	}
	if t.Flags&TilesetEmbedded != 0 {
		n := int64(c.u32())
		if left := h.end() - c.pos(); n > left {
			t.Err = errors.Wrapf(ErrCorruptData, "tileset %d declares %d compressed bytes, chunk holds %d", t.ID, n, left)
			n = left
		}
		data := c.bytes(int(n))
		if c.err == nil && t.Err == nil {
			want := pixelBytes(int64(t.TileWidth), int64(t.TileHeight), int64(t.Count), int64(d.header.Depth.BytesPerPixel()))
			t.Pixels, t.Err = inflate(data, want)
		}
		if t.Err != nil && c.err == nil {
			glog.Warningf("ase: tileset %d %q: pixel data unavailable: %v", t.ID, t.Name, t.Err)
		}
	}
	return tilesetChunk{tileset: t}
}
