package ase

import (
	"encoding/binary"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const (
	celRaw uint16 = iota
	celLinked
	celCompressed
	celCompressedTilemap
)

type celHeader struct {
	Layer   uint16
	X, Y    int16
	Opacity uint8
	Type    uint16
	ZIndex  int16
	_       [5]byte
}

type tilemapHeader struct {
	Width, Height uint16
	BitsPerTile   uint16
	IDMask        uint32
	FlipXMask     uint32
	FlipYMask     uint32
	DiagonalMask  uint32
	_             [10]byte
}

func (d *decoder) decodeCel(h chunkHeader, frame int) (chunk, error) {
	c := d.c
	var ch celHeader
	if !c.read(&ch) {
		return nil, nil
	}
	cel := Cel{
		Frame:      frame,
		Layer:      int(ch.Layer),
		X:          int(ch.X),
		Y:          int(ch.Y),
		Opacity:    ch.Opacity,
		ZIndex:     ch.ZIndex,
		LinkedFrom: -1,
	}
	stride := d.header.Depth.BytesPerPixel()

	switch ch.Type {
	case celRaw:
		w, hh := int(c.u16()), int(c.u16())
		n := int64(w) * int64(hh) * int64(stride)
		if left := h.end() - c.pos(); n > left {
			cel.Err = errors.Wrapf(ErrCorruptData, "raw cel %dx%d needs %d bytes, chunk holds %d", w, hh, n, left)
			break
		}
		if px := c.bytes(int(n)); c.err == nil {
			cel.Content = &ImageContent{Width: w, Height: hh, Pixels: px}
		}
	case celLinked:
		cel.Content = &linkedContent{frame: int(c.u16())}
	case celCompressed:
		w, hh := int(c.u16()), int(c.u16())
		data := c.bytes(int(h.end() - c.pos()))
		if c.err != nil {
			break
		}
		px, err := inflate(data, pixelBytes(int64(w), int64(hh), int64(stride)))
		if err != nil {
			cel.Err = errors.Wrapf(err, "%dx%d image", w, hh)
			break
		}
		cel.Content = &ImageContent{Width: w, Height: hh, Pixels: px}
	case celCompressedTilemap:
		var th tilemapHeader
		if !c.read(&th) {
			break
		}
		data := c.bytes(int(h.end() - c.pos()))
		if c.err != nil {
			break
		}
		t, err := decodeTilemap(th, data)
		if err != nil {
			cel.Err = err
			break
		}
		cel.Content = t
	default:
		return nil, errors.Wrapf(ErrUnsupportedVariant, "cel type %d", ch.Type)
	}

	if cel.Err != nil && c.err == nil {
		glog.Warningf("ase: frame %d layer %d: pixel data unavailable: %v", frame, cel.Layer, cel.Err)
	}
	return celChunk{cel: cel}, nil
}

func decodeTilemap(th tilemapHeader, data []byte) (*TilemapContent, error) {
	bytesPerTile := int(th.BitsPerTile) / 8
	switch th.BitsPerTile {
	case 8, 16, 32:
	default:
		return nil, errors.Wrapf(ErrCorruptData, "tilemap with %d bits per tile", th.BitsPerTile)
	}
	w, h := int(th.Width), int(th.Height)
	raw, err := inflate(data, pixelBytes(int64(w), int64(h), int64(bytesPerTile)))
	if err != nil {
		return nil, errors.Wrapf(err, "%dx%d tilemap", w, h)
	}

	t := &TilemapContent{
		Width:        w,
		Height:       h,
		BitsPerTile:  int(th.BitsPerTile),
		IDMask:       th.IDMask,
		FlipXMask:    th.FlipXMask,
		FlipYMask:    th.FlipYMask,
		DiagonalMask: th.DiagonalMask,
		Tiles:        make([]Tile, w*h),
	}
	for i := range t.Tiles {
		var v uint32
		switch bytesPerTile {
		case 1:
			v = uint32(raw[i])
		case 2:
			v = uint32(binary.LittleEndian.Uint16(raw[i*2:]))
		case 4:
			v = binary.LittleEndian.Uint32(raw[i*4:])
		}
		tile := Tile{ID: v & th.IDMask}
		if v&th.FlipXMask != 0 {
			tile.Flags |= TileFlipX
		}
		if v&th.FlipYMask != 0 {
			tile.Flags |= TileFlipY
		}
		if v&th.DiagonalMask != 0 {
			tile.Flags |= TileFlipDiagonal
		}
		t.Tiles[i] = tile
	}
	return t, nil
}
