package ase

import (
	"image"
	"image/color"
	"testing"

	"badc0de.net/pkg/go-aseprite/ttesting"
)

func TestCelImageIndexed(t *testing.T) {
	f := &testFile{width: 4, height: 4, depth: Indexed8, transparent: 0, frames: []testFrame{{chunks: []testChunk{
		paletteChunkOf(3, 0,
			PaletteEntry{Color: color.NRGBA{9, 9, 9, 255}},
			PaletteEntry{Color: color.NRGBA{255, 0, 0, 255}},
			PaletteEntry{Color: color.NRGBA{0, 0, 255, 255}},
		),
		layerChunkOf("bg", LayerNormal, 0, LayerVisible),
		rawCelChunk(0, 1, 2, 3, 1, []byte{0, 1, 2}),
	}}}}
	doc := decodeFile(t, f)
	img, err := doc.CelImage(doc.Cel(0, 0))
	if err != nil {
		t.Fatalf("CelImage: %v", err)
	}
	pimg, ok := img.(*image.Paletted)
	if !ok {
		t.Fatalf("got %T, want *image.Paletted", img)
	}
	if got, want := pimg.Bounds(), image.Rect(1, 2, 4, 3); got != want {
		t.Errorf("bounds: got %v, want %v", got, want)
	}
	ttesting.AssertEqualInt(t, "palette", len(pimg.Palette), 256)
	for _, tc := range []struct {
		x    int
		want color.Color
	}{
		{1, color.NRGBA{}}, // transparent index
		{2, color.NRGBA{255, 0, 0, 255}},
		{3, color.NRGBA{0, 0, 255, 255}},
	} {
		if got := pimg.At(tc.x, 2); got != tc.want {
			t.Errorf("pixel %d: got %v, want %v", tc.x, got, tc.want)
		}
	}
}

func TestCelImageGrayscale(t *testing.T) {
	f := &testFile{width: 2, height: 1, depth: Grayscale16, frames: []testFrame{{chunks: []testChunk{
		layerChunkOf("bg", LayerNormal, 0, LayerVisible),
		rawCelChunk(0, 0, 0, 2, 1, []byte{0x80, 0xFF, 0x10, 0x00}),
	}}}}
	doc := decodeFile(t, f)
	img, err := doc.CelImage(doc.Cel(0, 0))
	if err != nil {
		t.Fatalf("CelImage: %v", err)
	}
	if got, want := img.At(0, 0), (color.NRGBA{0x80, 0x80, 0x80, 0xFF}); got != want {
		t.Errorf("pixel 0: got %v, want %v", got, want)
	}
	if got, want := img.At(1, 0), (color.NRGBA{0x10, 0x10, 0x10, 0}); got != want {
		t.Errorf("pixel 1: got %v, want %v", got, want)
	}
	if doc.ColorModel() != color.NRGBAModel {
		t.Errorf("grayscale color model: got %v", doc.ColorModel())
	}
}

func TestCelImageRGBA(t *testing.T) {
	px := pattern(8, 100)
	doc := decodeFile(t, singleFrame(
		layerChunkOf("bg", LayerNormal, 0, LayerVisible),
		rawCelChunk(0, -1, -1, 1, 2, px),
	))
	img, err := doc.CelImage(doc.Cel(0, 0))
	if err != nil {
		t.Fatalf("CelImage: %v", err)
	}
	nimg := img.(*image.NRGBA)
	ttesting.AssertEqualBytes(t, "pixels", nimg.Pix, px)
	if got, want := img.At(-1, 0), (color.NRGBA{104, 105, 106, 107}); got != want {
		t.Errorf("pixel: got %v, want %v", got, want)
	}
}

func TestCelImageTilemap(t *testing.T) {
	doc := decodeFile(t, singleFrame(
		tilesetChunkOf(0, "ts", 1, 1, 1, pattern(4, 0)),
		layerChunkOf("map", LayerTilemap, 0, LayerVisible),
		tilemapCelChunk(0, 1, 1, []uint32{0}),
	))
	if _, err := doc.CelImage(doc.Cel(0, 0)); err == nil {
		t.Errorf("CelImage of a tilemap cel succeeded")
	}
	if _, err := doc.TileImage(&doc.Tilesets[0], 1); err == nil {
		t.Errorf("TileImage past the last tile succeeded")
	}
}
