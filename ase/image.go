package ase

// This file contains adapters from decoded pixel runs to image.Image, so a
// renderer can use the standard image and draw packages. Nothing here
// composites layers.

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// ColorModel returns the color model of the document's pixels. Indexed
// documents use their palette, padded to 256 entries, with the transparent
// index made transparent.
func (d *Document) ColorModel() color.Model {
	if d.Header.Depth == Indexed8 {
		return d.colorPalette()
	}
	return color.NRGBAModel
}

func (d *Document) colorPalette() color.Palette {
	p := d.Palette.ColorPalette()
	for len(p) < 256 {
		p = append(p, color.NRGBA{A: 0xFF})
	}
	if ti := int(d.Header.TransparentIndex); ti < len(p) {
		p[ti] = color.NRGBA{}
	}
	return p
}

// CelImage returns the pixels of an image cel, with bounds placed at the
// cel's position on the canvas. Tilemap cels and cels whose data is
// unavailable return an error.
func (d *Document) CelImage(c *Cel) (image.Image, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	ic, ok := c.Content.(*ImageContent)
	if !ok {
		return nil, errors.Errorf("ase: frame %d layer %d is not an image cel", c.Frame, c.Layer)
	}
	r := image.Rect(c.X, c.Y, c.X+ic.Width, c.Y+ic.Height)
	return d.pixelsImage(r, ic.Pixels)
}

// TileImage returns tile number n of an embedded tileset.
func (d *Document) TileImage(ts *Tileset, n int) (image.Image, error) {
	if ts.Err != nil {
		return nil, ts.Err
	}
	if ts.Pixels == nil {
		return nil, errors.Errorf("ase: tileset %d has no embedded tiles", ts.ID)
	}
	if n < 0 || n >= ts.Count {
		return nil, errors.Errorf("ase: tileset %d has %d tiles, no tile %d", ts.ID, ts.Count, n)
	}
	size := ts.TileWidth * ts.TileHeight * d.Header.Depth.BytesPerPixel()
	return d.pixelsImage(image.Rect(0, 0, ts.TileWidth, ts.TileHeight), ts.Pixels[n*size:(n+1)*size])
}

func (d *Document) pixelsImage(r image.Rectangle, px []byte) (image.Image, error) {
	w, h := r.Dx(), r.Dy()
	if len(px) != w*h*d.Header.Depth.BytesPerPixel() {
		return nil, errors.Wrapf(ErrCorruptData, "%d bytes for a %dx%d %v image", len(px), w, h, d.Header.Depth)
	}
	switch d.Header.Depth {
	case RGBA32:
		img := image.NewNRGBA(r)
		copy(img.Pix, px)
		return img, nil
	case Grayscale16:
		img := image.NewNRGBA(r)
		for i := 0; i < w*h; i++ {
			v, a := px[i*2], px[i*2+1]
			img.Pix[i*4+0] = v
			img.Pix[i*4+1] = v
			img.Pix[i*4+2] = v
			img.Pix[i*4+3] = a
		}
		return img, nil
	case Indexed8:
		img := image.NewPaletted(r, d.colorPalette())
		copy(img.Pix, px)
		return img, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedVariant, "color depth %d", d.Header.Depth)
}
