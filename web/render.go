package web

import (
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"time"

	"github.com/andybons/gogif"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-aseprite/ase"
)

// Quantizer names accepted by layerGIF.
const (
	QuantizeMedianCut = "mediancut" // ericpauley/go-quantize
	QuantizeGoGIF     = "gogif"     // andybons/gogif
)

// layerCanvas places the cel of layer in frame on a transparent canvas of
// the document's size. Opacity and blend modes are not applied.
func layerCanvas(doc *ase.Document, frame, layer int) (*image.NRGBA, error) {
	canvas := image.NewNRGBA(image.Rect(0, 0, doc.Header.Width, doc.Header.Height))
	cel := doc.Cel(frame, layer)
	if cel == nil {
		return canvas, nil
	}
	img, err := doc.CelImage(cel)
	if err != nil {
		return nil, err
	}
	draw.Draw(canvas, img.Bounds(), img, img.Bounds().Min, draw.Src)
	return canvas, nil
}

func transparent(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

// framePalette picks the GIF palette for one frame. Indexed documents use
// their own palette; others are quantized to 255 colors plus transparency.
func framePalette(doc *ase.Document, canvas *image.NRGBA, quantizer string) color.Palette {
	if p, ok := doc.ColorModel().(color.Palette); ok {
		// GIF caps palettes at 256; indexed pixels never go past that.
		if len(p) > 256 {
			p = p[:256]
		}
		return p
	}
	// go-quantize fills up to cap(pal).
	pal := make(color.Palette, 1, 256)
	pal[0] = color.Transparent
	if transparent(canvas) {
		return pal
	}
	switch quantizer {
	case QuantizeGoGIF:
		tmp := image.NewPaletted(canvas.Bounds(), nil)
		q := gogif.MedianCutQuantizer{NumColor: 255}
		q.Quantize(tmp, canvas.Bounds(), canvas, canvas.Bounds().Min)
		return append(pal, tmp.Palette...)
	default:
		q := quantize.MedianCutQuantizer{}
		return q.Quantize(pal, canvas)
	}
}

// gifDelay converts a frame duration to hundredths of a second. Very short
// delays are clamped, since browsers slow them down anyway.
func gifDelay(d time.Duration) int {
	cs := int(d / (10 * time.Millisecond))
	if cs < 2 {
		cs = 2
	}
	return cs
}

// layerGIF animates one layer over every frame of the document.
func layerGIF(doc *ase.Document, layer int, quantizer string) (*gif.GIF, error) {
	if layer < 0 || layer >= len(doc.Layers) {
		return nil, errors.Errorf("no layer %d", layer)
	}
	g := &gif.GIF{}
	for fi := range doc.Frames {
		canvas, err := layerCanvas(doc, fi, layer)
		if err != nil {
			return nil, errors.Wrapf(err, "frame %d", fi)
		}
		p := image.NewPaletted(canvas.Bounds(), framePalette(doc, canvas, quantizer))
		draw.Draw(p, p.Bounds(), canvas, image.Point{}, draw.Src)

		g.Image = append(g.Image, p)
		g.Delay = append(g.Delay, gifDelay(doc.Frames[fi].Duration))
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
	}
	return g, nil
}

// thumbnail returns the first visible image cel of the first frame, placed
// on the canvas and shrunk to fit size×size.
func thumbnail(doc *ase.Document, size uint) image.Image {
	if len(doc.Frames) == 0 {
		return nil
	}
	for l := range doc.Layers {
		if !doc.LayerVisible(l) {
			continue
		}
		cel := doc.Cel(0, l)
		if cel == nil || cel.Err != nil {
			continue
		}
		if _, ok := cel.Content.(*ase.ImageContent); !ok {
			continue
		}
		canvas, err := layerCanvas(doc, 0, l)
		if err != nil {
			continue
		}
		return resize.Thumbnail(size, size, canvas, resize.NearestNeighbor)
	}
	return nil
}
