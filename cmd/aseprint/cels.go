package main

import (
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-aseprite/ase"
)

// celsToPrint picks the image cels of frame to draw. A negative layer picks
// every visible layer, bottom to top.
func celsToPrint(doc *ase.Document, frame, layer int) ([]*ase.Cel, error) {
	if frame < 0 || frame >= len(doc.Frames) {
		return nil, errors.Errorf("frame %d out of range, document has %d", frame, len(doc.Frames))
	}
	if layer >= len(doc.Layers) {
		return nil, errors.Errorf("layer %d out of range, document has %d", layer, len(doc.Layers))
	}
	if layer >= 0 {
		cel := doc.Cel(frame, layer)
		if cel == nil {
			return nil, errors.Errorf("layer %q is empty in frame %d", doc.LayerPath(layer), frame)
		}
		return []*ase.Cel{cel}, nil
	}

	var out []*ase.Cel
	for l := range doc.Layers {
		if !doc.LayerVisible(l) {
			continue
		}
		cel := doc.Cel(frame, l)
		if cel == nil {
			continue
		}
		if _, ok := cel.Content.(*ase.ImageContent); !ok && cel.Err == nil {
			continue
		}
		out = append(out, cel)
	}
	return out, nil
}
