package ase

import (
	"strings"
	"time"
)

// Document is a fully resolved Aseprite file. Entities refer to each other
// only by index into the Document's slices.
//
// A Document is never modified after Decode returns and may be read from
// several goroutines.
type Document struct {
	Header Header

	Layers   []Layer
	Frames   []Frame
	Palette  Palette
	Tags     []Tag
	Slices   []Slice
	Tilesets []Tileset

	// UserData is the sprite's own user data.
	UserData *UserData

	// Kept for completeness; nothing in this package interprets them.
	ColorProfile  *ColorProfile
	ExternalFiles []ExternalFile
	Masks         []Mask
	Paths         [][]byte
}

// Cel returns the cel of layer in frame, or nil if that layer is empty in
// that frame.
func (d *Document) Cel(frame, layer int) *Cel {
	if frame < 0 || frame >= len(d.Frames) {
		return nil
	}
	f := &d.Frames[frame]
	for i := range f.Cels {
		if f.Cels[i].Layer == layer {
			return &f.Cels[i]
		}
	}
	return nil
}

// Children returns the indexes of the direct children of layer, in
// declaration order. Pass -1 for the top level layers.
func (d *Document) Children(layer int) []int {
	var out []int
	for i := range d.Layers {
		if d.Layers[i].Parent == layer {
			out = append(out, i)
		}
	}
	return out
}

// LayerPath returns the names of layer and its ancestors, outermost first,
// joined with "/".
func (d *Document) LayerPath(layer int) string {
	var names []string
	for i := layer; i >= 0 && i < len(d.Layers); i = d.Layers[i].Parent {
		names = append(names, d.Layers[i].Name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, "/")
}

// LayerVisible reports whether layer and all of its ancestors are visible.
func (d *Document) LayerVisible(layer int) bool {
	if layer < 0 || layer >= len(d.Layers) {
		return false
	}
	for i := layer; i >= 0; i = d.Layers[i].Parent {
		if !d.Layers[i].Flags.Visible() {
			return false
		}
	}
	return true
}

// TilesetByID returns the tileset a tilemap layer refers to.
func (d *Document) TilesetByID(id uint32) *Tileset {
	for i := range d.Tilesets {
		if d.Tilesets[i].ID == id {
			return &d.Tilesets[i]
		}
	}
	return nil
}

// Tag returns the first tag called name.
func (d *Document) Tag(name string) *Tag {
	for i := range d.Tags {
		if d.Tags[i].Name == name {
			return &d.Tags[i]
		}
	}
	return nil
}

// Slice returns the first slice called name.
func (d *Document) Slice(name string) *Slice {
	for i := range d.Slices {
		if d.Slices[i].Name == name {
			return &d.Slices[i]
		}
	}
	return nil
}

// TotalDuration is the sum of all frame durations.
func (d *Document) TotalDuration() time.Duration {
	var t time.Duration
	for _, f := range d.Frames {
		t += f.Duration
	}
	return t
}
