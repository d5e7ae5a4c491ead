package ase

// This file contains the pass that turns decoded frame records into a
// Document: entities are collected, user data is attached, layer parents
// and linked cels are resolved.

import (
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// attachSlot is the entity the next user data chunk belongs to. It moves
// forward as chunks are visited in file order.
type attachSlot struct {
	target AttachmentTarget
	index  int // layer, tag, slice, tileset or tile index
	frame  int // cel only
	cel    int // cel only: position in Frame.Cels
	end    int // tags: one past the last tag of the chunk; tiles: tile count
	owner  int // tiles: tileset index
}

func (d *decoder) resolve() (*Document, error) {
	doc := &Document{
		Header: d.header,
		Frames: make([]Frame, len(d.frames)),
	}
	// celIndex[frame][layer] is the position of that cel in Frame.Cels.
	celIndex := make([]map[int]int, len(d.frames))

	slot := attachSlot{target: AttachedToSprite}
	for fi, fr := range d.frames {
		f := &doc.Frames[fi]
		f.Index = fi
		f.Duration = time.Duration(fr.duration) * time.Millisecond
		celIndex[fi] = make(map[int]int)
		lastCel := -1

		for ci, ch := range fr.chunks {
			switch ch := ch.(type) {
			case layerChunk:
				l := ch.layer
				l.Index = len(doc.Layers)
				doc.Layers = append(doc.Layers, l)
				slot = attachSlot{target: AttachedToLayer, index: l.Index}
			case celChunk:
				cel := ch.cel
				if i, dup := celIndex[fi][cel.Layer]; dup {
					glog.Warningf("ase: frame %d has more than one cel on layer %d; keeping the last", fi, cel.Layer)
					f.Cels[i] = cel
					lastCel = i
				} else {
					lastCel = len(f.Cels)
					celIndex[fi][cel.Layer] = lastCel
					f.Cels = append(f.Cels, cel)
				}
				slot = attachSlot{target: AttachedToCel, frame: fi, cel: lastCel, index: cel.Layer}
			case celExtraChunk:
				if lastCel < 0 {
					glog.Warningf("ase: frame %d: cel extra chunk without a preceding cel", fi)
					continue
				}
				if ch.precise {
					b := ch.bounds
					f.Cels[lastCel].Precise = &b
				}
			case paletteChunk:
				doc.Palette = ch.merge(doc.Palette)
			case tagsChunk:
				first := len(doc.Tags)
				doc.Tags = append(doc.Tags, ch.tags...)
				slot = attachSlot{target: AttachedToTag, index: first, end: len(doc.Tags)}
				if len(ch.tags) == 0 {
					slot = attachSlot{}
				}
			case sliceChunk:
				doc.Slices = append(doc.Slices, ch.slice)
				slot = attachSlot{target: AttachedToSlice, index: len(doc.Slices) - 1}
			case tilesetChunk:
				doc.Tilesets = append(doc.Tilesets, ch.tileset)
				slot = attachSlot{target: AttachedToTileset, index: len(doc.Tilesets) - 1}
			case userDataChunk:
				ud := ch.data
				f.UserData = append(f.UserData, Attachment{Chunk: ci, Target: slot.target, Index: slot.index, Data: &ud})
				slot = doc.attach(slot, &ud)
			case colorProfileChunk:
				p := ch.profile
				doc.ColorProfile = &p
			case externalFilesChunk:
				doc.ExternalFiles = append(doc.ExternalFiles, ch.files...)
			case maskChunk:
				doc.Masks = append(doc.Masks, ch.mask)
			case pathChunk:
				doc.Paths = append(doc.Paths, ch.data)
			}
		}
	}

	if err := linkLayers(doc.Layers); err != nil {
		return nil, err
	}
	if err := doc.resolveCels(celIndex); err != nil {
		return nil, err
	}
	return doc, nil
}

// attach stores ud on the slot's entity and returns the slot for the next
// user data chunk.
func (doc *Document) attach(s attachSlot, ud *UserData) attachSlot {
	switch s.target {
	case AttachedToSprite:
		doc.UserData = ud
	case AttachedToLayer:
		doc.Layers[s.index].UserData = ud
	case AttachedToCel:
		doc.Frames[s.frame].Cels[s.cel].UserData = ud
	case AttachedToTag:
		doc.Tags[s.index].UserData = ud
		if s.index+1 < s.end {
			s.index++
			return s
		}
		return attachSlot{}
	case AttachedToSlice:
		doc.Slices[s.index].UserData = ud
	case AttachedToTileset:
		ts := &doc.Tilesets[s.index]
		ts.UserData = ud
		if ts.Count > 0 {
			return attachSlot{target: AttachedToTile, owner: s.index, end: ts.Count}
		}
		return attachSlot{}
	case AttachedToTile:
		ts := &doc.Tilesets[s.owner]
		// Count is untrusted; grow only as far as user data actually goes.
		for len(ts.TileUserData) <= s.index {
			ts.TileUserData = append(ts.TileUserData, nil)
		}
		ts.TileUserData[s.index] = ud
		if s.index+1 < s.end {
			s.index++
			return s
		}
		return attachSlot{}
	default:
		glog.Warningf("ase: user data chunk with nothing to attach to; dropping it")
	}
	return s
}

// linkLayers sets Parent on every layer from the child levels. A layer's
// parent is the nearest preceding layer one level up.
func linkLayers(layers []Layer) error {
	var open []int // open[d] is the latest layer seen at depth d
	for i := range layers {
		l := &layers[i]
		if l.Depth > len(open) {
			return errors.Wrapf(ErrDanglingReference, "ase: layer %d %q has child level %d after level %d", i, l.Name, l.Depth, len(open)-1)
		}
		open = open[:l.Depth]
		l.Parent = -1
		if l.Depth > 0 {
			l.Parent = open[l.Depth-1]
		}
		open = append(open, i)
	}
	return nil
}

// resolveCels checks layer references and replaces linked cels with the
// content of their target. Targets always lie in earlier frames, so one
// forward pass sees every target already resolved.
func (doc *Document) resolveCels(celIndex []map[int]int) error {
	for fi := range doc.Frames {
		f := &doc.Frames[fi]
		for ci := range f.Cels {
			cel := &f.Cels[ci]
			if cel.Layer >= len(doc.Layers) {
				return errors.Wrapf(ErrDanglingReference, "ase: frame %d: cel on layer %d, but there are %d layers", fi, cel.Layer, len(doc.Layers))
			}
			link, ok := cel.Content.(*linkedContent)
			if !ok {
				continue
			}
			if link.frame >= fi {
				return errors.Wrapf(ErrDanglingReference, "ase: frame %d layer %d: cel linked to frame %d, which is not earlier", fi, cel.Layer, link.frame)
			}
			ti, ok := celIndex[link.frame][cel.Layer]
			if !ok {
				return errors.Wrapf(ErrDanglingReference, "ase: frame %d layer %d: linked frame %d has no cel on that layer", fi, cel.Layer, link.frame)
			}
			target := &doc.Frames[link.frame].Cels[ti]
			cel.Content = target.Content
			cel.Err = target.Err
			cel.LinkedFrom = link.frame
		}
	}
	return nil
}
