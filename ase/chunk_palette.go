package ase

import (
	"image/color"
)

// paletteRun overwrites len(entries) palette entries starting at first.
type paletteRun struct {
	first   int
	entries []PaletteEntry
}

// maxPaletteEntries bounds what a single chunk may declare; indexes are
// DWORDs in the new format but no real palette comes near this.
const maxPaletteEntries = 1 << 16

func (d *decoder) decodePalette() chunk {
	c := d.c
	size := int64(c.u32())
	first := int64(c.u32())
	last := int64(c.u32())
	c.skip(8)

	ch := paletteChunk{size: int(min(size, maxPaletteEntries))}
	if last < first || first >= maxPaletteEntries {
		return ch
	}
	last = min(last, maxPaletteEntries-1)

	run := paletteRun{first: int(first)}
	for i := first; i <= last && c.err == nil; i++ {
		flags := c.u16()
		e := PaletteEntry{Color: color.NRGBA{R: c.u8(), G: c.u8(), B: c.u8(), A: c.u8()}}
		if flags&1 != 0 {
			e.Name = c.str()
		}
		run.entries = append(run.entries, e)
	}
	ch.runs = []paletteRun{run}
	return ch
}

// decodeOldPalette normalizes the packet-encoded legacy palette chunks.
// sixBit chunks store components in 0..63.
func (d *decoder) decodeOldPalette(sixBit bool) chunk {
	c := d.c
	packets := c.u16()
	var ch paletteChunk
	idx := 0
	for i := uint16(0); i < packets && c.err == nil && idx < maxPaletteEntries; i++ {
		idx += int(c.u8())
		n := int(c.u8())
		if n == 0 {
			n = 256
		}
		run := paletteRun{first: idx, entries: make([]PaletteEntry, 0, n)}
		for j := 0; j < n && c.err == nil; j++ {
			r, g, b := c.u8(), c.u8(), c.u8()
			if sixBit {
				r, g, b = scale6(r), scale6(g), scale6(b)
			}
			run.entries = append(run.entries, PaletteEntry{Color: color.NRGBA{R: r, G: g, B: b, A: 0xFF}})
		}
		ch.runs = append(ch.runs, run)
		idx += n
	}
	return ch
}

func scale6(v uint8) uint8 {
	v &= 0x3F
	return v<<2 | v>>4
}

// merge applies the chunk on top of p. Entries outside the chunk's range
// are never dropped, so applying a chunk twice equals applying it once.
func (ch paletteChunk) merge(p Palette) Palette {
	n := max(len(p), ch.size)
	for _, r := range ch.runs {
		n = max(n, r.first+len(r.entries))
	}
	if n > len(p) {
		grown := make(Palette, n)
		copy(grown, p)
		p = grown
	}
	for _, r := range ch.runs {
		copy(p[r.first:], r.entries)
	}
	return p
}
