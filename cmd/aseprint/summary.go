package main

import (
	"fmt"
	"io"
	"path"
	"strings"
	"text/tabwriter"

	"github.com/bradfitz/iter"
	"github.com/common-nighthawk/go-figure"

	"badc0de.net/pkg/go-aseprite/ase"
)

func printBanner(name string) {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	figure.NewFigure(base, "", false).Print()
	fmt.Println()
}

func writeSummary(out io.Writer, name string, doc *ase.Document) {
	hd := doc.Header
	pw, ph := hd.PixelRatio()
	fmt.Fprintf(out, "%s: %dx%d %v, pixel ratio %d:%d\n", name, hd.Width, hd.Height, hd.Depth, pw, ph)
	fmt.Fprintf(out, "frames: %d, %v\n", len(doc.Frames), doc.TotalDuration())
	if len(doc.Palette) > 0 {
		fmt.Fprintf(out, "palette: %d entries\n", len(doc.Palette))
	}
	if doc.UserData != nil && doc.UserData.Text != nil {
		fmt.Fprintf(out, "note: %s\n", *doc.UserData.Text)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if len(doc.Layers) > 0 {
		fmt.Fprintln(w, "layer\tkind\tblend\topacity\tcels\t")
		for i, l := range doc.Layers {
			var indent strings.Builder
			for range iter.N(l.Depth) {
				indent.WriteString("  ")
			}
			name := indent.String() + l.Name
			if !doc.LayerVisible(i) {
				name += " (hidden)"
			}
			fmt.Fprintf(w, "%s\t%v\t%v\t%d\t%d\t\n", name, l.Kind, l.BlendMode, l.Opacity, celCount(doc, i))
		}
		fmt.Fprintln(w)
	}
	if len(doc.Tags) > 0 {
		fmt.Fprintln(w, "tag\tframes\tdirection\t")
		for _, t := range doc.Tags {
			fmt.Fprintf(w, "%s\t%d-%d\t%v\t\n", t.Name, t.From, t.To, t.Direction)
		}
		fmt.Fprintln(w)
	}
	if len(doc.Slices) > 0 {
		fmt.Fprintln(w, "slice\tkeys\tfirst bounds\t")
		for _, s := range doc.Slices {
			first := "-"
			if len(s.Keys) > 0 {
				first = s.Keys[0].Bounds.String()
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t\n", s.Name, len(s.Keys), first)
		}
		fmt.Fprintln(w)
	}
	if len(doc.Tilesets) > 0 {
		fmt.Fprintln(w, "tileset\ttiles\tsize\t")
		for _, ts := range doc.Tilesets {
			fmt.Fprintf(w, "%s\t%d\t%dx%d\t\n", ts.Name, ts.Count, ts.TileWidth, ts.TileHeight)
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}

func celCount(doc *ase.Document, layer int) int {
	n := 0
	for fi := range doc.Frames {
		if doc.Cel(fi, layer) != nil {
			n++
		}
	}
	return n
}
