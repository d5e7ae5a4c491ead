// Command aseprint prints a summary of an Aseprite document and draws its
// cels on the terminal.
package main

import (
	"flag"
	"fmt"
	"os"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"

	"badc0de.net/pkg/go-aseprite/ase"
	"badc0de.net/pkg/go-aseprite/paths"
)

var (
	frame    = flag.Int("frame", 0, "frame whose cels to print")
	layer    = flag.Int("layer", -1, "layer whose cel to print; -1 prints every visible layer")
	summary  = flag.Bool("summary", true, "whether to print a summary of the document")
	banner   = flag.Bool("banner", false, "whether to print the file name as a banner")
	pixels   = flag.Bool("pixels", true, "whether to print cel pixels")
	col256   = flag.Bool("col256", false, "whether to use 256 col instead of 24 bit")
	iterm    = flag.Bool("iterm", false, "whether to print with iterm escape code instead of 24 bit")
	rasterm  = flag.Bool("rasterm", false, "whether to print with rasterm (kitty, iterm, sixel)")
	col      = flag.Bool("col", true, "whether to use color at all")
	blanks   = flag.Bool("blanks", true, "whether to just use colored blanks instead of some bad ascii art")
	downsize = flag.Bool("downsize", true, "whether to shrink cels to fit the terminal")

	filePath string
)

func main() {
	paths.SetupDocumentFlag(nil, "file", &filePath, "sprite.aseprite", "sprite.ase")
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	name := filePath
	if flag.NArg() > 0 {
		name = flag.Arg(0)
	}
	if name == "" {
		glog.Exitf("no document given; pass -file or a path argument")
	}

	f, err := paths.NoFindOpen(name)
	if err != nil {
		glog.Exitf("opening %s: %v", name, err)
	}
	doc, err := ase.Decode(f)
	f.Close()
	if err != nil {
		glog.Exitf("decoding %s: %v", name, err)
	}

	if *banner {
		printBanner(name)
	}
	if *summary {
		writeSummary(os.Stdout, name, doc)
	}
	if !*pixels {
		return
	}
	cels, err := celsToPrint(doc, *frame, *layer)
	if err != nil {
		glog.Exit(err)
	}
	for _, cel := range cels {
		img, err := doc.CelImage(cel)
		if err != nil {
			glog.Warningf("frame %d layer %d: %v", cel.Frame, cel.Layer, err)
			continue
		}
		fmt.Printf("%s @ (%d,%d):\n", doc.LayerPath(cel.Layer), cel.X, cel.Y)
		out(img, doc.Header)
	}
}
