package main

import (
	"image"

	"github.com/nfnt/resize"

	"badc0de.net/pkg/go-aseprite/ase"
	"badc0de.net/pkg/go-aseprite/imageprint"
)

// fitCells returns the largest size, in pixels printed as two-column cells,
// that keeps a w×h image with the given pixel ratio inside the terminal.
func fitCells(w, h, pw, ph int, ts termSize) (uint, uint) {
	maxW, maxH := ts.cols/2, ts.rows-1
	w, h = w*pw, h*ph
	if uint(w) <= maxW && uint(h) <= maxH {
		return uint(w), uint(h)
	}
	return maxW, maxH
}

func out(img image.Image, hd ase.Header) {
	if *downsize {
		if ts, err := getTermSize(); err == nil {
			pw, ph := hd.PixelRatio()
			if ts.xpixel != 0 && ts.ypixel != 0 && (*rasterm || *iterm) {
				// Real images only need to fit the window.
				img = resize.Thumbnail(ts.xpixel/2, ts.ypixel/2, img, resize.NearestNeighbor)
			} else {
				w, h := fitCells(img.Bounds().Dx(), img.Bounds().Dy(), pw, ph, ts)
				img = resize.Thumbnail(w, h, img, resize.NearestNeighbor)
			}
		}
	}

	switch {
	case *rasterm:
		imageprint.PrintRasTerm(img)
	case !*col:
		imageprint.PrintNoColor(img, *blanks)
	case *iterm:
		imageprint.PrintITerm(img, "cel.png")
	case *col256:
		imageprint.Print256Color(img, *blanks)
	default:
		imageprint.Print24bit(img, *blanks)
	}
}
