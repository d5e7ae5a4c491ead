// Package imageprint prints images on terminal. UNSUPPORTED debug package.
//
// This package has an API with no stability guarantees.
package imageprint

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	ic "image/color"
	"image/png"
	"io"
	"os"

	"github.com/gookit/color"
)

// Mode selects how colors are emitted.
type Mode int

const (
	NoColor   Mode = iota // glyphs only
	Color256              // gookit/color, downgraded to what the terminal supports
	TrueColor             // raw 24-bit background escapes
)

// Printer draws images as two-character cells, one per pixel.
type Printer struct {
	W    io.Writer
	Mode Mode

	// Blanks prints spaces instead of brightness glyphs.
	Blanks bool
	// Checker draws transparent pixels as a grey checkerboard, like an
	// image editor's canvas, instead of leaving them empty.
	Checker bool
}

var (
	checkerLight = ic.NRGBA{0xCC, 0xCC, 0xCC, 0xFF}
	checkerDark  = ic.NRGBA{0x99, 0x99, 0x99, 0xFF}
)

func glyph(c ic.NRGBA) string {
	a := (int(c.R) + int(c.G) + int(c.B)) / 3
	switch {
	case a < 32:
		return ".."
	case a < 64:
		return "--"
	case a < 128:
		return "=="
	}
	return "##"
}

func (p *Printer) cell(x, y int, col ic.Color) {
	c := ic.NRGBAModel.Convert(col).(ic.NRGBA)
	if c.A == 0 {
		if !p.Checker || p.Mode == NoColor {
			fmt.Fprint(p.W, "\x1b[0m  ")
			return
		}
		c = checkerLight
		if (x/2+y/2)%2 == 1 {
			c = checkerDark
		}
	}

	text := "  "
	if !p.Blanks {
		text = glyph(c)
	}
	switch p.Mode {
	case NoColor:
		fmt.Fprint(p.W, text)
	case TrueColor:
		fmt.Fprintf(p.W, "\x1b[48;2;%d;%d;%dm%s\x1b[0m", c.R, c.G, c.B, text)
	default:
		fmt.Fprint(p.W, color.RGB(c.R, c.G, c.B, true).Sprint(text))
	}
}

// Print draws every pixel of i, row by row.
func (p *Printer) Print(i image.Image) {
	b := i.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p.cell(x-b.Min.X, y-b.Min.Y, i.At(x, y))
		}
		if p.Mode != NoColor {
			fmt.Fprint(p.W, "\x1b[0m")
		}
		fmt.Fprint(p.W, "\n")
	}
}

// Print256Color draws an image using 256color'd ascii art.
func Print256Color(i image.Image, blanks bool) {
	(&Printer{W: os.Stdout, Mode: Color256, Blanks: blanks, Checker: true}).Print(i)
}

// Print24bit draws an image using 24bit color escape sequences by changing background.
func Print24bit(i image.Image, blanks bool) {
	(&Printer{W: os.Stdout, Mode: TrueColor, Blanks: blanks, Checker: true}).Print(i)
}

// PrintNoColor draws an image without using color escape sequences. Only makes sense with blanks=false.
func PrintNoColor(i image.Image, blanks bool) {
	(&Printer{W: os.Stdout, Mode: NoColor, Blanks: blanks}).Print(i)
}

// WriteITerm writes an image using iTerm2's inline image escape sequence.
//
// https://www.iterm2.com/documentation-images.html
func WriteITerm(w io.Writer, i image.Image, fn string) error {
	name := base64.StdEncoding.EncodeToString([]byte(fn))
	b := &bytes.Buffer{}
	bEnc := base64.NewEncoder(base64.StdEncoding, b)
	if err := png.Encode(bEnc, i); err != nil {
		return err
	}
	bEnc.Close()
	_, err := fmt.Fprintf(w, "\n\033]1337;File=name=%s;inline=1;size=%d,width=%dpx;height=%dpx:%s\a\n", name, b.Len(), i.Bounds().Dx(), i.Bounds().Dy(), b.String())
	return err
}

// PrintITerm draws an image on stdout if the terminal looks like iTerm2 or
// WezTerm.
func PrintITerm(i image.Image, fn string) {
	if !isTermItermWez() {
		return
	}
	WriteITerm(os.Stdout, i, fn)
}
