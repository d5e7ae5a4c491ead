package ase

import (
	"image"
	"io"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const fileMagic = 0xA5E0

// fileHeader is the 128-byte header at the start of every file.
type fileHeader struct {
	FileSize         uint32
	Magic            uint16
	Frames           uint16
	Width, Height    uint16
	Depth            uint16
	Flags            uint32
	Speed            uint16
	_                [8]byte
	TransparentIndex uint8
	_                [3]byte
	Colors           uint16
	PixelWidth       uint8
	PixelHeight      uint8
	GridX, GridY     int16
	GridWidth        uint16
	GridHeight       uint16
	_                [84]byte
}

// decoder carries state across one Decode call. It is not shared.
type decoder struct {
	c      *cursor
	header Header
	frames []*frameRecord
}

// Decode reads a complete Aseprite document from r, which must be
// positioned at the start of the file.
//
// Decode never returns a partially decoded document: it either returns a
// resolved Document or an error wrapping ErrUnexpectedEOF, ErrInvalidMagic,
// ErrDanglingReference or ErrUnsupportedVariant (for an unknown color
// depth). Recoverable problems are logged and recorded on the affected
// entities instead.
func Decode(r io.ReadSeeker) (*Document, error) {
	c, err := newCursor(r)
	if err != nil {
		return nil, err
	}
	d := &decoder{c: c}
	if err := d.decodeHeader(); err != nil {
		return nil, err
	}
	glog.V(2).Infof("ase: %dx%d %v, %d frames", d.header.Width, d.header.Height, d.header.Depth, d.header.Frames)

	d.frames = make([]*frameRecord, 0, d.header.Frames)
	for i := 0; i < d.header.Frames; i++ {
		f, err := d.decodeFrame(i)
		if err != nil {
			return nil, errors.Wrapf(err, "ase: frame %d", i)
		}
		d.frames = append(d.frames, f)
	}
	return d.resolve()
}

func (d *decoder) decodeHeader() error {
	var fh fileHeader
	if !d.c.read(&fh) {
		return errors.Wrap(d.c.err, "ase: could not read header")
	}
	if fh.Magic != fileMagic {
		return errors.Wrapf(ErrInvalidMagic, "ase: file header: got %04x, want %04x", fh.Magic, fileMagic)
	}
	depth := ColorDepth(fh.Depth)
	if depth.BytesPerPixel() == 0 {
		return errors.Wrapf(ErrUnsupportedVariant, "ase: color depth %d", fh.Depth)
	}
	colors := int(fh.Colors)
	if colors == 0 {
		colors = 256
	}
	d.header = Header{
		FileSize:         fh.FileSize,
		Frames:           int(fh.Frames),
		Width:            int(fh.Width),
		Height:           int(fh.Height),
		Depth:            depth,
		Flags:            HeaderFlags(fh.Flags),
		Speed:            fh.Speed,
		TransparentIndex: fh.TransparentIndex,
		Colors:           colors,
		PixelWidth:       fh.PixelWidth,
		PixelHeight:      fh.PixelHeight,
		GridX:            fh.GridX,
		GridY:            fh.GridY,
		GridWidth:        fh.GridWidth,
		GridHeight:       fh.GridHeight,
	}
	return nil
}

// DecodeConfig returns the canvas size and color model of a document.
//
// Indexed documents need their palette, which may live in any frame, so r
// must be an io.ReadSeeker and the whole file gets decoded. For other
// depths only the header is read.
func DecodeConfig(r io.Reader) (image.Config, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		return image.Config{}, errors.New("ase: reader must be a ReadSeeker")
	}
	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return image.Config{}, errors.Wrap(err, "ase: finding start of source")
	}
	c, err := newCursor(rs)
	if err != nil {
		return image.Config{}, err
	}
	d := &decoder{c: c}
	if err := d.decodeHeader(); err != nil {
		return image.Config{}, err
	}
	if d.header.Depth != Indexed8 {
		doc := &Document{Header: d.header}
		return image.Config{Width: d.header.Width, Height: d.header.Height, ColorModel: doc.ColorModel()}, nil
	}
	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return image.Config{}, errors.Wrap(err, "ase: rewinding source")
	}
	doc, err := Decode(rs)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{Width: doc.Header.Width, Height: doc.Header.Height, ColorModel: doc.ColorModel()}, nil
}
