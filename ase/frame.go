package ase

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const frameMagic = 0xF1FA

// frameHeaderSize is the size of frameHeader in the file.
const frameHeaderSize = 16

type frameHeader struct {
	Size      uint32
	Magic     uint16
	OldChunks uint16 // 0xFFFF means "see Chunks"
	Duration  uint16 // milliseconds
	_         [2]byte
	Chunks    uint32
}

// chunkCount picks between the legacy and the wide chunk count.
func (fh frameHeader) chunkCount() int {
	if fh.OldChunks == 0xFFFF || fh.Chunks != 0 {
		return int(fh.Chunks)
	}
	return int(fh.OldChunks)
}

// frameRecord is a decoded frame before resolution.
type frameRecord struct {
	index    int
	duration uint16
	chunks   []chunk
}

// decodeFrame reads one frame header and all of its chunks.
func (d *decoder) decodeFrame(index int) (*frameRecord, error) {
	c := d.c
	start := c.pos()
	var fh frameHeader
	if !c.read(&fh) {
		return nil, c.err
	}
	if fh.Magic != frameMagic {
		return nil, errors.Wrapf(ErrInvalidMagic, "frame at offset %d: got %04x, want %04x", start, fh.Magic, frameMagic)
	}

	n := fh.chunkCount()
	glog.V(2).Infof("ase: frame %d: %d bytes, %d chunks, %dms", index, fh.Size, n, fh.Duration)
	f := &frameRecord{index: index, duration: fh.Duration}
	for i := 0; i < n; i++ {
		h := chunkHeader{start: c.pos()}
		h.size = int64(c.u32())
		h.typ = chunkType(c.u16())
		if c.err != nil {
			return nil, errors.Wrapf(c.err, "chunk %d header", i)
		}
		if h.size < chunkHeaderSize {
			glog.Warningf("ase: frame %d chunk %d (%v) declares %d bytes; treating as empty", index, i, h.typ, h.size)
			h.size = chunkHeaderSize
		}
		glog.V(3).Infof("ase: frame %d chunk %d: %v, %d bytes at %d", index, i, h.typ, h.size, h.start)

		ch, err := d.decodeChunk(h, index)
		switch {
		case fatal(err):
			return nil, errors.Wrapf(err, "chunk %d", i)
		case err != nil:
			glog.Warningf("ase: frame %d chunk %d skipped: %v", index, i, err)
		default:
			f.chunks = append(f.chunks, ch)
		}
		c.seek(h.end())
	}

	// A frame may be followed by padding the chunks did not account for.
	if end := start + int64(fh.Size); end > c.pos() {
		glog.V(2).Infof("ase: frame %d: skipping %d trailing bytes", index, end-c.pos())
		c.seek(end)
	}
	if c.err != nil {
		return nil, c.err
	}
	return f, nil
}
