package ase

import (
	"bytes"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// maxDeflateRatio bounds how much deflate can expand its input.
const maxDeflateRatio = 1032

// pixelBytes multiplies dimensions into a byte count, returning -1 when the
// product does not fit in an int64.
func pixelBytes(dims ...int64) int64 {
	n := int64(1)
	for _, d := range dims {
		if d < 0 {
			return -1
		}
		if d != 0 && n > math.MaxInt64/d {
			return -1
		}
		n *= d
	}
	return n
}

// inflate decompresses a zlib stream that must expand to exactly want bytes.
//
// A want that src could never expand to is rejected before anything is
// allocated. Reading stops one byte past want; a clean end of stream is
// also where the adler32 checksum gets verified.
func inflate(src []byte, want int64) ([]byte, error) {
	if want < 0 {
		return nil, errors.Wrap(ErrCorruptData, "decompressed size overflows")
	}
	if limit := int64(len(src)) * maxDeflateRatio; want > limit || want > math.MaxInt {
		return nil, errors.Wrapf(ErrCorruptData, "%d compressed bytes cannot expand to %d", len(src), want)
	}
	zr, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, errors.Wrapf(ErrCorruptData, "opening zlib stream: %v", err)
	}
	defer zr.Close()

	var out bytes.Buffer
	out.Grow(int(want))
	if _, err := io.Copy(&out, io.LimitReader(zr, want+1)); err != nil {
		return nil, errors.Wrapf(ErrCorruptData, "inflating %d compressed bytes: %v", len(src), err)
	}
	if int64(out.Len()) != want {
		if int64(out.Len()) > want {
			return nil, errors.Wrapf(ErrCorruptData, "inflated data larger than the expected %d bytes", want)
		}
		return nil, errors.Wrapf(ErrCorruptData, "inflated %d bytes, want %d", out.Len(), want)
	}
	return out.Bytes(), nil
}
