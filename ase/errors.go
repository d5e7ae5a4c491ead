package ase

import (
	"github.com/pkg/errors"
)

// Error kinds returned (wrapped) by this package. Test for them with
// errors.Is.
var (
	// ErrUnexpectedEOF means the source ended in the middle of a read. Fatal.
	ErrUnexpectedEOF = errors.New("ase: unexpected end of data")
	// ErrInvalidMagic means the file or a frame did not start with the
	// expected magic number. Fatal.
	ErrInvalidMagic = errors.New("ase: invalid magic number")
	// ErrCorruptData is recorded on a single cel or tileset whose pixel data
	// could not be decompressed or had the wrong size.
	ErrCorruptData = errors.New("ase: corrupt data")
	// ErrInvalidEncoding means a string was not valid UTF-8. The string is
	// replaced with an empty one.
	ErrInvalidEncoding = errors.New("ase: invalid string encoding")
	// ErrDanglingReference means a linked cel or a layer reference could not
	// be resolved. Fatal.
	ErrDanglingReference = errors.New("ase: dangling reference")
	// ErrUnsupportedVariant means a chunk declared a sub-type this package
	// does not know. The chunk is skipped.
	ErrUnsupportedVariant = errors.New("ase: unsupported variant")
)

// fatal reports whether err must abort the whole decode.
func fatal(err error) bool {
	return err != nil &&
		!errors.Is(err, ErrCorruptData) &&
		!errors.Is(err, ErrInvalidEncoding) &&
		!errors.Is(err, ErrUnsupportedVariant)
}
