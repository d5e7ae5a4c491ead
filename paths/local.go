package paths

import (
	"bytes"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// mappedFile serves reads and seeks straight out of a read-only mapping.
type mappedFile struct {
	*bytes.Reader
	m mmap.MMap
}

func (f *mappedFile) Close() error {
	if f.m == nil {
		return nil
	}
	err := f.m.Unmap()
	f.m = nil
	return errors.Wrap(err, "unmapping file")
}

func openLocal(path string) (io.ReadSeekCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "go-aseprite/paths: stat %q", path)
	}
	if st.Size() == 0 {
		// Empty files cannot be mapped.
		return &mappedFile{Reader: bytes.NewReader(nil)}, nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "go-aseprite/paths: mapping %q", path)
	}
	glog.V(3).Infof("paths: mapped %q, %d bytes", path, len(m))
	return &mappedFile{Reader: bytes.NewReader(m), m: m}, nil
}
