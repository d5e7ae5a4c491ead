package paths

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

var (
	cache     map[string][]byte
	cacheLock sync.Mutex

	// Client fetches http:// and https:// documents.
	Client = http.DefaultClient
)

// openHTTP fetches the whole document into memory; the decoder needs to
// seek. Bodies are cached for the lifetime of the process.
func openHTTP(url string) (io.ReadSeekCloser, error) {
	cacheLock.Lock()
	defer cacheLock.Unlock()

	if cache == nil {
		cache = make(map[string][]byte)
	}
	if buf, ok := cache[url]; ok {
		glog.V(2).Infof("paths/http.go: NoFindOpen(%q): returning reader for cached buffer", url)
		return &bytesReaderWithDummyClose{bytes.NewReader(buf)}, nil
	}

	glog.V(2).Infof("paths/http.go: getting http file %q", url)
	response, err := Client.Get(url)
	if err != nil {
		return nil, errors.Wrapf(err, "go-aseprite/paths/NoFindOpen(%q): failed to open", url)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		e := os.ErrInvalid
		if response.StatusCode == http.StatusNotFound {
			e = os.ErrNotExist
		}
		return nil, errors.Wrapf(e, "go-aseprite/paths/NoFindOpen(%q): http response.StatusCode=%v, want 200", url, response.StatusCode)
	}

	// TODO(ivucica): Explore using ranged reads.
	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, response.Body); err != nil {
		return nil, errors.Wrap(err, "copying response to seekable buffer")
	}
	cache[url] = buf.Bytes()
	return &bytesReaderWithDummyClose{bytes.NewReader(buf.Bytes())}, nil
}

type bytesReaderWithDummyClose struct {
	*bytes.Reader
}

func (bytesReaderWithDummyClose) Close() error {
	return nil
}
