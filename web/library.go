package web

import (
	"context"
	"hash/crc32"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"badc0de.net/pkg/go-aseprite/ase"
	"badc0de.net/pkg/go-aseprite/paths"
)

// Document is a decoded document served by the inspector.
type Document struct {
	Name   string
	Source string
	Doc    *ase.Document

	// Signature is a checksum of the source bytes; it goes into ETags.
	Signature uint32
}

// Library is a read-only set of documents keyed by name.
type Library struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// docName derives the URL name of a document from its path or URL.
func docName(source string) string {
	base := path.Base(strings.ReplaceAll(source, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// LoadLibrary opens and decodes every source concurrently. Sources are
// anything paths.Open accepts. The first failure cancels the rest.
func LoadLibrary(ctx context.Context, sources []string) (*Library, error) {
	lib := &Library{docs: make(map[string]*Document)}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, src := range sources {
		src := src
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := loadDocument(src)
			if err != nil {
				return err
			}
			return lib.add(d)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lib, nil
}

func loadDocument(src string) (*Document, error) {
	f, err := paths.Open(src)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", src)
	}
	defer f.Close()

	h := crc32.NewIEEE()
	if _, err := io.Copy(h, f); err != nil {
		return nil, errors.Wrapf(err, "reading %s", src)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "rewinding %s", src)
	}
	doc, err := ase.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", src)
	}
	glog.Infof("web: loaded %s: %dx%d, %d frames, %d layers", src, doc.Header.Width, doc.Header.Height, len(doc.Frames), len(doc.Layers))
	return &Document{Name: docName(src), Source: src, Doc: doc, Signature: h.Sum32()}, nil
}

func (l *Library) add(d *Document) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if prev, ok := l.docs[d.Name]; ok {
		return errors.Errorf("%s and %s would both be served as %q", prev.Source, d.Source, d.Name)
	}
	l.docs[d.Name] = d
	return nil
}

// Get returns the document called name, or nil.
func (l *Library) Get(name string) *Document {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.docs[name]
}

// Names returns the document names in sorted order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.docs))
	for n := range l.docs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
