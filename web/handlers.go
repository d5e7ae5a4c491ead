// Package web serves decoded Aseprite documents over HTTP: summaries as
// JSON, cels as PNG and layers as animated GIF.
package web

import (
	"bytes"
	"fmt"
	"image/gif"
	"image/png"
	"io"
	"net/http"
	"strconv"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"golang.org/x/net/trace"

	"badc0de.net/pkg/go-aseprite/ase"
)

// generation goes into every ETag; bump if the way responses are generated
// changes.
const generation = 1

type Handler struct {
	lib *Library

	// cache holds encoded response bodies keyed by ETag.
	cache *lru.Cache[string, []byte]
}

// NewHandler constructs a web handler serving the documents in lib, keeping
// up to cacheSize encoded images in memory.
func NewHandler(lib *Library, cacheSize int) (*Handler, error) {
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "creating image cache")
	}
	return &Handler{lib: lib, cache: cache}, nil
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.indexHandler)
	r.HandleFunc("/sitemap.xml", h.sitemapHandler)
	r.HandleFunc("/doc/{name}", h.docHandler)
	r.HandleFunc("/doc/{name}/cel/{frame:[0-9]+}/{layer:[0-9]+}.png", h.celHandler)
	r.HandleFunc("/doc/{name}/layer/{layer:[0-9]+}.gif", h.layerGIFHandler)
	r.HandleFunc("/doc/{name}/tile/{tileset:[0-9]+}/{tile:[0-9]+}.png", h.tileHandler)
}

func etagFor(d *Document, kind string, params ...interface{}) string {
	return fmt.Sprintf(`W/"%d:%s:%s:%08x:%v"`, generation, kind, d.Name, d.Signature, params)
}

// notModified answers 304 if the client already holds etag.
func notModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	if r.Header.Get("If-None-Match") != etag {
		return false
	}
	w.Header().Set("Cache-Control", "public; max-age=36000") // 36000 = 10h
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusNotModified)
	return true
}

func errorStatus(err error) int {
	if errors.Is(err, ase.ErrCorruptData) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// serveCached writes the body produced by render, reusing an earlier
// rendering with the same etag.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, tr trace.Trace, etag, mime string, render func(io.Writer) error) {
	if notModified(w, r, etag) {
		tr.LazyPrintf("not modified")
		return
	}
	body, ok := h.cache.Get(etag)
	if ok {
		tr.LazyPrintf("cache hit, %d bytes", len(body))
	} else {
		var buf bytes.Buffer
		if err := render(&buf); err != nil {
			tr.LazyPrintf("render: %v", err)
			tr.SetError()
			glog.Warningf("web: %s: %v", r.URL.Path, err)
			http.Error(w, err.Error(), errorStatus(err))
			return
		}
		body = buf.Bytes()
		h.cache.Add(etag, body)
		tr.LazyPrintf("rendered %d bytes", len(body))
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public; max-age=3600")
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// lookup resolves the {name} route variable, answering 404 itself.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) *Document {
	name := mux.Vars(r)["name"]
	d := h.lib.Get(name)
	if d == nil {
		http.Error(w, fmt.Sprintf("no document %q", name), http.StatusNotFound)
	}
	return d
}

// intVars parses numeric route variables; the route patterns guarantee
// digits, so only overflow can fail.
func intVars(r *http.Request, names ...string) ([]int, error) {
	vars := mux.Vars(r)
	out := make([]int, len(names))
	for i, n := range names {
		v, err := strconv.Atoi(vars[n])
		if err != nil {
			return nil, errors.Errorf("%s not a number", n)
		}
		out[i] = v
	}
	return out, nil
}

func (h *Handler) celHandler(w http.ResponseWriter, r *http.Request) {
	tr := trace.New("web.cel", r.URL.Path)
	defer tr.Finish()

	d := h.lookup(w, r)
	if d == nil {
		return
	}
	v, err := intVars(r, "frame", "layer")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	frame, layer := v[0], v[1]
	cel := d.Doc.Cel(frame, layer)
	if cel == nil {
		http.Error(w, fmt.Sprintf("no cel on layer %d in frame %d", layer, frame), http.StatusNotFound)
		return
	}

	h.serveCached(w, r, tr, etagFor(d, "cel", frame, layer), "image/png", func(out io.Writer) error {
		img, err := d.Doc.CelImage(cel)
		if err != nil {
			return err
		}
		return png.Encode(out, img)
	})
}

func (h *Handler) tileHandler(w http.ResponseWriter, r *http.Request) {
	tr := trace.New("web.tile", r.URL.Path)
	defer tr.Finish()

	d := h.lookup(w, r)
	if d == nil {
		return
	}
	v, err := intVars(r, "tileset", "tile")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if v[0] >= len(d.Doc.Tilesets) {
		http.Error(w, fmt.Sprintf("no tileset %d", v[0]), http.StatusNotFound)
		return
	}
	ts := &d.Doc.Tilesets[v[0]]
	if v[1] >= ts.Count {
		http.Error(w, fmt.Sprintf("tileset %d has no tile %d", v[0], v[1]), http.StatusNotFound)
		return
	}

	h.serveCached(w, r, tr, etagFor(d, "tile", v[0], v[1]), "image/png", func(out io.Writer) error {
		img, err := d.Doc.TileImage(ts, v[1])
		if err != nil {
			return err
		}
		return png.Encode(out, img)
	})
}

func (h *Handler) layerGIFHandler(w http.ResponseWriter, r *http.Request) {
	tr := trace.New("web.layer", r.URL.Path)
	defer tr.Finish()

	d := h.lookup(w, r)
	if d == nil {
		return
	}
	v, err := intVars(r, "layer")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	layer := v[0]
	if layer >= len(d.Doc.Layers) {
		http.Error(w, fmt.Sprintf("no layer %d", layer), http.StatusNotFound)
		return
	}
	q := r.URL.Query().Get("q")
	if q != QuantizeGoGIF {
		q = QuantizeMedianCut
	}

	h.serveCached(w, r, tr, etagFor(d, "layer", layer, q), "image/gif", func(out io.Writer) error {
		g, err := layerGIF(d.Doc, layer, q)
		if err != nil {
			return err
		}
		return gif.EncodeAll(out, g)
	})
}
