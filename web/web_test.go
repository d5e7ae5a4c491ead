package web

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-aseprite/ase"
	"badc0de.net/pkg/go-aseprite/ttesting"
)

func red(n int) []byte {
	var p []byte
	for i := 0; i < n; i++ {
		p = append(p, 255, 0, 0, 255)
	}
	return p
}

func testLibrary() *Library {
	img := &ase.ImageContent{Width: 2, Height: 2, Pixels: red(4)}
	doc := &ase.Document{
		Header: ase.Header{Width: 4, Height: 4, Depth: ase.RGBA32, Frames: 2},
		Layers: []ase.Layer{
			{Index: 0, Name: "bg", Parent: -1, Flags: ase.LayerVisible, Opacity: 255},
			{Index: 1, Name: "fx", Parent: -1, Flags: ase.LayerVisible, Opacity: 255},
		},
		Frames: []ase.Frame{
			{Index: 0, Duration: 100 * time.Millisecond, Cels: []ase.Cel{
				{Frame: 0, Layer: 0, X: 1, Y: 1, Content: img, LinkedFrom: -1},
				{Frame: 0, Layer: 1, LinkedFrom: -1, Err: errors.Wrap(ase.ErrCorruptData, "test")},
			}},
			{Index: 1, Duration: 100 * time.Millisecond, Cels: []ase.Cel{
				{Frame: 1, Layer: 0, X: 2, Y: 2, Content: img, LinkedFrom: 0},
			}},
		},
	}
	return &Library{docs: map[string]*Document{
		"hero": {Name: "hero", Source: "hero.aseprite", Doc: doc, Signature: 0xC0FFEE},
	}}
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	h, err := NewHandler(testLibrary(), 16)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url, etag string) *http.Response {
	t.Helper()
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCelHandler(t *testing.T) {
	srv := testServer(t)

	resp := get(t, srv.URL+"/doc/hero/cel/0/0.png", "")
	ttesting.AssertEqualInt(t, "status", resp.StatusCode, http.StatusOK)
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decoding png: %v", err)
	}
	ttesting.AssertEqualInt(t, "width", img.Bounds().Dx(), 2)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatalf("no ETag")
	}

	resp = get(t, srv.URL+"/doc/hero/cel/0/0.png", etag)
	ttesting.AssertEqualInt(t, "revalidation", resp.StatusCode, http.StatusNotModified)

	for _, tc := range []struct {
		path string
		want int
	}{
		{"/doc/villain/cel/0/0.png", http.StatusNotFound},
		{"/doc/hero/cel/1/1.png", http.StatusNotFound},
		{"/doc/hero/cel/0/1.png", http.StatusUnprocessableEntity},
		{"/doc/hero/tile/0/0.png", http.StatusNotFound},
	} {
		resp := get(t, srv.URL+tc.path, "")
		ttesting.AssertEqualInt(t, tc.path, resp.StatusCode, tc.want)
	}
}

func TestLayerGIFHandler(t *testing.T) {
	srv := testServer(t)
	for _, q := range []string{"", "?q=gogif"} {
		resp := get(t, srv.URL+"/doc/hero/layer/0.gif"+q, "")
		ttesting.AssertEqualInt(t, "status", resp.StatusCode, http.StatusOK)
		g, err := gif.DecodeAll(resp.Body)
		if err != nil {
			t.Fatalf("decoding gif: %v", err)
		}
		ttesting.AssertEqualInt(t, "frames", len(g.Image), 2)
		ttesting.AssertEqualInt(t, "delay", g.Delay[0], 10)

		// The cel moves one pixel between frames.
		_, _, _, a := g.Image[0].At(1, 1).RGBA()
		ttesting.AssertEqualBool(t, "frame 0 opaque at (1,1)", a != 0, true)
		_, _, _, a = g.Image[1].At(1, 1).RGBA()
		ttesting.AssertEqualBool(t, "frame 1 opaque at (1,1)", a != 0, false)
	}

	resp := get(t, srv.URL+"/doc/hero/layer/5.gif", "")
	ttesting.AssertEqualInt(t, "missing layer", resp.StatusCode, http.StatusNotFound)
}

func TestFramePaletteIndexed(t *testing.T) {
	pal := make(ase.Palette, 300)
	for i := range pal {
		pal[i].Color = color.NRGBA{R: uint8(i), A: 255}
	}
	doc := &ase.Document{
		Header:  ase.Header{Width: 1, Height: 1, Depth: ase.Indexed8, TransparentIndex: 0},
		Palette: pal,
	}
	canvas := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	canvas.Pix = []byte{5, 0, 0, 255}
	p := framePalette(doc, canvas, "")
	ttesting.AssertEqualInt(t, "palette size", len(p), 256)

	g := &gif.GIF{Image: []*image.Paletted{image.NewPaletted(canvas.Bounds(), p)}, Delay: []int{10}}
	if err := gif.EncodeAll(&bytes.Buffer{}, g); err != nil {
		t.Errorf("encoding with a long palette: %v", err)
	}
}

func TestDocHandler(t *testing.T) {
	srv := testServer(t)
	resp := get(t, srv.URL+"/doc/hero", "")
	ttesting.AssertEqualInt(t, "status", resp.StatusCode, http.StatusOK)

	var s docSummary
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}
	ttesting.AssertEqualString(t, "depth", s.Depth, "RGBA32")
	ttesting.AssertEqualInt(t, "frames", len(s.Frames), 2)
	ttesting.AssertEqualInt(t, "linked from", s.Frames[1].Cels[0].LinkedFrom, 0)
	if s.Frames[0].Cels[1].Error == "" {
		t.Errorf("corrupt cel has no error in summary")
	}
}

func TestIndexAndSitemap(t *testing.T) {
	srv := testServer(t)

	resp := get(t, srv.URL+"/", "")
	var b bytes.Buffer
	b.ReadFrom(resp.Body)
	for _, want := range []string{`href="/doc/hero"`, `src="data:image/png;base64,`, `/doc/hero/layer/1.gif`} {
		if !strings.Contains(b.String(), want) {
			t.Errorf("index lacks %q", want)
		}
	}

	resp = get(t, srv.URL+"/sitemap.xml", "")
	b.Reset()
	b.ReadFrom(resp.Body)
	if !strings.Contains(b.String(), "<loc>"+srv.URL+"/doc/hero</loc>") {
		t.Errorf("sitemap lacks the document:\n%s", b.String())
	}
}

// minimalFile encodes a one frame, one layer RGBA document whose only cel
// is w×h opaque red.
func minimalFile(w, h int) []byte {
	le := binary.LittleEndian
	var body bytes.Buffer
	chunk := func(typ uint16, payload []byte) {
		binary.Write(&body, le, uint32(6+len(payload)))
		binary.Write(&body, le, typ)
		body.Write(payload)
	}

	var layer bytes.Buffer
	binary.Write(&layer, le, []uint16{1, 0, 0, 0, 0, 0})
	layer.Write([]byte{255, 0, 0, 0})
	binary.Write(&layer, le, uint16(2))
	layer.WriteString("bg")
	chunk(0x2004, layer.Bytes())

	var cel bytes.Buffer
	binary.Write(&cel, le, []int16{0, 0, 0})
	cel.WriteByte(255)
	binary.Write(&cel, le, []uint16{0, 0})
	cel.Write(make([]byte, 5))
	binary.Write(&cel, le, []uint16{uint16(w), uint16(h)})
	cel.Write(red(w * h))
	chunk(0x2005, cel.Bytes())

	var out bytes.Buffer
	binary.Write(&out, le, uint32(128+16+body.Len()))
	binary.Write(&out, le, []uint16{0xA5E0, 1, uint16(w), uint16(h), 32})
	out.Write(make([]byte, 128-14))
	binary.Write(&out, le, uint32(16+body.Len()))
	binary.Write(&out, le, []uint16{0xF1FA, 2, 100, 0})
	binary.Write(&out, le, uint32(2))
	out.Write(body.Bytes())
	return out.Bytes()
}

func TestLoadLibrary(t *testing.T) {
	dir := t.TempDir()
	var sources []string
	for _, name := range []string{"b.aseprite", "a.ase"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, minimalFile(3, 2), 0o644); err != nil {
			t.Fatal(err)
		}
		sources = append(sources, p)
	}

	lib, err := LoadLibrary(context.Background(), sources)
	if err != nil {
		t.Fatalf("LoadLibrary: %v", err)
	}
	names := lib.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("names: got %v, want [a b]", names)
	}
	d := lib.Get("a")
	ttesting.AssertEqualInt(t, "width", d.Doc.Header.Width, 3)
	cel := d.Doc.Cel(0, 0)
	if cel == nil {
		t.Fatalf("no cel")
	}
	ttesting.AssertEqualBytes(t, "pixels", cel.Content.(*ase.ImageContent).Pixels, red(6))
	if d.Signature == 0 {
		t.Errorf("no signature")
	}

	dup := filepath.Join(dir, "sub", "a.ase")
	os.MkdirAll(filepath.Dir(dup), 0o755)
	os.WriteFile(dup, minimalFile(1, 1), 0o644)
	if _, err := LoadLibrary(context.Background(), append(sources, dup)); err == nil {
		t.Errorf("duplicate names were accepted")
	}
	if _, err := LoadLibrary(context.Background(), []string{filepath.Join(dir, "missing.ase")}); err == nil {
		t.Errorf("missing file was accepted")
	}
}
