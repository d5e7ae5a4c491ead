package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"image/png"
	"net/http"

	"github.com/vincent-petithory/dataurl"
	"golang.org/x/net/trace"

	"badc0de.net/pkg/go-aseprite/ase"
)

type celSummary struct {
	Layer      int    `json:"layer"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Tilemap    bool   `json:"tilemap,omitempty"`
	LinkedFrom int    `json:"linked_from"`
	Error      string `json:"error,omitempty"`
}

type frameSummary struct {
	DurationMS int64        `json:"duration_ms"`
	Cels       []celSummary `json:"cels"`
}

type layerSummary struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Parent  int    `json:"parent"`
	Visible bool   `json:"visible"`
	Opacity uint8  `json:"opacity"`
	Blend   string `json:"blend"`
}

type tagSummary struct {
	Name      string `json:"name"`
	From      int    `json:"from"`
	To        int    `json:"to"`
	Direction string `json:"direction"`
}

type docSummary struct {
	Name     string         `json:"name"`
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Depth    string         `json:"depth"`
	Palette  int            `json:"palette_size"`
	Layers   []layerSummary `json:"layers"`
	Frames   []frameSummary `json:"frames"`
	Tags     []tagSummary   `json:"tags,omitempty"`
	Slices   []string       `json:"slices,omitempty"`
	Tilesets []string       `json:"tilesets,omitempty"`
}

func summarize(d *Document) docSummary {
	doc := d.Doc
	s := docSummary{
		Name:    d.Name,
		Width:   doc.Header.Width,
		Height:  doc.Header.Height,
		Depth:   doc.Header.Depth.String(),
		Palette: len(doc.Palette),
	}
	for i, l := range doc.Layers {
		s.Layers = append(s.Layers, layerSummary{
			Name:    l.Name,
			Path:    doc.LayerPath(i),
			Kind:    l.Kind.String(),
			Parent:  l.Parent,
			Visible: doc.LayerVisible(i),
			Opacity: l.Opacity,
			Blend:   l.BlendMode.String(),
		})
	}
	for _, f := range doc.Frames {
		fs := frameSummary{DurationMS: f.Duration.Milliseconds(), Cels: []celSummary{}}
		for _, c := range f.Cels {
			cs := celSummary{Layer: c.Layer, X: c.X, Y: c.Y, LinkedFrom: c.LinkedFrom}
			if c.Content != nil {
				sz := c.Content.Size()
				cs.Width, cs.Height = sz.X, sz.Y
				_, cs.Tilemap = c.Content.(*ase.TilemapContent)
			}
			if c.Err != nil {
				cs.Error = c.Err.Error()
			}
			fs.Cels = append(fs.Cels, cs)
		}
		s.Frames = append(s.Frames, fs)
	}
	for _, t := range doc.Tags {
		s.Tags = append(s.Tags, tagSummary{Name: t.Name, From: t.From, To: t.To, Direction: t.Direction.String()})
	}
	for _, sl := range doc.Slices {
		s.Slices = append(s.Slices, sl.Name)
	}
	for _, ts := range doc.Tilesets {
		s.Tilesets = append(s.Tilesets, ts.Name)
	}
	return s
}

func (h *Handler) docHandler(w http.ResponseWriter, r *http.Request) {
	d := h.lookup(w, r)
	if d == nil {
		return
	}
	etag := etagFor(d, "doc")
	if notModified(w, r, etag) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", etag)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(summarize(d))
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html><head><title>aseweb</title></head>
<body>
<h1>Documents</h1>
<ul>
{{range .}}{{$doc := .Name}}<li>
{{if .Thumb}}<img src="{{.Thumb}}" alt="">{{end}}
<a href="/doc/{{.Name}}">{{.Name}}</a> {{.Width}}x{{.Height}}, {{.Frames}} frames
{{range .Layers}}<a href="/doc/{{$doc}}/layer/{{.Index}}.gif">{{.Name}}</a> {{end}}
</li>
{{end}}</ul>
</body></html>
`))

type indexLayer struct {
	Index int
	Name  string
}

type indexEntry struct {
	Name          string
	Width, Height int
	Frames        int
	Thumb         template.URL
	Layers        []indexLayer
}

const thumbnailSize = 64

func (h *Handler) indexHandler(w http.ResponseWriter, r *http.Request) {
	tr := trace.New("web.index", r.URL.Path)
	defer tr.Finish()

	var entries []indexEntry
	for _, name := range h.lib.Names() {
		d := h.lib.Get(name)
		e := indexEntry{Name: name, Width: d.Doc.Header.Width, Height: d.Doc.Header.Height, Frames: len(d.Doc.Frames)}
		for i, l := range d.Doc.Layers {
			if l.Kind != ase.LayerGroup {
				e.Layers = append(e.Layers, indexLayer{Index: i, Name: d.Doc.LayerPath(i)})
			}
		}
		if img := thumbnail(d.Doc, thumbnailSize); img != nil {
			var buf bytes.Buffer
			if err := png.Encode(&buf, img); err == nil {
				e.Thumb = template.URL(dataurl.New(buf.Bytes(), "image/png").String())
			}
		}
		entries = append(entries, e)
	}
	tr.LazyPrintf("%d documents", len(entries))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, entries); err != nil {
		tr.SetError()
		tr.LazyPrintf("template: %v", err)
	}
}
