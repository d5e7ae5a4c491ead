package web

import (
	"encoding/xml"
	"fmt"
	"net/http"
)

type SitemapURLImage struct {
	Loc string `xml:"image:loc"` // image is the namespace 'http://www.google.com/schemas/sitemap-image/1.1'
}

type SitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`

	Image []SitemapURLImage `xml:"image:image,omitempty"`
}

type SitemapURLSet struct {
	XMLName    xml.Name     `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 urlset"`
	XMLNSImage string       `xml:"xmlns:image,attr"`
	URL        []SitemapURL `xml:"url,omitempty"` // up to 50k entries
}

func (e *SitemapURLSet) Write(w http.ResponseWriter) {
	e.XMLNSImage = "http://www.google.com/schemas/sitemap-image/1.1"

	w.Header().Set("Content-Type", "application/xml")

	fmt.Fprintf(w, "%s", xml.Header)
	enc := xml.NewEncoder(w)
	enc.Indent("", " ")
	if err := enc.Encode(e); err != nil {
		http.Error(w, "<error>could not encode sitemap</error>", http.StatusInternalServerError)
	}
}

// sitemapHandler lists every document page, with its layer animations as
// images.
func (h *Handler) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	base := scheme + "://" + r.Host

	var set SitemapURLSet
	for _, name := range h.lib.Names() {
		d := h.lib.Get(name)
		u := SitemapURL{Loc: fmt.Sprintf("%s/doc/%s", base, name)}
		for i := range d.Doc.Layers {
			u.Image = append(u.Image, SitemapURLImage{Loc: fmt.Sprintf("%s/doc/%s/layer/%d.gif", base, name, i)})
		}
		set.URL = append(set.URL, u)
	}
	set.Write(w)
}
