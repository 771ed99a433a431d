package virtual

import (
	"encoding/xml"
	"fmt"
	"strings"
)

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

// sitemap lists the canonical URL of every page of a locale.
func (st *state) sitemap(ls *localeSite) ([]byte, error) {
	set := urlset{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, name := range st.sortedPages(ls) {
		p := "/" + strings.TrimSuffix(name, "index.html")
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        st.cfg.CanonicalURL(p),
			ChangeFreq: "weekly",
			Priority:   0.5,
		})
	}
	b, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sitemap: %w", err)
	}
	return append([]byte(xml.Header), b...), nil
}
