package core

import (
	"fmt"
	"html"
	"net/http"
	"net/url"
)

func (s *Site) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>`)
	fmt.Fprint(w, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)

	baseURL := ""
	if s.domain != "" {
		baseURL = "https://" + s.domain
	}

	addSitemapURLEntry := func(path string, changefreq string, priority float64) {
		escapedPath := html.EscapeString(path)
		fmt.Fprintf(w, "<url><loc>%s%s</loc><changefreq>%s</changefreq><priority>%.1f</priority></url>\n", baseURL, escapedPath, changefreq, priority)
	}

	addSitemapURLEntry("/", "hourly", 1.0)
	addSitemapURLEntry("/docs", "monthly", 0.5)

	// One entry per country of the current data
	if data := s.controller.State().Data; data != nil {
		for _, c := range data.Countries {
			addSitemapURLEntry("/country/"+url.PathEscape(c.Country), "daily", 0.7)
		}
	}

	fmt.Fprint(w, `</urlset>`)
}
