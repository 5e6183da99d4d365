package engine

import (
	"fmt"
	"html"
	"strings"

	"songbook/pkg/models"
	"songbook/pkg/song"
)

// renderHits formats search results for the negotiated content type. The
// HTML form is a fragment the transport layer can embed in a page; the
// text forms are one song per line.
func renderHits(hits []models.Hit, contentType string) string {
	if contentType == song.MimeHTML {
		var b strings.Builder
		b.WriteString(`<ul class="song-list">` + "\n")
		for _, h := range hits {
			fmt.Fprintf(&b, `<li class="song-item"><a class="song-link" href="/songs/%s">%s - %s</a>`,
				h.ID, html.EscapeString(h.Title), html.EscapeString(h.Artist))
			if h.Snippet != "" {
				// bleve highlight fragments already carry HTML markup
				fmt.Fprintf(&b, `<div class="song-snippet">%s</div>`, h.Snippet)
			}
			b.WriteString("</li>\n")
		}
		b.WriteString("</ul>\n")
		return b.String()
	}

	var b strings.Builder
	for _, h := range hits {
		fmt.Fprintf(&b, "%s\t%s - %s\n", h.ID, h.Title, h.Artist)
	}
	return b.String()
}
