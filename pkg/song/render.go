package song

import (
	"fmt"
	"html"
	"mime"
	"regexp"
	"sort"
	"strings"
)

// Supported representations, in server preference order. An absent or
// unparseable Accept header negotiates to MimeSong.
const (
	MimeSong  = "text/song"
	MimePlain = "text/plain"
	MimeHTML  = "text/html"
)

var preference = []string{MimeSong, MimePlain, MimeHTML}

var chordRe = regexp.MustCompile(`\[([^\[\]\n]+)\]`)

// Negotiate picks the representation to serve for an Accept header. It is
// a pure function: bare media ranges and wildcards are matched against the
// supported types, q-values weigh alternatives, and ties (including */*)
// resolve by the fixed preference order.
func Negotiate(accept string) string {
	if strings.TrimSpace(accept) == "" {
		return preference[0]
	}

	type candidate struct {
		mime string
		q    float64
		pref int
	}
	var cands []candidate
	for _, part := range strings.Split(accept, ",") {
		mt, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if qs, ok := params["q"]; ok {
			if _, err := fmt.Sscanf(qs, "%f", &q); err != nil || q < 0 {
				q = 0
			}
		}
		if q == 0 {
			continue
		}
		for i, sup := range preference {
			if mediaMatch(mt, sup) {
				cands = append(cands, candidate{mime: sup, q: q, pref: i})
			}
		}
	}
	if len(cands) == 0 {
		return preference[0]
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].q != cands[j].q {
			return cands[i].q > cands[j].q
		}
		return cands[i].pref < cands[j].pref
	})
	return cands[0].mime
}

func mediaMatch(pattern, mt string) bool {
	if pattern == "*/*" || pattern == mt {
		return true
	}
	if strings.HasSuffix(pattern, "/*") {
		return strings.HasPrefix(mt, strings.TrimSuffix(pattern, "*"))
	}
	return false
}

// Render converts a raw song body into the requested representation.
// The song and plain forms are the stored body verbatim, byte for byte;
// only the HTML form is derived. Unknown content types serve the song
// form.
func Render(body, contentType string) string {
	if contentType == MimeHTML {
		return renderHTML(body)
	}
	return body
}

// renderHTML wraps the song in the presentation markup the web client
// expects: a song-metadata block with itemprop spans and a song-content
// block with chords wrapped in song-chord spans.
func renderHTML(body string) string {
	meta := Parse(body)

	var b strings.Builder
	b.WriteString(`<div class="song" itemscope="itemscope" itemtype="http://schema.org/MusicComposition">` + "\n")
	b.WriteString(`<div class="song-metadata">` + "\n")
	writeMetaProp(&b, "name", meta.Title)
	writeMetaProp(&b, "byArtist", meta.Artist)
	writeMetaProp(&b, "musicalKey", meta.Key)
	b.WriteString(`</div>` + "\n")
	b.WriteString(`<div class="song-content">` + "\n")
	for _, line := range strings.Split(body, "\n") {
		if directiveRe.MatchString(line) {
			continue
		}
		b.WriteString(`<p class="song-line">`)
		b.WriteString(highlightChords(line))
		b.WriteString("</p>\n")
	}
	b.WriteString(`</div>` + "\n")
	b.WriteString(`</div>` + "\n")
	return b.String()
}

func writeMetaProp(b *strings.Builder, prop, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, `<span class="song-metadata-value" itemprop="%s">%s</span>`+"\n", prop, html.EscapeString(value))
}

// highlightChords escapes the line and wraps each [chord] annotation in a
// span, dropping the brackets.
func highlightChords(line string) string {
	var b strings.Builder
	last := 0
	for _, loc := range chordRe.FindAllStringSubmatchIndex(line, -1) {
		b.WriteString(html.EscapeString(line[last:loc[0]]))
		b.WriteString(`<span class="song-chord">`)
		b.WriteString(html.EscapeString(line[loc[2]:loc[3]]))
		b.WriteString(`</span>`)
		last = loc[1]
	}
	b.WriteString(html.EscapeString(line[last:]))
	return b.String()
}
