// Package song implements the song sheet markup: ChordPro-style
// directives in curly braces ({title: ...}, {artist: ...}) with chord
// annotations in square brackets ([Am], [G/B]) inline in the lyrics.
package song

import (
	"regexp"
	"strings"
)

// Meta holds the metadata extracted from a song body. Title and Artist
// are mandatory for a valid document; Key is optional and only feeds the
// HTML metadata block.
type Meta struct {
	Title  string
	Artist string
	Key    string
}

var directiveRe = regexp.MustCompile(`^\s*\{\s*([A-Za-z_]+)\s*:\s*(.*?)\s*\}\s*$`)

// Parse extracts metadata directives from a raw song body. Unknown
// directives are ignored; the first occurrence of each known directive
// wins. Short ChordPro aliases (t, st, a) are accepted.
func Parse(body string) Meta {
	var m Meta
	for _, line := range strings.Split(body, "\n") {
		d := directiveRe.FindStringSubmatch(line)
		if d == nil {
			continue
		}
		value := d[2]
		switch strings.ToLower(d[1]) {
		case "title", "t":
			if m.Title == "" {
				m.Title = value
			}
		case "artist", "a", "subtitle", "st":
			if m.Artist == "" {
				m.Artist = value
			}
		case "key":
			if m.Key == "" {
				m.Key = value
			}
		}
	}
	return m
}

// Valid reports whether the metadata carries the mandatory fields.
func (m Meta) Valid() bool {
	return m.Title != "" && m.Artist != ""
}
