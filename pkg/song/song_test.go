package song

import "testing"

const sampleBody = "{title: Yesterday}\n{artist: The Beatles}\n{key: F}\n\n[F]Yesterday, all my [Em7]troubles seemed so [A7]far away\n"

func TestParse(t *testing.T) {
	m := Parse(sampleBody)
	if m.Title != "Yesterday" {
		t.Errorf("Title = %q", m.Title)
	}
	if m.Artist != "The Beatles" {
		t.Errorf("Artist = %q", m.Artist)
	}
	if m.Key != "F" {
		t.Errorf("Key = %q", m.Key)
	}
	if !m.Valid() {
		t.Error("expected valid metadata")
	}
}

func TestParseAliases(t *testing.T) {
	m := Parse("{t: Hey Jude}\n{st: The Beatles}\n")
	if m.Title != "Hey Jude" || m.Artist != "The Beatles" {
		t.Fatalf("aliases not honored: %+v", m)
	}
	m = Parse("{ T : Spaced }\n{ a : Artist }\n")
	if m.Title != "Spaced" || m.Artist != "Artist" {
		t.Fatalf("whitespace inside directives not trimmed: %+v", m)
	}
}

func TestParseFirstDirectiveWins(t *testing.T) {
	m := Parse("{title: First}\n{title: Second}\n{artist: A}\n")
	if m.Title != "First" {
		t.Fatalf("Title = %q, want First", m.Title)
	}
}

func TestParseMissingMetadataInvalid(t *testing.T) {
	if Parse("just some lyrics\n").Valid() {
		t.Error("body without directives should be invalid")
	}
	if Parse("{title: Only Title}\n").Valid() {
		t.Error("title alone should be invalid")
	}
	if Parse("{artist: Only Artist}\n").Valid() {
		t.Error("artist alone should be invalid")
	}
}

func TestParseIgnoresUnknownDirectives(t *testing.T) {
	m := Parse("{capo: 3}\n{title: X}\n{artist: Y}\n{tempo: 120}\n")
	if m.Title != "X" || m.Artist != "Y" {
		t.Fatalf("unknown directives interfered: %+v", m)
	}
}
