package utils

import "testing"

func TestMakeSlug(t *testing.T) {
	cases := []struct {
		title, artist, want string
	}{
		{"Yesterday", "The Beatles", "yesterday-the-beatles"},
		{"Let It Be", "The Beatles", "let-it-be-the-beatles"},
		{"Señorita", "Shawn Mendes", "senorita-shawn-mendes"},
		{"  Hello,   World!  ", "Adele", "hello-world-adele"},
		{"99 Luftballons", "Nena", "99-luftballons-nena"},
		{"C'est la vie", "Khaled", "c-est-la-vie-khaled"},
		{"!!!", "???", "song"},
	}
	for _, c := range cases {
		got := MakeSlug(c.title, c.artist)
		if got != c.want {
			t.Errorf("MakeSlug(%q, %q) = %q, want %q", c.title, c.artist, got, c.want)
		}
	}
}

func TestMakeSlugDeterministic(t *testing.T) {
	a := MakeSlug("Bohemian Rhapsody", "Queen")
	b := MakeSlug("Bohemian Rhapsody", "Queen")
	if a != b {
		t.Fatalf("slug not deterministic: %q vs %q", a, b)
	}
}

func TestMakeSlugURLSafe(t *testing.T) {
	got := MakeSlug("Für Elise / Op. 59 (solo)", "L. v. Beethoven")
	for _, r := range got {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			t.Fatalf("slug %q contains unsafe rune %q", got, r)
		}
	}
	if got[0] == '-' || got[len(got)-1] == '-' {
		t.Fatalf("slug %q has leading or trailing dash", got)
	}
}
