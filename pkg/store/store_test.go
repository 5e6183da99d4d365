package store

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := newStore(t)
	body := "{title: Yesterday}\n{artist: The Beatles}\n"
	if err := s.Write("yesterday-the-beatles", body); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("yesterday-the-beatles")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != body {
		t.Fatalf("Read = %q, want %q", got, body)
	}
}

func TestWriteReplaces(t *testing.T) {
	s := newStore(t)
	if err := s.Write("x", "first"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Write("x", "second"); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	got, err := s.Read("x")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "second" {
		t.Fatalf("Read = %q, want %q", got, "second")
	}
}

func TestReadMissing(t *testing.T) {
	s := newStore(t)
	if _, err := s.Read("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	if err := s.Write("x", "body"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Delete("x"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Exists("x") {
		t.Fatal("document still exists after delete")
	}
	if err := s.Delete("x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	s := newStore(t)
	for _, id := range []string{"b-song", "a-song", "c-song"} {
		if err := s.Write(id, "body"); err != nil {
			t.Fatalf("Write %s: %v", id, err)
		}
	}
	// A stray non-song file is not a document.
	if err := os.WriteFile(filepath.Join(s.Root(), "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write stray file: %v", err)
	}
	ids, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	sort.Strings(ids)
	want := []string{"a-song", "b-song", "c-song"}
	if len(ids) != len(want) {
		t.Fatalf("List = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("List = %v, want %v", ids, want)
		}
	}
}

func TestInvalidIDsRejected(t *testing.T) {
	s := newStore(t)
	for _, id := range []string{"", "../escape", "UPPER", "has space", "dot.dot", "trailing-", "-leading", "a--b"} {
		if _, err := s.Read(id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Read(%q) err = %v, want ErrNotFound", id, err)
		}
		if err := s.Write(id, "body"); err == nil {
			t.Errorf("Write(%q) accepted an invalid id", id)
		}
		if s.Exists(id) {
			t.Errorf("Exists(%q) = true", id)
		}
	}
	// Nothing escaped the root.
	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("unexpected files created: %v", entries)
	}
}
