// Package store persists song documents as self-contained text files,
// one per document, keyed by ID with a fixed .song extension.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/natefinch/atomic"

	"songbook/pkg/logger"
)

// Ext is the on-disk extension for song documents.
const Ext = ".song"

// ErrNotFound is returned when no document exists for an ID.
var ErrNotFound = errors.New("song not found")

var idRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Store is a file-backed document store. All methods are safe for
// concurrent use; writes to the same ID are serialized by the engine,
// not here. Writes are atomic from the reader's perspective: the new
// body is written to a temporary file and renamed into place, so a
// concurrent read observes either the old or the new body, never a
// torn one.
type Store struct {
	root string
}

// Open ensures the songs directory exists and returns a store over it.
func Open(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create songs root %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// Root returns the backing directory.
func (s *Store) Root() string { return s.root }

// Read returns the raw body for id, or ErrNotFound.
func (s *Store) Read(id string) (string, error) {
	path, err := s.path(id)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read song %s: %w", id, err)
	}
	return string(b), nil
}

// Write stores the full body for id, replacing any previous content.
func (s *Store) Write(id, body string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, strings.NewReader(body)); err != nil {
		logger.Error("song_write_failed", "id", id, "error", err)
		return fmt.Errorf("write song %s: %w", id, err)
	}
	return nil
}

// Delete removes the document for id, or returns ErrNotFound.
func (s *Store) Delete(id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		logger.Error("song_delete_failed", "id", id, "error", err)
		return fmt.Errorf("delete song %s: %w", id, err)
	}
	return nil
}

// Exists reports whether a document is stored under id.
func (s *Store) Exists(id string) bool {
	path, err := s.path(id)
	if err != nil {
		return false
	}
	_, serr := os.Stat(path)
	return serr == nil
}

// List returns the IDs of every stored document, in directory order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, Ext) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, Ext))
	}
	return ids, nil
}

// path maps an ID to its backing file, rejecting anything that is not a
// well-formed slug so IDs can never escape the songs root.
func (s *Store) path(id string) (string, error) {
	if !idRe.MatchString(id) {
		return "", fmt.Errorf("invalid song id %q: %w", id, ErrNotFound)
	}
	return filepath.Join(s.root, id+Ext), nil
}
