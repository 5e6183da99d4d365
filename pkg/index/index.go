// Package index wraps a bleve full-text index with the small facade the
// engine needs: add-or-replace, remove, query, and full rebuild from the
// document store.
package index

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"songbook/pkg/logger"
	"songbook/pkg/models"
	"songbook/pkg/song"
)

// ErrQuerySyntax marks a malformed search query. Callers render it as a
// user-facing message, never as a fatal error.
var ErrQuerySyntax = errors.New("wrong query syntax")

// Source is the slice of the document store a rebuild needs.
type Source interface {
	List() ([]string, error)
	Read(id string) (string, error)
}

// Index is the search index facade. The bleve handle is guarded by a
// RWMutex only because RebuildAll swaps it wholesale; individual bleve
// operations are already safe for concurrent use.
type Index struct {
	mu   sync.RWMutex
	path string
	idx  bleve.Index
}

// Open opens the index at path, creating it when absent.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(path, buildMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	return &Index{path: path, idx: idx}, nil
}

// Close releases the underlying index.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.idx == nil {
		return nil
	}
	err := ix.idx.Close()
	ix.idx = nil
	return err
}

// buildMapping indexes title, artist and body with the default analyzer
// (so bare terms hit all three through _all) plus an unanalyzed sort key
// for title ordering of match-all queries.
func buildMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	dm := bleve.NewDocumentMapping()

	text := bleve.NewTextFieldMapping()
	text.Store = true
	dm.AddFieldMappingsAt("title", text)
	dm.AddFieldMappingsAt("artist", text)

	body := bleve.NewTextFieldMapping()
	dm.AddFieldMappingsAt("body", body)

	sortKey := bleve.NewTextFieldMapping()
	sortKey.Analyzer = keyword.Name
	sortKey.IncludeInAll = false
	dm.AddFieldMappingsAt("sort", sortKey)

	im.DefaultMapping = dm
	return im
}

func projection(s models.Song) map[string]interface{} {
	return map[string]interface{}{
		"title":  s.Title,
		"artist": s.Artist,
		"body":   s.Body,
		"sort":   strings.ToLower(s.Title),
	}
}

// AddOrUpdate replaces the indexed projection for the song's ID. bleve
// commits the mutation before returning, so success here is durable.
func (ix *Index) AddOrUpdate(s models.Song) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if err := ix.idx.Index(s.ID, projection(s)); err != nil {
		return fmt.Errorf("index song %s: %w", s.ID, err)
	}
	return nil
}

// Remove drops the projection for id; removing an absent ID is a no-op.
func (ix *Index) Remove(id string) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if err := ix.idx.Delete(id); err != nil {
		return fmt.Errorf("unindex song %s: %w", id, err)
	}
	return nil
}

// Query runs a field-qualified boolean query (bare terms search
// title+artist+body, field:term restricts to one field) and returns
// ranked hits. The empty query returns every document ordered by title.
func (ix *Index) Query(q string) ([]models.Hit, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	count, err := ix.idx.DocCount()
	if err != nil {
		return nil, fmt.Errorf("doc count: %w", err)
	}
	size := int(count) + 1

	var bq query.Query
	matchAll := strings.TrimSpace(q) == ""
	if matchAll {
		bq = bleve.NewMatchAllQuery()
	} else {
		parsed, perr := query.NewQueryStringQuery(q).Parse()
		if perr != nil {
			return nil, fmt.Errorf("%w: %v", ErrQuerySyntax, perr)
		}
		bq = parsed
	}

	req := bleve.NewSearchRequestOptions(bq, size, 0, false)
	req.Fields = []string{"title", "artist"}
	if matchAll {
		req.SortBy([]string{"sort"})
	} else {
		req.Highlight = bleve.NewHighlight()
	}

	res, err := ix.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]models.Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := models.Hit{ID: h.ID}
		if t, ok := h.Fields["title"].(string); ok {
			hit.Title = t
		}
		if a, ok := h.Fields["artist"].(string); ok {
			hit.Artist = a
		}
		if frags, ok := h.Fragments["body"]; ok && len(frags) > 0 {
			hit.Snippet = frags[0]
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// DocCount returns the number of indexed documents.
func (ix *Index) DocCount() (uint64, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.idx.DocCount()
}

// RebuildAll drops the whole index and re-derives it from every document
// in the store. The old index is removed before the scan, so an
// interrupted rebuild leaves a valid (possibly empty) index and a later
// rebuild starts again from a clean slate.
func (ix *Index) RebuildAll(src Source) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.idx != nil {
		if err := ix.idx.Close(); err != nil {
			return fmt.Errorf("close index for rebuild: %w", err)
		}
		ix.idx = nil
	}
	if err := os.RemoveAll(ix.path); err != nil {
		return fmt.Errorf("drop index %s: %w", ix.path, err)
	}
	idx, err := bleve.New(ix.path, buildMapping())
	if err != nil {
		return fmt.Errorf("recreate index %s: %w", ix.path, err)
	}
	ix.idx = idx

	ids, err := src.List()
	if err != nil {
		return fmt.Errorf("scan store: %w", err)
	}
	batch := idx.NewBatch()
	indexed := 0
	for _, id := range ids {
		body, rerr := src.Read(id)
		if rerr != nil {
			logger.Warn("reindex_read_failed", "id", id, "error", rerr)
			continue
		}
		meta := song.Parse(body)
		if !meta.Valid() {
			logger.Warn("reindex_invalid_song", "id", id)
			continue
		}
		s := models.Song{ID: id, Title: meta.Title, Artist: meta.Artist, Body: body}
		if berr := batch.Index(id, projection(s)); berr != nil {
			return fmt.Errorf("batch song %s: %w", id, berr)
		}
		indexed++
	}
	if err := idx.Batch(batch); err != nil {
		return fmt.Errorf("commit rebuild: %w", err)
	}
	logger.Info("index_rebuilt", "songs", indexed, "scanned", len(ids))
	return nil
}
