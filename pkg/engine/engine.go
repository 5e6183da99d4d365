// Package engine coordinates the song document lifecycle: every
// operation is authorized, validated, applied to the document store and
// the search index in that order, and finished with a cache update. The
// store is authoritative; the index is derived and compensated back into
// line when a mutation fails halfway.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"songbook/pkg/cache"
	"songbook/pkg/index"
	"songbook/pkg/keys"
	"songbook/pkg/logger"
	"songbook/pkg/models"
	"songbook/pkg/song"
	"songbook/pkg/store"
	"songbook/pkg/telemetry"
	"songbook/pkg/utils"
)

// Kind enumerates the logical operations the engine handles.
type Kind int

const (
	Create Kind = iota
	Read
	Update
	Delete
	Search
	Reindex
)

func (k Kind) String() string {
	switch k {
	case Create:
		return "create"
	case Read:
		return "read"
	case Update:
		return "update"
	case Delete:
		return "delete"
	case Search:
		return "search"
	case Reindex:
		return "reindex"
	}
	return "unknown"
}

// NeedsAdmin reports whether the operation is reserved for the
// administrator key. Read-class operations are open to the user tier.
func (k Kind) NeedsAdmin() bool {
	switch k {
	case Read, Search:
		return false
	}
	return true
}

// Operation is the descriptor the transport layer hands to the engine.
type Operation struct {
	Kind   Kind
	ID     string // Read, Update, Delete
	Query  string // Search
	Body   string // Create, Update
	Key    string // capability key presented by the caller
	Accept string // Accept header, negotiated for Read and Search
}

// Status is the transport-agnostic outcome class of an operation.
type Status int

const (
	StatusOK Status = iota
	StatusCreated
	StatusForbidden
	StatusNotFound
	StatusBadRequest
	StatusInternalError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusCreated:
		return "created"
	case StatusForbidden:
		return "forbidden"
	case StatusNotFound:
		return "not_found"
	case StatusBadRequest:
		return "bad_request"
	}
	return "internal_error"
}

// HTTPCode maps the status onto its HTTP equivalent.
func (s Status) HTTPCode() int {
	switch s {
	case StatusOK:
		return 200
	case StatusCreated:
		return 201
	case StatusForbidden:
		return 403
	case StatusNotFound:
		return 404
	case StatusBadRequest:
		return 400
	}
	return 500
}

// Result is what the transport layer transmits back.
type Result struct {
	Status      Status
	ID          string
	Body        string
	ContentType string
	Hits        []models.Hit
}

// Engine wires the store, index, cache and keyring together.
type Engine struct {
	store *store.Store
	index *index.Index
	cache *cache.Cache
	keys  *keys.Keyring
	locks *lockTable
}

// New returns an engine over the given collaborators.
func New(st *store.Store, ix *index.Index, ca *cache.Cache, kr *keys.Keyring) *Engine {
	return &Engine{store: st, index: ix, cache: ca, keys: kr, locks: newLockTable()}
}

// Handle runs one operation to completion and returns its result. It is
// safe for concurrent use; operations touching the same ID are
// serialized, everything else proceeds independently.
func (e *Engine) Handle(ctx context.Context, op Operation) Result {
	start := time.Now()

	var res Result
	if d := e.keys.Authorize(op.Key, op.Kind.NeedsAdmin()); !d.Allowed {
		res = Result{Status: StatusForbidden, Body: "access forbidden", ContentType: song.MimePlain}
	} else {
		switch op.Kind {
		case Create:
			res = e.create(ctx, op)
		case Read:
			res = e.read(op)
		case Update:
			res = e.update(ctx, op)
		case Delete:
			res = e.delete(op)
		case Search:
			res = e.search(op)
		case Reindex:
			res = e.reindex()
		default:
			res = Result{Status: StatusBadRequest, Body: "unsupported operation", ContentType: song.MimePlain}
		}
	}

	telemetry.ObserveOperation(op.Kind.String(), res.Status.String(), time.Since(start))
	return res
}

func (e *Engine) create(ctx context.Context, op Operation) Result {
	meta := song.Parse(op.Body)
	if !meta.Valid() {
		return Result{Status: StatusBadRequest, Body: "you must provide a title and an artist information", ContentType: song.MimePlain}
	}

	// Candidate IDs are checked, not reserved; the existence re-check under
	// the per-ID lock closes the race against a concurrent create.
	base := utils.MakeSlug(meta.Title, meta.Artist)
	var id string
	var unlock func()
	for n := 1; ; n++ {
		cand := base
		if n > 1 {
			cand = fmt.Sprintf("%s-%d", base, n)
		}
		release := e.locks.Lock(cand)
		if e.store.Exists(cand) {
			release()
			continue
		}
		id, unlock = cand, release
		break
	}
	defer unlock()

	if err := ctx.Err(); err != nil {
		return Result{Status: StatusInternalError, Body: "internal error", ContentType: song.MimePlain}
	}
	if err := e.store.Write(id, op.Body); err != nil {
		logger.Error("create_store_write_failed", "id", id, "error", err)
		return Result{Status: StatusInternalError, Body: "internal error", ContentType: song.MimePlain}
	}
	s := models.Song{ID: id, Title: meta.Title, Artist: meta.Artist, Body: op.Body}
	if err := e.index.AddOrUpdate(s); err != nil {
		// Compensate: take the document back out of the store so the index
		// never references a song the store does not hold.
		logger.Error("create_index_failed", "id", id, "error", err)
		if derr := e.store.Delete(id); derr != nil {
			logger.Error("create_compensation_failed", "id", id, "error", derr)
		}
		e.cache.Invalidate(id)
		return Result{Status: StatusInternalError, Body: "internal error", ContentType: song.MimePlain}
	}
	e.cache.Put(id, op.Body)

	logger.Info("song_created", "id", id, "title", meta.Title, "artist", meta.Artist)
	return Result{Status: StatusCreated, ID: id, Body: id, ContentType: song.MimePlain}
}

func (e *Engine) update(ctx context.Context, op Operation) Result {
	meta := song.Parse(op.Body)
	if !meta.Valid() {
		return Result{Status: StatusBadRequest, Body: "you must provide a title and an artist information", ContentType: song.MimePlain}
	}

	unlock := e.locks.Lock(op.ID)
	defer unlock()

	prev, err := e.store.Read(op.ID)
	if errors.Is(err, store.ErrNotFound) {
		return Result{Status: StatusNotFound, Body: "the song doesn't exist and cannot be updated", ContentType: song.MimePlain}
	}
	if err != nil {
		logger.Error("update_store_read_failed", "id", op.ID, "error", err)
		return Result{Status: StatusInternalError, Body: "internal error", ContentType: song.MimePlain}
	}
	if cerr := ctx.Err(); cerr != nil {
		return Result{Status: StatusInternalError, Body: "internal error", ContentType: song.MimePlain}
	}

	if err := e.store.Write(op.ID, op.Body); err != nil {
		logger.Error("update_store_write_failed", "id", op.ID, "error", err)
		return Result{Status: StatusInternalError, Body: "internal error", ContentType: song.MimePlain}
	}
	s := models.Song{ID: op.ID, Title: meta.Title, Artist: meta.Artist, Body: op.Body}
	if err := e.index.AddOrUpdate(s); err != nil {
		// Compensate by restoring the previous body. The failure is still
		// surfaced so operators investigate the index.
		logger.Error("update_index_failed", "id", op.ID, "error", err)
		if werr := e.store.Write(op.ID, prev); werr != nil {
			logger.Error("update_compensation_failed", "id", op.ID, "error", werr)
		}
		e.cache.Invalidate(op.ID)
		return Result{Status: StatusInternalError, Body: "internal error", ContentType: song.MimePlain}
	}
	e.cache.Put(op.ID, op.Body)

	logger.Info("song_updated", "id", op.ID)
	return Result{Status: StatusOK, ID: op.ID, Body: op.ID, ContentType: song.MimePlain}
}

func (e *Engine) delete(op Operation) Result {
	unlock := e.locks.Lock(op.ID)
	defer unlock()

	if !e.store.Exists(op.ID) {
		return Result{Status: StatusNotFound, Body: "the song doesn't exist and cannot be deleted", ContentType: song.MimePlain}
	}
	if err := e.store.Delete(op.ID); err != nil {
		logger.Error("delete_store_failed", "id", op.ID, "error", err)
		return Result{Status: StatusInternalError, Body: "internal error", ContentType: song.MimePlain}
	}
	e.cache.Invalidate(op.ID)
	if err := e.index.Remove(op.ID); err != nil {
		// The document is gone from the store; a stale index entry is
		// logged and cleaned up by the next reindex.
		logger.Error("delete_index_failed", "id", op.ID, "error", err)
		return Result{Status: StatusInternalError, Body: "internal error", ContentType: song.MimePlain}
	}

	logger.Info("song_deleted", "id", op.ID)
	return Result{Status: StatusOK, ID: op.ID, Body: op.ID, ContentType: song.MimePlain}
}

func (e *Engine) read(op Operation) Result {
	unlock := e.locks.RLock(op.ID)
	defer unlock()

	body, ok := e.cache.Get(op.ID)
	if ok {
		telemetry.CacheHit()
	} else {
		telemetry.CacheMiss()
		var err error
		body, err = e.store.Read(op.ID)
		if errors.Is(err, store.ErrNotFound) {
			return Result{Status: StatusNotFound, Body: "song " + op.ID + " does not exist", ContentType: song.MimePlain}
		}
		if err != nil {
			logger.Error("read_store_failed", "id", op.ID, "error", err)
			return Result{Status: StatusInternalError, Body: "internal error", ContentType: song.MimePlain}
		}
		e.cache.Put(op.ID, body)
	}

	ct := song.Negotiate(op.Accept)
	return Result{Status: StatusOK, ID: op.ID, Body: song.Render(body, ct), ContentType: ct}
}

func (e *Engine) search(op Operation) Result {
	hits, err := e.index.Query(op.Query)
	if err != nil {
		if errors.Is(err, index.ErrQuerySyntax) {
			return Result{Status: StatusBadRequest, Body: "wrong query syntax", ContentType: song.MimePlain}
		}
		logger.Error("search_failed", "query", op.Query, "error", err)
		return Result{Status: StatusInternalError, Body: "internal error", ContentType: song.MimePlain}
	}

	ct := song.Negotiate(op.Accept)
	return Result{Status: StatusOK, Body: renderHits(hits, ct), ContentType: ct, Hits: hits}
}

func (e *Engine) reindex() Result {
	e.cache.Clear()
	if err := e.index.RebuildAll(e.store); err != nil {
		logger.Error("reindex_failed", "error", err)
		return Result{Status: StatusInternalError, Body: "indexing error", ContentType: song.MimePlain}
	}
	return Result{Status: StatusOK, Body: "songs reindexed", ContentType: song.MimePlain}
}
