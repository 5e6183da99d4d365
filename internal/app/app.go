package app

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"songbook/internal/reindex"
	"songbook/pkg/cache"
	"songbook/pkg/config"
	"songbook/pkg/engine"
	"songbook/pkg/index"
	"songbook/pkg/keys"
	"songbook/pkg/logger"
	"songbook/pkg/store"
)

// App encapsulates the server components and lifecycle.
type App struct {
	cfg     *config.Config
	version string

	store  *store.Store
	index  *index.Index
	cache  *cache.Cache
	keys   *keys.Keyring
	engine *engine.Engine

	srv *http.Server
}

// New initializes the data root, capability keys, document store, search
// index and engine. It does not start the HTTP server; call Run to start
// it and block until shutdown.
func New(cfg *config.Config, version string) (*App, error) {
	if err := os.MkdirAll(cfg.Storage.DataRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create data root %s: %w", cfg.Storage.DataRoot, err)
	}

	kr, err := keys.Load(cfg.Storage.DataRoot)
	if err != nil {
		return nil, fmt.Errorf("load capability keys: %w", err)
	}

	st, err := store.Open(cfg.SongsPath())
	if err != nil {
		return nil, err
	}

	ix, err := index.Open(cfg.IndexPath())
	if err != nil {
		return nil, err
	}

	ca := cache.New()
	return &App{
		cfg:     cfg,
		version: version,
		store:   st,
		index:   ix,
		cache:   ca,
		keys:    kr,
		engine:  engine.New(st, ix, ca, kr),
	}, nil
}

// Engine exposes the lifecycle coordinator, mainly for tests.
func (a *App) Engine() *engine.Engine { return a.engine }

// Keys exposes the keyring, mainly for tests.
func (a *App) Keys() *keys.Keyring { return a.keys }

// Run starts the optional scheduled reindex and the HTTP server, and
// blocks until ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	a.printBanner()

	stopReindex, err := reindex.Start(ctx, a.cfg.Index.RebuildCron, a.reindexNow)
	if err != nil {
		return err
	}
	defer stopReindex()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		a.stopHTTP()
		return a.Close()
	case err := <-errCh:
		_ = a.Close()
		return err
	}
}

// Close releases the search index.
func (a *App) Close() error {
	return a.index.Close()
}

// reindexNow drops the cache and rebuilds the index from the store, the
// same sequence the admin reset runs.
func (a *App) reindexNow() error {
	a.cache.Clear()
	if err := a.index.RebuildAll(a.store); err != nil {
		logger.Error("scheduled_reindex_failed", "error", err)
		return err
	}
	return nil
}

// ready reports whether the backing stores answer; used by /readyz.
func (a *App) ready() bool {
	if _, err := a.store.List(); err != nil {
		return false
	}
	if _, err := a.index.DocCount(); err != nil {
		return false
	}
	return true
}
