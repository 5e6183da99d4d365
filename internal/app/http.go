package app

import (
	"context"
	"net/http"
	"time"

	"songbook/pkg/api"
	"songbook/pkg/auth"
	"songbook/pkg/banner"
	"songbook/pkg/logger"
	"songbook/pkg/telemetry"
)

// printBanner prints the startup banner and build info.
func (a *App) printBanner() {
	banner.Print(a.cfg, a.version, a.keys.PendingActivation())
}

// startHTTP builds the handler chain, starts the HTTP server in a
// goroutine and returns a channel that will carry any server error.
func (a *App) startHTTP(_ context.Context) <-chan error {
	handler := api.Router(a.engine, a.keys, a.cfg.Storage.WebRoot, a.ready)

	secCfg := auth.Config{
		RPS:   a.cfg.Security.RateLimit.RPS,
		Burst: a.cfg.Security.RateLimit.Burst,
	}
	wrapped := auth.Middleware(secCfg)(handler)
	wrapped = telemetry.Middleware(wrapped)

	a.srv = &http.Server{Addr: a.cfg.Addr(), Handler: wrapped}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listening", "addr", a.cfg.Addr())
		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// stopHTTP drains in-flight requests before returning.
func (a *App) stopHTTP() {
	if a.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(ctx); err != nil {
		logger.Warn("http_shutdown_incomplete", "error", err)
	}
}
