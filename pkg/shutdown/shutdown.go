// Package shutdown ties process lifetime to SIGINT/SIGTERM.
package shutdown

import (
	"context"
	"os/signal"
	"syscall"
)

// Context returns a context canceled on SIGINT or SIGTERM, plus the stop
// func releasing the signal handler.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
