package tsync

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrorGroupWithContext returns an ErrorGroup and a context that is canceled
// once Wait returns.
func ErrorGroupWithContext(ctx context.Context) (*ErrorGroup, context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	return &ErrorGroup{cancel: cancel}, ctx
}

// ErrorGroup runs functions concurrently and collects every error instead of
// stopping at the first one like errgroup does.
type ErrorGroup struct {
	eg     errgroup.Group
	cancel context.CancelFunc

	mu     sync.Mutex
	errors []error
}

func (g *ErrorGroup) Go(fn func() error) {
	g.eg.Go(func() error {
		if err := fn(); err != nil {
			g.mu.Lock()
			defer g.mu.Unlock()
			g.errors = append(g.errors, err)
		}
		return nil
	})
}

// Wait blocks until all started functions have returned and reports the
// collected errors joined into one.
func (g *ErrorGroup) Wait() error {
	_ = g.eg.Wait()
	if g.cancel != nil {
		g.cancel()
	}
	return errors.Join(g.errors...)
}
