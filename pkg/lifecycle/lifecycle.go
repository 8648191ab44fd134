// Package lifecycle coordinates subsystem startup, readiness, and shutdown.
package lifecycle

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// ReadinessChecker reports whether a subsystem is ready to serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// Hook is a startup task. It receives the coordinator context, which is
// cancelled on shutdown.
type Hook func(ctx context.Context) error

// Coordinator runs startup hooks concurrently, tracks named readiness
// checkers, and fans out shutdown once its context is cancelled.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	startup  errgroup.Group
	shutdown sync.WaitGroup

	started atomic.Bool
	err     error

	mu     sync.RWMutex
	checks map[string]ReadinessChecker
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
		checks: make(map[string]ReadinessChecker),
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup registers a hook to run concurrently during startup.
func (c *Coordinator) OnStartup(fn Hook) {
	c.startup.Go(func() error {
		return fn(c.ctx)
	})
}

// OnShutdown registers a function to run concurrently during shutdown.
// Shutdown hooks should block on <-c.Context().Done() before executing cleanup.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdown.Go(fn)
}

// Track adds a named readiness checker consulted by Ready and Status.
func (c *Coordinator) Track(name string, checker ReadinessChecker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = checker
}

// WaitForStartup blocks until every startup hook has returned and reports
// the first hook failure.
func (c *Coordinator) WaitForStartup() error {
	c.err = c.startup.Wait()
	c.started.Store(true)
	return c.err
}

// Ready reports true once startup completed without error and every
// tracked checker is ready.
func (c *Coordinator) Ready() bool {
	if !c.started.Load() || c.err != nil {
		return false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, check := range c.checks {
		if !check.Ready() {
			return false
		}
	}
	return true
}

// Status returns the readiness of each tracked checker by name.
func (c *Coordinator) Status() map[string]bool {
	c.mu.RLock()
	checks := maps.Clone(c.checks)
	c.mu.RUnlock()

	status := make(map[string]bool, len(checks))
	for name, check := range checks {
		status[name] = check.Ready()
	}
	return status
}

// Shutdown cancels the context and waits for shutdown hooks to complete
// within the given timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdown.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
