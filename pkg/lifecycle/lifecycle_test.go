package lifecycle_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/folio/pkg/lifecycle"
)

type staticCheck bool

func (s staticCheck) Ready() bool { return bool(s) }

func TestNotReadyBeforeStartup(t *testing.T) {
	lc := lifecycle.New()
	if lc.Ready() {
		t.Error("should not be ready before WaitForStartup")
	}
}

func TestReadyAfterStartup(t *testing.T) {
	lc := lifecycle.New()
	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup() error = %v", err)
	}

	if !lc.Ready() {
		t.Error("should be ready after WaitForStartup")
	}
}

func TestStartupHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var count atomic.Int32
	for range 3 {
		lc.OnStartup(func(context.Context) error {
			count.Add(1)
			return nil
		})
	}

	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup() error = %v", err)
	}

	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks: got %d, want 3", got)
	}
}

func TestStartupFailure(t *testing.T) {
	lc := lifecycle.New()
	failure := errors.New("ping refused")

	lc.OnStartup(func(context.Context) error { return nil })
	lc.OnStartup(func(context.Context) error { return failure })

	if err := lc.WaitForStartup(); !errors.Is(err, failure) {
		t.Fatalf("WaitForStartup() error = %v, want %v", err, failure)
	}

	if lc.Ready() {
		t.Error("should not be ready after a failed startup hook")
	}
}

func TestTrackedCheckers(t *testing.T) {
	lc := lifecycle.New()
	lc.Track("database", staticCheck(true))
	lc.Track("storage", staticCheck(false))

	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup() error = %v", err)
	}

	if lc.Ready() {
		t.Error("should not be ready while a tracked checker is not ready")
	}

	status := lc.Status()
	if !status["database"] || status["storage"] {
		t.Errorf("Status() = %v", status)
	}
}

func TestShutdownHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var cleaned atomic.Bool
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		cleaned.Store(true)
	})

	lc.WaitForStartup()

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	if !cleaned.Load() {
		t.Error("shutdown hook did not execute")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		time.Sleep(500 * time.Millisecond)
	})

	err := lc.Shutdown(50 * time.Millisecond)
	if err == nil {
		t.Error("expected timeout error, got nil")
	}
}

func TestStartupContextCancelledOnShutdown(t *testing.T) {
	lc := lifecycle.New()

	var seen atomic.Bool
	lc.OnStartup(func(ctx context.Context) error {
		<-ctx.Done()
		seen.Store(true)
		return ctx.Err()
	})

	if err := lc.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	if err := lc.WaitForStartup(); !errors.Is(err, context.Canceled) {
		t.Errorf("WaitForStartup() error = %v, want context.Canceled", err)
	}
	if !seen.Load() {
		t.Error("startup hook did not observe cancellation")
	}
}
