package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSubmitRunsAndTracksOutstanding(t *testing.T) {
	r := New(zap.NewNop())
	var wg sync.WaitGroup
	wg.Add(1)

	r.Submit(context.Background(), "ok", func(ctx context.Context) error {
		defer wg.Done()
		return nil
	})
	wg.Wait()

	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if r.Outstanding() != 0 {
		t.Fatalf("expected 0 outstanding after shutdown, got %d", r.Outstanding())
	}
}

func TestSubmitLogsTerminalFailure(t *testing.T) {
	core, observed := observer.New(zap.ErrorLevel)
	logger := zap.New(core)
	r := New(logger)

	done := make(chan struct{})
	r.Submit(context.Background(), "boom", func(ctx context.Context) error {
		defer close(done)
		return errors.New("extraction failed")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run in time")
	}
	_ = r.Shutdown(context.Background())

	if observed.Len() != 1 {
		t.Fatalf("expected exactly one logged failure, got %d", observed.Len())
	}
}

func TestSubmitRecoversPanic(t *testing.T) {
	core, observed := observer.New(zap.ErrorLevel)
	logger := zap.New(core)
	r := New(logger)

	done := make(chan struct{})
	r.Submit(context.Background(), "panics", func(ctx context.Context) error {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run in time")
	}
	_ = r.Shutdown(context.Background())

	if observed.Len() != 1 {
		t.Fatalf("expected panic to be logged as a failure, got %d entries", observed.Len())
	}
}

func TestSubmitAfterShutdownIsNoop(t *testing.T) {
	r := New(zap.NewNop())
	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	ran := false
	r.Submit(context.Background(), "late", func(ctx context.Context) error {
		ran = true
		return nil
	})
	time.Sleep(10 * time.Millisecond)
	if ran {
		t.Fatal("expected task submitted after shutdown not to run")
	}
}
