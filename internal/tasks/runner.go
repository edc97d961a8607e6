// Package tasks is TaskRunner: a fire-and-forget scheduler for background
// work with tracked lifecycle, used by the archive only for background
// entity extraction. It generalizes the bare goroutine spawned in
// pkg/chat/service.go's AddMessage ("Extract memories asynchronously
// (don't block)" with a fmt.Printf on failure) into a runner that tracks
// outstanding work and logs terminal failures through go.uber.org/zap
// instead of stdout, in the spirit of qubicDB's cancellable,
// channel-tracked BrainWorker.
package tasks

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Runner schedules cold async computations, tracking how many are still
// outstanding and logging any that fail or panic. The zero value is not
// usable; construct with New.
type Runner struct {
	logger *zap.Logger

	mu          sync.Mutex
	outstanding int
	closed      bool
	wg          sync.WaitGroup
}

// New creates a Runner. A nil logger is replaced with a no-op logger.
func New(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger}
}

// Submit schedules fn to run on its own goroutine. name identifies the task
// in failure logs. Submitting after Shutdown has been called is a silent
// no-op, matching the archive's "cancellation must not corrupt the stores"
// requirement: nothing new is scheduled once shutdown begins.
func (r *Runner) Submit(ctx context.Context, name string, fn func(context.Context) error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.outstanding++
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			r.outstanding--
			r.mu.Unlock()
		}()

		err := func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("panic: %v", rec)
				}
			}()
			return fn(ctx)
		}()

		if err != nil {
			r.logger.Error("background task failed", zap.String("task", name), zap.Error(err))
		}
	}()
}

// Outstanding reports how many submitted tasks have not yet finished.
func (r *Runner) Outstanding() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outstanding
}

// Shutdown stops accepting new work and waits for outstanding tasks to
// finish, or for ctx to be done, whichever comes first.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
