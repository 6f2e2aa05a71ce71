package async

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
)

// Dispatch executes a handler function asynchronously with proper context and panic recovery
//
// Parameters:
//   - ctx: Original context (values will be preserved, but cancellation won't affect the async handler)
//   - handler: Function to execute asynchronously
//
// Behavior:
//   - Creates a new background context with preserved logger
//   - Executes handler in a new goroutine
//   - Recovers from panics and logs them
//   - Logs errors returned by handler
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	newCtx := newBackgroundContext(ctx)

	go run(newCtx, handler)
}

// Timer is a pending delayed handler created by After
type Timer struct {
	timer   *time.Timer
	ctx     context.Context
	handler func(ctx context.Context) error
	once    sync.Once
}

// After executes handler once after delay, with the same context and panic
// handling as Dispatch. The returned Timer can cancel or expedite the run.
func After(ctx context.Context, delay time.Duration, handler func(ctx context.Context) error) *Timer {
	t := &Timer{
		ctx:     newBackgroundContext(ctx),
		handler: handler,
	}
	t.timer = time.AfterFunc(delay, t.fire)
	return t
}

func (t *Timer) fire() {
	t.once.Do(func() {
		run(t.ctx, t.handler)
	})
}

// Stop cancels the pending run. It returns false if the handler already ran or is running.
func (t *Timer) Stop() bool {
	stopped := false
	t.once.Do(func() {
		stopped = true
	})
	t.timer.Stop()
	return stopped
}

// Flush stops the timer and runs the handler synchronously if it has not run yet
func (t *Timer) Flush() {
	t.timer.Stop()
	t.fire()
}

func run(ctx context.Context, handler func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			logger := ctxlog.From(ctx)
			logger.Error("panic in async handler",
				"recover", r,
				"stack", string(stack))
		}
	}()

	if err := handler(ctx); err != nil {
		logger := ctxlog.From(ctx)
		logger.Error("error in async handler", "error", err)
	}
}

// newBackgroundContext creates a new background context preserving important values
//
// Preserved values:
//   - ctxlog logger
//
// Returns: New context.Background() with preserved values
func newBackgroundContext(ctx context.Context) context.Context {
	newCtx := context.Background()
	newCtx = ctxlog.With(newCtx, ctxlog.From(ctx))
	return newCtx
}
