package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
)

// Dispatch executes a handler function asynchronously with panic recovery.
//
// The handler receives ctx unchanged, so cancelling ctx (for example on
// SIGINT) reaches the running worker. Errors returned by the handler and
// recovered panics are logged with the logger carried by ctx. done, when
// non-nil, runs after the handler in every case, including a panic. The
// returned channel is closed after done has returned.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error, done func()) <-chan struct{} {
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		defer func() {
			if done != nil {
				done()
			}
		}()
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
	}()

	return finished
}
