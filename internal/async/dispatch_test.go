package async_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	"github.com/ytget/clipforge/internal/async"
)

// safeBuffer is a thread-safe buffer for concurrent logging
type safeBuffer struct {
	b bytes.Buffer
	m sync.Mutex
}

func (sb *safeBuffer) Write(p []byte) (int, error) {
	sb.m.Lock()
	defer sb.m.Unlock()
	return sb.b.Write(p)
}

func (sb *safeBuffer) String() string {
	sb.m.Lock()
	defer sb.m.Unlock()
	return sb.b.String()
}

func wait(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("handler did not complete within timeout")
	}
}

func TestDispatch(t *testing.T) {
	t.Run("executes handler and done hook", func(t *testing.T) {
		var executed, hooked atomic.Bool

		finished := async.Dispatch(context.Background(), func(ctx context.Context) error {
			executed.Store(true)
			return nil
		}, func() {
			hooked.Store(true)
		})

		wait(t, finished)
		gt.True(t, executed.Load())
		gt.True(t, hooked.Load())
	})

	t.Run("logs returned errors", func(t *testing.T) {
		buf := &safeBuffer{}
		ctx := ctxlog.With(context.Background(), slog.New(slog.NewTextHandler(buf, nil)))

		finished := async.Dispatch(ctx, func(ctx context.Context) error {
			return errors.New("test error")
		}, nil)

		wait(t, finished)
		gt.String(t, buf.String()).Contains("error in async handler")
		gt.String(t, buf.String()).Contains("test error")
	})

	t.Run("recovers from panic and still runs done hook", func(t *testing.T) {
		buf := &safeBuffer{}
		ctx := ctxlog.With(context.Background(), slog.New(slog.NewTextHandler(buf, nil)))
		var hooked atomic.Bool

		finished := async.Dispatch(ctx, func(ctx context.Context) error {
			panic("test panic with stack")
		}, func() {
			hooked.Store(true)
		})

		wait(t, finished)
		gt.True(t, hooked.Load())
		gt.String(t, buf.String()).Contains("panic in async handler")
		gt.String(t, buf.String()).Contains("test panic with stack")
		gt.String(t, buf.String()).Contains("goroutine")
	})

	t.Run("propagates cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		started := make(chan struct{})
		var sawCancel atomic.Bool

		finished := async.Dispatch(ctx, func(ctx context.Context) error {
			close(started)
			select {
			case <-ctx.Done():
				sawCancel.Store(true)
			case <-time.After(time.Second):
			}
			return ctx.Err()
		}, nil)

		<-started
		cancel()
		wait(t, finished)
		gt.True(t, sawCancel.Load())
	})

	t.Run("preserves logger", func(t *testing.T) {
		ctx := ctxlog.With(context.Background(), slog.Default())

		finished := async.Dispatch(ctx, func(ctx context.Context) error {
			gt.NotNil(t, ctxlog.From(ctx))
			return nil
		}, nil)

		wait(t, finished)
	})
}
