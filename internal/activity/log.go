// Package activity carries log lines and progress updates from workers to
// the single consumer that prints them.
package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/ytget/clipforge/internal/model"
)

// DefaultBufferSize is the channel capacity when none is given
const DefaultBufferSize = 256

type ctxKey struct{}

// WithActivity attaches an activity ID to ctx
func WithActivity(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// ActivityFrom returns the activity ID carried by ctx, or ""
func ActivityFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Log is a bounded multi-producer, single-consumer activity channel.
//
// Progress updates are dropped when the buffer is full. Log lines wait for
// room until ctx is done or the Log is closed. Posting after Close is a
// no-op.
type Log struct {
	ch   chan model.Event
	done chan struct{}
	now  func() time.Time

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

// New creates an activity log buffering up to size events
func New(size int) *Log {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Log{
		ch:   make(chan model.Event, size),
		done: make(chan struct{}),
		now:  time.Now,
	}
}

// Events returns the receive side. It is closed by Close.
func (l *Log) Events() <-chan model.Event {
	return l.ch
}

// Log posts a line and mirrors it to the logger carried by ctx
func (l *Log) Log(ctx context.Context, level model.Level, text string) {
	id := ActivityFrom(ctx)
	logger := ctxlog.From(ctx)
	if level == model.LevelErr {
		logger.Warn(text, slog.String("activity", id))
	} else {
		logger.Debug(text, slog.String("activity", id))
	}

	l.post(ctx, model.Event{Time: l.now(), Level: level, Activity: id, Text: text}, true)
}

// Progress posts a fraction in [0,1]; it is dropped when the buffer is full
func (l *Log) Progress(ctx context.Context, fraction float64) {
	fraction = max(0, min(1, fraction))
	l.post(ctx, model.Event{Time: l.now(), Level: model.LevelInfo, Activity: ActivityFrom(ctx), Progress: &fraction}, false)
}

// Post sends a prepared event. Progress events never wait.
func (l *Log) Post(ctx context.Context, ev model.Event) bool {
	if ev.Time.IsZero() {
		ev.Time = l.now()
	}
	return l.post(ctx, ev, !ev.IsProgress())
}

func (l *Log) post(ctx context.Context, ev model.Event, wait bool) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return false
	}

	if !wait {
		select {
		case l.ch <- ev:
			return true
		default:
			return false
		}
	}

	select {
	case l.ch <- ev:
		return true
	case <-ctx.Done():
		return false
	case <-l.done:
		return false
	}
}

// Close stops accepting events and closes the channel. Events already
// buffered can still be received. Close may be called more than once.
func (l *Log) Close() {
	l.once.Do(func() {
		close(l.done)
		l.mu.Lock()
		l.closed = true
		close(l.ch)
		l.mu.Unlock()
	})
}
