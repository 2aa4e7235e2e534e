package activity_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/ytget/clipforge/internal/activity"
	"github.com/ytget/clipforge/internal/model"
)

func TestLog_DeliversInOrder(t *testing.T) {
	l := activity.New(8)
	ctx := activity.WithActivity(context.Background(), "act-1")

	l.Log(ctx, model.LevelInfo, "start")
	l.Progress(ctx, 0.5)
	l.Log(ctx, model.LevelOK, "done")
	l.Close()

	var events []model.Event
	for ev := range l.Events() {
		events = append(events, ev)
	}

	gt.Equal(t, len(events), 3)
	gt.Equal(t, events[0].Text, "start")
	gt.Equal(t, events[0].Activity, "act-1")
	gt.True(t, events[1].IsProgress())
	gt.Equal(t, *events[1].Progress, 0.5)
	gt.Equal(t, events[2].Level, model.LevelOK)
	gt.True(t, !events[2].Time.IsZero())
}

func TestLog_ProgressDroppedWhenFull(t *testing.T) {
	l := activity.New(1)
	ctx := context.Background()

	l.Progress(ctx, 0.1)
	l.Progress(ctx, 0.2)
	l.Progress(ctx, 2)

	ev := <-l.Events()
	gt.Equal(t, *ev.Progress, 0.1)
	select {
	case ev := <-l.Events():
		t.Fatalf("unexpected event %+v", ev)
	default:
	}

	l.Progress(ctx, 2)
	ev = <-l.Events()
	gt.Equal(t, *ev.Progress, 1.0)
}

func TestLog_LinesWaitForRoom(t *testing.T) {
	l := activity.New(1)
	ctx := context.Background()
	l.Log(ctx, model.LevelInfo, "first")

	posted := make(chan struct{})
	go func() {
		l.Log(ctx, model.LevelInfo, "second")
		close(posted)
	}()

	select {
	case <-posted:
		t.Fatal("line was posted into a full buffer")
	case <-time.After(50 * time.Millisecond):
	}

	gt.Equal(t, (<-l.Events()).Text, "first")
	<-posted
	gt.Equal(t, (<-l.Events()).Text, "second")
}

func TestLog_WaitBoundedByContext(t *testing.T) {
	l := activity.New(1)
	l.Log(context.Background(), model.LevelInfo, "fill")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ok := l.Post(ctx, model.Event{Level: model.LevelInfo, Text: "late"})
	gt.True(t, !ok)
}

func TestLog_CloseSafe(t *testing.T) {
	l := activity.New(1)
	ctx := context.Background()
	l.Log(ctx, model.LevelInfo, "fill")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.Log(ctx, model.LevelInfo, "blocked")
	}()

	time.Sleep(20 * time.Millisecond)
	l.Close()
	wg.Wait()
	l.Close()

	gt.True(t, !l.Post(ctx, model.Event{Text: "after close"}))
	l.Progress(ctx, 0.5)

	var texts []string
	for ev := range l.Events() {
		texts = append(texts, ev.Text)
	}
	gt.Equal(t, len(texts), 1)
	gt.Equal(t, texts[0], "fill")
}

func TestActivityFrom(t *testing.T) {
	gt.Equal(t, activity.ActivityFrom(context.Background()), "")
	ctx := activity.WithActivity(context.Background(), "act-x")
	gt.Equal(t, activity.ActivityFrom(ctx), "act-x")
}
