package download

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/ytget/clipforge/internal/model"
)

// progressStep is the percentage granularity of progress log lines
const progressStep = 10

// progressTracker forwards extractor progress to a Reporter. It emits a log
// line each time the download crosses a new 10% step.
type progressTracker struct {
	ctx      context.Context
	reporter Reporter
	perFile  bool

	mu       sync.Mutex
	lastStep int
}

func newProgressTracker(ctx context.Context, reporter Reporter, perFile bool) *progressTracker {
	return &progressTracker{ctx: ctx, reporter: reporter, perFile: perFile, lastStep: -1}
}

func (t *progressTracker) observe(ev model.ProgressEvent) {
	switch ev.Stage {
	case model.ProgressStageDownloading:
		if ev.TotalBytes <= 0 {
			return
		}
		t.reporter.Progress(t.ctx, ev.Fraction())
		pct := ev.Percent()

		t.mu.Lock()
		step := pct / progressStep
		crossed := step > t.lastStep
		if crossed {
			t.lastStep = step
		}
		t.mu.Unlock()

		if crossed {
			t.reporter.Log(t.ctx, model.LevelInfo, fmt.Sprintf("Download progress: %d%%", pct))
		}

	case model.ProgressStageFinished:
		t.reporter.Progress(t.ctx, 1)
		if t.perFile && ev.Filename != "" {
			t.reporter.Log(t.ctx, model.LevelOK, "✓ "+filepath.Base(ev.Filename))
		}
	}
}
