package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/ytget/clipforge/internal/activity"
	"github.com/ytget/clipforge/internal/async"
	"github.com/ytget/clipforge/internal/config"
	"github.com/ytget/clipforge/internal/download"
	"github.com/ytget/clipforge/internal/edit"
	"github.com/ytget/clipforge/internal/extractor"
	"github.com/ytget/clipforge/internal/model"
	"github.com/ytget/clipforge/internal/platform"
)

// Backend is the extraction library together with its browser cookie probe
type Backend interface {
	extractor.Extractor
	platform.BrowserProbe
}

// app holds the state shared by all commands
type app struct {
	loggerCfg  config.Logger
	configPath string
	settings   *config.Settings

	stdout io.Writer
	stderr io.Writer

	newBackend     func(s *config.Settings) Backend
	newEditService func(s *config.Settings) *edit.Service
	newLister      func(s *config.Settings) *extractor.PlaylistLister

	activities atomic.Int64
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		settings: config.NewSettings(),
		stdout:   stdout,
		stderr:   stderr,
		newBackend: func(s *config.Settings) Backend {
			return extractor.NewYTDLP(s.GetCookieProbeURL())
		},
		newEditService: func(s *config.Settings) *edit.Service {
			return edit.NewService(edit.NewFFmpeg(s.GetFFmpegPath()), edit.NewFFprobe(s.GetFFprobePath()))
		},
		newLister: func(s *config.Settings) *extractor.PlaylistLister {
			return extractor.NewPlaylistLister()
		},
	}
}

// downloadService wires the orchestrator for one activity
func (a *app) downloadService(backend Backend, cookies download.CookieSource, reporter download.Reporter) *download.Service {
	resolver := download.NewProfileResolver(backend,
		download.WithFetchTimeout(a.settings.GetFetchTimeout()),
		download.WithMaxCandidates(a.settings.GetMaxCandidates()),
	)
	return download.NewService(backend,
		download.WithCookies(cookies),
		download.WithAccelerator(platform.NewToolProbe(a.settings.GetAccelerator())),
		download.WithProfileResolver(resolver),
		download.WithReporter(reporter),
		download.WithMaxParallel(a.settings.GetMaxParallelDownloads()),
		download.WithOverrides(a.settings.Extractor),
	)
}

// session is the worker side of one activity. It is the download.Reporter
// handed to the orchestrator.
type session struct {
	log *activity.Log
	num int64
}

func (s *session) Log(ctx context.Context, level model.Level, text string) {
	s.log.Log(ctx, level, text)
}

func (s *session) Progress(ctx context.Context, fraction float64) {
	s.log.Progress(ctx, fraction)
}

// tag prefixes a line with the activity number
func (s *session) tag(format string, args ...any) string {
	return fmt.Sprintf("[Activity #%d] ", s.num) + fmt.Sprintf(format, args...)
}

// runActivity dispatches work on a worker goroutine and prints its activity
// log on the calling goroutine until the worker has finished. The final
// "finished" line is always posted.
func (a *app) runActivity(ctx context.Context, work func(ctx context.Context, s *session) error) error {
	s := &session{
		log: activity.New(a.settings.GetActivityBuffer()),
		num: a.activities.Add(1),
	}
	id := model.NewActivityID()
	ctx = activity.WithActivity(ctx, id)
	ctx = ctxlog.With(ctx, ctxlog.From(ctx).With(slog.String("activity", id)))

	started := time.Now()
	werr := goerr.New("worker stopped unexpectedly")
	finished := async.Dispatch(ctx, func(ctx context.Context) error {
		werr = work(ctx, s)
		return nil
	}, func() {
		s.Log(context.WithoutCancel(ctx), model.LevelOK, s.tag("finished (%.1fs)", time.Since(started).Seconds()))
		s.log.Close()
	})

	newPrinter(a.stdout, a.loggerCfg.NoColor).Drain(s.log.Events())
	<-finished
	return werr
}
