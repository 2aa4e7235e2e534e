package download

import (
	"context"
	"sync"

	"github.com/ytget/clipforge/internal/extractor"
	"github.com/ytget/clipforge/internal/model"
)

type extractorCall struct {
	target string
	opts   extractor.Options
}

type extractorFunc func(target string, opts extractor.Options) (*extractor.Info, error)

type fakeExtractor struct {
	mu        sync.Mutex
	downloads []extractorCall
	probes    []extractorCall

	onDownload extractorFunc
	onProbe    extractorFunc
}

func (f *fakeExtractor) Download(_ context.Context, target string, opts extractor.Options) (*extractor.Info, error) {
	f.mu.Lock()
	f.downloads = append(f.downloads, extractorCall{target: target, opts: opts})
	fn := f.onDownload
	f.mu.Unlock()
	if fn == nil {
		return &extractor.Info{Filepath: target}, nil
	}
	return fn(target, opts)
}

func (f *fakeExtractor) Probe(_ context.Context, target string, opts extractor.Options) (*extractor.Info, error) {
	f.mu.Lock()
	f.probes = append(f.probes, extractorCall{target: target, opts: opts})
	fn := f.onProbe
	f.mu.Unlock()
	if fn == nil {
		return &extractor.Info{}, nil
	}
	return fn(target, opts)
}

func (f *fakeExtractor) downloadTargets() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.downloads))
	for _, c := range f.downloads {
		out = append(out, c.target)
	}
	return out
}

type reportedLine struct {
	level model.Level
	text  string
}

type recordingReporter struct {
	mu       sync.Mutex
	lines    []reportedLine
	progress []float64
}

func (r *recordingReporter) Log(_ context.Context, level model.Level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, reportedLine{level: level, text: text})
}

func (r *recordingReporter) Progress(_ context.Context, fraction float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, fraction)
}

func (r *recordingReporter) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.lines))
	for _, l := range r.lines {
		out = append(out, l.text)
	}
	return out
}

type staticCookies model.CookieOption

func (c staticCookies) Resolve(context.Context) model.CookieOption {
	return model.CookieOption(c)
}

type fakeAccel struct {
	available bool
}

func (a fakeAccel) Name() string             { return "aria2c" }
func (a fakeAccel) Available() bool          { return a.available }
func (a fakeAccel) DownloaderArgs() []string { return []string{"--split=16"} }
