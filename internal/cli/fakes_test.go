package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ytget/clipforge/internal/config"
	"github.com/ytget/clipforge/internal/edit"
	"github.com/ytget/clipforge/internal/extractor"
)

type fakeBackend struct {
	mu        sync.Mutex
	downloads []string
	probes    []string

	onDownload func(target string, opts extractor.Options) (*extractor.Info, error)
	onProbe    func(target string, opts extractor.Options) (*extractor.Info, error)
}

func (f *fakeBackend) Download(_ context.Context, target string, opts extractor.Options) (*extractor.Info, error) {
	f.mu.Lock()
	f.downloads = append(f.downloads, target)
	f.mu.Unlock()
	if f.onDownload == nil {
		return nil, errors.New("ERROR: unsupported URL")
	}
	return f.onDownload(target, opts)
}

func (f *fakeBackend) Probe(_ context.Context, target string, opts extractor.Options) (*extractor.Info, error) {
	f.mu.Lock()
	f.probes = append(f.probes, target)
	f.mu.Unlock()
	if f.onProbe == nil {
		return &extractor.Info{}, nil
	}
	return f.onProbe(target, opts)
}

func (f *fakeBackend) ProbeBrowser(context.Context, string) error {
	return errors.New("no browser cookies")
}

type fakeRunner struct {
	calls [][]string
	err   error
}

func (f *fakeRunner) Run(_ context.Context, args []string, onProgress func(time.Duration)) error {
	f.calls = append(f.calls, args)
	if onProgress != nil {
		onProgress(time.Second)
	}
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(args[len(args)-1], []byte("out"), 0644)
}

type fakeProber struct {
	duration float64
}

func (f fakeProber) Duration(context.Context, string) (float64, error) {
	return f.duration, nil
}

type fakeSource struct {
	items []extractor.PlaylistItem
}

func (f fakeSource) PlaylistItems(context.Context, string) ([]extractor.PlaylistItem, error) {
	return f.items, nil
}

type testApp struct {
	*app
	backend *fakeBackend
	runner  *fakeRunner
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ta := &testApp{
		backend: &fakeBackend{},
		runner:  &fakeRunner{},
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
	}
	ta.app = newApp(ta.stdout, ta.stderr)
	ta.newBackend = func(*config.Settings) Backend { return ta.backend }
	ta.newEditService = func(*config.Settings) *edit.Service {
		return edit.NewService(ta.runner, fakeProber{duration: 10})
	}
	return ta
}

func (ta *testApp) run(args ...string) error {
	return ta.app.run(context.Background(), append([]string{"clipforge", "--no-color"}, args...), "test")
}
