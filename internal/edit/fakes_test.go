package edit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeRunner struct {
	calls    [][]string
	progress []time.Duration
	err      error
	onRun    func(args []string)
}

func (f *fakeRunner) Run(ctx context.Context, args []string, onProgress func(time.Duration)) error {
	f.calls = append(f.calls, args)
	if f.onRun != nil {
		f.onRun(args)
	}
	if onProgress != nil {
		for _, d := range f.progress {
			onProgress(d)
		}
	}
	out := args[len(args)-1]
	if err := os.WriteFile(out, []byte("out"), 0644); err != nil {
		return err
	}
	return f.err
}

type fakeProber struct {
	duration float64
	err      error
	calls    int
}

func (f *fakeProber) Duration(ctx context.Context, path string) (float64, error) {
	f.calls++
	return f.duration, f.err
}

var errFFmpeg = errors.New("exit status 1")

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("video"), 0644); err != nil {
		t.Fatalf("Failed to create %s: %v", name, err)
	}
	return path
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
