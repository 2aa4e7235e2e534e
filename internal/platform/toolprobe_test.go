package platform

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
)

func TestToolProbe_LooksUpOnce(t *testing.T) {
	calls := 0
	p := NewToolProbe("aria2c")
	p.lookPath = func(name string) (string, error) {
		calls++
		return "/usr/bin/" + name, nil
	}

	gt.True(t, p.Available())
	gt.True(t, p.Available())
	gt.Equal(t, p.Path(), "/usr/bin/aria2c")
	gt.Equal(t, calls, 1)
	gt.Equal(t, len(p.DownloaderArgs()), 4)
	gt.Equal(t, p.DownloaderArgs()[3], "--split=16")
}

func TestToolProbe_Missing(t *testing.T) {
	p := NewToolProbe("aria2c")
	p.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	gt.Equal(t, p.Available(), false)
	gt.Equal(t, p.Path(), "")
}

func TestToolProbe_EmptyName(t *testing.T) {
	p := NewToolProbe("")
	gt.Equal(t, p.Available(), false)
	gt.Equal(t, len(p.DownloaderArgs()), 0)
}
