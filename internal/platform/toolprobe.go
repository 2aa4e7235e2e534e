package platform

import (
	"os/exec"
	"sync"
)

// Aria2cArgs are passed to aria2c when it is used as the external downloader
var Aria2cArgs = []string{
	"--min-split-size=1M",
	"--max-connection-per-server=16",
	"--max-concurrent-downloads=16",
	"--split=16",
}

// ToolProbe reports whether an executable is on PATH. The lookup runs once.
type ToolProbe struct {
	name     string
	lookPath func(string) (string, error)

	once sync.Once
	path string
}

// NewToolProbe creates a probe for the named executable
func NewToolProbe(name string) *ToolProbe {
	return &ToolProbe{name: name, lookPath: exec.LookPath}
}

// Name returns the probed executable name
func (p *ToolProbe) Name() string {
	return p.name
}

// Available reports whether the executable was found
func (p *ToolProbe) Available() bool {
	return p.Path() != ""
}

// Path returns the resolved executable path, or "" when absent
func (p *ToolProbe) Path() string {
	p.once.Do(func() {
		if p.name == "" {
			return
		}
		if path, err := p.lookPath(p.name); err == nil {
			p.path = path
		}
	})
	return p.path
}

// DownloaderArgs returns the arguments for the probed downloader
func (p *ToolProbe) DownloaderArgs() []string {
	if p.name == "aria2c" {
		return Aria2cArgs
	}
	return nil
}
