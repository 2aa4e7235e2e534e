package download

import (
	"context"

	"github.com/ytget/clipforge/internal/model"
)

// Downloader runs one validated download request
type Downloader interface {
	Download(ctx context.Context, req model.DownloadRequest) model.DownloadResult
}

// Reporter receives log lines and progress fractions of a running download
type Reporter interface {
	Log(ctx context.Context, level model.Level, text string)
	Progress(ctx context.Context, fraction float64)
}

// CookieSource returns the cookie option for extraction calls
type CookieSource interface {
	Resolve(ctx context.Context) model.CookieOption
}

// Accelerator describes an optional external downloader
type Accelerator interface {
	Name() string
	Available() bool
	DownloaderArgs() []string
}

type nopReporter struct{}

func (nopReporter) Log(context.Context, model.Level, string) {}
func (nopReporter) Progress(context.Context, float64)        {}
