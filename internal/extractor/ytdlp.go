package extractor

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/ytget/clipforge/internal/model"
)

// Adapter constants
const (
	ProgressInterval  = 500 * time.Millisecond
	MaxErrorLineBytes = 512
	errorLinePrefix   = "ERROR:"
	browserProbeItems = "1"
)

// YTDLP implements Extractor with github.com/lrstanley/go-ytdlp
type YTDLP struct {
	probeURL string
}

// NewYTDLP creates the adapter. probeURL is the page loaded when checking a
// browser cookie store.
func NewYTDLP(probeURL string) *YTDLP {
	return &YTDLP{probeURL: probeURL}
}

// Download runs yt-dlp with downloading enabled
func (y *YTDLP) Download(ctx context.Context, target string, opts Options) (*Info, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	dl := buildCommand(opts).DumpSingleJSON().NoSimulate()
	if opts.Progress != nil {
		progress := opts.Progress
		dl.ProgressFunc(ProgressInterval, func(update ytdlp.ProgressUpdate) {
			progress(toProgressEvent(&update))
		})
	}

	ctxlog.From(ctx).Debug("starting extraction", slog.String("target", target), slog.String("format", opts.Format))
	res, err := dl.Run(ctx, target)
	return finish(ctx, target, res, err)
}

// Probe runs yt-dlp without downloading
func (y *YTDLP) Probe(ctx context.Context, target string, opts Options) (*Info, error) {
	opts.Progress = nil
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	res, err := buildCommand(opts).DumpSingleJSON().SkipDownload().Run(ctx, target)
	return finish(ctx, target, res, err)
}

// ProbeBrowser checks that yt-dlp can load the cookie store of browser
func (y *YTDLP) ProbeBrowser(ctx context.Context, browser string) error {
	_, err := ytdlp.New().
		Quiet().
		NoWarnings().
		CookiesFromBrowser(browser).
		SkipDownload().
		FlatPlaylist().
		PlaylistItems(browserProbeItems).
		Run(ctx, y.probeURL)
	if err != nil {
		return goerr.Wrap(err, "browser cookie store unavailable", goerr.V("browser", browser))
	}
	return nil
}

// buildCommand translates options onto the command builder
func buildCommand(o Options) *ytdlp.Command {
	dl := ytdlp.New()

	if o.Format != "" {
		dl.Format(o.Format)
	}
	if o.OutputTemplate != "" {
		dl.Output(o.OutputTemplate)
	}
	if o.Quiet {
		dl.Quiet()
	}
	if o.NoWarnings {
		dl.NoWarnings()
	}
	if o.IgnoreErrors {
		dl.IgnoreErrors()
	}
	if o.MergeOutputFormat != "" {
		dl.MergeOutputFormat(o.MergeOutputFormat)
	}
	if o.NoCheckCertificates {
		dl.NoCheckCertificates()
	}
	if o.Retries > 0 {
		dl.Retries(strconv.Itoa(o.Retries))
	}
	if o.FragmentRetries > 0 {
		dl.FragmentRetries(strconv.Itoa(o.FragmentRetries))
	}
	if o.HTTPChunkSize > 0 {
		dl.HTTPChunkSize(strconv.FormatInt(o.HTTPChunkSize, 10))
	}
	if o.SocketTimeout > 0 {
		dl.SocketTimeout(o.SocketTimeout.Seconds())
	}
	if o.ConcurrentFragments > 0 {
		dl.ConcurrentFragments(o.ConcurrentFragments)
	}
	if len(o.FormatSort) > 0 {
		dl.FormatSort(strings.Join(o.FormatSort, ","))
	}
	if o.ExternalDownloader != "" {
		dl.Downloader(o.ExternalDownloader)
		if len(o.ExternalDownloaderArgs) > 0 {
			dl.DownloaderArgs(o.ExternalDownloader + ":" + strings.Join(o.ExternalDownloaderArgs, " "))
		}
	}
	if o.PlaylistEnd > 0 {
		dl.PlaylistItems("1:" + strconv.Itoa(o.PlaylistEnd))
	}
	if o.ExtractorArgs != "" {
		dl.ExtractorArgs(o.ExtractorArgs)
	}
	if o.ExtractAudio {
		dl.ExtractAudio()
		if o.AudioFormat != "" {
			dl.AudioFormat(o.AudioFormat)
		}
		if o.AudioQuality != "" {
			dl.AudioQuality(o.AudioQuality)
		}
	}
	if o.Continue {
		dl.Continue()
	}
	if o.FlatPlaylist {
		dl.FlatPlaylist()
	}

	switch o.Cookies.Kind {
	case model.CookieFile:
		dl.Cookies(o.Cookies.Path)
	case model.CookieBrowser:
		dl.CookiesFromBrowser(o.Cookies.Browser)
	}

	return dl
}

// finish parses the metadata document and turns a failed run into a tagged
// error carrying yt-dlp's last error line
func finish(ctx context.Context, target string, res *ytdlp.Result, runErr error) (*Info, error) {
	var info *Info
	var stderr string
	if res != nil {
		info, _ = ParseInfo(res.Stdout)
		stderr = res.Stderr
	}

	if runErr == nil {
		if info == nil {
			return nil, goerr.New("extraction produced no metadata", goerr.V("target", target), goerr.T(model.ErrTagExtraction))
		}
		return info, nil
	}

	if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) || ctx.Err() != nil {
		return info, goerr.Wrap(runErr, "extraction cancelled", goerr.V("target", target))
	}

	msg := "extraction failed"
	if line := LastErrorLine(stderr); line != "" {
		msg += ": " + line
	}
	return info, goerr.Wrap(runErr, msg, goerr.V("target", target), goerr.T(model.ErrTagExtraction))
}

// LastErrorLine returns the last "ERROR:" line of stderr, or its last
// non-empty line, truncated to MaxErrorLineBytes
func LastErrorLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	picked := ""
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if picked == "" {
			picked = line
		}
		if strings.HasPrefix(line, errorLinePrefix) {
			picked = line
			break
		}
	}
	if len(picked) > MaxErrorLineBytes {
		picked = picked[:MaxErrorLineBytes]
	}
	return picked
}

func toProgressEvent(u *ytdlp.ProgressUpdate) model.ProgressEvent {
	ev := model.ProgressEvent{
		Stage:           model.ParseProgressStage(string(u.Status)),
		TotalBytes:      int64(u.TotalBytes),
		DownloadedBytes: int64(u.DownloadedBytes),
		Filename:        u.Filename,
	}
	if u.Info != nil && u.Info.Title != nil {
		ev.Title = *u.Info.Title
	}
	return ev
}
