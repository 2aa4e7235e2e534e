package download

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/ytget/clipforge/internal/config"
	"github.com/ytget/clipforge/internal/extractor"
	"github.com/ytget/clipforge/internal/model"
	"github.com/ytget/clipforge/internal/platform"
)

// DefaultMaxParallel is the YouTube multi-URL pool size
const DefaultMaxParallel = 3

// Service handles download operations
type Service struct {
	extractor   extractor.Extractor
	cookies     CookieSource
	accel       Accelerator
	resolver    *ProfileResolver
	reporter    Reporter
	maxParallel int
	overrides   map[string]string
}

// Option configures a Service
type Option func(*Service)

// WithCookies sets the cookie source used when a request asks for cookies
func WithCookies(c CookieSource) Option {
	return func(s *Service) { s.cookies = c }
}

// WithAccelerator sets the external downloader used for YouTube
func WithAccelerator(a Accelerator) Option {
	return func(s *Service) { s.accel = a }
}

// WithProfileResolver enables the TikTok profile fallback
func WithProfileResolver(r *ProfileResolver) Option {
	return func(s *Service) { s.resolver = r }
}

// WithReporter sets the activity sink
func WithReporter(r Reporter) Option {
	return func(s *Service) { s.reporter = r }
}

// WithMaxParallel sets the YouTube multi-URL pool size
func WithMaxParallel(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxParallel = n
		}
	}
}

// WithOverrides sets extractor option overrides applied to every call
func WithOverrides(overrides map[string]string) Option {
	return func(s *Service) { s.overrides = overrides }
}

// NewService creates a new download service
func NewService(ext extractor.Extractor, opts ...Option) *Service {
	s := &Service{
		extractor:   ext,
		reporter:    nopReporter{},
		maxParallel: DefaultMaxParallel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Download validates req and runs it. It never returns an error: failures
// are reported in the result and through the reporter.
func (s *Service) Download(ctx context.Context, req model.DownloadRequest) model.DownloadResult {
	ctx = ctxlog.With(ctx, ctxlog.From(ctx).With(slog.String("platform", string(req.Platform)), slog.String("mode", string(req.Mode))))

	if err := req.Validate(); err != nil {
		s.reporter.Log(ctx, model.LevelErr, err.Error())
		return model.Failed(err)
	}
	if err := platform.CreateDirectoryIfNotExists(req.OutputDir); err != nil {
		s.reporter.Log(ctx, model.LevelErr, fmt.Sprintf("Cannot create output directory: %v", err))
		return model.Failed(err)
	}

	switch req.Platform {
	case model.PlatformTikTok:
		return s.downloadTikTok(ctx, req)
	default:
		return s.downloadYouTube(ctx, req)
	}
}

// RuntimeSummary describes the effective settings of a YouTube request
func (s *Service) RuntimeSummary(ctx context.Context, req model.DownloadRequest) string {
	accel := "off"
	if s.accel != nil && s.accel.Available() {
		accel = "on"
	}
	return fmt.Sprintf("quality=%s | cookies=%s | %s=%s",
		config.ParseQuality(req.Quality), s.cookieOption(ctx, req), s.accelName(), accel)
}

func (s *Service) accelName() string {
	if s.accel == nil || s.accel.Name() == "" {
		return "accelerator"
	}
	return s.accel.Name()
}

func (s *Service) cookieOption(ctx context.Context, req model.DownloadRequest) model.CookieOption {
	if !req.UseCookies || s.cookies == nil {
		return model.NoCookies()
	}
	return s.cookies.Resolve(ctx)
}

// withOverrides applies the configured extractor overrides on top of opts.
// Invalid overrides are logged and ignored as a whole.
func (s *Service) withOverrides(ctx context.Context, opts extractor.Options) extractor.Options {
	if len(s.overrides) == 0 {
		return opts
	}
	trial := opts.Clone()
	if err := trial.Apply(s.overrides); err != nil {
		ctxlog.From(ctx).Warn("ignoring extractor overrides", slog.Any("error", err))
		return opts
	}
	return trial
}

// single runs one download and reports the produced file
func (s *Service) single(ctx context.Context, url string, opts extractor.Options) model.DownloadResult {
	info, err := s.extractor.Download(ctx, url, opts)
	if err == nil && (info == nil || info.Filepath == "") {
		err = goerr.New("no file produced", goerr.V("url", url), goerr.T(model.ErrTagExtraction))
	}
	if err != nil {
		ctxlog.From(ctx).Warn("download failed", slog.String("url", url), slog.Any("error", err))
		s.reporter.Log(ctx, model.LevelErr, "Failed: "+url)
		return model.Failed(err)
	}

	path := info.Filepath
	if found, lerr := platform.LocateOutputFile(path); lerr == nil {
		path = found
	}
	s.reporter.Log(ctx, model.LevelOK, "Done: "+filepath.Base(path))
	return model.DownloadResult{Success: true, Path: path, Succeeded: 1, Total: 1}
}

// collectionResult counts the entries of a profile, channel or playlist run
func collectionResult(info *extractor.Info, err error) model.DownloadResult {
	var res model.DownloadResult
	if info != nil {
		if info.IsCollection {
			res.Total = info.Total()
			res.Succeeded = info.Succeeded()
		} else {
			res.Total = 1
			if info.Downloaded {
				res.Succeeded = 1
			}
		}
	}
	res.Success = info != nil && (err == nil || res.Succeeded > 0)
	if err != nil {
		res.Err = err.Error()
	}
	return res
}

// outputTemplate joins dir and the yt-dlp name template
func outputTemplate(dir string, parts ...string) string {
	return filepath.Join(append([]string{dir}, parts...)...)
}

// titleTemplate is the file name of every download
const titleTemplate = "%(title)s.%(ext)s"
