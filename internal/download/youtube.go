package download

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/m-mizutani/ctxlog"
	"github.com/ytget/clipforge/internal/config"
	"github.com/ytget/clipforge/internal/model"
	"github.com/ytget/clipforge/internal/platform"
	"golang.org/x/sync/errgroup"
)

func (s *Service) downloadYouTube(ctx context.Context, req model.DownloadRequest) model.DownloadResult {
	quality := config.ParseQuality(req.Quality)
	cookies := s.cookieOption(ctx, req)

	switch req.Mode {
	case model.ModeMulti:
		return s.youtubeMulti(ctx, req, quality, cookies)
	case model.ModePlaylist:
		return s.youtubePlaylist(ctx, req, quality, cookies)
	case model.ModeChannel:
		return s.youtubeChannel(ctx, req, quality, cookies)
	default:
		url := req.TrimmedURLs()[0]
		s.reporter.Log(ctx, model.LevelInfo, fmt.Sprintf("[YouTube] Downloading (%s): %s", quality, url))
		tracker := newProgressTracker(ctx, s.reporter, false)
		return s.single(ctx, url, s.youtubeOptions(ctx, req.OutputDir, quality, cookies, tracker.observe))
	}
}

// youtubeMulti downloads the URLs on a bounded pool. Total is always the
// number of submitted URLs.
func (s *Service) youtubeMulti(ctx context.Context, req model.DownloadRequest, quality config.QualityPreset, cookies model.CookieOption) model.DownloadResult {
	urls := req.TrimmedURLs()
	s.reporter.Log(ctx, model.LevelInfo, fmt.Sprintf("[YouTube] Downloading %d URL(s) (%s)...", len(urls), quality))

	opts := s.youtubeOptions(ctx, req.OutputDir, quality, cookies, nil)

	var ok atomic.Int32
	var g errgroup.Group
	g.SetLimit(s.maxParallel)
	for _, u := range urls {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			o := opts.Clone()
			o.Progress = newProgressTracker(ctx, s.reporter, false).observe
			if r := s.single(ctx, u, o); r.Success {
				ok.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	res := model.DownloadResult{Succeeded: int(ok.Load()), Total: len(urls)}
	res.Success = res.Succeeded > 0
	s.reporter.Log(ctx, levelOf(res.Success), fmt.Sprintf("Finished: %d/%d videos.", res.Succeeded, res.Total))
	return res
}

func (s *Service) youtubePlaylist(ctx context.Context, req model.DownloadRequest, quality config.QualityPreset, cookies model.CookieOption) model.DownloadResult {
	url := req.TrimmedURLs()[0]
	s.reporter.Log(ctx, model.LevelInfo, fmt.Sprintf("[YouTube] Downloading playlist (%s): %s", quality, url))

	res := s.collection(ctx, url, req.OutputDir, req.MaxItems, quality, cookies)
	s.reporter.Log(ctx, levelOf(res.Succeeded > 0), fmt.Sprintf("Playlist finished: %d/%d videos.", res.Succeeded, res.Total))
	return res
}

func (s *Service) youtubeChannel(ctx context.Context, req model.DownloadRequest, quality config.QualityPreset, cookies model.CookieOption) model.DownloadResult {
	url := req.TrimmedURLs()[0]
	s.reporter.Log(ctx, model.LevelInfo, fmt.Sprintf("[YouTube] Downloading channel (%s): %s", quality, url))
	if req.MaxItems > 0 {
		s.reporter.Log(ctx, model.LevelInfo, fmt.Sprintf("Limit: first %d videos.", req.MaxItems))
	}

	dir := req.OutputDir
	if req.ChannelSubfolder {
		dir = s.channelDir(ctx, url, req.OutputDir, cookies)
	}

	res := s.collection(ctx, url, dir, req.MaxItems, quality, cookies)
	s.reporter.Log(ctx, levelOf(res.Succeeded > 0), fmt.Sprintf("Channel finished: %d videos downloaded.", res.Succeeded))
	return res
}

// collection runs one playlist-style download into dir
func (s *Service) collection(ctx context.Context, url, dir string, maxItems int, quality config.QualityPreset, cookies model.CookieOption) model.DownloadResult {
	tracker := newProgressTracker(ctx, s.reporter, true)
	opts := s.youtubeOptions(ctx, dir, quality, cookies, tracker.observe)
	opts.PlaylistEnd = maxItems

	info, err := s.extractor.Download(ctx, url, opts)
	if err != nil {
		ctxlog.From(ctx).Warn("collection download reported errors", slog.String("url", url), slog.Any("error", err))
	}
	return collectionResult(info, err)
}

// channelDir resolves <out>/<channel name>. Any failure falls back to out.
func (s *Service) channelDir(ctx context.Context, url, out string, cookies model.CookieOption) string {
	opts := s.probeOptions(cookies)
	opts.FlatPlaylist = true
	opts.PlaylistEnd = 1

	info, err := s.extractor.Probe(ctx, url, opts)
	if err != nil || info == nil {
		ctxlog.From(ctx).Debug("channel name probe failed", slog.String("url", url), slog.Any("error", err))
		return out
	}

	name := platform.SanitizeDirName(info.ChannelName())
	dir := filepath.Join(out, name)
	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		ctxlog.From(ctx).Warn("cannot create channel folder", slog.String("dir", dir), slog.Any("error", err))
		return out
	}
	s.reporter.Log(ctx, model.LevelInfo, fmt.Sprintf("Channel: %s  →  %s", name, dir))
	return dir
}
