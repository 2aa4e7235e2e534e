package download

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/ytget/clipforge/internal/model"
	"github.com/ytget/clipforge/internal/platform"
)

// uploaderTemplate places profile downloads in one folder per account
const uploaderTemplate = "%(uploader)s"

func (s *Service) downloadTikTok(ctx context.Context, req model.DownloadRequest) model.DownloadResult {
	switch req.Mode {
	case model.ModeProfile:
		return s.tiktokProfile(ctx, req)
	case model.ModeMulti:
		return s.tiktokMulti(ctx, req)
	default:
		return s.tiktokSingle(ctx, req, req.TrimmedURLs()[0])
	}
}

func (s *Service) tiktokSingle(ctx context.Context, req model.DownloadRequest, url string) model.DownloadResult {
	s.reporter.Log(ctx, model.LevelInfo, "[TikTok] Downloading: "+url)
	tracker := newProgressTracker(ctx, s.reporter, false)
	opts := s.tiktokOptions(ctx, outputTemplate(req.OutputDir, titleTemplate), s.cookieOption(ctx, req), tracker.observe)
	return s.single(ctx, url, opts)
}

// tiktokMulti downloads the URLs strictly in input order. URLs that do not
// belong to TikTok are dropped up front and count as failures.
func (s *Service) tiktokMulti(ctx context.Context, req model.DownloadRequest) model.DownloadResult {
	urls := req.TrimmedURLs()
	valid := make([]string, 0, len(urls))
	for _, u := range urls {
		if model.PlatformTikTok.Matches(u) {
			valid = append(valid, u)
		}
	}

	res := model.DownloadResult{Total: len(urls)}
	if skipped := len(urls) - len(valid); skipped > 0 {
		s.reporter.Log(ctx, model.LevelErr, fmt.Sprintf("Skipped %d invalid URL(s).", skipped))
	}
	if len(valid) == 0 {
		s.reporter.Log(ctx, model.LevelErr, "No valid TikTok URLs.")
		res.Err = "no valid TikTok URLs"
		return res
	}

	for _, u := range valid {
		if ctx.Err() != nil {
			break
		}
		if r := s.tiktokSingle(ctx, req, u); r.Success {
			res.Succeeded++
		}
	}
	res.Success = res.Succeeded > 0
	s.reporter.Log(ctx, levelOf(res.Success), fmt.Sprintf("Finished: %d/%d videos.", res.Succeeded, res.Total))
	return res
}

// tiktokProfile downloads a profile. When the extractor cannot read the
// profile's secondary user ID, the stable identifier is looked up from the
// profile page and the download is retried against it.
func (s *Service) tiktokProfile(ctx context.Context, req model.DownloadRequest) model.DownloadResult {
	url := req.TrimmedURLs()[0]
	cookies := s.cookieOption(ctx, req)
	tracker := newProgressTracker(ctx, s.reporter, true)
	opts := s.tiktokOptions(ctx, outputTemplate(req.OutputDir, uploaderTemplate, titleTemplate), cookies, tracker.observe)
	opts.IgnoreErrors = true
	opts.PlaylistEnd = req.MaxItems

	s.reporter.Log(ctx, model.LevelInfo, "[TikTok] Downloading profile: "+url)
	info, err := s.extractor.Download(ctx, url, opts)

	if err != nil && info == nil {
		if !IsSecondaryIDError(err) || s.resolver == nil {
			return s.profileDone(ctx, collectionResult(nil, err))
		}

		ctxlog.From(ctx).Info("profile extraction needs the stable user id", slog.String("url", url))
		s.reporter.Log(ctx, model.LevelInfo, "Profile ID could not be read, resolving it from the profile page...")
		id, rerr := s.resolver.Resolve(ctx, url, cookies)
		if rerr != nil {
			ctxlog.From(ctx).Warn("stable user id lookup failed", slog.Any("error", rerr))
			return s.profileDone(ctx, collectionResult(nil, rerr))
		}

		target := platform.TikTokUserTarget(id)
		s.reporter.Log(ctx, model.LevelInfo, "Retrying profile as "+target)
		info, err = s.extractor.Download(ctx, target, opts)
	}

	return s.profileDone(ctx, collectionResult(info, err))
}

func (s *Service) profileDone(ctx context.Context, res model.DownloadResult) model.DownloadResult {
	if res.Err != "" {
		ctxlog.From(ctx).Warn("profile download reported errors", slog.String("error", res.Err))
	}
	if res.Success {
		s.reporter.Log(ctx, model.LevelOK, fmt.Sprintf("Profile download finished: %d/%d videos.", res.Succeeded, res.Total))
	} else {
		s.reporter.Log(ctx, model.LevelErr, "Profile download failed.")
	}
	return res
}

func levelOf(ok bool) model.Level {
	if ok {
		return model.LevelOK
	}
	return model.LevelErr
}
