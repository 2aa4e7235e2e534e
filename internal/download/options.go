package download

import (
	"context"

	"github.com/ytget/clipforge/internal/config"
	"github.com/ytget/clipforge/internal/extractor"
	"github.com/ytget/clipforge/internal/model"
)

// YouTube extraction tuning
const (
	youtubeConcurrentFragments = 8
	youtubeExtractorArgs       = "youtube:player_client=web_creator,ios,android"
	youtubeAudioFormat         = "m4a"
	youtubeAudioQuality        = "0"
	mergeFormat                = "mp4"
)

// youtubeFormatSort ranks formats by resolution, HDR, fps, codec, then bitrate
var youtubeFormatSort = []string{
	"res", "hdr:12", "fps",
	"vcodec:vp9.2", "vcodec:av01", "vcodec:vp9", "vcodec:h265", "vcodec:h264",
	"channels", "acodec:opus", "acodec:aac",
	"br", "asr", "size",
}

// tiktokOptions builds the options of a TikTok call writing into template
func (s *Service) tiktokOptions(ctx context.Context, template string, cookies model.CookieOption, progress func(model.ProgressEvent)) extractor.Options {
	opts := extractor.DefaultOptions()
	opts.Format = config.TikTokFormat
	opts.OutputTemplate = template
	opts.MergeOutputFormat = mergeFormat
	opts.Cookies = cookies
	opts.Progress = progress
	return s.withOverrides(ctx, opts)
}

// youtubeOptions builds the options of a YouTube call into dir
func (s *Service) youtubeOptions(ctx context.Context, dir string, quality config.QualityPreset, cookies model.CookieOption, progress func(model.ProgressEvent)) extractor.Options {
	opts := extractor.DefaultOptions()
	opts.Format = quality.FormatSelector()
	opts.OutputTemplate = outputTemplate(dir, titleTemplate)
	opts.IgnoreErrors = true
	opts.Continue = true
	opts.ConcurrentFragments = youtubeConcurrentFragments
	opts.FormatSort = append([]string(nil), youtubeFormatSort...)
	opts.ExtractorArgs = youtubeExtractorArgs
	opts.Cookies = cookies
	opts.Progress = progress

	if quality.IsAudio() {
		opts.ExtractAudio = true
		opts.AudioFormat = youtubeAudioFormat
		opts.AudioQuality = youtubeAudioQuality
	} else {
		opts.MergeOutputFormat = mergeFormat
	}

	if s.accel != nil && s.accel.Available() {
		opts.ExternalDownloader = s.accel.Name()
		opts.ExternalDownloaderArgs = append([]string(nil), s.accel.DownloaderArgs()...)
	}
	return s.withOverrides(ctx, opts)
}

// probeOptions builds a quiet metadata-only call
func (s *Service) probeOptions(cookies model.CookieOption) extractor.Options {
	opts := extractor.DefaultOptions()
	opts.Quiet = true
	opts.NoWarnings = true
	opts.Cookies = cookies
	return opts
}
