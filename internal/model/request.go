package model

import (
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Platform identifies the video site a download request targets
type Platform string

const (
	PlatformTikTok  Platform = "tiktok"
	PlatformYouTube Platform = "youtube"
)

var platformHosts = map[Platform][]string{
	PlatformTikTok:  {"tiktok.com"},
	PlatformYouTube: {"youtube.com", "youtu.be"},
}

// Matches reports whether rawURL points at this platform's hosts
func (p Platform) Matches(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range platformHosts[p] {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// Mode selects how the URLs of a request are interpreted
type Mode string

const (
	ModeSingle   Mode = "single"
	ModeMulti    Mode = "multi"
	ModeProfile  Mode = "profile"
	ModeChannel  Mode = "channel"
	ModePlaylist Mode = "playlist"
)

var platformModes = map[Platform][]Mode{
	PlatformTikTok:  {ModeSingle, ModeMulti, ModeProfile},
	PlatformYouTube: {ModeSingle, ModeMulti, ModeChannel, ModePlaylist},
}

// Modes returns the modes supported by the platform
func (p Platform) Modes() []Mode {
	return platformModes[p]
}

// Supports reports whether the platform accepts the mode
func (p Platform) Supports(m Mode) bool {
	for _, v := range platformModes[p] {
		if v == m {
			return true
		}
	}
	return false
}

// IsCollection is true for modes that enumerate many items from one URL
func (m Mode) IsCollection() bool {
	return m == ModeProfile || m == ModeChannel || m == ModePlaylist
}

// DownloadRequest is one submitted download action
type DownloadRequest struct {
	ID               string
	Platform         Platform
	Mode             Mode
	URLs             []string
	OutputDir        string
	Quality          string
	MaxItems         int // 0 means no cap
	UseCookies       bool
	ChannelSubfolder bool
}

// Validate checks the request before any external call is made.
// Multi-URL TikTok requests tolerate invalid entries; those are dropped later.
func (r DownloadRequest) Validate() error {
	if !r.Platform.Supports(r.Mode) {
		return goerr.New("unsupported mode for platform",
			goerr.V("platform", r.Platform), goerr.V("mode", r.Mode), goerr.T(ErrTagValidation))
	}
	if r.OutputDir == "" {
		return goerr.New("output directory is required", goerr.T(ErrTagValidation))
	}
	if r.MaxItems < 0 {
		return goerr.New("max items must not be negative", goerr.V("max_items", r.MaxItems), goerr.T(ErrTagValidation))
	}

	urls := r.TrimmedURLs()
	if len(urls) == 0 {
		return goerr.New("at least one URL is required", goerr.T(ErrTagValidation))
	}
	if r.Mode != ModeMulti {
		if len(urls) != 1 {
			return goerr.New("mode takes exactly one URL",
				goerr.V("mode", r.Mode), goerr.V("count", len(urls)), goerr.T(ErrTagValidation))
		}
		if !r.Platform.Matches(urls[0]) {
			return goerr.New("URL does not belong to platform",
				goerr.V("url", urls[0]), goerr.V("platform", r.Platform), goerr.T(ErrTagValidation))
		}
	}
	return nil
}

// TrimmedURLs returns the request URLs with blanks removed
func (r DownloadRequest) TrimmedURLs() []string {
	out := make([]string, 0, len(r.URLs))
	for _, u := range r.URLs {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// DownloadResult is the outcome of one orchestrator call. Per-item failures
// are reported here instead of being returned as errors.
type DownloadResult struct {
	Success   bool
	Path      string // single video only
	Succeeded int
	Total     int
	Err       string
}

// Failed builds a failed single-item result
func Failed(err error) DownloadResult {
	r := DownloadResult{Total: 1}
	if err != nil {
		r.Err = err.Error()
	}
	return r
}
