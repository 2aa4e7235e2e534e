package config

import (
	"bytes"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/ytget/clipforge/internal/model"
)

// Default values
const (
	DefaultOutputDir      = "downloads"
	DefaultQualityPreset  = QualityBest
	DefaultCookieFile     = "cookies.txt"
	DefaultCookieProbeURL = "https://www.youtube.com/watch?v=jNQXAC9IVRw"
	DefaultMaxParallel    = 3
	DefaultAccelerator    = "aria2c"
	DefaultFFmpegPath     = "ffmpeg"
	DefaultFFprobePath    = "ffprobe"
	DefaultActivityBuffer = 256
	DefaultFetchTimeout   = 15 * time.Second
	DefaultMaxCandidates  = 10
)

// Limits for clamped values
const (
	MinParallel = 1
	MaxParallel = 10
)

// Settings is the application configuration. Zero fields fall back to the
// defaults above through the getters.
type Settings struct {
	OutputDir      string            `toml:"output_dir"`
	Quality        string            `toml:"quality"`
	CookieFile     string            `toml:"cookie_file"`
	CookieProbeURL string            `toml:"cookie_probe_url"`
	MaxParallel    int               `toml:"max_parallel"`
	MaxItems       int               `toml:"max_items"`
	Accelerator    string            `toml:"accelerator"`
	FFmpegPath     string            `toml:"ffmpeg_path"`
	FFprobePath    string            `toml:"ffprobe_path"`
	ActivityBuffer int               `toml:"activity_buffer"`
	FetchTimeout   string            `toml:"fetch_timeout"`
	MaxCandidates  int               `toml:"max_candidates"`
	Extractor      map[string]string `toml:"extractor"`
}

// NewSettings returns settings populated with defaults
func NewSettings() *Settings {
	return &Settings{
		OutputDir:      DefaultOutputDir,
		Quality:        string(DefaultQualityPreset),
		CookieFile:     DefaultCookieFile,
		CookieProbeURL: DefaultCookieProbeURL,
		MaxParallel:    DefaultMaxParallel,
		Accelerator:    DefaultAccelerator,
		FFmpegPath:     DefaultFFmpegPath,
		FFprobePath:    DefaultFFprobePath,
		ActivityBuffer: DefaultActivityBuffer,
		FetchTimeout:   DefaultFetchTimeout.String(),
		MaxCandidates:  DefaultMaxCandidates,
	}
}

// LoadSettings reads a TOML file over the defaults. An empty path returns
// the defaults unchanged.
func LoadSettings(path string) (*Settings, error) {
	s := NewSettings()
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read settings file", goerr.V("path", path), goerr.T(model.ErrTagFilesystem))
	}
	if err := toml.Unmarshal(raw, s); err != nil {
		return nil, goerr.Wrap(err, "failed to decode settings file", goerr.V("path", path), goerr.T(model.ErrTagValidation))
	}
	if s.FetchTimeout != "" {
		if _, err := time.ParseDuration(s.FetchTimeout); err != nil {
			return nil, goerr.Wrap(err, "invalid fetch_timeout", goerr.V("value", s.FetchTimeout), goerr.T(model.ErrTagValidation))
		}
	}
	s.SetMaxParallelDownloads(s.MaxParallel)
	return s, nil
}

// Encode renders the settings as TOML
func (s *Settings) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(s); err != nil {
		return nil, goerr.Wrap(err, "failed to encode settings")
	}
	return buf.Bytes(), nil
}

// GetDownloadDirectory returns the configured output directory
func (s *Settings) GetDownloadDirectory() string {
	if s.OutputDir == "" {
		return DefaultOutputDir
	}
	return s.OutputDir
}

// SetDownloadDirectory sets the output directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.OutputDir = dir
}

// GetMaxParallelDownloads returns the YouTube multi-URL pool size
func (s *Settings) GetMaxParallelDownloads() int {
	if s.MaxParallel <= 0 {
		return DefaultMaxParallel
	}
	return s.MaxParallel
}

// SetMaxParallelDownloads sets the pool size clamped to [MinParallel, MaxParallel]
func (s *Settings) SetMaxParallelDownloads(count int) {
	if count < MinParallel {
		count = MinParallel
	}
	if count > MaxParallel {
		count = MaxParallel
	}
	s.MaxParallel = count
}

// GetQualityPreset returns the configured quality
func (s *Settings) GetQualityPreset() QualityPreset {
	return ParseQuality(s.Quality)
}

// SetQualityPreset sets the quality
func (s *Settings) SetQualityPreset(preset QualityPreset) {
	s.Quality = string(preset)
}

// GetMaxItems returns the collection item cap, 0 meaning no cap
func (s *Settings) GetMaxItems() int {
	if s.MaxItems < 0 {
		return 0
	}
	return s.MaxItems
}

// GetCookieFile returns the Netscape cookie file path
func (s *Settings) GetCookieFile() string {
	if s.CookieFile == "" {
		return DefaultCookieFile
	}
	return s.CookieFile
}

// GetCookieProbeURL returns the URL used when probing browser cookie stores
func (s *Settings) GetCookieProbeURL() string {
	if s.CookieProbeURL == "" {
		return DefaultCookieProbeURL
	}
	return s.CookieProbeURL
}

// GetAccelerator returns the external downloader name
func (s *Settings) GetAccelerator() string {
	if s.Accelerator == "" {
		return DefaultAccelerator
	}
	return s.Accelerator
}

// GetFFmpegPath returns the ffmpeg executable
func (s *Settings) GetFFmpegPath() string {
	if s.FFmpegPath == "" {
		return DefaultFFmpegPath
	}
	return s.FFmpegPath
}

// GetFFprobePath returns the ffprobe executable
func (s *Settings) GetFFprobePath() string {
	if s.FFprobePath == "" {
		return DefaultFFprobePath
	}
	return s.FFprobePath
}

// GetActivityBuffer returns the activity channel capacity
func (s *Settings) GetActivityBuffer() int {
	if s.ActivityBuffer <= 0 {
		return DefaultActivityBuffer
	}
	return s.ActivityBuffer
}

// GetFetchTimeout returns the profile page fetch timeout
func (s *Settings) GetFetchTimeout() time.Duration {
	d, err := time.ParseDuration(s.FetchTimeout)
	if err != nil || d <= 0 {
		return DefaultFetchTimeout
	}
	return d
}

// GetMaxCandidates returns how many video pages the profile resolver probes
func (s *Settings) GetMaxCandidates() int {
	if s.MaxCandidates <= 0 {
		return DefaultMaxCandidates
	}
	return s.MaxCandidates
}
