package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/ytget/clipforge/internal/model"
	"github.com/ytget/clipforge/internal/platform"
)

// downloadFlags holds the options of the download subcommands
type downloadFlags struct {
	Mode       string
	Out        string
	Quality    string
	Max        int
	Cookies    bool
	CookieFile string
	Subfolder  bool
}

// Flags returns CLI flags for one platform's download command
func (f *downloadFlags) Flags(p model.Platform) []cli.Flag {
	modes := make([]string, 0, len(p.Modes()))
	for _, m := range p.Modes() {
		modes = append(modes, string(m))
	}

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "mode",
			Aliases:     []string{"m"},
			Usage:       "Download mode (" + strings.Join(modes, ", ") + ")",
			Value:       string(model.ModeSingle),
			Destination: &f.Mode,
		},
		&cli.StringFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "Output directory",
			Destination: &f.Out,
			Sources:     cli.EnvVars("CLIPFORGE_OUTPUT_DIR"),
		},
		&cli.IntFlag{
			Name:        "max",
			Usage:       "Maximum number of items for collection modes (0 for all)",
			Destination: &f.Max,
		},
		&cli.BoolFlag{
			Name:        "cookies",
			Usage:       "Use cookies from the cookie file or a browser",
			Destination: &f.Cookies,
		},
		&cli.StringFlag{
			Name:        "cookie-file",
			Usage:       "Netscape cookie file",
			Destination: &f.CookieFile,
			Sources:     cli.EnvVars("CLIPFORGE_COOKIE_FILE"),
		},
	}

	if p == model.PlatformYouTube {
		flags = append(flags,
			&cli.StringFlag{
				Name:        "quality",
				Aliases:     []string{"q"},
				Usage:       "Quality preset (best, 2160p, 1440p, 1080p, 720p, 480p, 360p, audio)",
				Destination: &f.Quality,
			},
			&cli.BoolFlag{
				Name:        "subfolder",
				Usage:       "Save a channel into a subfolder named after it",
				Destination: &f.Subfolder,
			},
		)
	}
	return flags
}

func (a *app) cmdDownload() *cli.Command {
	return &cli.Command{
		Name:    "download",
		Aliases: []string{"dl"},
		Usage:   "Download videos",
		Commands: []*cli.Command{
			a.cmdDownloadPlatform(model.PlatformTikTok, "TikTok videos, URL lists and profiles"),
			a.cmdDownloadPlatform(model.PlatformYouTube, "YouTube videos, URL lists, playlists and channels"),
		},
	}
}

func (a *app) cmdDownloadPlatform(p model.Platform, usage string) *cli.Command {
	var f downloadFlags

	return &cli.Command{
		Name:      string(p),
		Usage:     "Download " + usage,
		ArgsUsage: "URL...",
		Flags:     f.Flags(p),
		Action: func(ctx context.Context, c *cli.Command) error {
			return a.download(ctx, a.downloadRequest(p, f, c.Args().Slice()), f.cookieFile(a))
		},
	}
}

func (f downloadFlags) cookieFile(a *app) string {
	if f.CookieFile != "" {
		return f.CookieFile
	}
	return a.settings.GetCookieFile()
}

// downloadRequest builds the request from flags, falling back to settings
func (a *app) downloadRequest(p model.Platform, f downloadFlags, args []string) model.DownloadRequest {
	req := model.DownloadRequest{
		ID:               model.NewActivityID(),
		Platform:         p,
		Mode:             model.Mode(f.Mode),
		OutputDir:        f.Out,
		Quality:          f.Quality,
		MaxItems:         f.Max,
		UseCookies:       f.Cookies,
		ChannelSubfolder: f.Subfolder,
	}
	for _, arg := range args {
		// one argument may hold several lines of URLs
		for _, line := range strings.Split(arg, "\n") {
			req.URLs = append(req.URLs, cleanURL(line))
		}
	}

	if req.OutputDir == "" {
		req.OutputDir = a.settings.GetDownloadDirectory()
	}
	if req.MaxItems == 0 {
		req.MaxItems = a.settings.GetMaxItems()
	}
	if p == model.PlatformYouTube {
		if req.Quality == "" {
			req.Quality = string(a.settings.GetQualityPreset())
		}
		// a valid cookie file is used without asking
		if !req.UseCookies && platform.IsValidCookieFile(f.cookieFile(a)) {
			req.UseCookies = true
		}
	}
	return req
}

// cleanURL strips characters pasted along with a URL
func cleanURL(raw string) string {
	s := strings.ReplaceAll(raw, "\r", "")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimSpace(s)
}

var platformLabels = map[model.Platform]string{
	model.PlatformTikTok:  "TikTok",
	model.PlatformYouTube: "YouTube",
}

// download validates req, then runs it as one activity
func (a *app) download(ctx context.Context, req model.DownloadRequest, cookieFile string) error {
	if err := req.Validate(); err != nil {
		return err
	}

	return a.runActivity(ctx, func(ctx context.Context, s *session) error {
		backend := a.newBackend(a.settings)
		cookies := platform.NewCookieResolver(cookieFile, backend)
		svc := a.downloadService(backend, cookies, s)

		s.Log(ctx, model.LevelInfo, s.tag("start %s download | mode=%s", platformLabels[req.Platform], req.Mode))
		if req.Platform == model.PlatformYouTube {
			s.Log(ctx, model.LevelInfo, s.tag("%s", svc.RuntimeSummary(ctx, req)))
		}

		if _, err := os.Stat(req.OutputDir); os.IsNotExist(err) {
			if err := platform.CreateDirectoryIfNotExists(req.OutputDir); err != nil {
				s.Log(ctx, model.LevelErr, "Cannot create output directory: "+err.Error())
				return err
			}
			s.Log(ctx, model.LevelOK, s.tag("Created output directory: %s", req.OutputDir))
		} else {
			abs, aerr := filepath.Abs(req.OutputDir)
			if aerr != nil {
				abs = req.OutputDir
			}
			s.Log(ctx, model.LevelInfo, s.tag("Output: %s", abs))
		}

		res := svc.Download(ctx, req)
		if !res.Success {
			return goerr.New("download failed",
				goerr.V("succeeded", res.Succeeded), goerr.V("total", res.Total), goerr.V("error", res.Err))
		}
		return nil
	})
}
