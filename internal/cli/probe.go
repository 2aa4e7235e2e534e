package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/ytget/clipforge/internal/extractor"
	"github.com/ytget/clipforge/internal/model"
	"github.com/ytget/clipforge/internal/platform"
)

// DefaultListPreview is how many playlist entries probe --list prints
const DefaultListPreview = 20

func (a *app) cmdProbe() *cli.Command {
	var (
		list       bool
		limit      int
		cookies    bool
		cookieFile string
	)

	return &cli.Command{
		Name:      "probe",
		Usage:     "Show metadata of a URL without downloading",
		ArgsUsage: "URL",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "list",
				Usage:       "List the videos of a YouTube playlist",
				Destination: &list,
			},
			&cli.IntFlag{
				Name:        "max",
				Usage:       "Number of playlist entries to print (0 for all)",
				Value:       DefaultListPreview,
				Destination: &limit,
			},
			&cli.BoolFlag{
				Name:        "cookies",
				Usage:       "Use cookies from the cookie file or a browser",
				Destination: &cookies,
			},
			&cli.StringFlag{
				Name:        "cookie-file",
				Usage:       "Netscape cookie file",
				Destination: &cookieFile,
				Sources:     cli.EnvVars("CLIPFORGE_COOKIE_FILE"),
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("probe needs exactly one URL", goerr.T(model.ErrTagValidation))
			}
			url := cleanURL(c.Args().First())

			if list {
				return a.listPlaylist(ctx, url, limit)
			}
			if cookieFile == "" {
				cookieFile = a.settings.GetCookieFile()
			}
			return a.probe(ctx, url, cookies, cookieFile)
		},
	}
}

func (a *app) probe(ctx context.Context, url string, useCookies bool, cookieFile string) error {
	if !model.PlatformTikTok.Matches(url) && !model.PlatformYouTube.Matches(url) {
		return goerr.New("URL is neither TikTok nor YouTube", goerr.V("url", url), goerr.T(model.ErrTagValidation))
	}

	backend := a.newBackend(a.settings)
	opts := extractor.DefaultOptions()
	opts.FlatPlaylist = true
	if useCookies {
		opts.Cookies = platform.NewCookieResolver(cookieFile, backend).Resolve(ctx)
	}

	info, err := backend.Probe(ctx, url, opts)
	if err != nil {
		return err
	}

	w := a.stdout
	fmt.Fprintf(w, "Title:    %s\n", info.Title)
	if name := info.ChannelName(); name != "" {
		fmt.Fprintf(w, "Channel:  %s\n", name)
	}
	if id := info.StableUserID(); id != "" {
		fmt.Fprintf(w, "ID:       %s\n", id)
	}
	if info.Duration > 0 {
		fmt.Fprintf(w, "Duration: %s\n", platform.FormatDuration(info.Duration))
	}
	if info.IsCollection {
		fmt.Fprintf(w, "Entries:  %d\n", info.Total())
	}
	return nil
}

func (a *app) listPlaylist(ctx context.Context, url string, limit int) error {
	playlist, err := a.newLister(a.settings).List(ctx, url)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "%s (%d videos)\n", playlist.Title, playlist.Len())
	for _, v := range playlist.Head(limit) {
		fmt.Fprintf(a.stdout, "%3d. %s  %s\n", v.Index, v.Title, v.URL)
	}
	if limit > 0 && playlist.Len() > limit {
		fmt.Fprintf(a.stdout, "... %d more\n", playlist.Len()-limit)
	}
	return nil
}
