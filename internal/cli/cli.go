package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"
	"github.com/ytget/clipforge/internal/config"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string, version string) error {
	a := newApp(os.Stdout, os.Stderr)
	return a.run(ctx, args, version)
}

func (a *app) run(ctx context.Context, args []string, version string) error {
	var logger *slog.Logger

	flags := append(a.loggerCfg.Flags(), &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Settings file (TOML)",
		Destination: &a.configPath,
		Sources:     cli.EnvVars("CLIPFORGE_CONFIG"),
	})

	cmd := &cli.Command{
		Name:    "clipforge",
		Usage:   "Download TikTok and YouTube videos and edit them with ffmpeg",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = a.loggerCfg.Configure(a.stderr)
			if err != nil {
				return nil, err
			}
			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)

			settings, err := config.LoadSettings(a.configPath)
			if err != nil {
				return nil, err
			}
			a.settings = settings
			return ctx, nil
		},
		Commands: []*cli.Command{
			a.cmdDownload(),
			a.cmdEdit(),
			a.cmdBatch(),
			a.cmdProbe(),
			a.cmdDuration(),
			a.cmdConfig(),
		},
		Writer:    a.stdout,
		ErrWriter: a.stderr,
	}

	if err := cmd.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(a.stderr, nil))
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		return err
	}

	return nil
}

// cmdConfig prints the effective settings
func (a *app) cmdConfig() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the effective settings as TOML",
		Action: func(ctx context.Context, c *cli.Command) error {
			raw, err := a.settings.Encode()
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(raw)
			return err
		},
	}
}
