package config

import (
	"io"
	"log/slog"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/urfave/cli/v3"
	"github.com/ytget/clipforge/internal/model"
)

// Log output formats
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Logger holds logger configuration
type Logger struct {
	Level   string
	Format  string
	NoColor bool
}

// Flags returns CLI flags for logger configuration
func (c *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &c.Level,
			Sources:     cli.EnvVars("CLIPFORGE_LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Value:       LogFormatConsole,
			Destination: &c.Format,
			Sources:     cli.EnvVars("CLIPFORGE_LOG_FORMAT"),
		},
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable coloured output",
			Destination: &c.NoColor,
			Sources:     cli.EnvVars("NO_COLOR", "CLIPFORGE_NO_COLOR"),
		},
	}
}

// Configure builds the logger writing to w. Cookie values and cookie file
// paths are redacted.
func (c *Logger) Configure(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	redact := masq.New(
		masq.WithFieldName("cookie"),
		masq.WithFieldName("cookie_file"),
		masq.WithContain("secUid"),
	)

	var handler slog.Handler
	switch c.Format {
	case LogFormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: redact,
		})
	case LogFormatConsole, "":
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithColor(!c.NoColor),
			clog.WithTimeFmt("15:04:05"),
			clog.WithReplaceAttr(redact),
		)
	default:
		return nil, goerr.New("unknown log format", goerr.V("format", c.Format), goerr.T(model.ErrTagValidation))
	}

	return slog.New(handler), nil
}

func parseLevel(v string) (slog.Level, error) {
	switch v {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, goerr.New("unknown log level", goerr.V("level", v), goerr.T(model.ErrTagValidation))
}
