package edit

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/ytget/clipforge/internal/model"
	"github.com/ytget/clipforge/internal/platform"
)

// Service applies edit requests with ffmpeg
type Service struct {
	runner Runner
	prober Prober
}

// NewService creates an editing service
func NewService(runner Runner, prober Prober) *Service {
	return &Service{runner: runner, prober: prober}
}

// Duration returns the duration of a media file in seconds
func (s *Service) Duration(ctx context.Context, path string) (float64, error) {
	if err := checkFile(path); err != nil {
		return 0, err
	}
	return s.prober.Duration(ctx, path)
}

// Apply runs one edit and returns the output path. progress, when non-nil,
// receives fractions in [0,1]; it always ends with 1 on success. Failures
// are not retried.
func (s *Service) Apply(ctx context.Context, req model.EditRequest, progress func(float64)) (string, error) {
	if progress == nil {
		progress = func(float64) {}
	}

	plan, err := BuildPlan(req)
	if err != nil {
		return "", err
	}
	for _, in := range req.Inputs {
		if err := checkFile(in); err != nil {
			return "", err
		}
	}
	if req.Operation == model.EditLogo {
		if err := checkFile(req.Params.LogoPath); err != nil {
			return "", err
		}
	}
	if req.Operation == model.EditTrim {
		if err := s.checkTrimRange(ctx, req.Inputs[0], req.Params.Start, req.Params.End); err != nil {
			return "", err
		}
	}

	ctx = ctxlog.With(ctx, ctxlog.From(ctx).With(slog.String("operation", string(req.Operation)), slog.String("output", plan.Output)))
	if dir := filepath.Dir(plan.Output); dir != "" {
		if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
			return "", err
		}
	}

	if plan.Manifest != "" {
		if err := os.WriteFile(plan.Manifest, []byte(ManifestContent(plan.Entries)), 0644); err != nil {
			return "", goerr.Wrap(err, "failed to write concat list", goerr.V("path", plan.Manifest), goerr.T(model.ErrTagFilesystem))
		}
		defer func() {
			if rerr := os.Remove(plan.Manifest); rerr != nil && !os.IsNotExist(rerr) {
				ctxlog.From(ctx).Warn("failed to remove concat list", slog.String("path", plan.Manifest), slog.Any("error", rerr))
			}
		}()
	}

	var onProgress func(time.Duration)
	if plan.Progress {
		total, derr := s.prober.Duration(ctx, req.Inputs[0])
		if derr != nil {
			return "", derr
		}
		onProgress = func(done time.Duration) {
			if total > 0 {
				progress(min(1, done.Seconds()/total))
			}
		}
	}

	if err := s.runner.Run(ctx, plan.Args, onProgress); err != nil {
		if plan.Progress {
			// re-encodes leave a truncated file behind
			_ = os.Remove(plan.Output)
		}
		return "", goerr.Wrap(err, "edit failed", goerr.V("operation", req.Operation), goerr.V("input", req.Inputs[0]))
	}

	progress(1)
	ctxlog.From(ctx).Debug("edit finished")
	return plan.Output, nil
}

func (s *Service) checkTrimRange(ctx context.Context, input, start, end string) error {
	from, err := ParseTimestamp(start)
	if err != nil {
		return err
	}
	to, err := ParseTimestamp(end)
	if err != nil {
		return err
	}
	if to <= from {
		return goerr.New("trim end must be after start", goerr.V("start", start), goerr.V("end", end), goerr.T(model.ErrTagValidation))
	}

	total, err := s.prober.Duration(ctx, input)
	if err != nil {
		ctxlog.From(ctx).Debug("duration unavailable, skipping trim range check", slog.Any("error", err))
		return nil
	}
	if from >= total {
		return goerr.New("trim start is beyond the end of the video",
			goerr.V("start", start), goerr.V("duration", total), goerr.T(model.ErrTagValidation))
	}
	return nil
}

// ParseTimestamp parses HH:MM:SS, MM:SS or plain seconds, each optionally
// with a fractional part
func ParseTimestamp(v string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) > 3 {
		return 0, goerr.New("invalid timestamp", goerr.V("value", v), goerr.T(model.ErrTagValidation))
	}

	var total float64
	for i, part := range parts {
		n, err := strconv.ParseFloat(part, 64)
		if err != nil || n < 0 || (i > 0 && n >= 60) {
			return 0, goerr.New("invalid timestamp", goerr.V("value", v), goerr.T(model.ErrTagValidation))
		}
		total = total*60 + n
	}
	return total, nil
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return goerr.Wrap(err, "input file not found", goerr.V("path", path), goerr.T(model.ErrTagFilesystem))
	}
	if info.IsDir() {
		return goerr.New("input is a directory", goerr.V("path", path), goerr.T(model.ErrTagValidation))
	}
	return nil
}
