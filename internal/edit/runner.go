package edit

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/ytget/clipforge/internal/model"
)

// Executables and ffprobe settings
const (
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
	ProgressTimePrefix  = "out_time_us="
)

// stderrTailLines bounds the stderr kept for error messages
const stderrTailLines = 20

// maxStderrLine is the longest stderr line scanned as a single token
const maxStderrLine = 1024 * 1024

// Runner runs one ffmpeg invocation. onProgress, when non-nil, receives the
// output timestamp ffmpeg has reached.
type Runner interface {
	Run(ctx context.Context, args []string, onProgress func(time.Duration)) error
}

// Prober reads the duration of a media file in seconds
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// FFmpeg runs the ffmpeg executable
type FFmpeg struct {
	path string
}

// NewFFmpeg creates a runner for the executable at path
func NewFFmpeg(path string) *FFmpeg {
	if path == "" {
		path = FFmpegCommand
	}
	return &FFmpeg{path: path}
}

// Run executes ffmpeg with args. Stdout is discarded; stderr is scanned for
// progress lines and otherwise kept as a short tail for the error message.
func (f *FFmpeg) Run(ctx context.Context, args []string, onProgress func(time.Duration)) error {
	cmd := exec.CommandContext(ctx, f.path, args...)
	cmd.Stdout = io.Discard

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return goerr.Wrap(err, "failed to create stderr pipe", goerr.T(model.ErrTagTranscode))
	}

	ctxlog.From(ctx).Debug("running ffmpeg", slog.Any("args", args))
	if err := cmd.Start(); err != nil {
		return goerr.Wrap(err, "failed to start ffmpeg", goerr.V("path", f.path), goerr.T(model.ErrTagTranscode))
	}

	tail := scanStderr(stderr, onProgress)

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return goerr.Wrap(ctx.Err(), "ffmpeg cancelled")
		}
		msg := "ffmpeg failed"
		if len(tail) > 0 {
			msg += ": " + tail[len(tail)-1]
		}
		return goerr.Wrap(err, msg, goerr.V("stderr", strings.Join(tail, "\n")), goerr.T(model.ErrTagTranscode))
	}
	return nil
}

// scanStderr reads r to EOF, forwarding progress and returning the last
// non-progress lines
func scanStderr(r io.Reader, onProgress func(time.Duration)) []string {
	var tail []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStderrLine)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if d, ok := parseOutTime(line); ok {
			if onProgress != nil {
				onProgress(d)
			}
			continue
		}
		if isProgressKey(line) {
			continue
		}
		tail = append(tail, line)
		if len(tail) > stderrTailLines {
			tail = tail[1:]
		}
	}
	// drain what the scanner left so the writer never blocks
	_, _ = io.Copy(io.Discard, r)
	return tail
}

// parseOutTime parses an out_time_us=N progress line
func parseOutTime(line string) (time.Duration, bool) {
	v, ok := strings.CutPrefix(line, ProgressTimePrefix)
	if !ok {
		return 0, false
	}
	us, err := strconv.ParseInt(v, 10, 64)
	if err != nil || us < 0 {
		return 0, false
	}
	return time.Duration(us) * time.Microsecond, true
}

// isProgressKey reports other key=value lines of -progress output
func isProgressKey(line string) bool {
	key, _, ok := strings.Cut(line, "=")
	if !ok || strings.ContainsAny(key, " \t") {
		return false
	}
	switch key {
	case "frame", "fps", "stream_0_0_q", "bitrate", "total_size", "out_time_ms",
		"out_time", "dup_frames", "drop_frames", "speed", "progress":
		return true
	}
	return false
}

// FFprobe runs the ffprobe executable
type FFprobe struct {
	path string
}

// NewFFprobe creates a prober for the executable at path
func NewFFprobe(path string) *FFprobe {
	if path == "" {
		path = FFprobeCommand
	}
	return &FFprobe{path: path}
}

// Duration gets the duration of a media file
func (f *FFprobe) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.path, "-v", FFprobeLogLevel, "-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, path)
	output, err := cmd.Output()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to run ffprobe", goerr.V("path", path), goerr.T(model.ErrTagTranscode))
	}
	return parseDuration(string(output))
}

func parseDuration(output string) (float64, error) {
	s := strings.TrimSpace(output)
	duration, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to parse duration", goerr.V("output", s), goerr.T(model.ErrTagTranscode))
	}
	return duration, nil
}
