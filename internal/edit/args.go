package edit

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ytget/clipforge/internal/model"
)

// Common ffmpeg flags
var baseArgs = []string{"-y", "-hide_banner", "-loglevel", "error"}

// Compression settings
const (
	VideoCodec         = "libx264"
	VideoPreset        = "medium"
	VideoCRF           = "23"
	AudioCodec         = "aac"
	AudioBitrate       = "128k"
	FastStartFlag      = "+faststart"
	ProgressPipeTarget = "pipe:2"
)

// Output naming
const (
	DefaultAudioFormat = "mp3"
	MP4Extension       = ".mp4"
	ManifestExtension  = ".txt"
)

// Atempo accepts factors in [0.5, 2.0] per stage
const (
	atempoMax = 2.0
	atempoMin = 0.5
)

var rotationFilters = map[model.Rotation]string{
	model.RotateCW90:  "transpose=1",
	model.RotateCCW90: "transpose=2",
	model.Rotate180:   "transpose=1,transpose=1",
	model.RotateHFlip: "hflip",
	model.RotateVFlip: "vflip",
}

var logoOverlays = map[model.LogoPosition]string{
	model.LogoTopLeft:     "10:10",
	model.LogoTopRight:    "W-w-10:10",
	model.LogoBottomLeft:  "10:H-h-20",
	model.LogoBottomRight: "W-w-10:H-h-20",
	model.LogoCenter:      "(W-w)/2:(H-h)/2",
}

// Plan is one ffmpeg invocation ready to run
type Plan struct {
	Args     []string
	Output   string
	Manifest string   // concat list written before running, merge only
	Entries  []string // inputs listed in the manifest
	Progress bool     // ffmpeg reports out_time_us on stderr
}

// BuildPlan turns a validated request into ffmpeg arguments. An empty
// req.Output is replaced by the derived default path.
func BuildPlan(req model.EditRequest) (Plan, error) {
	if err := req.Validate(); err != nil {
		return Plan{}, err
	}

	in := req.Inputs[0]
	p := req.Params
	out := req.Output
	if out == "" {
		out = DefaultOutput(req.Operation, p, in)
	}

	var args []string
	plan := Plan{Output: out}
	switch req.Operation {
	case model.EditResize:
		args = []string{"-i", in, "-vf", fmt.Sprintf("scale=%d:%d", p.Width, p.Height)}
	case model.EditTrim:
		args = []string{"-i", in, "-ss", p.Start, "-to", p.End, "-c", "copy"}
	case model.EditCrop:
		args = []string{"-i", in, "-vf", fmt.Sprintf("crop=%d:%d:%d:%d", p.Width, p.Height, p.X, p.Y)}
	case model.EditExtractAudio:
		args = []string{"-i", in, "-vn"}
	case model.EditRemoveAudio:
		args = []string{"-i", in, "-an", "-c:v", "copy"}
	case model.EditConvert:
		args = []string{"-i", in}
	case model.EditSpeed:
		vf, af := SpeedFilters(p.Speed)
		args = []string{"-i", in, "-vf", vf, "-af", af}
	case model.EditRotate:
		args = []string{"-i", in, "-vf", RotationFilter(p.Rotation)}
	case model.EditMerge:
		plan.Manifest = out + ManifestExtension
		plan.Entries = absPaths(req.Inputs)
		args = []string{"-f", "concat", "-safe", "0", "-i", plan.Manifest, "-c", "copy"}
	case model.EditLogo:
		args = []string{
			"-i", in, "-i", p.LogoPath,
			"-filter_complex", LogoFilter(p.LogoPosition, p.LogoX, p.LogoY, p.LogoScale, p.Opacity),
			"-map", "[v]", "-map", "0:a?", "-c:a", "copy",
		}
	case model.EditCompress:
		plan.Progress = true
		args = []string{
			"-i", in,
			"-c:v", VideoCodec, "-preset", VideoPreset, "-crf", VideoCRF,
			"-c:a", AudioCodec, "-b:a", AudioBitrate,
			"-movflags", FastStartFlag,
			"-progress", ProgressPipeTarget, "-nostats",
		}
	default:
		return Plan{}, goerr.New("unknown edit operation", goerr.V("operation", req.Operation), goerr.T(model.ErrTagValidation))
	}

	plan.Args = append(append(append([]string(nil), baseArgs...), args...), out)
	return plan, nil
}

// absPaths resolves each path against the working directory. The concat
// demuxer reads relative entries against the manifest's directory.
func absPaths(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		out[i] = abs
	}
	return out
}

// SpeedFilters returns the video and audio filters for a playback speed
func SpeedFilters(speed float64) (video, audio string) {
	return fmt.Sprintf("setpts=%.4f*PTS", 1/speed), AtempoChain(speed)
}

// AtempoChain splits tempo into atempo stages within the filter's range
func AtempoChain(tempo float64) string {
	var stages []string
	for tempo > atempoMax {
		stages = append(stages, "atempo=2.0")
		tempo /= atempoMax
	}
	for tempo < atempoMin {
		stages = append(stages, "atempo=0.5")
		tempo /= atempoMin
	}
	stages = append(stages, fmt.Sprintf("atempo=%.4f", tempo))
	return strings.Join(stages, ",")
}

// RotationFilter returns the filter for a rotation label. Unknown labels
// rotate 90° clockwise.
func RotationFilter(r model.Rotation) string {
	if f, ok := rotationFilters[r]; ok {
		return f
	}
	return rotationFilters[model.RotateCW90]
}

// LogoOverlay returns the overlay position expression
func LogoOverlay(pos model.LogoPosition, x, y string) string {
	if pos == model.LogoCustom {
		return x + ":" + y
	}
	if o, ok := logoOverlays[pos]; ok {
		return o
	}
	return logoOverlays[model.LogoBottomRight]
}

// LogoFilter builds the filter graph scaling the logo to scale px wide,
// applying opacity and overlaying it on the video
func LogoFilter(pos model.LogoPosition, x, y string, scale int, opacity float64) string {
	opacity = max(0, min(1, opacity))

	var chain []string
	if scale > 0 {
		chain = append(chain, fmt.Sprintf("scale=%d:-1", scale))
	}
	chain = append(chain, "format=rgba", fmt.Sprintf("colorchannelmixer=aa=%.2f", opacity))

	return fmt.Sprintf("[1:v]%s[logo];[0:v][logo]overlay=%s[v]", strings.Join(chain, ","), LogoOverlay(pos, x, y))
}

// ManifestContent renders the concat demuxer list for paths
func ManifestContent(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(p, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String()
}

// OutputSuffix returns the name suffix and extension an operation appends.
// An empty extension keeps the source extension.
func OutputSuffix(op model.EditOperation, p model.EditParams) (suffix, ext string) {
	switch op {
	case model.EditResize:
		return fmt.Sprintf("%dx%d", p.Width, p.Height), ""
	case model.EditTrim:
		return "trimmed", ""
	case model.EditCrop:
		return fmt.Sprintf("crop%dx%d", p.Width, p.Height), ""
	case model.EditExtractAudio:
		format := p.Format
		if format == "" {
			format = DefaultAudioFormat
		}
		return "audio", "." + format
	case model.EditRemoveAudio:
		return "noaudio", ""
	case model.EditConvert:
		return "converted", "." + p.Format
	case model.EditSpeed:
		return "speed" + formatSpeed(p.Speed), ""
	case model.EditRotate:
		return "rotated", ""
	case model.EditMerge:
		return "merged", MP4Extension
	case model.EditLogo:
		return "logo", ""
	case model.EditCompress:
		return "compressed", MP4Extension
	}
	return string(op), ""
}

// DefaultOutput derives <base>_<suffix><ext> next to input
func DefaultOutput(op model.EditOperation, p model.EditParams, input string) string {
	return DeriveOutput(op, p, input, "")
}

// DeriveOutput derives <base>_<suffix><ext> inside dir, or next to input
// when dir is empty
func DeriveOutput(op model.EditOperation, p model.EditParams, input, dir string) string {
	suffix, ext := OutputSuffix(op, p)
	srcExt := filepath.Ext(input)
	if ext == "" {
		ext = srcExt
	}
	base := strings.TrimSuffix(filepath.Base(input), srcExt)
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base+"_"+suffix+ext)
}

// formatSpeed prints whole factors with one decimal, so 2 becomes "2.0"
func formatSpeed(speed float64) string {
	s := strconv.FormatFloat(speed, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
