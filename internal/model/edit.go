package model

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
)

// EditOperation names one ffmpeg editing operation
type EditOperation string

const (
	EditResize       EditOperation = "resize"
	EditTrim         EditOperation = "trim"
	EditCrop         EditOperation = "crop"
	EditExtractAudio EditOperation = "extract-audio"
	EditRemoveAudio  EditOperation = "remove-audio"
	EditConvert      EditOperation = "convert"
	EditSpeed        EditOperation = "speed"
	EditRotate       EditOperation = "rotate"
	EditMerge        EditOperation = "merge"
	EditLogo         EditOperation = "logo"
	EditCompress     EditOperation = "compress"
)

// EditOperations lists every operation in menu order
func EditOperations() []EditOperation {
	return []EditOperation{
		EditResize, EditTrim, EditCrop, EditExtractAudio, EditRemoveAudio,
		EditConvert, EditSpeed, EditRotate, EditMerge, EditLogo, EditCompress,
	}
}

// ParseEditOperation returns the operation for a name
func ParseEditOperation(name string) (EditOperation, error) {
	for _, op := range EditOperations() {
		if string(op) == name {
			return op, nil
		}
	}
	return "", goerr.New("unknown edit operation", goerr.V("operation", name), goerr.T(ErrTagValidation))
}

// Rotation labels accepted by the rotate operation
type Rotation string

const (
	RotateCW90  Rotation = "cw90"
	RotateCCW90 Rotation = "ccw90"
	Rotate180   Rotation = "180"
	RotateHFlip Rotation = "hflip"
	RotateVFlip Rotation = "vflip"
)

// LogoPosition places the overlay of the logo operation
type LogoPosition string

const (
	LogoTopLeft     LogoPosition = "top-left"
	LogoTopRight    LogoPosition = "top-right"
	LogoBottomLeft  LogoPosition = "bottom-left"
	LogoBottomRight LogoPosition = "bottom-right"
	LogoCenter      LogoPosition = "center"
	LogoCustom      LogoPosition = "custom"
)

// EditParams holds the parameters of every operation; each operation reads
// only the fields it needs.
type EditParams struct {
	Width, Height int
	X, Y          int
	Start, End    string
	Format        string
	Speed         float64
	Rotation      Rotation

	LogoPath     string
	LogoPosition LogoPosition
	LogoX, LogoY string // overlay expressions for LogoCustom
	LogoScale    int    // logo width in px, 0 keeps the source size
	Opacity      float64
}

// EditRequest is one submitted edit action
type EditRequest struct {
	Operation EditOperation
	Inputs    []string
	Output    string
	Params    EditParams
}

// Validate checks parameter shape before ffmpeg is started
func (r EditRequest) Validate() error {
	if len(r.Inputs) == 0 {
		return goerr.New("no input files", goerr.V("operation", r.Operation), goerr.T(ErrTagValidation))
	}
	if r.Operation != EditMerge && len(r.Inputs) != 1 {
		return goerr.New("operation takes exactly one input",
			goerr.V("operation", r.Operation), goerr.V("count", len(r.Inputs)), goerr.T(ErrTagValidation))
	}

	p := r.Params
	switch r.Operation {
	case EditResize:
		if p.Width == 0 || p.Height == 0 || p.Width < -1 || p.Height < -1 {
			return goerr.New("resize needs width and height (-1 keeps aspect)",
				goerr.V("width", p.Width), goerr.V("height", p.Height), goerr.T(ErrTagValidation))
		}
	case EditCrop:
		if p.Width <= 0 || p.Height <= 0 || p.X < 0 || p.Y < 0 {
			return goerr.New("invalid crop rectangle",
				goerr.V("width", p.Width), goerr.V("height", p.Height),
				goerr.V("x", p.X), goerr.V("y", p.Y), goerr.T(ErrTagValidation))
		}
	case EditTrim:
		if p.Start == "" || p.End == "" {
			return goerr.New("trim needs start and end", goerr.T(ErrTagValidation))
		}
	case EditConvert:
		if p.Format == "" {
			return goerr.New("convert needs a target format", goerr.T(ErrTagValidation))
		}
	case EditSpeed:
		if !(p.Speed > 0) || math.IsInf(p.Speed, 0) {
			return goerr.New("speed must be positive and finite", goerr.V("speed", p.Speed), goerr.T(ErrTagValidation))
		}
	case EditLogo:
		if p.LogoPath == "" {
			return goerr.New("logo needs an image path", goerr.T(ErrTagValidation))
		}
		if p.LogoPosition == LogoCustom && (p.LogoX == "" || p.LogoY == "") {
			return goerr.New("custom logo position needs x and y", goerr.T(ErrTagValidation))
		}
	case EditExtractAudio, EditRemoveAudio, EditRotate, EditMerge, EditCompress:
	default:
		return goerr.New("unknown edit operation", goerr.V("operation", r.Operation), goerr.T(ErrTagValidation))
	}
	return nil
}
