package model

// ProgressStage is the stage reported by the extraction library for one file
type ProgressStage string

const (
	// ProgressStageStarting means the library is preparing the download
	ProgressStageStarting ProgressStage = "starting"

	// ProgressStageDownloading means bytes are being transferred
	ProgressStageDownloading ProgressStage = "downloading"

	// ProgressStagePostProcessing means the file is being merged or converted
	ProgressStagePostProcessing ProgressStage = "post_processing"

	// ProgressStageFinished means the file transfer completed
	ProgressStageFinished ProgressStage = "finished"

	// ProgressStageError means the transfer failed
	ProgressStageError ProgressStage = "error"
)

// String returns the string representation of ProgressStage
func (s ProgressStage) String() string {
	return string(s)
}

// IsActive returns true while the file is still being worked on
func (s ProgressStage) IsActive() bool {
	return s == ProgressStageStarting || s == ProgressStageDownloading || s == ProgressStagePostProcessing
}

// IsFinished returns true if the stage is terminal (finished or error)
func (s ProgressStage) IsFinished() bool {
	return s == ProgressStageFinished || s == ProgressStageError
}

// ParseProgressStage maps the library's status string onto a stage.
// Unknown values are treated as downloading.
func ParseProgressStage(v string) ProgressStage {
	switch ProgressStage(v) {
	case ProgressStageStarting, ProgressStageDownloading, ProgressStagePostProcessing,
		ProgressStageFinished, ProgressStageError:
		return ProgressStage(v)
	}
	return ProgressStageDownloading
}

// ProgressEvent is one progress report for one file
type ProgressEvent struct {
	Stage           ProgressStage
	TotalBytes      int64
	DownloadedBytes int64
	Filename        string
	Title           string
}

// Fraction returns downloaded/total clamped to [0,1], or 0 when the total is unknown
func (e ProgressEvent) Fraction() float64 {
	if e.Stage == ProgressStageFinished {
		return 1
	}
	if e.TotalBytes <= 0 {
		return 0
	}
	f := float64(e.DownloadedBytes) / float64(e.TotalBytes)
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}

// Percent returns the fraction as an integer percentage
func (e ProgressEvent) Percent() int {
	return int(e.Fraction() * 100)
}
