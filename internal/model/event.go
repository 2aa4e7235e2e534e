package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Level tags an activity line
type Level string

const (
	LevelOK   Level = "ok"
	LevelErr  Level = "err"
	LevelInfo Level = "info"
)

// Icon returns the glyph printed in front of a line
func (l Level) Icon() string {
	switch l {
	case LevelOK:
		return "✓"
	case LevelErr:
		return "✗"
	default:
		return "•"
	}
}

// Event is one entry of the activity channel: either a log line or, when
// Progress is set, a progress-bar update.
type Event struct {
	Time     time.Time
	Level    Level
	Activity string
	Text     string
	Progress *float64
}

// IsProgress reports whether the event only carries a progress value
func (e Event) IsProgress() bool {
	return e.Progress != nil
}

// ActivityIDPrefix prefixes every activity identifier
const ActivityIDPrefix = "act-"

// NewActivityID returns a time-ordered identifier for one submitted action
func NewActivityID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(ActivityIDPrefix+"%d", time.Now().UnixNano())
	}
	return ActivityIDPrefix + id.String()
}
