package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/ytget/clipforge/internal/model"
)

// Activity line layout
const (
	TimeLayout          = "15:04:05"
	ProgressBarWidth    = 30
	ProgressLabelFormat = "%3d%%"
)

// printer renders activity events, one line per log event. Progress events
// redraw a bar in place when the output is a terminal and are skipped
// otherwise.
type printer struct {
	w        io.Writer
	bar      bool
	barShown bool

	ok   *color.Color
	err  *color.Color
	info *color.Color
}

func newPrinter(w io.Writer, noColor bool) *printer {
	p := &printer{
		w:    w,
		ok:   color.New(color.FgGreen),
		err:  color.New(color.FgRed),
		info: color.New(color.FgBlue),
	}
	if f, ok := w.(*os.File); ok && !noColor {
		p.bar = isatty.IsTerminal(f.Fd())
	}
	if noColor {
		for _, c := range []*color.Color{p.ok, p.err, p.info} {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) colorOf(level model.Level) *color.Color {
	switch level {
	case model.LevelOK:
		return p.ok
	case model.LevelErr:
		return p.err
	default:
		return p.info
	}
}

// Print writes one event
func (p *printer) Print(ev model.Event) {
	if ev.IsProgress() {
		if p.bar {
			p.drawBar(*ev.Progress)
		}
		return
	}
	p.clearBar()
	fmt.Fprintf(p.w, "[%s] %s\n", ev.Time.Format(TimeLayout), p.colorOf(ev.Level).Sprintf("%s %s", ev.Level.Icon(), ev.Text))
}

// Drain prints events until the channel is closed
func (p *printer) Drain(events <-chan model.Event) {
	for ev := range events {
		p.Print(ev)
	}
	p.clearBar()
}

func (p *printer) drawBar(fraction float64) {
	filled := int(fraction * ProgressBarWidth)
	bar := strings.Repeat("#", filled) + strings.Repeat("-", ProgressBarWidth-filled)
	fmt.Fprintf(p.w, "\r[%s] "+ProgressLabelFormat, bar, int(fraction*100))
	p.barShown = true
}

func (p *printer) clearBar() {
	if p.barShown {
		fmt.Fprint(p.w, "\r\033[K")
		p.barShown = false
	}
}
