package dashboard

import (
	"fmt"
	"io"

	"github.com/mitchellh/colorstring"

	"github.com/davzula/blinkwatch/internal/blink"
)

const panelLines = 3

// Panel renders the live session read-out in place on a terminal. It
// only consumes plain values from the frame result; whether and how
// anything is drawn is its business alone.
type Panel struct {
	out      io.Writer
	userName string
	drawn    bool
}

func New(out io.Writer, userName string) *Panel {
	return &Panel{out: out, userName: userName}
}

// Render redraws the panel for one frame.
func (p *Panel) Render(res blink.FrameResult, faceVisible bool) {
	if p.drawn {
		// Rewind over the previous panel
		fmt.Fprintf(p.out, "\033[%dA", panelLines)
	}
	p.drawn = true

	fmt.Fprintf(p.out, "\033[2K👁  blinkwatch - %s\n", p.userName)
	if faceVisible {
		fmt.Fprintf(p.out, "\033[2KBlinks: %d   Rate: %d/min   %s\n",
			res.TotalBlinks, res.LiveRate, statusText(res.Status))
	} else {
		fmt.Fprintf(p.out, "\033[2KBlinks: %d   %s\n",
			res.TotalBlinks, colorstring.Color("[red]No face detected - position yourself in view"))
	}
	fmt.Fprintf(p.out, "\033[2KSession: %s   Healthy: %d-%d blinks/min\n",
		FormatElapsed(res.Elapsed), blink.MinHealthyRate, blink.MaxHealthyRate)
}

func statusText(s blink.Status) string {
	switch s {
	case blink.StatusTooLow:
		return colorstring.Color("[red]" + s.Label())
	case blink.StatusTooHigh:
		return colorstring.Color("[yellow]" + s.Label())
	default:
		return colorstring.Color("[green]" + s.Label())
	}
}
