package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/srlehn/drmswap/display"
	"github.com/srlehn/drmswap/flip"
)

// statusLine rewrites a single terminal line with frame statistics.
type statusLine struct {
	out      *termenv.Output
	fd       int
	mode     display.Mode
	every    time.Duration
	last     time.Time
	label    lipgloss.Style
	value    lipgloss.Style
	warn     lipgloss.Style
	finished bool
}

func newStatusLine(w *os.File, mode display.Mode) *statusLine {
	out := termenv.NewOutput(w)
	r := lipgloss.NewRenderer(w, termenv.WithColorCache(true))
	return &statusLine{
		out:   out,
		fd:    int(w.Fd()),
		mode:  mode,
		every: 250 * time.Millisecond,
		label: r.NewStyle().Faint(true),
		value: r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: `#005f87`, Dark: `#5fd7ff`}),
		warn:  r.NewStyle().Bold(true).Foreground(lipgloss.Color(`#ff5f5f`)),
	}
}

// Report is a flip.Reporter. Updates are rate limited.
func (s *statusLine) Report(st flip.Stats) {
	now := time.Now()
	if now.Sub(s.last) < s.every {
		return
	}
	s.last = now
	s.out.ClearLine()
	_, _ = io.WriteString(s.out, "\r"+s.truncate(s.render(st)))
}

func (s *statusLine) render(st flip.Stats) string {
	fps := s.value
	// more than one refresh between frames
	if st.Delta > s.mode.FrameInterval()*3/2 {
		fps = s.warn
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		s.label.Render(`mode `), s.value.Render(s.mode.String()),
		s.label.Render(`  frames `), s.value.Render(fmt.Sprint(st.Frames)),
		s.label.Render(`  fps `), fps.Render(fmt.Sprintf(`%.1f`, st.InstantFPS())),
		s.label.Render(`  avg `), s.value.Render(fmt.Sprintf(`%.1f`, st.AverageFPS())),
	)
}

func (s *statusLine) truncate(line string) string {
	w, _, err := term.GetSize(s.fd)
	if err != nil || w <= 1 {
		return line
	}
	return truncate.StringWithTail(line, uint(w-1), `…`)
}

// Finish ends the status line.
func (s *statusLine) Finish() {
	if s == nil || s.finished || s.last.IsZero() {
		return
	}
	s.finished = true
	_, _ = io.WriteString(s.out, "\n")
}
