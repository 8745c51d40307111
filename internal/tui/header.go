package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/fizzfib/internal/format"
)

// HeaderModel renders the title bar: name, target and elapsed time.
type HeaderModel struct {
	startTime time.Time
	endTime   time.Time
	version   string
	n         uint64
	width     int
}

// NewHeaderModel starts the elapsed clock now.
func NewHeaderModel(version string, n uint64) HeaderModel {
	return HeaderModel{startTime: time.Now(), version: version, n: n}
}

// SetDone freezes the elapsed timer.
func (h *HeaderModel) SetDone() {
	h.endTime = time.Now()
}

func (h *HeaderModel) Reset() {
	h.startTime = time.Now()
	h.endTime = time.Time{}
}

func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// Elapsed is the run time so far, or the total once SetDone was called.
func (h HeaderModel) Elapsed() time.Duration {
	if !h.endTime.IsZero() {
		return h.endTime.Sub(h.startTime)
	}
	return time.Since(h.startTime)
}

func (h HeaderModel) View() string {
	title := "fizzfib dashboard"
	if h.version != "" && h.version != "dev" {
		title += " " + h.version
	}
	left := titleStyle.Render(title) +
		dimStyle.Render(" | ") +
		accentStyle.Render(fmt.Sprintf("F(%d)", h.n)) +
		dimStyle.Render(" | ") +
		accentStyle.Render("Elapsed: "+format.FormatExecutionDuration(h.Elapsed()))

	gap := h.width - 2 - lipgloss.Width(left)
	if gap < 0 {
		gap = 0
	}
	return headerStyle.Render(left + strings.Repeat(" ", gap))
}
