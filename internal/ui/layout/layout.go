// Package layout draws the frame around the quiz runner: a title bar,
// the body, and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizmaster/internal/ui/theme"
)

const (
	MinWidth  = 60
	MinHeight = 20
)

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// Frame describes one full screen.
type Frame struct {
	Title  string
	Status string
	Hints  []KeyHint
	Width  int
	Height int
}

var (
	barStyle = lipgloss.NewStyle().
			Background(theme.BgCard).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border)
	brandStyle  = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(theme.Accent)
	keyStyle    = lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
)

// TooSmall reports whether the terminal is below the minimum size.
func (f Frame) TooSmall() bool {
	return f.Width < MinWidth || f.Height < MinHeight
}

// Render draws body inside the frame. A terminal below the minimum
// size gets a resize notice instead.
func (f Frame) Render(body string) string {
	if f.TooSmall() {
		return lipgloss.NewStyle().
			Width(f.Width).
			Height(f.Height).
			Align(lipgloss.Center).
			Foreground(theme.Text).
			Render(fmt.Sprintf("Terminal too small (%dx%d).\n\nResize to at least %dx%d.",
				f.Width, f.Height, MinWidth, MinHeight))
	}

	header := f.header()
	footer := f.footer()
	// Border rows are part of the rendered height.
	bodyHeight := max(f.Height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	main := lipgloss.NewStyle().Width(f.Width).Height(bodyHeight).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, header, main, footer)
}

// header puts the brand on the left, the title in the middle and the
// status on the right.
func (f Frame) header() string {
	inner := max(f.Width-4, 0)
	left := brandStyle.Render(" quizmaster")
	right := statusStyle.Render(f.Status)
	title := theme.Body.Render(f.Title)

	free := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if lipgloss.Width(title) > free-2 {
		title = ""
	}
	pad := max(free-lipgloss.Width(title), 2)
	line := left + strings.Repeat(" ", pad/2) + title + strings.Repeat(" ", pad-pad/2) + right
	return barStyle.Width(f.Width).Render(line)
}

func (f Frame) footer() string {
	parts := make([]string, len(f.Hints))
	for i, h := range f.Hints {
		parts[i] = keyStyle.Render(h.Key) + " " + theme.Dim.Render(h.Description)
	}
	return barStyle.Width(f.Width).Render(" " + strings.Join(parts, "  ·  "))
}
