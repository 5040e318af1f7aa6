// Package theme holds the colors and styles of the quiz runner.
package theme

import "charm.land/lipgloss/v2"

var (
	Primary   = lipgloss.Color("#60A5FA") // question titles, cursor
	Secondary = lipgloss.Color("#2DD4BF") // answered questions
	Accent    = lipgloss.Color("#FBBF24") // timer, flags, warnings
	Success   = lipgloss.Color("#4ADE80")
	Error     = lipgloss.Color("#F87171")
	Text      = lipgloss.Color("#E2E8F0")
	TextDim   = lipgloss.Color("#8391A7")
	BgCard    = lipgloss.Color("#172033")
	Border    = lipgloss.Color("#3B4A63")
)

var (
	Title = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Body  = lipgloss.NewStyle().Foreground(Text)
	Hint  = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
	Dim   = lipgloss.NewStyle().Foreground(TextDim)
	Warn  = lipgloss.NewStyle().Foreground(Accent)

	// Code frames fenced code blocks inside a question.
	Code = lipgloss.NewStyle().Foreground(Text).Background(BgCard).Padding(0, 1)
)

// Option line styles.
var (
	Selected   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = lipgloss.NewStyle().Foreground(Text)
	Correct    = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect  = lipgloss.NewStyle().Foreground(Error).Bold(true)
)
