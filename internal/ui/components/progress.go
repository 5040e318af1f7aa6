package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizmaster/internal/ui/theme"
)

// Cell is the state of one question in a QuestionStrip.
type Cell struct {
	Answered bool
	Flagged  bool
}

// QuestionStrip shows one cell per question with the current question
// highlighted, followed by an "answered/total" count. Quizzes with more
// questions than fit in Width collapse to a proportional bar.
type QuestionStrip struct {
	Cells   []Cell
	Current int
	Width   int
}

var (
	cellOpen     = lipgloss.NewStyle().Foreground(theme.Border)
	cellAnswered = lipgloss.NewStyle().Foreground(theme.Secondary)
	cellFlagged  = lipgloss.NewStyle().Foreground(theme.Accent)
	cellCurrent  = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	countStyle   = lipgloss.NewStyle().Foreground(theme.TextDim)
)

func (s QuestionStrip) answered() int {
	n := 0
	for _, c := range s.Cells {
		if c.Answered {
			n++
		}
	}
	return n
}

func (s QuestionStrip) View() string {
	n := len(s.Cells)
	count := countStyle.Render(fmt.Sprintf("  %d/%d answered", s.answered(), n))
	room := s.Width - lipgloss.Width(count)

	if n == 0 {
		return count
	}
	if 2*n-1 <= room {
		cells := make([]string, n)
		for i, c := range s.Cells {
			cells[i] = s.cell(i, c)
		}
		return strings.Join(cells, " ") + count
	}

	width := max(room, 4)
	filled := s.answered() * width / n
	return cellAnswered.Render(strings.Repeat("━", filled)) +
		cellOpen.Render(strings.Repeat("─", width-filled)) + count
}

func (s QuestionStrip) cell(i int, c Cell) string {
	glyph, style := "○", cellOpen
	switch {
	case c.Flagged:
		glyph, style = "⚑", cellFlagged
	case c.Answered:
		glyph, style = "●", cellAnswered
	}
	if i == s.Current {
		style = cellCurrent
		if glyph == "○" {
			glyph = "◉"
		}
	}
	return style.Render(glyph)
}
