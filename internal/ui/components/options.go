package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizmaster/internal/ui/theme"
)

// Mark is the display state of one option line.
type Mark int

const (
	MarkNone Mark = iota
	MarkSelected
	MarkCorrect
	MarkIncorrect

	// MarkMissed is a correct option the learner did not choose.
	MarkMissed
)

// OptionList renders a labelled list of options with a cursor.
type OptionList struct {
	Labels []string
	Items  []string
	Marks  []Mark
	Cursor int

	// Focused hides the cursor when false.
	Focused bool
}

// View renders the list, one option per line.
func (o OptionList) View() string {
	var b strings.Builder
	for i, item := range o.Items {
		prefix := "  "
		if o.Focused && i == o.Cursor {
			prefix = "▸ "
		}

		label := ""
		if i < len(o.Labels) && o.Labels[i] != "" {
			label = o.Labels[i] + "  "
		}

		mark := MarkNone
		if i < len(o.Marks) {
			mark = o.Marks[i]
		}

		line := prefix + glyph(mark) + " " + label + item
		b.WriteString(styleFor(mark, o.Focused && i == o.Cursor).Render(line))
		b.WriteByte('\n')
	}
	return b.String()
}

func glyph(m Mark) string {
	switch m {
	case MarkSelected:
		return "●"
	case MarkCorrect:
		return "✓"
	case MarkIncorrect:
		return "✗"
	case MarkMissed:
		return "○"
	}
	return "○"
}

func styleFor(m Mark, atCursor bool) lipgloss.Style {
	switch m {
	case MarkCorrect:
		return theme.Correct
	case MarkIncorrect:
		return theme.Incorrect
	case MarkMissed:
		return lipgloss.NewStyle().Foreground(theme.Success)
	}
	if atCursor || m == MarkSelected {
		return theme.Selected
	}
	return theme.Unselected
}
