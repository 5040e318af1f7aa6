package components

import (
	"strconv"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizmaster/internal/ui/theme"
)

// NumberInput is a single-line prompt that accepts digits only.
type NumberInput struct {
	Label string
	Model textinput.Model
}

// NewNumberInput creates a focused input accepting up to digits characters.
func NewNumberInput(label, placeholder string, digits int) NumberInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	if digits > 0 {
		ti.CharLimit = digits
	}
	ti.Focus()
	return NumberInput{Label: label, Model: ti}
}

// Update forwards msg to the text input, dropping non-digit key presses.
func (n NumberInput) Update(msg tea.Msg) (NumberInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		key := kmsg.String()
		if len(key) == 1 && (key[0] < '0' || key[0] > '9') {
			return n, nil
		}
	}
	var cmd tea.Cmd
	n.Model, cmd = n.Model.Update(msg)
	return n, cmd
}

// View renders the label and the input.
func (n NumberInput) View() string {
	label := lipgloss.NewStyle().Foreground(theme.TextDim).Render(n.Label)
	return label + " " + n.Model.View()
}

// Value returns the entered number.
func (n NumberInput) Value() (int, error) {
	return strconv.Atoi(n.Model.Value())
}
