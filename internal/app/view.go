package app

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizmaster/internal/quiz"
	"github.com/abhisek/quizmaster/internal/session"
	"github.com/abhisek/quizmaster/internal/ui/components"
	"github.com/abhisek/quizmaster/internal/ui/layout"
	"github.com/abhisek/quizmaster/internal/ui/theme"
)

var (
	quizHints = []layout.KeyHint{
		{Key: "↑↓", Description: "Move"},
		{Key: "Space", Description: "Select"},
		{Key: "n/p", Description: "Next/Prev"},
		{Key: "g", Description: "Go to"},
		{Key: "f", Description: "Flag"},
		{Key: "s", Description: "Submit"},
		{Key: "q", Description: "Quit"},
	}
	studyHints = []layout.KeyHint{
		{Key: "c", Description: "Check"},
		{Key: "e", Description: "Explain"},
	}
	orderingHints = []layout.KeyHint{{Key: "J/K", Description: "Move item"}}
	matchingHints = []layout.KeyHint{{Key: "←→", Description: "Pick match"}}
	confirmHints  = []layout.KeyHint{{Key: "y", Description: "Submit"}, {Key: "n", Description: "Keep going"}}
	jumpHints     = []layout.KeyHint{{Key: "Enter", Description: "Go"}, {Key: "Esc", Description: "Cancel"}}
	summaryHints  = []layout.KeyHint{{Key: "Enter", Description: "Done"}}
	letters       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.SetContent(m.render())
	return v
}

// render draws the whole frame for the current phase.
func (m Model) render() string {
	f := layout.Frame{Width: m.width, Height: m.height}
	if f.Width == 0 || f.Height == 0 {
		f.Width, f.Height = layout.MinWidth, layout.MinHeight
	}
	if f.TooSmall() {
		return f.Render("")
	}

	s := m.machine.State()
	f.Title = s.QuizTitle
	f.Status = m.headerStatus(&s)

	var content string
	switch m.phase {
	case phaseSummary:
		content = m.summaryView(&s)
		f.Hints = summaryHints
	case phaseConfirmSubmit:
		content = m.confirmView(&s)
		f.Hints = confirmHints
	case phaseJump:
		content = m.questionView(&s) + "\n  " + m.jump.View() + "\n"
		f.Hints = jumpHints
	default:
		content = m.questionView(&s)
		f.Hints = m.hints(&s)
	}
	return f.Render(content)
}

func (m Model) headerStatus(s *session.Session) string {
	status := fmt.Sprintf("Q %d/%d", s.CurrentIndex+1, len(s.Questions))
	if s.Timer.Enabled {
		rem := s.Timer.RemainingSeconds
		status += fmt.Sprintf(" · %02d:%02d", rem/60, rem%60)
	}
	return status + "  "
}

func (m Model) hints(s *session.Session) []layout.KeyHint {
	hints := slices.Clone(quizHints)
	switch s.Current().Type {
	case quiz.TypeOrdering:
		hints = append(hints, orderingHints...)
	case quiz.TypeMatching:
		hints = append(hints, matchingHints...)
	}
	if s.StudyMode {
		hints = append(hints, studyHints...)
	}
	return hints
}

func (m Model) questionView(s *session.Session) string {
	q := s.Current()
	var b strings.Builder

	strip := components.QuestionStrip{
		Cells:   make([]components.Cell, len(s.Questions)),
		Current: s.CurrentIndex,
		Width:   min(m.width-4, 72),
	}
	for i := range strip.Cells {
		strip.Cells[i] = components.Cell{Answered: !s.Answers[i].Empty(), Flagged: s.IsFlagged(i)}
	}
	b.WriteString("  " + strip.View() + "\n\n")

	title := fmt.Sprintf("Question %d", s.CurrentIndex+1)
	if s.IsFlagged(s.CurrentIndex) {
		title += "  ⚑"
	}
	b.WriteString("  " + theme.Title.Render(title) + "\n")
	b.WriteString("  " + theme.Body.Render(q.Question) + "\n")
	if q.IsMultiSelect() {
		b.WriteString("  " + theme.Hint.Render("Select all that apply") + "\n")
	}

	if q.Code != "" {
		b.WriteString("\n")
		if q.CodeLanguage != "" {
			b.WriteString("  " + theme.Dim.Render(q.CodeLanguage) + "\n")
		}
		for _, line := range strings.Split(q.Code, "\n") {
			b.WriteString("  " + theme.Code.Render(line) + "\n")
		}
	}
	if q.Image != "" {
		alt := q.ImageAlt
		if alt == "" {
			alt = "image"
		}
		b.WriteString("  " + theme.Dim.Render("["+alt+"] "+q.Image) + "\n")
	}
	b.WriteString("\n")

	switch q.Type {
	case quiz.TypeOrdering:
		b.WriteString(m.orderingView(s))
	case quiz.TypeMatching:
		b.WriteString(m.matchingView(s))
	default:
		b.WriteString(m.optionsView(s))
	}

	if s.StudyMode && s.Revealed {
		b.WriteString("\n" + m.revealView(s))
	}
	if m.status != "" {
		b.WriteString("\n  " + theme.Warn.Render(m.status) + "\n")
	}
	return b.String()
}

func (m Model) optionsView(s *session.Session) string {
	q := s.Current()
	a := s.CurrentAnswer()

	list := components.OptionList{
		Labels:  make([]string, len(q.Options)),
		Items:   q.Options,
		Marks:   make([]components.Mark, len(q.Options)),
		Cursor:  m.cursor,
		Focused: !s.Revealed,
	}
	for i := range q.Options {
		if q.Type == quiz.TypeChoice && i < len(letters) {
			list.Labels[i] = string(letters[i]) + "."
		}
		selected := a.Has(i)
		correct := slices.Contains(q.Correct, i)
		switch {
		case s.Revealed && correct && selected:
			list.Marks[i] = components.MarkCorrect
		case s.Revealed && selected:
			list.Marks[i] = components.MarkIncorrect
		case s.Revealed && correct:
			list.Marks[i] = components.MarkMissed
		case selected:
			list.Marks[i] = components.MarkSelected
		}
	}
	return list.View()
}

func (m Model) orderingView(s *session.Session) string {
	q := s.Current()
	order := s.Arrangement(s.CurrentIndex)
	answered := s.CurrentAnswer() != nil

	list := components.OptionList{
		Labels:  make([]string, len(order)),
		Items:   make([]string, len(order)),
		Marks:   make([]components.Mark, len(order)),
		Cursor:  m.cursor,
		Focused: !s.Revealed,
	}
	for pos, idx := range order {
		list.Labels[pos] = fmt.Sprintf("%d.", pos+1)
		list.Items[pos] = q.Options[idx]
		switch {
		case s.Revealed && idx == pos:
			list.Marks[pos] = components.MarkCorrect
		case s.Revealed:
			list.Marks[pos] = components.MarkIncorrect
		case answered:
			list.Marks[pos] = components.MarkSelected
		}
	}

	out := list.View()
	if !answered {
		out += "\n  " + theme.Hint.Render("Press space to accept this order") + "\n"
	}
	return out
}

func (m Model) matchingView(s *session.Session) string {
	q := s.Current()
	a := s.CurrentAnswer()

	list := components.OptionList{
		Labels:  make([]string, len(q.Pairs)),
		Items:   make([]string, len(q.Pairs)),
		Marks:   make([]components.Mark, len(q.Pairs)),
		Cursor:  m.cursor,
		Focused: !s.Revealed,
	}
	for i, p := range q.Pairs {
		list.Labels[i] = p.Left
		right := "?"
		matched := false
		if a != nil {
			if r, ok := a.Matches[i]; ok && r >= 0 && r < len(q.Pairs) {
				right = q.Pairs[r].Right
				matched = true
				if s.Revealed && r == i {
					list.Marks[i] = components.MarkCorrect
				}
			}
		}
		list.Items[i] = "→ " + right
		switch {
		case s.Revealed && list.Marks[i] != components.MarkCorrect:
			list.Marks[i] = components.MarkIncorrect
		case !s.Revealed && matched:
			list.Marks[i] = components.MarkSelected
		}
	}

	var choices []string
	for _, r := range s.Arrangement(s.CurrentIndex) {
		choices = append(choices, q.Pairs[r].Right)
	}
	return list.View() + "\n  " + theme.Dim.Render("Choices: "+strings.Join(choices, " · ")) + "\n"
}

func (m Model) revealView(s *session.Session) string {
	var b strings.Builder
	if s.LastCheckCorrect {
		b.WriteString("  " + theme.Correct.Render("Correct!"))
		if s.Streak > 1 {
			b.WriteString(theme.Dim.Render(fmt.Sprintf("  streak %d", s.Streak)))
		}
	} else {
		b.WriteString("  " + theme.Incorrect.Render("Not quite.") + " " +
			theme.Dim.Render("Answer: "+s.Current().CorrectText()))
	}
	b.WriteString("\n")

	switch {
	case m.explaining:
		b.WriteString("  " + theme.Hint.Render("Thinking...") + "\n")
	case m.explanation != nil:
		b.WriteString("  💡 " + theme.Body.Render(m.explanation.Text) + "\n")
		if m.explanation.Misconception != "" {
			b.WriteString("  " + theme.Dim.Render(m.explanation.Misconception) + "\n")
		}
	case s.Current().Explanation != "":
		b.WriteString("  💡 " + theme.Body.Render(s.Current().Explanation) + "\n")
	}
	return b.String()
}

func (m Model) confirmView(s *session.Session) string {
	var b strings.Builder
	b.WriteString("\n  " + theme.Title.Render("Submit your answers?") + "\n\n")
	b.WriteString(fmt.Sprintf("  %d of %d questions answered\n", s.Answered(), len(s.Questions)))
	if unanswered := len(s.Questions) - s.Answered(); unanswered > 0 {
		b.WriteString("  " + theme.Warn.Render(fmt.Sprintf("%d unanswered", unanswered)) + "\n")
	}
	if len(s.Flags) > 0 {
		b.WriteString("  " + theme.Warn.Render(fmt.Sprintf("%d flagged for review", len(s.Flags))) + "\n")
	}
	return b.String()
}

func (m Model) summaryView(s *session.Session) string {
	sum := m.summary
	var b strings.Builder

	b.WriteString("\n  " + theme.Title.Render("Results") + "\n\n")
	b.WriteString(fmt.Sprintf("  Score: %d/%d (%d%%)\n", sum.Score, sum.Total, sum.Percentage))
	if sum.Duration > 0 {
		b.WriteString(fmt.Sprintf("  Time: %s\n", sum.Duration))
	}
	if s.StudyMode {
		b.WriteString(fmt.Sprintf("  Best streak: %d\n", sum.MaxStreak))
	}
	b.WriteString("\n")

	for _, t := range []quiz.Type{quiz.TypeChoice, quiz.TypeTrueFalse, quiz.TypeOrdering, quiz.TypeMatching} {
		tr, ok := sum.ByType[t]
		if !ok {
			continue
		}
		b.WriteString("  " + theme.Dim.Render(fmt.Sprintf("%-10s %d/%d", t, tr.Correct, tr.Total)) + "\n")
	}

	if len(sum.Missed) > 0 {
		b.WriteString("\n  " + theme.Incorrect.Render("Missed") + "\n")
		for _, i := range sum.Missed {
			q := &s.Questions[i]
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, q.Question))
			b.WriteString("     " + theme.Dim.Render("Answer: "+q.CorrectText()) + "\n")
		}
	}
	if len(sum.Unanswered) > 0 {
		b.WriteString("\n  " + theme.Warn.Render(fmt.Sprintf("%d unanswered", len(sum.Unanswered))) + "\n")
	}
	if m.status != "" {
		b.WriteString("\n  " + theme.Warn.Render(m.status) + "\n")
	}
	return b.String()
}
