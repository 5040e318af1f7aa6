// Package app is the terminal quiz runner.
package app

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizmaster/internal/explain"
	"github.com/abhisek/quizmaster/internal/quiz"
	"github.com/abhisek/quizmaster/internal/session"
	"github.com/abhisek/quizmaster/internal/ui/components"
)

// Explainer explains the correct answer to a question.
type Explainer interface {
	Explain(ctx context.Context, q *quiz.Question, a *quiz.Answer) explain.Explanation
}

// Options configures the runner.
type Options struct {
	// Explainer is optional. Without one, study mode shows the authored
	// explanation only.
	Explainer Explainer
	Log       logrus.FieldLogger
}

type phase int

const (
	phaseQuiz phase = iota
	phaseConfirmSubmit
	phaseJump
	phaseSummary
)

// Model is the root Bubble Tea model. It renders the machine's session
// and turns key presses into session actions.
type Model struct {
	ctx       context.Context
	machine   *session.Machine
	explainer Explainer
	log       logrus.FieldLogger

	phase  phase
	cursor int
	jump   components.NumberInput

	explanation *explain.Explanation
	explaining  bool

	// status is a one-line notice, such as a failed save.
	status  string
	summary *session.Summary

	width  int
	height int
}

// New returns a runner for the session held by m.
func New(ctx context.Context, m *session.Machine, opts Options) Model {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return Model{
		ctx:       ctx,
		machine:   m,
		explainer: opts.Explainer,
		log:       log,
	}
}

func (m Model) Init() tea.Cmd {
	s := m.machine.State()
	if s.Timer.Enabled && s.Live() {
		return tickCmd()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if m.phase == phaseSummary || !m.machine.State().Live() {
			return m, nil
		}
		m.dispatch(session.Tick{At: time.Time(msg)})
		if m.phase == phaseSummary {
			return m, nil
		}
		return m, tickCmd()

	case explainedMsg:
		if msg.Index == m.machine.State().CurrentIndex {
			exp := msg.Explanation
			m.explanation = &exp
			m.explaining = false
		}
		return m, nil

	case tea.KeyMsg:
		if m.phase == phaseJump {
			return m.handleJump(msg)
		}
		return m.handleKey(msg.String())
	}
	return m, nil
}

// Summary returns the results of the submitted session, or nil while the
// session is still running or was abandoned.
func (m Model) Summary() *session.Summary {
	return m.summary
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch m.phase {
	case phaseSummary:
		switch key {
		case "q", "enter", "esc", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case phaseConfirmSubmit:
		switch key {
		case "y", "enter":
			m.dispatch(session.Submit{})
			if m.phase != phaseSummary {
				m.phase = phaseQuiz
			}
		case "n", "esc":
			m.phase = phaseQuiz
		case "ctrl+c":
			m.dispatch(session.Abandon{})
			return m, tea.Quit
		}
		return m, nil
	}

	s := m.machine.State()
	q := s.Current()

	switch key {
	case "ctrl+c", "esc", "q":
		m.dispatch(session.Abandon{})
		return m, tea.Quit
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, max(itemCount(q)-1, 0))
	case "space", "enter", "x":
		m.activate(&s)
	case "K", "shift+up":
		m.moveItem(&s, -1)
	case "J", "shift+down":
		m.moveItem(&s, 1)
	case "right", "l":
		if q.Type == quiz.TypeMatching {
			m.cycleMatch(&s, 1)
		} else {
			m.dispatch(session.Next{})
		}
	case "left", "h":
		if q.Type == quiz.TypeMatching {
			m.cycleMatch(&s, -1)
		} else {
			m.dispatch(session.Prev{})
		}
	case "backspace", "delete":
		if q.Type == quiz.TypeMatching {
			m.dispatch(session.MatchPair{Left: m.cursor, Right: -1})
		}
	case "n", "tab":
		m.dispatch(session.Next{})
	case "p", "shift+tab":
		m.dispatch(session.Prev{})
	case "f":
		m.dispatch(session.ToggleFlag{})
	case "c":
		m.dispatch(session.CheckAnswer{})
	case "e":
		return m, m.requestExplanation()
	case "s":
		m.phase = phaseConfirmSubmit
	case "g":
		m.phase = phaseJump
		m.jump = components.NewNumberInput("Go to question", fmt.Sprintf("1-%d", len(s.Questions)), 3)
		return m, nil
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= 9 {
			m.dispatch(session.GoTo{Index: n - 1})
		}
	}
	return m, nil
}

func (m Model) handleJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.phase = phaseQuiz
		if n, err := m.jump.Value(); err == nil {
			m.dispatch(session.GoTo{Index: n - 1})
		}
		return m, nil
	case "esc":
		m.phase = phaseQuiz
		return m, nil
	case "ctrl+c":
		m.dispatch(session.Abandon{})
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

// activate answers with the item under the cursor.
func (m *Model) activate(s *session.Session) {
	q := s.Current()
	switch q.Type {
	case quiz.TypeChoice, quiz.TypeTrueFalse:
		m.dispatch(session.SelectOption{Index: m.cursor})
	case quiz.TypeOrdering:
		// Accept the order as displayed.
		m.dispatch(session.Arrange{Order: s.Arrangement(s.CurrentIndex)})
	case quiz.TypeMatching:
		m.cycleMatch(s, 1)
	}
}

// moveItem swaps the ordering item under the cursor with its neighbour.
func (m *Model) moveItem(s *session.Session, delta int) {
	q := s.Current()
	if q.Type != quiz.TypeOrdering {
		return
	}
	order := slices.Clone(s.Arrangement(s.CurrentIndex))
	to := m.cursor + delta
	if m.cursor >= len(order) || to < 0 || to >= len(order) {
		return
	}
	order[m.cursor], order[to] = order[to], order[m.cursor]
	m.dispatch(session.Arrange{Order: order})
	after := m.machine.State()
	if slices.Equal(after.Arrangement(after.CurrentIndex), order) {
		m.cursor = to
	}
}

// cycleMatch steps the right value assigned to the left prompt under the
// cursor through the displayed right values, then back to unassigned.
func (m *Model) cycleMatch(s *session.Session, step int) {
	display := s.Arrangement(s.CurrentIndex)
	if len(display) == 0 {
		return
	}

	pos := -1
	if a := s.CurrentAnswer(); a != nil && a.Kind == quiz.KindMatching {
		if right, ok := a.Matches[m.cursor]; ok {
			pos = slices.Index(display, right)
		}
	}

	// Positions run -1 (unassigned) through len-1.
	n := len(display) + 1
	next := ((pos+1+step)%n+n)%n - 1

	right := -1
	if next >= 0 {
		right = display[next]
	}
	m.dispatch(session.MatchPair{Left: m.cursor, Right: right})
}

func (m *Model) requestExplanation() tea.Cmd {
	s := m.machine.State()
	if !s.StudyMode || !s.Revealed || m.explaining || m.explanation != nil {
		return nil
	}
	idx := s.CurrentIndex
	q := s.Questions[idx]
	a := s.Answers[idx].Clone()

	if m.explainer == nil {
		exp := explain.Fallback(&q)
		m.explanation = &exp
		return nil
	}

	m.explaining = true
	ctx, explainer := m.ctx, m.explainer
	return func() tea.Msg {
		return explainedMsg{Index: idx, Explanation: explainer.Explain(ctx, &q, a)}
	}
}

// dispatch runs a through the machine and folds its outcome into the view
// state.
func (m *Model) dispatch(a session.Action) {
	before := m.machine.State().CurrentIndex

	out, err := m.machine.Dispatch(m.ctx, a)
	if err != nil {
		m.log.WithError(err).Error("session action failed")
		m.status = "Progress not saved: " + err.Error()
	}
	if out.Warning != nil {
		m.status = out.Warning.Error()
	}

	after := m.machine.State()
	if after.CurrentIndex != before {
		m.cursor = 0
		m.explanation = nil
		m.explaining = false
	}
	if out.Submitted {
		m.summary = session.BuildSummary(&after)
		m.phase = phaseSummary
	}
}

// itemCount is the number of cursor positions on q.
func itemCount(q *quiz.Question) int {
	if q.Type == quiz.TypeMatching {
		return len(q.Pairs)
	}
	return len(q.Options)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the program and blocks until the learner quits. It returns
// the summary when the session was submitted.
func Run(ctx context.Context, m *session.Machine, opts Options) (*session.Summary, error) {
	p := tea.NewProgram(New(ctx, m, opts), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	if fm, ok := final.(Model); ok {
		return fm.Summary(), nil
	}
	return nil, nil
}
