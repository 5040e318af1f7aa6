package quiz

import "slices"

// AnswerKind identifies which field of an Answer carries the response.
type AnswerKind string

const (
	// KindSelection is a set of selected option indices (choice, truefalse).
	KindSelection AnswerKind = "selection"

	// KindArrangement is a permutation of option indices (ordering).
	KindArrangement AnswerKind = "arrangement"

	// KindMatching maps left indices to right indices (matching).
	KindMatching AnswerKind = "matching"
)

// Answer is a learner's response to one question. A nil *Answer means the
// question has not been answered, which is distinct from a wrong answer.
type Answer struct {
	Kind AnswerKind `json:"kind"`

	// Selected holds the chosen option indices for KindSelection. Order is
	// not significant.
	Selected []int `json:"selected,omitempty"`

	// Order holds the learner's arrangement for KindArrangement.
	Order []int `json:"order,omitempty"`

	// Matches holds left-to-right assignments for KindMatching. Unmatched
	// lefts are absent.
	Matches map[int]int `json:"matches,omitempty"`
}

// Select returns a selection answer.
func Select(indices ...int) *Answer {
	return &Answer{Kind: KindSelection, Selected: indices}
}

// Arrange returns an arrangement answer.
func Arrange(order ...int) *Answer {
	return &Answer{Kind: KindArrangement, Order: order}
}

// Match returns a matching answer.
func Match(m map[int]int) *Answer {
	return &Answer{Kind: KindMatching, Matches: m}
}

// Clone returns a deep copy of a, or nil if a is nil.
func (a *Answer) Clone() *Answer {
	if a == nil {
		return nil
	}
	c := &Answer{Kind: a.Kind}
	if a.Selected != nil {
		c.Selected = slices.Clone(a.Selected)
	}
	if a.Order != nil {
		c.Order = slices.Clone(a.Order)
	}
	if a.Matches != nil {
		c.Matches = make(map[int]int, len(a.Matches))
		for k, v := range a.Matches {
			c.Matches[k] = v
		}
	}
	return c
}

// Empty reports whether a carries no response at all.
func (a *Answer) Empty() bool {
	if a == nil {
		return true
	}
	switch a.Kind {
	case KindSelection:
		return len(a.Selected) == 0
	case KindArrangement:
		return len(a.Order) == 0
	case KindMatching:
		return len(a.Matches) == 0
	}
	return true
}

// Has reports whether idx is among the selected indices.
func (a *Answer) Has(idx int) bool {
	return a != nil && slices.Contains(a.Selected, idx)
}

// IsCorrect decides whether a answers q correctly. It never panics: nil
// answers and answers of the wrong kind for the question type are simply
// incorrect.
//
// Choice questions require the selected set to equal the correct set
// exactly, so both subsets and supersets are wrong. Ordering and matching
// rely on the parser storing options in correct order, making the
// identity permutation the only correct response.
func IsCorrect(q *Question, a *Answer) bool {
	if q == nil || a == nil {
		return false
	}
	switch q.Type {
	case TypeChoice:
		if a.Kind != KindSelection {
			return false
		}
		return sameSet(a.Selected, q.Correct)
	case TypeTrueFalse:
		if a.Kind != KindSelection || len(a.Selected) != 1 || len(q.Correct) != 1 {
			return false
		}
		return a.Selected[0] == q.Correct[0]
	case TypeOrdering:
		if a.Kind != KindArrangement {
			return false
		}
		return isIdentity(a.Order, len(q.Options))
	case TypeMatching:
		if a.Kind != KindMatching {
			return false
		}
		n := len(q.Pairs)
		if n == 0 || len(a.Matches) != n {
			return false
		}
		for i := 0; i < n; i++ {
			right, ok := a.Matches[i]
			if !ok || right != i {
				return false
			}
		}
		return true
	}
	return false
}

// Score counts the correctly answered questions. Percentage is rounded to
// the nearest integer and is 0 for an empty quiz.
func Score(questions []Question, answers []*Answer) (score, total, percentage int) {
	total = len(questions)
	for i := range questions {
		if i < len(answers) && IsCorrect(&questions[i], answers[i]) {
			score++
		}
	}
	if total > 0 {
		percentage = (score*200 + total) / (total * 2)
	}
	return score, total, percentage
}

func sameSet(got, want []int) bool {
	gs := dedupe(got)
	ws := dedupe(want)
	if len(gs) != len(ws) || len(ws) == 0 {
		return false
	}
	for _, v := range gs {
		if !slices.Contains(ws, v) {
			return false
		}
	}
	return true
}

func dedupe(xs []int) []int {
	out := slices.Clone(xs)
	slices.Sort(out)
	return slices.Compact(out)
}

func isIdentity(order []int, n int) bool {
	if n == 0 || len(order) != n {
		return false
	}
	for i, v := range order {
		if v != i {
			return false
		}
	}
	return true
}
