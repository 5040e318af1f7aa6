package quiz

import (
	"strings"
	"time"
)

// Type determines the shape of a question's answerable fields.
type Type string

const (
	// TypeChoice is a lettered multiple-choice question. More than one
	// correct index makes it a select-all question.
	TypeChoice Type = "choice"

	// TypeTrueFalse has the fixed options "True" and "False".
	TypeTrueFalse Type = "truefalse"

	// TypeMatching pairs left-hand prompts with right-hand values.
	TypeMatching Type = "matching"

	// TypeOrdering asks for items to be arranged in their correct order.
	TypeOrdering Type = "ordering"
)

// Valid reports whether t is one of the known question types.
func (t Type) Valid() bool {
	switch t {
	case TypeChoice, TypeTrueFalse, TypeMatching, TypeOrdering:
		return true
	}
	return false
}

// TrueFalseOptions are the options every truefalse question carries.
var TrueFalseOptions = []string{"True", "False"}

// Pair is one left/right association of a matching question.
type Pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Question is one quiz item.
//
// Empty strings stand in for absent optional fields (code, image,
// explanation).
type Question struct {
	// Question is the prompt text.
	Question string `json:"question"`

	// Type determines how Options and Correct are interpreted.
	Type Type `json:"type" validate:"question_type"`

	// Options are the answerable choices for choice and truefalse, the
	// items for ordering (stored already in correct order), and the
	// right-hand values for matching.
	Options []string `json:"options"`

	// Correct holds indices into Options. For ordering and matching it is
	// always the identity permutation: position encodes correctness.
	Correct []int `json:"correct"`

	// Pairs is populated only for matching questions.
	Pairs []Pair `json:"pairs,omitempty"`

	Code         string `json:"code,omitempty"`
	CodeLanguage string `json:"codeLanguage,omitempty"`
	Image        string `json:"image,omitempty"`
	ImageAlt     string `json:"imageAlt,omitempty"`

	// OptionImages maps option index to an image URL (choice only).
	OptionImages map[int]string `json:"optionImages,omitempty"`

	// Explanation is shown after the question is answered.
	Explanation string `json:"explanation,omitempty"`
}

// IsMultiSelect reports whether q is a choice question with more than one
// correct option.
func (q *Question) IsMultiSelect() bool {
	return q.Type == TypeChoice && len(q.Correct) > 1
}

// CorrectText renders the correct answer as human-readable text.
func (q *Question) CorrectText() string {
	switch q.Type {
	case TypeMatching:
		parts := make([]string, 0, len(q.Pairs))
		for _, p := range q.Pairs {
			parts = append(parts, p.Left+" => "+p.Right)
		}
		return strings.Join(parts, "; ")
	case TypeOrdering:
		return strings.Join(q.Options, ", ")
	}
	var parts []string
	for _, idx := range q.Correct {
		if idx >= 0 && idx < len(q.Options) {
			parts = append(parts, q.Options[idx])
		}
	}
	return strings.Join(parts, ", ")
}

// Quiz is a titled collection of questions.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
	IsPublic    bool       `json:"isPublic"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Attempt is the record of one submitted session.
type Attempt struct {
	ID               string    `json:"id"`
	QuizID           string    `json:"quizId"`
	Score            int       `json:"score"`
	Total            int       `json:"total"`
	Percentage       int       `json:"percentage"`
	Answers          []*Answer `json:"answers"`
	StudyMode        bool      `json:"studyMode"`
	Timed            bool      `json:"timed"`
	MaxStreak        int       `json:"maxStreak"`
	TimeTakenSeconds int       `json:"timeTakenSeconds"`
	CreatedAt        time.Time `json:"createdAt"`

	// Missed holds the questions answered incorrectly or not at all. They
	// seed the spaced-repetition review queue.
	Missed []Question `json:"missed,omitempty"`
}
