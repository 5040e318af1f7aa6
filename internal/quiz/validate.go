package quiz

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// MaxLetteredOptions is the number of option letters (A to Z) the markup
// can express.
const MaxLetteredOptions = 26

// PairSeparators split a matching line into its two sides. The earliest
// occurrence in the line wins.
var PairSeparators = []string{"=>", "->", ":"}

var (
	modifierTagRe = regexp.MustCompile(`(?i)\[(order|ordering|match|matching|tf|truefalse)\]`)
	imagePrefixRe = regexp.MustCompile(`(?i)^\[(image|img):`)
)

// Result is the outcome of validating one question.
type Result struct {
	Valid  bool
	Errors []string
}

// ValidationError reports the first question in a quiz that failed
// validation.
type ValidationError struct {
	// Index is the zero-based position of the failing question.
	Index int

	// Question is the prompt text, possibly empty.
	Question string

	// Errors holds one message per violated rule.
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %d: %s", e.Index+1, strings.Join(e.Errors, "; "))
}

// Validate checks q for minimum structural correctness.
func Validate(q *Question) Result {
	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(q.Question) == "" {
		add("question text is empty")
	}

	switch q.Type {
	case TypeChoice:
		if len(q.Options) < 2 {
			add("choice question needs at least 2 options, has %d", len(q.Options))
		}
		if len(q.Correct) < 1 {
			add("choice question needs at least 1 correct option")
		}
		if len(q.Options) > MaxLetteredOptions {
			add("choice question has %d options, at most %d are supported", len(q.Options), MaxLetteredOptions)
		}
	case TypeTrueFalse:
		if len(q.Correct) != 1 {
			add("true/false question needs exactly 1 correct answer, has %d", len(q.Correct))
		}
	case TypeMatching:
		if len(q.Pairs) < 2 {
			add("matching question needs at least 2 pairs, has %d", len(q.Pairs))
		}
		if len(q.Pairs) > MaxLetteredOptions {
			add("matching question has %d pairs, at most %d are supported", len(q.Pairs), MaxLetteredOptions)
		}
		if !isIdentity(q.Correct, len(q.Pairs)) {
			add("matching correct must list the pairs in order, got %v", q.Correct)
		}
	case TypeOrdering:
		if len(q.Options) < 2 {
			add("ordering question needs at least 2 items, has %d", len(q.Options))
		}
		if !isIdentity(q.Correct, len(q.Options)) {
			add("ordering correct must list the items in order, got %v", q.Correct)
		}
	default:
		add("unknown question type %q", q.Type)
	}

	seen := make(map[int]bool, len(q.Correct))
	for _, idx := range q.Correct {
		if idx < 0 || idx >= len(q.Options) {
			if len(q.Options) > 0 {
				add("correct index %d is out of range", idx)
			}
			continue
		}
		if seen[idx] {
			add("correct index %d is listed twice", idx)
		}
		seen[idx] = true
	}

	checkMarkup(q, add)
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// checkMarkup rejects text that quiz markup cannot write back unchanged,
// so a valid question always survives a save as markup.
func checkMarkup(q *Question, add func(string, ...any)) {
	if modifierTagRe.MatchString(q.Question) {
		add("question text contains a type tag such as [tf]")
	}
	if q.ImageAlt != "" && q.Image == "" {
		add("image alt text has no image URL")
	}
	if strings.Contains(q.Image, "|") {
		add("image URL contains '|'")
	}

	switch q.Type {
	case TypeChoice:
		for i, opt := range q.Options {
			opt = strings.TrimSpace(opt)
			if strings.HasSuffix(opt, "*") {
				add("option %c ends with '*'", 'A'+rune(i%MaxLetteredOptions))
			}
			if imagePrefixRe.MatchString(opt) {
				add("option %c starts with an image directive", 'A'+rune(i%MaxLetteredOptions))
			}
		}
		for i, img := range q.OptionImages {
			if strings.Contains(img, "]") {
				add("option %c image URL contains ']'", 'A'+rune(i%MaxLetteredOptions))
			}
		}
	case TypeMatching:
		for i, p := range q.Pairs {
			letter := 'A' + rune(i%MaxLetteredOptions)
			left, right := strings.TrimSpace(p.Left), strings.TrimSpace(p.Right)
			if left == "" || right == "" {
				add("pair %c has an empty side", letter)
				continue
			}
			if slices.ContainsFunc(PairSeparators, func(sep string) bool { return strings.Contains(left, sep) }) {
				add("pair %c left side contains a separator (%s)", letter, strings.Join(PairSeparators, " "))
			}
			if strings.HasSuffix(right, "*") {
				add("pair %c ends with '*'", letter)
			}
		}
	}
}

// ValidateAll validates every question and returns a *ValidationError for
// the first one that fails, or nil if the quiz may be saved.
func ValidateAll(qs []Question) error {
	for i := range qs {
		if r := Validate(&qs[i]); !r.Valid {
			return &ValidationError{Index: i, Question: qs[i].Question, Errors: r.Errors}
		}
	}
	return nil
}
