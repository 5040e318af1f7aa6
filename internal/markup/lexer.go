package markup

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/abhisek/quizmaster/internal/quiz"
)

// Kind classifies a single line of quiz markup.
type Kind int

const (
	KindOther Kind = iota
	KindBlank
	KindHeader
	KindCodeOpen
	KindCodeClose
	KindImage
	KindExplanation
	KindOption
	KindOrderItem
)

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindHeader:
		return "header"
	case KindCodeOpen:
		return "code-open"
	case KindCodeClose:
		return "code-close"
	case KindImage:
		return "image"
	case KindExplanation:
		return "explanation"
	case KindOption:
		return "option"
	case KindOrderItem:
		return "order-item"
	}
	return "other"
}

// Line is the classification of one raw line. Only the fields relevant to
// Kind are set.
type Line struct {
	Kind Kind
	Raw  string

	// Text is the header text with modifiers removed, the option or
	// ordering item text, or the explanation argument.
	Text string

	// Number is the header numeral or the ordering target position.
	Number int

	// Type is the question type selected by a header's modifiers.
	Type quiz.Type

	// Letter is the option letter, 'A' to 'Z'.
	Letter byte

	// Correct is set on option lines ending in one or more '*'.
	Correct bool

	// Image and Alt come from image directives and option image prefixes.
	Image string
	Alt   string

	// Language is the argument of a [code:lang] opener.
	Language string

	// Left and Right are the halves of an option line that splits as a
	// matching pair. IsPair is false when the body has no separator or
	// either half is empty.
	Left, Right string
	IsPair      bool
}

var (
	headerRe    = regexp.MustCompile(`^(\d+)\.\s*(.*)$`)
	codeOpenRe  = regexp.MustCompile(`(?i)^\[code(?::\s*([^\]]*))?\]$`)
	codeCloseRe = regexp.MustCompile(`(?i)^\[/code\]$`)
	imageRe     = regexp.MustCompile(`(?i)^\[(?:image|img):\s*(.*)\]$`)
	explainRe   = regexp.MustCompile(`(?i)^\[(?:explanation|exp):\s*(.*)\]$`)
	optionRe    = regexp.MustCompile(`^([A-Z])\.\s*(.*)$`)
	orderItemRe = regexp.MustCompile(`^(\d+)\)\s*(.*)$`)
	optImageRe  = regexp.MustCompile(`(?i)^\[(?:image|img):\s*([^\]]*)\]\s*(.*)$`)
	modifierRe  = regexp.MustCompile(`(?i)\[(order|ordering|match|matching|tf|truefalse)\]`)
	tfTokenRe   = regexp.MustCompile(`(?i)^(true|false|t|f)\s*(\*)?$`)
)

// Classify inspects one raw line. Matching happens on the trimmed line;
// Raw keeps the original so verbatim blocks can be captured unchanged.
func Classify(raw string) Line {
	s := strings.TrimSpace(raw)
	l := Line{Raw: raw}

	if s == "" {
		l.Kind = KindBlank
		return l
	}

	if m := headerRe.FindStringSubmatch(s); m != nil {
		l.Kind = KindHeader
		l.Number, _ = strconv.Atoi(m[1])
		l.Type, l.Text = parseModifiers(m[2])
		return l
	}

	if m := codeOpenRe.FindStringSubmatch(s); m != nil {
		l.Kind = KindCodeOpen
		l.Language = strings.TrimSpace(m[1])
		return l
	}
	if codeCloseRe.MatchString(s) {
		l.Kind = KindCodeClose
		return l
	}

	if m := imageRe.FindStringSubmatch(s); m != nil {
		l.Kind = KindImage
		l.Image, l.Alt = splitImageArg(m[1])
		return l
	}
	if m := explainRe.FindStringSubmatch(s); m != nil {
		l.Kind = KindExplanation
		l.Text = strings.TrimSpace(m[1])
		return l
	}

	if m := optionRe.FindStringSubmatch(s); m != nil {
		l.Kind = KindOption
		l.Letter = m[1][0]
		body := strings.TrimSpace(m[2])
		// Every trailing star goes, so option text never ends in one.
		if strings.HasSuffix(body, "*") {
			l.Correct = true
			body = strings.TrimRight(body, "* \t")
		}
		if im := optImageRe.FindStringSubmatch(body); im != nil {
			l.Image = strings.TrimSpace(im[1])
			body = strings.TrimSpace(im[2])
		}
		l.Text = body
		l.Left, l.Right, l.IsPair = splitPair(body)
		return l
	}

	if m := orderItemRe.FindStringSubmatch(s); m != nil {
		l.Kind = KindOrderItem
		l.Number, _ = strconv.Atoi(m[1])
		l.Text = strings.TrimSpace(m[2])
		return l
	}

	l.Kind = KindOther
	return l
}

// IsDirective reports whether the trimmed line starts a bracketed
// directive.
func (l Line) IsDirective() bool {
	return strings.HasPrefix(strings.TrimSpace(l.Raw), "[")
}

// trueFalseToken reports whether s is a true/false answer token and which
// option index it selects. starred is set when the token carries a '*'.
func trueFalseToken(s string) (idx int, starred, ok bool) {
	m := tfTokenRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false, false
	}
	if strings.HasPrefix(strings.ToLower(m[1]), "f") {
		idx = 1
	}
	return idx, m[2] != "", true
}

// parseModifiers strips every type modifier from a header and returns the
// type they select. Ordering beats matching, matching beats truefalse.
func parseModifiers(text string) (quiz.Type, string) {
	var ordering, matching, truefalse bool
	for _, m := range modifierRe.FindAllStringSubmatch(text, -1) {
		switch strings.ToLower(m[1]) {
		case "order", "ordering":
			ordering = true
		case "match", "matching":
			matching = true
		case "tf", "truefalse":
			truefalse = true
		}
	}
	text = modifierRe.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")

	switch {
	case ordering:
		return quiz.TypeOrdering, text
	case matching:
		return quiz.TypeMatching, text
	case truefalse:
		return quiz.TypeTrueFalse, text
	}
	return quiz.TypeChoice, text
}

// splitImageArg splits "url | alt". Alt text is dropped when there is no
// URL to describe.
func splitImageArg(arg string) (url, alt string) {
	url, alt, _ = strings.Cut(arg, "|")
	url = strings.TrimSpace(url)
	if url == "" {
		return "", ""
	}
	return url, strings.TrimSpace(alt)
}

func splitPair(body string) (left, right string, ok bool) {
	at, width := -1, 0
	for _, sep := range quiz.PairSeparators {
		i := strings.Index(body, sep)
		if i < 0 {
			continue
		}
		if at < 0 || i < at {
			at, width = i, len(sep)
		}
	}
	if at < 0 {
		return "", "", false
	}
	left = strings.TrimSpace(body[:at])
	right = strings.TrimSpace(body[at+width:])
	if left == "" || right == "" {
		return "", "", false
	}
	return left, right, true
}
