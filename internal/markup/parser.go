// Package markup reads and writes the line-oriented quiz markup.
//
// A question starts at a numbered header ("3. What is ...") and may be
// followed by image and code directives, a type-specific body and an
// explanation directive:
//
//	1. [match] Match protocol to port
//	[image: https://example.com/ports.png | port table]
//	A. HTTP => 80
//	B. SSH => 22
//	[explanation: Well-known ports.]
//
// Parsing is total. Lines that fit nowhere are skipped and a document
// with no recognizable header simply yields no questions.
package markup

import (
	"cmp"
	"slices"
	"strings"

	"github.com/abhisek/quizmaster/internal/quiz"
)

// Parse splits text into lines and parses every question in document
// order.
func Parse(text string) []quiz.Question {
	return ParseLines(splitLines(text))
}

// ParseLines parses every question found in lines.
func ParseLines(lines []string) []quiz.Question {
	var questions []quiz.Question
	for i := 0; i < len(lines); {
		q, next, ok := ParseQuestionAt(lines, i)
		if !ok {
			i++
			continue
		}
		questions = append(questions, q)
		i = next
	}
	return questions
}

// ParseQuestionAt parses the question whose header is at lines[i]. It
// returns ok=false only when lines[i] is not a question header. next is
// the index of the first line not consumed by the question.
func ParseQuestionAt(lines []string, i int) (q quiz.Question, next int, ok bool) {
	if i < 0 || i >= len(lines) {
		return q, i, false
	}
	header := Classify(lines[i])
	if header.Kind != KindHeader {
		return q, i, false
	}

	q = quiz.Question{Question: header.Text, Type: header.Type}
	p := &questionParser{lines: lines, pos: i + 1}

	p.image(&q)
	p.code(&q)
	p.image(&q)

	switch q.Type {
	case quiz.TypeTrueFalse:
		p.trueFalse(&q)
	case quiz.TypeMatching:
		p.matching(&q)
	case quiz.TypeOrdering:
		p.ordering(&q)
	default:
		p.choice(&q)
	}

	p.explanation(&q)
	return q, p.pos, true
}

type questionParser struct {
	lines []string
	pos   int
}

// peek returns the classification of the next non-blank line and its
// index. The cursor is not moved; callers commit with p.pos = at+1.
func (p *questionParser) peek() (Line, int) {
	for j := p.pos; j < len(p.lines); j++ {
		l := Classify(p.lines[j])
		if l.Kind != KindBlank {
			return l, j
		}
	}
	return Line{Kind: KindBlank}, len(p.lines)
}

func (p *questionParser) image(q *quiz.Question) {
	l, at := p.peek()
	if l.Kind != KindImage || q.Image != "" {
		return
	}
	q.Image, q.ImageAlt = l.Image, l.Alt
	p.pos = at + 1
}

// code captures a verbatim block. An unterminated block runs to the end
// of the document.
func (p *questionParser) code(q *quiz.Question) {
	l, at := p.peek()
	if l.Kind != KindCodeOpen {
		return
	}
	q.CodeLanguage = l.Language

	var body []string
	j := at + 1
	for ; j < len(p.lines); j++ {
		if Classify(p.lines[j]).Kind == KindCodeClose {
			break
		}
		body = append(body, p.lines[j])
	}
	q.Code = strings.Join(body, "\n")
	p.pos = min(j+1, len(p.lines))
}

func (p *questionParser) explanation(q *quiz.Question) {
	l, at := p.peek()
	if l.Kind != KindExplanation {
		return
	}
	q.Explanation = l.Text
	p.pos = at + 1
}

func (p *questionParser) choice(q *quiz.Question) {
	for {
		l, at := p.peek()
		if l.Kind != KindOption {
			break
		}
		idx := len(q.Options)
		q.Options = append(q.Options, l.Text)
		if l.Correct {
			q.Correct = append(q.Correct, idx)
		}
		if l.Image != "" {
			if q.OptionImages == nil {
				q.OptionImages = make(map[int]string)
			}
			q.OptionImages[idx] = l.Image
		}
		p.pos = at + 1
	}
	if len(q.Correct) == 0 {
		q.Correct = []int{0}
	}
}

// trueFalse scans for the answer token. Scanning stops at the first token,
// at a directive line, or at the next question header; other lines in
// between are consumed and ignored. When a bare token is immediately
// followed by another token line (authors listing both options) the
// starred one decides.
func (p *questionParser) trueFalse(q *quiz.Question) {
	q.Options = slices.Clone(quiz.TrueFalseOptions)
	q.Correct = []int{0}

	for j := p.pos; j < len(p.lines); j++ {
		l := Classify(p.lines[j])
		if l.Kind == KindHeader || l.IsDirective() {
			p.pos = j
			return
		}
		idx, starred, ok := trueFalseLine(l)
		if !ok {
			continue
		}
		q.Correct = []int{idx}
		p.pos = j + 1
		if starred {
			return
		}
		for k := j + 1; k < len(p.lines); k++ {
			nidx, nstarred, nok := trueFalseLine(Classify(p.lines[k]))
			if !nok {
				break
			}
			p.pos = k + 1
			if nstarred {
				q.Correct = []int{nidx}
			}
		}
		return
	}
	p.pos = len(p.lines)
}

// trueFalseLine accepts a bare token ("True", "f *") or a lettered option
// whose text is a token ("B. False *").
func trueFalseLine(l Line) (idx int, starred, ok bool) {
	if l.Kind == KindOption {
		idx, _, ok = trueFalseToken(l.Text)
		return idx, l.Correct, ok
	}
	return trueFalseToken(l.Raw)
}

func (p *questionParser) matching(q *quiz.Question) {
	for {
		l, at := p.peek()
		if l.Kind != KindOption || !l.IsPair {
			break
		}
		q.Pairs = append(q.Pairs, quiz.Pair{Left: l.Left, Right: l.Right})
		q.Options = append(q.Options, l.Right)
		p.pos = at + 1
	}
	q.Correct = identity(len(q.Pairs))
}

// ordering collects N) items and sorts them by their declared position.
// Physical order only breaks ties between equal positions.
func (p *questionParser) ordering(q *quiz.Question) {
	type item struct {
		pos  int
		text string
	}
	var items []item
	for {
		l, at := p.peek()
		if l.Kind != KindOrderItem {
			break
		}
		items = append(items, item{pos: l.Number, text: l.Text})
		p.pos = at + 1
	}
	slices.SortStableFunc(items, func(a, b item) int { return cmp.Compare(a.pos, b.pos) })
	for _, it := range items {
		q.Options = append(q.Options, it.text)
	}
	q.Correct = identity(len(items))
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
