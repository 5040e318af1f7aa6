package markup

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizmaster/internal/quiz"
)

// Serialize renders questions as canonical markup. Headers are renumbered
// from 1, multi-line text fields other than code are folded onto one
// line, and ordering items are written in their correct order.
func Serialize(questions []quiz.Question) string {
	var b strings.Builder
	for i := range questions {
		if i > 0 {
			b.WriteString("\n")
		}
		writeQuestion(&b, i+1, &questions[i])
	}
	return b.String()
}

func writeQuestion(b *strings.Builder, n int, q *quiz.Question) {
	fmt.Fprintf(b, "%d. ", n)
	if tag := modifierTag(q.Type); tag != "" {
		b.WriteString(tag + " ")
	}
	b.WriteString(oneLine(q.Question))
	b.WriteString("\n")

	if q.Image != "" {
		writeImage(b, q.Image, q.ImageAlt)
	}

	if q.Code != "" || q.CodeLanguage != "" {
		if q.CodeLanguage != "" {
			fmt.Fprintf(b, "[code:%s]\n", q.CodeLanguage)
		} else {
			b.WriteString("[code]\n")
		}
		b.WriteString(q.Code)
		b.WriteString("\n[/code]\n")
	}

	switch q.Type {
	case quiz.TypeTrueFalse:
		if len(q.Correct) == 1 && q.Correct[0] == 1 {
			b.WriteString("False *\n")
		} else {
			b.WriteString("True *\n")
		}
	case quiz.TypeMatching:
		for i, p := range q.Pairs {
			if i >= quiz.MaxLetteredOptions {
				break
			}
			fmt.Fprintf(b, "%c. %s => %s\n", 'A'+i, oneLine(p.Left), oneLine(p.Right))
		}
	case quiz.TypeOrdering:
		for i, item := range q.Options {
			fmt.Fprintf(b, "%d) %s\n", i+1, oneLine(item))
		}
	default:
		correct := make(map[int]bool, len(q.Correct))
		for _, c := range q.Correct {
			correct[c] = true
		}
		for i, opt := range q.Options {
			if i >= quiz.MaxLetteredOptions {
				break
			}
			fmt.Fprintf(b, "%c.", 'A'+i)
			if img := q.OptionImages[i]; img != "" {
				fmt.Fprintf(b, " [image: %s]", img)
			}
			if text := oneLine(opt); text != "" {
				b.WriteString(" " + text)
			}
			if correct[i] {
				b.WriteString(" *")
			}
			b.WriteString("\n")
		}
	}

	if q.Explanation != "" {
		fmt.Fprintf(b, "[explanation: %s]\n", oneLine(q.Explanation))
	}
}

func writeImage(b *strings.Builder, url, alt string) {
	if alt != "" {
		fmt.Fprintf(b, "[image: %s | %s]\n", url, oneLine(alt))
		return
	}
	fmt.Fprintf(b, "[image: %s]\n", url)
}

func modifierTag(t quiz.Type) string {
	switch t {
	case quiz.TypeOrdering:
		return "[order]"
	case quiz.TypeMatching:
		return "[match]"
	case quiz.TypeTrueFalse:
		return "[tf]"
	}
	return ""
}

// oneLine folds s onto a single line. Text without line breaks is only
// trimmed so that parsed values survive a round trip unchanged.
func oneLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(s), " ")
}
