package explain

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizmaster/internal/quiz"
)

const systemPrompt = `You are a concise study tutor. A learner is reviewing a quiz question and wants to understand the correct answer.`

func buildUserMessage(q *quiz.Question, a *quiz.Answer) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question (%s): %s\n", q.Type, q.Question)
	if q.Code != "" {
		fmt.Fprintf(&b, "\nCode (%s):\n%s\n", orNone(q.CodeLanguage), q.Code)
	}

	switch q.Type {
	case quiz.TypeMatching:
		b.WriteString("\nPairs:\n")
		for _, p := range q.Pairs {
			fmt.Fprintf(&b, "- %s => %s\n", p.Left, p.Right)
		}
	case quiz.TypeOrdering:
		b.WriteString("\nItems in correct order:\n")
		for i, o := range q.Options {
			fmt.Fprintf(&b, "%d) %s\n", i+1, o)
		}
	default:
		b.WriteString("\nOptions:\n")
		for i, o := range q.Options {
			fmt.Fprintf(&b, "%c. %s\n", 'A'+i, o)
		}
	}

	fmt.Fprintf(&b, "\nCorrect answer: %s\n", q.CorrectText())
	if given := describeAnswer(q, a); given != "" {
		fmt.Fprintf(&b, "Learner's answer: %s\n", given)
	}
	if q.Explanation != "" {
		fmt.Fprintf(&b, "Author's note: %s\n", q.Explanation)
	}

	b.WriteString(`
Instructions:
Explain in 2-4 plain sentences why the correct answer is right. If the learner's answer is wrong, name the likely misunderstanding in one sentence. Do not restate the question. Use plain text, no Markdown.`)

	return b.String()
}

func describeAnswer(q *quiz.Question, a *quiz.Answer) string {
	if a.Empty() {
		return ""
	}
	var parts []string
	switch a.Kind {
	case quiz.KindSelection:
		for _, i := range a.Selected {
			if i >= 0 && i < len(q.Options) {
				parts = append(parts, q.Options[i])
			}
		}
	case quiz.KindArrangement:
		for _, i := range a.Order {
			if i >= 0 && i < len(q.Options) {
				parts = append(parts, q.Options[i])
			}
		}
	case quiz.KindMatching:
		for l := range q.Pairs {
			if r, ok := a.Matches[l]; ok && r >= 0 && r < len(q.Options) {
				parts = append(parts, q.Pairs[l].Left+" => "+q.Options[r])
			}
		}
	}
	return strings.Join(parts, "; ")
}

func orNone(s string) string {
	if s == "" {
		return "unspecified"
	}
	return s
}
