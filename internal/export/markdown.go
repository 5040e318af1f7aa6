package export

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/abhisek/quizmaster/internal/quiz"
)

// WriteMarkdown renders q as a Markdown study sheet with the answers
// marked.
func WriteMarkdown(w io.Writer, q *quiz.Quiz) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", q.Title)
	if q.Description != "" {
		fmt.Fprintf(&b, "*%s*\n\n", q.Description)
	}
	b.WriteString("---\n\n")

	for i := range q.Questions {
		qq := &q.Questions[i]
		fmt.Fprintf(&b, "## Question %d\n\n%s\n\n", i+1, qq.Question)

		if qq.Image != "" {
			fmt.Fprintf(&b, "![%s](%s)\n\n", qq.ImageAlt, qq.Image)
		}
		if qq.Code != "" {
			fmt.Fprintf(&b, "```%s\n%s\n```\n\n", qq.CodeLanguage, qq.Code)
		}

		switch qq.Type {
		case quiz.TypeOrdering:
			b.WriteString("**Correct order:**\n")
			for pos, item := range qq.Options {
				fmt.Fprintf(&b, "%d. %s\n", pos+1, item)
			}
		case quiz.TypeMatching:
			b.WriteString("**Pairs:**\n")
			for _, p := range qq.Pairs {
				fmt.Fprintf(&b, "- %s → %s\n", p.Left, p.Right)
			}
		default:
			for j, opt := range qq.Options {
				mark := "○"
				if slices.Contains(qq.Correct, j) {
					mark = "✓"
				}
				fmt.Fprintf(&b, "%s %c. %s\n", mark, 'A'+j, opt)
			}
		}

		if qq.Explanation != "" {
			fmt.Fprintf(&b, "\n> 💡 %s\n", qq.Explanation)
		}
		b.WriteString("\n---\n\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
