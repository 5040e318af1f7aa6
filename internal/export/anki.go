package export

import (
	"io"
	"strings"

	"github.com/abhisek/quizmaster/internal/quiz"
)

var ankiEscaper = strings.NewReplacer("\t", "  ", "\r\n", "<br>", "\n", "<br>")

// WriteAnki renders q as tab-separated front/back cards that Anki's text
// importer accepts. Newlines become <br>.
func WriteAnki(w io.Writer, q *quiz.Quiz) error {
	var b strings.Builder
	for i := range q.Questions {
		qq := &q.Questions[i]

		front := qq.Question
		if qq.Code != "" {
			front += "\n```\n" + qq.Code + "\n```"
		}

		var back string
		switch qq.Type {
		case quiz.TypeOrdering:
			back = strings.Join(qq.Options, " → ")
		case quiz.TypeMatching:
			back = strings.Join(pairStrings(qq), "\n")
		default:
			back = strings.Join(correctOptions(qq), ", ")
		}
		if qq.Explanation != "" {
			back += "\n\n" + qq.Explanation
		}

		b.WriteString(ankiEscaper.Replace(front))
		b.WriteByte('\t')
		b.WriteString(ankiEscaper.Replace(back))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
