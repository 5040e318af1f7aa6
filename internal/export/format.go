// Package export renders quizzes to portable file formats and reads them
// back in.
package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/abhisek/quizmaster/internal/quiz"
)

// Format is an export file format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatAnki     Format = "anki"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatXLSX     Format = "xlsx"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatMarkdown, FormatAnki, FormatCSV, FormatXLSX}

// ParseFormat resolves a format name. "md" and "excel" are accepted as
// aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "anki":
		return FormatAnki, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Filename returns the file name used when exporting a quiz titled title.
func (f Format) Filename(title string) string {
	base := slug(title)
	switch f {
	case FormatMarkdown:
		return base + ".md"
	case FormatAnki:
		return base + "_anki.txt"
	case FormatCSV:
		return base + ".csv"
	case FormatXLSX:
		return base + ".xlsx"
	}
	return base + ".json"
}

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]`)

func slug(title string) string {
	s := nonSlugRe.ReplaceAllString(strings.ToLower(title), "_")
	if strings.Trim(s, "_") == "" {
		return "quiz"
	}
	return s
}

// Write renders q in format f. now is recorded in formats that carry an
// export timestamp.
func Write(w io.Writer, q *quiz.Quiz, f Format, now time.Time) error {
	switch f {
	case FormatMarkdown:
		return WriteMarkdown(w, q)
	case FormatAnki:
		return WriteAnki(w, q)
	case FormatCSV:
		return WriteCSV(w, q)
	case FormatJSON:
		return WriteJSON(w, q, now)
	case FormatXLSX:
		return WriteXLSX(w, q)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// correctOptions returns the text of q's correct options.
func correctOptions(q *quiz.Question) []string {
	var out []string
	for _, idx := range q.Correct {
		if idx >= 0 && idx < len(q.Options) {
			out = append(out, q.Options[idx])
		}
	}
	return out
}

func pairStrings(q *quiz.Question) []string {
	out := make([]string, len(q.Pairs))
	for i, p := range q.Pairs {
		out[i] = p.Left + " => " + p.Right
	}
	return out
}
