package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/abhisek/quizmaster/internal/quiz"
)

// ImportedTitle is the title given to quizzes imported from formats that
// do not carry one.
const ImportedTitle = "Imported Quiz"

var tableHeader = []string{"Question", "Type", "Options", "Correct", "Explanation"}

// listSep joins option lists inside a single cell.
const listSep = "; "

func tableRow(q *quiz.Question) []string {
	options := q.Options
	correct := correctOptions(q)
	switch q.Type {
	case quiz.TypeMatching:
		options = pairStrings(q)
		correct = options
	case quiz.TypeOrdering:
		correct = q.Options
	}
	return []string{
		q.Question,
		string(q.Type),
		strings.Join(options, listSep),
		strings.Join(correct, listSep),
		q.Explanation,
	}
}

// WriteCSV renders one row per question with options and correct answers
// joined by "; ".
func WriteCSV(w io.Writer, q *quiz.Quiz) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tableHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for i := range q.Questions {
		if err := cw.Write(tableRow(&q.Questions[i])); err != nil {
			return fmt.Errorf("write CSV row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV imports questions from the layout WriteCSV produces. Rows with
// fewer than four columns are skipped. Correct answers that do not match
// an option are dropped; a choice question left with none defaults to its
// first option.
func ReadCSV(r io.Reader) (*quiz.SaveRequest, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	questions := rowsToQuestions(rows[1:])
	if len(questions) == 0 {
		return nil, fmt.Errorf("no valid questions found")
	}
	return &quiz.SaveRequest{Title: ImportedTitle, Questions: questions}, nil
}

func rowsToQuestions(rows [][]string) []quiz.Question {
	var out []quiz.Question
	for _, row := range rows {
		if len(row) < 4 {
			continue
		}
		text := strings.TrimSpace(row[0])
		if text == "" {
			continue
		}
		q := quiz.Question{
			Question: text,
			Type:     quiz.Type(strings.ToLower(strings.TrimSpace(row[1]))),
		}
		if len(row) > 4 {
			q.Explanation = strings.TrimSpace(row[4])
		}
		options := splitList(row[2])
		correct := splitList(row[3])

		switch q.Type {
		case quiz.TypeOrdering:
			// Items are stored in their correct order.
			if len(correct) == len(options) {
				options = correct
			}
			q.Options = options
			q.Correct = identity(len(options))
		case quiz.TypeMatching:
			for _, o := range options {
				left, right, ok := strings.Cut(o, "=>")
				if !ok {
					continue
				}
				q.Pairs = append(q.Pairs, quiz.Pair{Left: strings.TrimSpace(left), Right: strings.TrimSpace(right)})
				q.Options = append(q.Options, strings.TrimSpace(right))
			}
			q.Correct = identity(len(q.Pairs))
		case quiz.TypeTrueFalse:
			q.Options = append([]string(nil), quiz.TrueFalseOptions...)
			q.Correct = []int{0}
			if len(correct) > 0 && strings.EqualFold(correct[0], "false") {
				q.Correct = []int{1}
			}
		default:
			q.Type = quiz.TypeChoice
			q.Options = options
			for _, c := range correct {
				for i, o := range options {
					if o == c {
						q.Correct = append(q.Correct, i)
						break
					}
				}
			}
			if len(q.Correct) == 0 {
				q.Correct = []int{0}
			}
		}
		out = append(out, q)
	}
	return out
}

func splitList(cell string) []string {
	var out []string
	for _, part := range strings.Split(cell, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
