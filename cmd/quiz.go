package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmaster/internal/export"
	"github.com/abhisek/quizmaster/internal/markup"
	"github.com/abhisek/quizmaster/internal/quiz"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse quiz markup and print the questions as JSON",
	Long: `Parse quiz markup from a file (or stdin when the file is "-" or omitted)
and print the parsed questions as JSON.

With --check, every question is validated and the command fails if any
question is invalid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		questions := markup.Parse(text)
		out := cmd.OutOrStdout()

		if check, _ := cmd.Flags().GetBool("check"); check {
			invalid := 0
			for i := range questions {
				res := quiz.Validate(&questions[i])
				if res.Valid {
					continue
				}
				invalid++
				fmt.Fprintf(out, "question %d (%s): %s\n", i+1, questions[i].Question, strings.Join(res.Errors, "; "))
			}
			switch {
			case len(questions) == 0:
				return fmt.Errorf("no questions found")
			case invalid > 0:
				return fmt.Errorf("%d of %d questions are invalid", invalid, len(questions))
			}
			fmt.Fprintf(out, "%d questions OK\n", len(questions))
			return nil
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(questions)
	},
}

var fmtCmd = &cobra.Command{
	Use:   "fmt [file]",
	Short: "Rewrite quiz markup in canonical form",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		formatted := markup.Serialize(markup.Parse(text))

		if write, _ := cmd.Flags().GetBool("write"); write {
			if len(args) == 0 || args[0] == "-" {
				return fmt.Errorf("--write needs a file argument")
			}
			return os.WriteFile(args[0], []byte(formatted), 0o644)
		}
		_, err = io.WriteString(cmd.OutOrStdout(), formatted)
		return err
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Add a quiz to the library from markup, JSON, CSV or XLSX",
	Long: `Add a quiz to the library. The format is chosen by file extension:
.json, .csv and .xlsx are read as exports; anything else is read as quiz
markup.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := readQuizFile(args[0])
		if err != nil {
			return err
		}
		if title, _ := cmd.Flags().GetString("title"); title != "" {
			req.Title = title
		}
		if desc, _ := cmd.Flags().GetString("description"); desc != "" {
			req.Description = desc
		}
		if public, _ := cmd.Flags().GetBool("public"); public {
			req.IsPublic = true
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		id, err := st.SaveQuiz(cmd.Context(), *req)
		if err != nil {
			var verr *quiz.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("quiz not saved, %w", verr)
			}
			return err
		}
		log.WithField("quiz_id", id).WithField("questions", len(req.Questions)).Info("quiz imported")
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %q (%d questions) as %s\n", req.Title, len(req.Questions), id)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List quizzes in the library",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		quizzes, err := st.ListQuizzes(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(quizzes) == 0 {
			fmt.Fprintln(out, "No quizzes yet. Add one with: quizmaster import <file>")
			return nil
		}

		fmt.Fprintf(out, "%-8s  %-40s  %9s  %s\n", "ID", "Title", "Questions", "Updated")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, q := range quizzes {
			fmt.Fprintf(out, "%-8s  %-40s  %9d  %s\n",
				shortID(q.ID), truncate(q.Title, 40), q.QuestionCount,
				q.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a quiz as markup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		q, err := st.FetchQuiz(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(q)
		}
		fmt.Fprintf(out, "# %s\n", q.Title)
		if q.Description != "" {
			fmt.Fprintf(out, "# %s\n", q.Description)
		}
		fmt.Fprintf(out, "# id %s, %d questions\n\n", q.ID, len(q.Questions))
		_, err = io.WriteString(out, markup.Serialize(q.Questions))
		return err
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a quiz with its attempts, review cards and saved progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		q, err := st.FetchQuiz(ctx, args[0])
		if err != nil {
			return err
		}
		if err := st.DeleteQuiz(ctx, q.ID); err != nil {
			return err
		}
		// Progress may live outside SQLite.
		if err := clearProgress(ctx, st, q.ID); err != nil {
			log.WithError(err).WithField("quiz_id", q.ID).Warn("could not clear saved progress")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", q.Title)
		return nil
	},
}

func init() {
	parseCmd.Flags().Bool("check", false, "Validate every question and fail on errors")
	fmtCmd.Flags().BoolP("write", "w", false, "Write the result back to the file")

	importCmd.Flags().String("title", "", "Quiz title (default: from the file)")
	importCmd.Flags().String("description", "", "Quiz description")
	importCmd.Flags().Bool("public", false, "Mark the quiz as public")

	showCmd.Flags().Bool("json", false, "Print the stored quiz as JSON")
}

// readInput returns the contents of args[0], or stdin when no file or
// "-" is given.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// readQuizFile loads a quiz save request from path, choosing the reader
// by extension.
func readQuizFile(path string) (*quiz.SaveRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return export.ReadJSON(f)
	case ".csv":
		return export.ReadCSV(f)
	case ".xlsx":
		return export.ReadXLSX(f)
	}

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	questions := markup.Parse(string(b))
	if len(questions) == 0 {
		return nil, fmt.Errorf("%s: no questions found", path)
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	title = strings.NewReplacer("_", " ", "-", " ").Replace(title)
	return &quiz.SaveRequest{Title: title, Questions: questions}, nil
}

func shortID(id string) string {
	return truncate(id, 8)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
