package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmaster/internal/explain"
)

var explainCmd = &cobra.Command{
	Use:   "explain <quiz-id> <question-number>",
	Short: "Explain the correct answer to a question",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid question number %q", args[1])
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		q, err := st.FetchQuiz(ctx, args[0])
		if err != nil {
			return err
		}
		if n < 1 || n > len(q.Questions) {
			return fmt.Errorf("question %d out of range, the quiz has %d", n, len(q.Questions))
		}
		question := &q.Questions[n-1]

		svc := newExplainer(ctx, st)
		if svc == nil {
			svc = explain.NewService(nil, explain.DefaultConfig(), log)
		}
		exp := svc.Explain(ctx, question, nil)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, question.Question)
		fmt.Fprintf(out, "Answer: %s\n\n", question.CorrectText())
		fmt.Fprintln(out, exp.Text)
		if exp.Misconception != "" {
			fmt.Fprintf(out, "\nCommon mistake: %s\n", exp.Misconception)
		}
		if exp.Source != explain.SourceLLM {
			fmt.Fprintf(out, "\n(%s explanation)\n", exp.Source)
		}
		return nil
	},
}
