package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmaster/internal/progress"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Manage saved quiz progress",
}

var progressListCmd = &cobra.Command{
	Use:   "list",
	Short: "List quizzes with resumable progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ps, closeProgress, err := openProgress(ctx, st)
		if err != nil {
			return err
		}
		defer closeProgress()

		sessions, err := ps.LoadAll(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No saved progress.")
			return nil
		}

		fmt.Fprintf(out, "%-8s  %-32s  %8s  %-5s  %-16s  %s\n", "Quiz", "Title", "Answered", "Mode", "Saved", "Expires")
		fmt.Fprintln(out, strings.Repeat("─", 96))
		for _, s := range sessions {
			mode := "quiz"
			if s.StudyMode {
				mode = "study"
			}
			fmt.Fprintf(out, "%-8s  %-32s  %8s  %-5s  %-16s  %s\n",
				shortID(s.QuizID),
				truncate(s.QuizTitle, 32),
				fmt.Sprintf("%d/%d", s.Answered(), len(s.Questions)),
				mode,
				s.SavedAt.Local().Format("2006-01-02 15:04"),
				s.StartedAt.Add(progress.RetentionWindow).Local().Format("2006-01-02 15:04"),
			)
		}
		return nil
	},
}

var progressClearCmd = &cobra.Command{
	Use:   "clear [quiz-id]",
	Short: "Discard saved progress for a quiz, or for every quiz with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if all == (len(args) == 1) {
			return fmt.Errorf("pass either a quiz id or --all")
		}

		ctx := cmd.Context()
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ps, closeProgress, err := openProgress(ctx, st)
		if err != nil {
			return err
		}
		defer closeProgress()

		var ids []string
		if all {
			sessions, err := ps.LoadAll(ctx)
			if err != nil {
				return err
			}
			for _, s := range sessions {
				ids = append(ids, s.QuizID)
			}
		} else {
			q, err := st.FetchQuiz(ctx, args[0])
			if err != nil {
				return err
			}
			ids = append(ids, q.ID)
		}

		for _, id := range ids {
			if err := ps.Clear(ctx, id); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared progress for %d quizzes.\n", len(ids))
		return nil
	},
}

func init() {
	progressClearCmd.Flags().Bool("all", false, "Clear progress for every quiz")

	progressCmd.AddCommand(progressListCmd)
	progressCmd.AddCommand(progressClearCmd)
}
