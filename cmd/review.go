package cmd

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmaster/internal/quiz"
	"github.com/abhisek/quizmaster/internal/spacedrep"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review missed questions that are due",
	Long: `Walk through review cards that are due. Each card shows a question you
missed; think of the answer, press Enter to reveal it, then rate how well
you remembered: again, hard, good or easy (or 1-4). Press s to skip a
card and q to stop.`,
	RunE: runReview,
}

var reviewStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the review queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		quizID := ""
		if id, _ := cmd.Flags().GetString("quiz"); id != "" {
			q, err := st.FetchQuiz(cmd.Context(), id)
			if err != nil {
				return err
			}
			quizID = q.ID
		}

		cards, err := st.Cards(cmd.Context(), quizID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(cards) == 0 {
			fmt.Fprintln(out, "Review queue is empty.")
			return nil
		}

		now := time.Now()
		fmt.Fprintf(out, "%-44s  %-10s  %5s  %-10s  %s\n", "Question", "Status", "Stage", "Next review", "Due")
		fmt.Fprintln(out, strings.Repeat("─", 92))
		for _, c := range cards {
			fmt.Fprintf(out, "%-44s  %-10s  %5d  %-10s  %s\n",
				truncate(c.Question.Question, 44),
				c.Status(now),
				c.Stage,
				c.NextReviewDate.Local().Format("2006-01-02"),
				c.DueLabel(now),
			)
		}
		return nil
	},
}

func init() {
	reviewCmd.Flags().IntP("limit", "n", 20, "Maximum number of cards to review")
	reviewStatusCmd.Flags().String("quiz", "", "Only show cards from this quiz")
	reviewCmd.AddCommand(reviewStatusCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	flow, err := spacedrep.NewFlow(ctx, st, time.Now(), limit, log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flow.Len() == 0 {
		fmt.Fprintln(out, "Nothing due for review.")
		return nil
	}
	fmt.Fprintf(out, "%d cards due.\n\n", flow.Len())

	in := bufio.NewScanner(cmd.InOrStdin())
	for !flow.Done() {
		c := flow.Current()
		fmt.Fprintf(out, "── Card %d/%d ──\n", flow.Position()+1, flow.Len())
		printCardFront(out, &c.Question)

		fmt.Fprint(out, "\n[Enter] reveal  ")
		if !in.Scan() {
			fmt.Fprintln(out, "\n(input closed)")
			break
		}
		if strings.TrimSpace(in.Text()) == "q" {
			break
		}

		fmt.Fprintf(out, "Answer: %s\n", c.Question.CorrectText())
		if c.Question.Explanation != "" {
			fmt.Fprintf(out, "💡 %s\n", c.Question.Explanation)
		}

		stop := false
		for {
			fmt.Fprint(out, "Rate [1] again [2] hard [3] good [4] easy  (s skip, q quit): ")
			if !in.Scan() {
				stop = true
				break
			}
			answer := strings.TrimSpace(in.Text())
			if answer == "q" {
				stop = true
				break
			}
			if answer == "s" {
				flow.Skip()
				break
			}
			r, err := spacedrep.ParseRating(answer)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			if err := flow.Rate(ctx, r); err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			break
		}
		fmt.Fprintln(out)
		if stop {
			break
		}
	}

	tally := flow.Tally()
	fmt.Fprintf(out, "── Reviewed %d of %d ──\n", flow.Position(), flow.Len())
	for _, r := range spacedrep.Ratings {
		if n := tally[r]; n > 0 {
			fmt.Fprintf(out, "  %-6s %d\n", r, n)
		}
	}
	return nil
}

func printCardFront(w io.Writer, q *quiz.Question) {
	fmt.Fprintln(w, q.Question)
	if q.Code != "" {
		fmt.Fprintf(w, "\n%s\n", q.Code)
	}
	switch q.Type {
	case quiz.TypeChoice:
		for i, o := range q.Options {
			fmt.Fprintf(w, "  %c. %s\n", 'A'+i, o)
		}
	case quiz.TypeOrdering:
		// Options are stored in answer order.
		items := slices.Clone(q.Options)
		slices.Sort(items)
		fmt.Fprintf(w, "  Put in order: %s\n", strings.Join(items, ", "))
	case quiz.TypeMatching:
		for _, p := range q.Pairs {
			fmt.Fprintf(w, "  %s => ?\n", p.Left)
		}
	case quiz.TypeTrueFalse:
		fmt.Fprintln(w, "  True or False?")
	}
}
