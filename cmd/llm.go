package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmaster/internal/llm"
	"github.com/abhisek/quizmaster/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM requests",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failed, _ := cmd.Flags().GetBool("failed")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		events, err := st.EventRepo().QueryLLMRequests(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query llm requests: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%5s  %-19s  %-8s  %-28s  %6s  %6s  %6s\n",
			"Seq", "Time", "Purpose", "Model", "In", "Out", "Ms")
		fmt.Fprintln(out, strings.Repeat("─", 92))

		shown := 0
		for _, e := range events {
			if failed && e.Success {
				continue
			}
			mark := ""
			if !e.Success {
				mark = "  failed"
			}
			fmt.Fprintf(out, "%5d  %-19s  %-8s  %-28s  %6d  %6d  %6d%s\n",
				e.Sequence, e.Timestamp.Local().Format(timeLayout), e.Purpose,
				truncate(e.Model, 28), e.InputTokens, e.OutputTokens, e.LatencyMs, mark)
			shown++
		}
		if shown == 0 {
			fmt.Fprintln(out, "(none)")
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <seq>",
	Short: "Show the full prompt and response of one request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("sequence must be a number, got %q", args[0])
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		events, err := st.EventRepo().QueryLLMRequests(cmd.Context(), store.QueryOpts{
			After:  seq - 1,
			Before: seq + 1,
			Limit:  1,
		})
		if err != nil {
			return fmt.Errorf("query llm requests: %w", err)
		}
		if len(events) == 0 {
			return fmt.Errorf("llm request %d: %w", seq, store.ErrNotFound)
		}
		printLLMEvent(cmd.OutOrStdout(), events[0])
		return nil
	},
}

func printLLMEvent(w io.Writer, e store.LLMRequestEvent) {
	status := "ok"
	if !e.Success {
		status = "failed: " + e.ErrorMessage
	}
	fmt.Fprintf(w, "#%d  %s  %s/%s  purpose=%s\n",
		e.Sequence, e.Timestamp.Local().Format(timeLayout), e.Provider, e.Model, e.Purpose)
	fmt.Fprintf(w, "tokens %d in, %d out  latency %dms  %s\n",
		e.InputTokens, e.OutputTokens, e.LatencyMs, status)

	section := func(name, body string) {
		fmt.Fprintf(w, "\n── %s %s\n", name, strings.Repeat("─", 56-len(name)))
		if body == "" {
			body = "(empty)"
		}
		fmt.Fprintln(w, strings.TrimRight(body, "\n"))
	}
	section("prompt", e.RequestBody)
	section("response", e.ResponseBody)
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		usage, err := st.LLMUsageByModel(cmd.Context())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-32s  %6s  %6s  %10s  %10s  %8s  %9s\n",
			"Model", "Calls", "Failed", "Input", "Output", "Avg ms", "Cost")
		fmt.Fprintln(out, strings.Repeat("─", 92))

		var total llm.Usage
		var calls int
		var cost float64
		var unpriced []string
		for _, mu := range usage {
			u := llm.Usage{InputTokens: mu.InputTokens, OutputTokens: mu.OutputTokens}
			price := "?"
			if p, ok := llm.PriceOf(mu.Model); ok {
				cost += p.Cost(u)
				price = formatCost(p.Cost(u))
			} else {
				unpriced = append(unpriced, mu.Model)
			}
			fmt.Fprintf(out, "%-32s  %6d  %6d  %10d  %10d  %8d  %9s\n",
				truncate(mu.Model, 32), mu.Calls, mu.Failures, u.InputTokens, u.OutputTokens, mu.AvgLatencyMs, price)

			calls += mu.Calls
			total.InputTokens += u.InputTokens
			total.OutputTokens += u.OutputTokens
		}

		fmt.Fprintln(out, strings.Repeat("─", 92))
		fmt.Fprintf(out, "%-32s  %6d  %6s  %10d  %10d  %8s  %9s\n",
			"total", calls, "", total.InputTokens, total.OutputTokens, "", formatCost(cost))
		if len(unpriced) > 0 {
			fmt.Fprintf(out, "\nNo pricing for %s; the total leaves them out.\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show requests for this purpose (explain, generate)")
	llmListCmd.Flags().Bool("failed", false, "Only show failed requests")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
