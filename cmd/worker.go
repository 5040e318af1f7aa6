package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmaster/internal/events"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Record attempts published to Kafka",
	Long: `Consume attempt.submitted events from Kafka and record them: the attempt
goes into the history and missed questions into the review queue.

Only needed with QUIZMASTER_EVENT_TRANSPORT=kafka; the default in-process
transport records attempts as they are submitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		return events.RunWorker(ctx, cfg.Events(), st, log)
	},
}
