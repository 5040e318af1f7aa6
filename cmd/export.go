package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmaster/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a quiz to Markdown, Anki, CSV, JSON or XLSX",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatVal, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		format, err := export.ParseFormat(formatVal)
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		q, err := st.FetchQuiz(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if output == "-" {
			return export.Write(cmd.OutOrStdout(), q, format, time.Now())
		}
		if output == "" {
			output = format.Filename(q.Title)
		}

		f, err := os.Create(output)
		if err != nil {
			return err
		}
		if err := export.Write(f, q, format, time.Now()); err != nil {
			f.Close()
			os.Remove(output)
			return fmt.Errorf("export %s: %w", format, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %q to %s\n", q.Title, output)
		return nil
	},
}

func init() {
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = string(f)
	}
	exportCmd.Flags().StringP("format", "f", string(export.FormatJSON), "Export format: "+strings.Join(names, ", "))
	exportCmd.Flags().StringP("output", "o", "", `Output file (default: derived from the title, "-" for stdout)`)
}
