package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmaster/internal/generate"
	"github.com/abhisek/quizmaster/internal/quiz"
)

var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Draft a quiz on a topic with the configured LLM",
	Long: `Draft a quiz with the configured LLM. The draft is printed as quiz markup
so it can be reviewed and edited; pass --save to add it to the library
directly.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		count, _ := cmd.Flags().GetInt("count")
		typeVals, _ := cmd.Flags().GetStringSlice("types")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		notesPath, _ := cmd.Flags().GetString("notes")
		save, _ := cmd.Flags().GetBool("save")
		output, _ := cmd.Flags().GetString("output")

		req := generate.Request{
			Topic:      strings.Join(args, " "),
			Count:      count,
			Difficulty: difficulty,
		}
		for _, t := range typeVals {
			req.Types = append(req.Types, quiz.Type(strings.ToLower(strings.TrimSpace(t))))
		}
		if notesPath != "" {
			b, err := os.ReadFile(notesPath)
			if err != nil {
				return fmt.Errorf("read notes: %w", err)
			}
			req.Notes = string(b)
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		provider, err := newProvider(ctx, st)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Generating a quiz about %s...\n", req.Topic)
		draft, err := generate.NewService(provider, generate.DefaultConfig(), log).Generate(ctx, req)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if save {
			id, err := st.SaveQuiz(ctx, draft.SaveRequest)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved %q (%d questions) as %s\n", draft.Title, len(draft.Questions), id)
			return nil
		}

		text := fmt.Sprintf("# %s\n", draft.Title)
		if draft.Description != "" {
			text += fmt.Sprintf("# %s\n", draft.Description)
		}
		text += "\n" + draft.Markup

		if output != "" {
			if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote %q to %s\n", draft.Title, output)
			return nil
		}
		_, err = io.WriteString(out, text)
		return err
	},
}

func init() {
	generateCmd.Flags().IntP("count", "n", 5, "Number of questions")
	generateCmd.Flags().StringSlice("types", nil, "Question types to use: choice, truefalse, ordering, matching (default: any)")
	generateCmd.Flags().String("difficulty", "medium", "Difficulty: easy, medium or hard")
	generateCmd.Flags().String("notes", "", "File with source material to base questions on")
	generateCmd.Flags().Bool("save", false, "Save the draft to the library instead of printing it")
	generateCmd.Flags().StringP("output", "o", "", "Write the draft markup to this file")
}
