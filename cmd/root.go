package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizmaster/internal/config"
	"github.com/abhisek/quizmaster/internal/logging"
	"github.com/abhisek/quizmaster/internal/store"
)

var (
	cfg      config.Config
	log      logrus.FieldLogger = logrus.StandardLogger()
	closeLog                    = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:           "quizmaster",
	Short:         "Write, take and review quizzes in the terminal",
	Long:          "Quizmaster turns plain-text quiz markup into interactive quizzes, with study mode, timers, spaced-repetition review and AI explanations.",
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		c, err := config.Load(envFile)
		if err != nil {
			return err
		}
		if p, _ := cmd.Flags().GetString("db"); p != "" {
			c.DBPath = p
		}
		cfg = c

		logger, closer, err := logging.New(logging.Options{
			Level:  cfg.LogLevel,
			Format: cfg.LogFormat,
			File:   cfg.LogFile,
		})
		if err != nil {
			return fmt.Errorf("configure logging: %w", err)
		}
		log, closeLog = logger, closer
		cmd.SetContext(logging.WithContext(cmd.Context(), log))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZMASTER_DB)")
	rootCmd.PersistentFlags().String("env-file", "", "Load settings from this file instead of ./.env")

	rootCmd.AddCommand(parseCmd, fmtCmd, importCmd, listCmd, showCmd, deleteCmd)
	rootCmd.AddCommand(takeCmd, progressCmd, reviewCmd)
	rootCmd.AddCommand(exportCmd, generateCmd, explainCmd)
	rootCmd.AddCommand(llmCmd, workerCmd, versionCmd)
}

// openStore opens the configured database.
func openStore() (*store.Store, error) {
	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
