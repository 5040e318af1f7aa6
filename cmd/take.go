package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizmaster/internal/app"
	"github.com/abhisek/quizmaster/internal/events"
	"github.com/abhisek/quizmaster/internal/explain"
	"github.com/abhisek/quizmaster/internal/llm"
	"github.com/abhisek/quizmaster/internal/progress"
	"github.com/abhisek/quizmaster/internal/session"
	"github.com/abhisek/quizmaster/internal/store"
)

var takeCmd = &cobra.Command{
	Use:   "take <id>",
	Short: "Take a quiz in the terminal",
	Long: `Take a quiz from the library.

Progress is saved after every answer. Quitting keeps it for a week; run
the command again with --resume to continue or --restart to start over.`,
	Args: cobra.ExactArgs(1),
	RunE: runTake,
}

func init() {
	takeCmd.Flags().Bool("study", false, "Study mode: check answers as you go")
	takeCmd.Flags().Duration("timer", 0, "Time limit, e.g. 10m (0 disables the timer)")
	takeCmd.Flags().Bool("shuffle", false, "Shuffle question order")
	takeCmd.Flags().Uint64("seed", 0, "Shuffle seed (default: random)")
	takeCmd.Flags().Bool("resume", false, "Continue saved progress")
	takeCmd.Flags().Bool("restart", false, "Discard saved progress and start over")
	takeCmd.MarkFlagsMutuallyExclusive("resume", "restart")
}

func runTake(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	study, _ := cmd.Flags().GetBool("study")
	timer, _ := cmd.Flags().GetDuration("timer")
	shuffle, _ := cmd.Flags().GetBool("shuffle")
	seed, _ := cmd.Flags().GetUint64("seed")
	resume, _ := cmd.Flags().GetBool("resume")
	restart, _ := cmd.Flags().GetBool("restart")

	if timer < 0 {
		return fmt.Errorf("--timer must not be negative")
	}
	if seed == 0 {
		seed = rand.Uint64()
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

	progressStore, closeProgress, err := openProgress(ctx, st)
	if err != nil {
		return err
	}
	defer closeProgress()

	policy := session.StartFresh
	switch {
	case resume:
		policy = session.StartResume
	case restart:
		policy = session.StartRestart
	}
	opts := session.Options{
		StudyMode:        study,
		TimerSeconds:     int(timer.Seconds()),
		ShuffleQuestions: shuffle,
		Seed:             seed,
	}
	s, err := session.Start(ctx, progressStore, q, opts, policy, time.Now())
	if errors.Is(err, session.ErrProgressExists) {
		return fmt.Errorf("%w: use --resume to continue or --restart to start over", err)
	}
	if err != nil {
		return err
	}

	bus, err := events.Open(ctx, cfg.Events(), st, log)
	if err != nil {
		return fmt.Errorf("open event bus: %w", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			log.WithError(err).Warn("closing event bus")
		}
	}()

	runOpts := app.Options{Log: log}
	if s.StudyMode {
		if exp := newExplainer(ctx, st); exp != nil {
			runOpts.Explainer = exp
		}
	}

	log.WithFields(logrus.Fields{
		"quiz_id": q.ID,
		"study":   s.StudyMode,
		"timer":   s.Timer.TotalSeconds,
		"policy":  policy,
	}).Info("session started")

	machine := session.NewMachine(s, progressStore, bus, session.WithLogger(log))
	summary, err := app.Run(ctx, machine, runOpts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if summary == nil {
		fmt.Fprintf(out, "Progress saved. Continue with: quizmaster take %s --resume\n", shortID(q.ID))
		return nil
	}
	fmt.Fprintf(out, "%s: %d/%d (%d%%)\n", q.Title, summary.Score, summary.Total, summary.Percentage)
	if n := len(summary.Missed) + len(summary.Unanswered); n > 0 {
		fmt.Fprintf(out, "%d questions added to your review queue. Run: quizmaster review\n", n)
	}
	return nil
}

// openProgress returns the progress store for the configured backend and
// a function releasing its resources.
func openProgress(ctx context.Context, st *store.Store) (*progress.Store, func() error, error) {
	noop := func() error { return nil }
	withLog := progress.WithLogger(log)

	switch cfg.ProgressBackend {
	case "redis":
		client, err := progress.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return progress.New(progress.NewRedisBackend(client), withLog), client.Close, nil
	case "memory":
		return progress.New(progress.NewMemoryBackend(), withLog), noop, nil
	default:
		return progress.New(st.ProgressBackend(), withLog), noop, nil
	}
}

// clearProgress removes saved progress for quizID from the configured
// backend.
func clearProgress(ctx context.Context, st *store.Store, quizID string) error {
	ps, closeProgress, err := openProgress(ctx, st)
	if err != nil {
		return err
	}
	defer closeProgress()
	return ps.Clear(ctx, quizID)
}

// newProvider builds the configured LLM provider, logging requests to the
// event log.
func newProvider(ctx context.Context, st *store.Store) (llm.Provider, error) {
	p, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), log)
	if err != nil {
		return nil, fmt.Errorf("LLM provider: %w", err)
	}
	return p, nil
}

// newExplainer returns an explanation service, or nil when no LLM is
// configured. Study mode then shows authored explanations only.
func newExplainer(ctx context.Context, st *store.Store) *explain.Service {
	p, err := newProvider(ctx, st)
	if err != nil {
		log.WithError(err).Info("AI explanations unavailable")
		return nil
	}
	return explain.NewService(p, explain.DefaultConfig(), log)
}
