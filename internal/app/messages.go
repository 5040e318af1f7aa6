package app

import (
	"time"

	"github.com/abhisek/quizmaster/internal/explain"
)

// tickMsg is sent every second while a timed session is live.
type tickMsg time.Time

// explainedMsg carries the explanation requested for question Index.
type explainedMsg struct {
	Index       int
	Explanation explain.Explanation
}
