package session

import (
	"reflect"
	"testing"
	"time"

	"github.com/abhisek/quizmaster/internal/quiz"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func testQuiz() *quiz.Quiz {
	return &quiz.Quiz{
		ID:    "q-1",
		Title: "Networking basics",
		Questions: []quiz.Question{
			{Question: "2+2?", Type: quiz.TypeChoice, Options: []string{"3", "4", "5"}, Correct: []int{1}},
			{Question: "Primes?", Type: quiz.TypeChoice, Options: []string{"2", "4", "5"}, Correct: []int{0, 2}},
			{Question: "Sky is blue", Type: quiz.TypeTrueFalse, Options: []string{"True", "False"}, Correct: []int{0}},
			{Question: "Order", Type: quiz.TypeOrdering, Options: []string{"a", "b", "c"}, Correct: []int{0, 1, 2}},
			{
				Question: "Match", Type: quiz.TypeMatching, Options: []string{"80", "22"}, Correct: []int{0, 1},
				Pairs: []quiz.Pair{{Left: "HTTP", Right: "80"}, {Left: "SSH", Right: "22"}},
			},
		},
	}
}

func testSession(opts Options) Session {
	return New(testQuiz(), opts, testNow)
}

func TestNewSession(t *testing.T) {
	s := testSession(Options{TimerSeconds: 60})

	if s.Status != StatusInProgress {
		t.Errorf("Status = %q, want in_progress", s.Status)
	}
	if len(s.Answers) != 5 {
		t.Fatalf("len(Answers) = %d, want 5", len(s.Answers))
	}
	for i, a := range s.Answers {
		if a != nil {
			t.Errorf("Answers[%d] = %+v, want nil", i, a)
		}
	}
	if !s.Timer.Enabled || s.Timer.RemainingSeconds != 60 {
		t.Errorf("Timer = %+v, want enabled with 60s", s.Timer)
	}
	if got := s.Arrangements[3]; len(got) != 3 || isIdentity(got) {
		t.Errorf("ordering arrangement = %v, want a non-identity permutation", got)
	}
	if s.Arrangements[0] != nil {
		t.Errorf("choice arrangement = %v, want nil", s.Arrangements[0])
	}
}

func TestShuffleIsFrozenBySeed(t *testing.T) {
	a := testSession(Options{ShuffleQuestions: true, Seed: 42})
	b := testSession(Options{ShuffleQuestions: true, Seed: 42})

	if !reflect.DeepEqual(a.Questions, b.Questions) {
		t.Error("same seed produced different question order")
	}
	if !reflect.DeepEqual(a.Arrangements, b.Arrangements) {
		t.Error("same seed produced different arrangements")
	}

	resumed := Resume(a)
	if !reflect.DeepEqual(resumed.Questions, a.Questions) {
		t.Error("Resume reshuffled questions")
	}
}

func TestSelectOptionSingleReplaces(t *testing.T) {
	s := testSession(Options{})
	s = Reduce(s, SelectOption{Index: 0})
	s = Reduce(s, SelectOption{Index: 1})

	if got := s.Answers[0].Selected; !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("Selected = %v, want [1]", got)
	}
	if s.Revealed {
		t.Error("test mode should not reveal")
	}
}

func TestSelectOptionMultiToggles(t *testing.T) {
	s := Reduce(testSession(Options{}), GoTo{Index: 1})
	s = Reduce(s, SelectOption{Index: 2})
	s = Reduce(s, SelectOption{Index: 0})
	if got := s.Answers[1].Selected; !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("Selected = %v, want [0 2]", got)
	}

	s = Reduce(s, SelectOption{Index: 2})
	if got := s.Answers[1].Selected; !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("Selected after toggle off = %v, want [0]", got)
	}

	s = Reduce(s, SelectOption{Index: 0})
	if s.Answers[1] != nil {
		t.Errorf("Answer after clearing all = %+v, want nil", s.Answers[1])
	}
}

func TestSelectOptionIgnoresOutOfRangeAndWrongType(t *testing.T) {
	s := testSession(Options{})
	s = Reduce(s, SelectOption{Index: 7})
	if s.Answers[0] != nil {
		t.Error("out-of-range index recorded an answer")
	}

	s = Reduce(s, GoTo{Index: 3})
	s = Reduce(s, SelectOption{Index: 0})
	if s.Answers[3] != nil {
		t.Error("SelectOption answered an ordering question")
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := Reduce(testSession(Options{}), GoTo{Index: 1})
	s = Reduce(s, SelectOption{Index: 0})
	before := s.Answers[1]

	next := Reduce(s, SelectOption{Index: 2})
	next = Reduce(next, ToggleFlag{})

	if !reflect.DeepEqual(s.Answers[1].Selected, []int{0}) || s.Answers[1] != before {
		t.Error("Reduce mutated the previous answers")
	}
	if len(s.Flags) != 0 {
		t.Error("Reduce mutated the previous flags")
	}
}

func TestArrangeAndMatch(t *testing.T) {
	s := Reduce(testSession(Options{}), GoTo{Index: 3})

	s = Reduce(s, Arrange{Order: []int{0, 0, 1}})
	if s.Answers[3] != nil {
		t.Error("non-permutation was accepted")
	}
	s = Reduce(s, Arrange{Order: []int{0, 1, 2}})
	if !quiz.IsCorrect(&s.Questions[3], s.Answers[3]) {
		t.Error("identity arrangement should be correct")
	}

	s = Reduce(s, Next{})
	s = Reduce(s, MatchPair{Left: 0, Right: 1})
	s = Reduce(s, MatchPair{Left: 1, Right: 1})
	if got := s.Answers[4].Matches; !reflect.DeepEqual(got, map[int]int{1: 1}) {
		t.Errorf("Matches = %v, want right value moved to left 1", got)
	}
	s = Reduce(s, MatchPair{Left: 0, Right: 0})
	if !quiz.IsCorrect(&s.Questions[4], s.Answers[4]) {
		t.Error("complete matching should be correct")
	}
	s = Reduce(s, MatchPair{Left: 0, Right: -1})
	if got := s.Answers[4].Matches; !reflect.DeepEqual(got, map[int]int{1: 1}) {
		t.Errorf("Matches after clear = %v", got)
	}
}

func TestNavigationClampsAndClearsReveal(t *testing.T) {
	s := testSession(Options{StudyMode: true})

	s = Reduce(s, Prev{})
	if s.CurrentIndex != 0 {
		t.Errorf("Prev at start: CurrentIndex = %d, want 0", s.CurrentIndex)
	}

	s = Reduce(s, SelectOption{Index: 1})
	if !s.Revealed {
		t.Fatal("study mode single select should reveal")
	}
	s = Reduce(s, Next{})
	if s.Revealed {
		t.Error("Next should clear reveal")
	}

	s = Reduce(s, GoTo{Index: 99})
	if s.CurrentIndex != 4 {
		t.Errorf("GoTo(99): CurrentIndex = %d, want 4", s.CurrentIndex)
	}
	s = Reduce(s, Next{})
	if s.CurrentIndex != 4 {
		t.Errorf("Next at end: CurrentIndex = %d, want 4", s.CurrentIndex)
	}
	s = Reduce(s, GoTo{Index: -3})
	if s.CurrentIndex != 0 {
		t.Errorf("GoTo(-3): CurrentIndex = %d, want 0", s.CurrentIndex)
	}
}

func TestToggleFlag(t *testing.T) {
	s := testSession(Options{})
	s = Reduce(s, GoTo{Index: 2})
	s = Reduce(s, ToggleFlag{})
	s = Reduce(s, GoTo{Index: 0})
	s = Reduce(s, ToggleFlag{})

	if !reflect.DeepEqual(s.Flags, []int{0, 2}) {
		t.Errorf("Flags = %v, want [0 2]", s.Flags)
	}
	s = Reduce(s, ToggleFlag{})
	if !reflect.DeepEqual(s.Flags, []int{2}) {
		t.Errorf("Flags = %v, want [2]", s.Flags)
	}
	if !s.IsFlagged(2) || s.IsFlagged(0) {
		t.Error("IsFlagged disagrees with Flags")
	}
}

func TestStudyModeStreak(t *testing.T) {
	s := testSession(Options{StudyMode: true})

	s = Reduce(s, SelectOption{Index: 1}) // correct, auto-checked
	s = Reduce(s, Next{})
	s = Reduce(s, SelectOption{Index: 0}) // multi-select: no auto-check
	s = Reduce(s, SelectOption{Index: 2})
	s = Reduce(s, CheckAnswer{})
	if s.Streak != 2 || s.MaxStreak != 2 {
		t.Errorf("streak = %d max %d, want 2 and 2", s.Streak, s.MaxStreak)
	}

	s = Reduce(s, CheckAnswer{})
	if s.Streak != 2 {
		t.Errorf("second check while revealed changed streak to %d", s.Streak)
	}

	s = Reduce(s, Next{})
	s = Reduce(s, SelectOption{Index: 1}) // wrong
	if s.Streak != 0 || s.MaxStreak != 2 {
		t.Errorf("after miss: streak = %d max %d, want 0 and 2", s.Streak, s.MaxStreak)
	}
	if s.LastCheckCorrect {
		t.Error("LastCheckCorrect should be false after a miss")
	}

	s = Reduce(s, SelectOption{Index: 0})
	if got := s.Answers[2].Selected; !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("answer changed after reveal: %v", got)
	}
}

func TestCheckAnswerOutsideStudyModeIsNoop(t *testing.T) {
	s := testSession(Options{})
	s = Reduce(s, SelectOption{Index: 1})
	s = Reduce(s, CheckAnswer{})
	if s.Revealed || s.Streak != 0 {
		t.Errorf("test mode check changed state: revealed=%v streak=%d", s.Revealed, s.Streak)
	}
}

func TestSubmitScores(t *testing.T) {
	s := testSession(Options{})
	s = Reduce(s, SelectOption{Index: 1})
	s = Reduce(s, GoTo{Index: 2})
	s = Reduce(s, SelectOption{Index: 1})
	s = Reduce(s, Submit{At: testNow.Add(90 * time.Second)})

	if s.Status != StatusSubmitted {
		t.Fatalf("Status = %q, want submitted", s.Status)
	}
	want := &Result{Score: 1, Total: 5, Percentage: 20, TimeTakenSeconds: 90}
	if !reflect.DeepEqual(s.Result, want) {
		t.Errorf("Result = %+v, want %+v", s.Result, want)
	}

	after := Reduce(s, SelectOption{Index: 0})
	if !reflect.DeepEqual(after, s) {
		t.Error("actions after submit should be no-ops")
	}
}

func TestTickCountsDownAndSubmitsOnce(t *testing.T) {
	s := testSession(Options{TimerSeconds: 2})

	s = Reduce(s, Tick{})
	if s.Timer.RemainingSeconds != 1 || s.Status != StatusInProgress {
		t.Fatalf("after 1 tick: %+v status %q", s.Timer, s.Status)
	}
	s = Reduce(s, Tick{})
	if s.Status != StatusSubmitted {
		t.Fatalf("Status = %q, want submitted at zero", s.Status)
	}
	if s.Result.TimeTakenSeconds != 2 {
		t.Errorf("TimeTakenSeconds = %d, want 2", s.Result.TimeTakenSeconds)
	}

	again := Reduce(s, Tick{})
	if !reflect.DeepEqual(again, s) {
		t.Error("tick after submit changed state")
	}
}

func TestTickWithoutTimerIsNoop(t *testing.T) {
	s := testSession(Options{})
	if got := Reduce(s, Tick{}); got.Status != StatusInProgress || got.Timer.RemainingSeconds != 0 {
		t.Errorf("untimed tick changed state: %+v", got)
	}
}

func TestAbandonAndResume(t *testing.T) {
	s := testSession(Options{StudyMode: true})
	s = Reduce(s, SelectOption{Index: 1})
	s = Reduce(s, Abandon{})
	if s.Status != StatusAbandoned {
		t.Fatalf("Status = %q, want abandoned", s.Status)
	}

	r := Resume(s)
	if r.Status != StatusInProgress || r.Revealed {
		t.Errorf("Resume: status %q revealed %v", r.Status, r.Revealed)
	}
	if r.Answers[0] == nil {
		t.Error("Resume lost the recorded answer")
	}
}

func TestBuildSummary(t *testing.T) {
	s := testSession(Options{})
	s = Reduce(s, SelectOption{Index: 1})
	s = Reduce(s, GoTo{Index: 2})
	s = Reduce(s, SelectOption{Index: 1})
	s = Reduce(s, ToggleFlag{})
	s = Reduce(s, Submit{At: testNow})

	sum := BuildSummary(&s)
	if sum.Score != 1 || sum.Total != 5 {
		t.Errorf("score = %d/%d, want 1/5", sum.Score, sum.Total)
	}
	if !reflect.DeepEqual(sum.Missed, []int{2}) {
		t.Errorf("Missed = %v, want [2]", sum.Missed)
	}
	if !reflect.DeepEqual(sum.Unanswered, []int{1, 3, 4}) {
		t.Errorf("Unanswered = %v, want [1 3 4]", sum.Unanswered)
	}
	if !reflect.DeepEqual(sum.Flagged, []int{2}) {
		t.Errorf("Flagged = %v, want [2]", sum.Flagged)
	}
	if got := sum.ByType[quiz.TypeChoice]; got.Correct != 1 || got.Total != 2 {
		t.Errorf("choice breakdown = %+v, want 1/2", got)
	}
}
