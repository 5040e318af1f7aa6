package spacedrep

import (
	"testing"

	"github.com/abhisek/quizmaster/internal/quiz"
)

func missedQuestion() quiz.Question {
	return quiz.Question{
		Question: "Which port does SSH use?",
		Type:     quiz.TypeChoice,
		Options:  []string{"21", "22", "80"},
		Correct:  []int{1},
	}
}

func TestNewCard(t *testing.T) {
	c := NewCard("quiz-1", missedQuestion(), day0)

	if c.Stage != 0 {
		t.Errorf("Stage = %d, want 0", c.Stage)
	}
	if !c.NextReviewDate.Equal(day0.AddDate(0, 0, 1)) {
		t.Errorf("NextReviewDate = %v, want one day later", c.NextReviewDate)
	}
	if c.ID == "" || c.QuizID != "quiz-1" {
		t.Errorf("card identity = (%q, %q)", c.ID, c.QuizID)
	}
}

func TestCardIDStable(t *testing.T) {
	q := missedQuestion()
	if CardID("quiz-1", &q) != CardID("quiz-1", &q) {
		t.Error("CardID not deterministic")
	}
	if CardID("quiz-1", &q) == CardID("quiz-2", &q) {
		t.Error("CardID should differ across quizzes")
	}
	other := q
	other.Question = "Which port does HTTP use?"
	if CardID("quiz-1", &q) == CardID("quiz-1", &other) {
		t.Error("CardID should differ across questions")
	}
}

func TestScheduleGoodAdvancesStage(t *testing.T) {
	c := NewCard("q", missedQuestion(), day0)
	now := day0.AddDate(0, 0, 1)

	c = Schedule(c, RatingGood, now)
	if c.Stage != 1 || c.ConsecutiveHits != 1 {
		t.Errorf("after good: stage %d hits %d, want 1 1", c.Stage, c.ConsecutiveHits)
	}
	if !c.NextReviewDate.Equal(now.AddDate(0, 0, 3)) {
		t.Errorf("NextReviewDate = %v, want +3 days", c.NextReviewDate)
	}
	if !c.LastReviewDate.Equal(now) {
		t.Errorf("LastReviewDate = %v, want %v", c.LastReviewDate, now)
	}
}

func TestScheduleEasySkipsStage(t *testing.T) {
	c := NewCard("q", missedQuestion(), day0)
	c = Schedule(c, RatingEasy, day0)
	if c.Stage != 2 {
		t.Errorf("Stage = %d, want 2", c.Stage)
	}
	if !c.NextReviewDate.Equal(day0.AddDate(0, 0, 7)) {
		t.Errorf("NextReviewDate = %v, want +7 days", c.NextReviewDate)
	}
}

func TestScheduleHardHalvesInterval(t *testing.T) {
	c := Card{Stage: 3, ConsecutiveHits: 2}
	c = Schedule(c, RatingHard, day0)
	if c.Stage != 3 || c.ConsecutiveHits != 2 {
		t.Errorf("hard changed progress: stage %d hits %d", c.Stage, c.ConsecutiveHits)
	}
	if !c.NextReviewDate.Equal(day0.AddDate(0, 0, 7)) {
		t.Errorf("NextReviewDate = %v, want +7 days", c.NextReviewDate)
	}

	c = Schedule(Card{Stage: 0}, RatingHard, day0)
	if !c.NextReviewDate.Equal(day0.AddDate(0, 0, 1)) {
		t.Errorf("stage 0 hard: NextReviewDate = %v, want +1 day", c.NextReviewDate)
	}
}

func TestScheduleAgainResets(t *testing.T) {
	c := Card{Stage: 6, ConsecutiveHits: 6, Graduated: true}
	c = Schedule(c, RatingAgain, day0)

	if c.Stage != 0 || c.ConsecutiveHits != 0 || c.Graduated {
		t.Errorf("again: stage %d hits %d graduated %v", c.Stage, c.ConsecutiveHits, c.Graduated)
	}
	if c.Lapses != 1 {
		t.Errorf("Lapses = %d, want 1", c.Lapses)
	}
	if !c.NextReviewDate.Equal(day0.Add(AgainDelay)) {
		t.Errorf("NextReviewDate = %v, want +%v", c.NextReviewDate, AgainDelay)
	}
}

func TestGraduationAfterConsecutiveGoods(t *testing.T) {
	c := NewCard("q", missedQuestion(), day0)
	now := day0
	for i := 0; i < GraduationStage; i++ {
		now = now.AddDate(0, 0, c.CurrentIntervalDays())
		c = Schedule(c, RatingGood, now)
		if i < GraduationStage-1 && c.Graduated {
			t.Fatalf("graduated early after %d reviews", i+1)
		}
	}
	if !c.Graduated {
		t.Fatal("expected graduation")
	}
	if got := c.CurrentIntervalDays(); got != GraduatedIntervalDays {
		t.Errorf("CurrentIntervalDays() = %d, want %d", got, GraduatedIntervalDays)
	}

	c = Schedule(c, RatingGood, now)
	if !c.Graduated || c.Stage != GraduationStage {
		t.Errorf("graduated card moved: stage %d graduated %v", c.Stage, c.Graduated)
	}
}

func TestMissResetsCard(t *testing.T) {
	c := Card{ID: "x", Stage: 4, ConsecutiveHits: 4, Lapses: 1}
	q := missedQuestion()
	q.Explanation = "updated"

	c = Miss(c, q, day0)
	if c.Stage != 0 || c.ConsecutiveHits != 0 || c.Lapses != 2 {
		t.Errorf("Miss: stage %d hits %d lapses %d", c.Stage, c.ConsecutiveHits, c.Lapses)
	}
	if c.Question.Explanation != "updated" {
		t.Error("Miss should refresh the stored question")
	}
}
