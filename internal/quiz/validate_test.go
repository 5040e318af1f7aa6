package quiz

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		q         Question
		wantValid bool
		wantErr   string
	}{
		{
			name:      "valid choice",
			q:         Question{Question: "Q", Type: TypeChoice, Options: []string{"a", "b"}, Correct: []int{0}},
			wantValid: true,
		},
		{
			name:    "blank text",
			q:       Question{Question: "   ", Type: TypeChoice, Options: []string{"a", "b"}, Correct: []int{0}},
			wantErr: "question text is empty",
		},
		{
			name:    "choice with one option",
			q:       Question{Question: "Q", Type: TypeChoice, Options: []string{"a"}, Correct: []int{0}},
			wantErr: "at least 2 options",
		},
		{
			name:    "choice without correct",
			q:       Question{Question: "Q", Type: TypeChoice, Options: []string{"a", "b"}},
			wantErr: "at least 1 correct",
		},
		{
			name:    "truefalse without correct",
			q:       Question{Question: "Q", Type: TypeTrueFalse, Options: TrueFalseOptions},
			wantErr: "exactly 1 correct",
		},
		{
			name:    "matching with one pair",
			q:       Question{Question: "Q", Type: TypeMatching, Options: []string{"1"}, Correct: []int{0}, Pairs: []Pair{{"a", "1"}}},
			wantErr: "at least 2 pairs",
		},
		{
			name:    "ordering with one item",
			q:       Question{Question: "Q", Type: TypeOrdering, Options: []string{"a"}, Correct: []int{0}},
			wantErr: "at least 2 items",
		},
		{
			name:    "correct out of range",
			q:       Question{Question: "Q", Type: TypeChoice, Options: []string{"a", "b"}, Correct: []int{2}},
			wantErr: "out of range",
		},
		{
			name:    "duplicate correct",
			q:       Question{Question: "Q", Type: TypeChoice, Options: []string{"a", "b"}, Correct: []int{1, 1}},
			wantErr: "listed twice",
		},
		{
			name:    "ordering out of order",
			q:       Question{Question: "Q", Type: TypeOrdering, Options: []string{"a", "b"}, Correct: []int{1, 0}},
			wantErr: "list the items in order",
		},
		{
			name: "matching out of order",
			q: Question{Question: "Q", Type: TypeMatching, Options: []string{"1", "2"}, Correct: []int{1, 0},
				Pairs: []Pair{{"a", "1"}, {"b", "2"}}},
			wantErr: "list the pairs in order",
		},
		{
			name:    "option ending in star",
			q:       Question{Question: "Q", Type: TypeChoice, Options: []string{"?", "*"}, Correct: []int{0}},
			wantErr: "option B ends with '*'",
		},
		{
			name:    "option starting with image directive",
			q:       Question{Question: "Q", Type: TypeChoice, Options: []string{"[img: x.png] a", "b"}, Correct: []int{0}},
			wantErr: "option A starts with an image directive",
		},
		{
			name:    "type tag in question text",
			q:       Question{Question: "Is this [tf] right?", Type: TypeChoice, Options: []string{"a", "b"}, Correct: []int{0}},
			wantErr: "type tag",
		},
		{
			name:    "alt without image",
			q:       Question{Question: "Q", Type: TypeChoice, Options: []string{"a", "b"}, Correct: []int{0}, ImageAlt: "diagram"},
			wantErr: "no image URL",
		},
		{
			name: "pair left side with separator",
			q: Question{Question: "Q", Type: TypeMatching, Options: []string{"4", "2"}, Correct: []int{0, 1},
				Pairs: []Pair{{"ratio: 3", "4"}, {"b", "2"}}},
			wantErr: "pair A left side contains a separator",
		},
		{
			name: "pair ending in star",
			q: Question{Question: "Q", Type: TypeMatching, Options: []string{"b *", "d"}, Correct: []int{0, 1},
				Pairs: []Pair{{"a", "b *"}, {"c", "d"}}},
			wantErr: "pair A ends with '*'",
		},
		{
			name:    "unknown type",
			q:       Question{Question: "Q", Type: "essay"},
			wantErr: "unknown question type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(&tt.q)
			if r.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v (errors: %v)", r.Valid, tt.wantValid, r.Errors)
			}
			if tt.wantErr == "" {
				return
			}
			joined := strings.Join(r.Errors, "; ")
			if !strings.Contains(joined, tt.wantErr) {
				t.Errorf("errors %q do not mention %q", joined, tt.wantErr)
			}
		})
	}
}

func TestValidateAllReportsFirstFailure(t *testing.T) {
	qs := []Question{
		{Question: "ok", Type: TypeChoice, Options: []string{"a", "b"}, Correct: []int{0}},
		{Question: "bad", Type: TypeOrdering, Options: []string{"a"}, Correct: []int{0}},
		{Question: "", Type: TypeChoice},
	}

	err := ValidateAll(qs)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("ValidateAll error = %v, want *ValidationError", err)
	}
	if verr.Index != 1 {
		t.Errorf("Index = %d, want 1", verr.Index)
	}
	if !strings.HasPrefix(verr.Error(), "question 2:") {
		t.Errorf("Error() = %q, want prefix %q", verr.Error(), "question 2:")
	}
}

func TestSaveRequestCheck(t *testing.T) {
	valid := Question{Question: "Q", Type: TypeChoice, Options: []string{"a", "b"}, Correct: []int{0}}

	req := &SaveRequest{Title: "  Networking  ", Questions: []Question{valid}}
	if err := req.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if req.Title != "Networking" {
		t.Errorf("Title = %q, want trimmed", req.Title)
	}

	if err := (&SaveRequest{Questions: []Question{valid}}).Check(); err == nil {
		t.Error("missing title should fail")
	}
	if err := (&SaveRequest{Title: "T"}).Check(); err == nil {
		t.Error("no questions should fail")
	}

	bad := valid
	bad.Type = "essay"
	if err := (&SaveRequest{Title: "T", Questions: []Question{bad}}).Check(); err == nil {
		t.Error("unknown type should fail")
	}
}
