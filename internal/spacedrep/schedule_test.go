package spacedrep

import "testing"

func TestBaseIntervals(t *testing.T) {
	expected := []int{1, 3, 7, 14, 30, 60}
	if len(BaseIntervals) != len(expected) {
		t.Fatalf("len(BaseIntervals) = %d, want %d", len(BaseIntervals), len(expected))
	}
	for i, v := range expected {
		if BaseIntervals[i] != v {
			t.Errorf("BaseIntervals[%d] = %d, want %d", i, BaseIntervals[i], v)
		}
	}
	if MaxStage != len(BaseIntervals)-1 {
		t.Errorf("MaxStage = %d, want %d", MaxStage, len(BaseIntervals)-1)
	}
}

func TestCurrentIntervalDays(t *testing.T) {
	tests := []struct {
		stage     int
		graduated bool
		want      int
	}{
		{0, false, 1},
		{1, false, 3},
		{2, false, 7},
		{3, false, 14},
		{4, false, 30},
		{5, false, 60},
		{10, false, 60},
		{6, true, 90},
	}
	for _, tt := range tests {
		c := &Card{Stage: tt.stage, Graduated: tt.graduated}
		if got := c.CurrentIntervalDays(); got != tt.want {
			t.Errorf("Stage %d (graduated=%v): CurrentIntervalDays() = %d, want %d", tt.stage, tt.graduated, got, tt.want)
		}
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		in      string
		want    Rating
		wantErr bool
	}{
		{"again", RatingAgain, false},
		{" Hard ", RatingHard, false},
		{"3", RatingGood, false},
		{"EASY", RatingEasy, false},
		{"meh", "", true},
	}
	for _, tt := range tests {
		got, err := ParseRating(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRating(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRating(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
