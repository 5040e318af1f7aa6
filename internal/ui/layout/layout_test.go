package layout

import (
	"strings"
	"testing"
)

func TestFrameRender(t *testing.T) {
	f := Frame{
		Title:  "Capitals",
		Status: "Q 2/5 · 01:30",
		Hints:  []KeyHint{{Key: "n", Description: "Next"}, {Key: "q", Description: "Quit"}},
		Width:  80,
		Height: 24,
	}
	out := f.Render("Which city is the capital of Peru?")
	for _, want := range []string{"quizmaster", "Capitals", "Q 2/5 · 01:30", "capital of Peru", "Next", "Quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("frame missing %q:\n%s", want, out)
		}
	}
}

func TestFrameTooSmall(t *testing.T) {
	tests := []struct {
		w, h int
		want bool
	}{
		{80, 24, false},
		{MinWidth, MinHeight, false},
		{MinWidth - 1, 40, true},
		{120, MinHeight - 1, true},
	}
	for _, tt := range tests {
		f := Frame{Width: tt.w, Height: tt.h}
		if got := f.TooSmall(); got != tt.want {
			t.Errorf("TooSmall(%dx%d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}

	out := Frame{Width: 40, Height: 10, Title: "hidden"}.Render("body")
	if !strings.Contains(out, "Terminal too small") || strings.Contains(out, "body") {
		t.Errorf("small frame = %q, want only the resize notice", out)
	}
}
