package components

import (
	"strings"
	"testing"
)

func TestOptionListMarksAndCursor(t *testing.T) {
	list := OptionList{
		Labels:  []string{"A.", "B.", "C."},
		Items:   []string{"red", "green", "blue"},
		Marks:   []Mark{MarkNone, MarkCorrect, MarkIncorrect},
		Cursor:  2,
		Focused: true,
	}
	lines := strings.Split(strings.TrimRight(list.View(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.Contains(lines[1], "✓") || !strings.Contains(lines[1], "B.  green") {
		t.Errorf("line 1 = %q, want a correct mark on B", lines[1])
	}
	if !strings.Contains(lines[2], "▸") || !strings.Contains(lines[2], "✗") {
		t.Errorf("line 2 = %q, want the cursor and an incorrect mark", lines[2])
	}

	list.Focused = false
	if strings.Contains(list.View(), "▸") {
		t.Error("unfocused list should hide the cursor")
	}
}

func TestQuestionStripCells(t *testing.T) {
	strip := QuestionStrip{
		Cells:   []Cell{{Answered: true}, {}, {Flagged: true}, {Answered: true, Flagged: true}},
		Current: 1,
		Width:   60,
	}
	view := strip.View()
	if !strings.Contains(view, "2/4 answered") {
		t.Errorf("view = %q, want the answered count", view)
	}
	for _, glyph := range []string{"●", "◉", "⚑"} {
		if !strings.Contains(view, glyph) {
			t.Errorf("view = %q, missing %s", view, glyph)
		}
	}
}

func TestQuestionStripCollapses(t *testing.T) {
	strip := QuestionStrip{Cells: make([]Cell, 100), Width: 40}
	strip.Cells[0].Answered = true
	view := strip.View()
	if strings.Contains(view, "○") {
		t.Errorf("view = %q, want a bar instead of cells", view)
	}
	if !strings.Contains(view, "1/100 answered") {
		t.Errorf("view = %q, want the answered count", view)
	}
}
