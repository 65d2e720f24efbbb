package identity

import (
	"strings"
	"testing"
)

func TestSimilarity(t *testing.T) {
	r := NewResolver(DefaultConfig())

	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "identical", a: "Seminar on graph colorings", b: "Seminar on graph colorings", want: 1.0},
		{name: "both empty", a: "", b: "", want: 1.0},
		{name: "disjoint", a: "aaaa", b: "bbbb", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Similarity(tt.a, tt.b); got != tt.want {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestResolveEmptyHistory(t *testing.T) {
	r := NewResolver(DefaultConfig())

	id, existing := r.Resolve("Seminar on graph colorings, Tuesday 3pm", nil)
	if id != 0 || existing {
		t.Errorf("Resolve() = (%d, %v), want (0, false)", id, existing)
	}
}

func TestResolveNewEventGetsNextID(t *testing.T) {
	r := NewResolver(DefaultConfig())
	window := []Prior{
		{EventID: 5, Body: strings.Repeat("a", 40)},
		{EventID: 2, Body: strings.Repeat("b", 40)},
	}

	id, existing := r.Resolve(strings.Repeat("c", 40), window)
	if id != 6 || existing {
		t.Errorf("Resolve() = (%d, %v), want (6, false)", id, existing)
	}
}

func TestResolveMergesSimilarBody(t *testing.T) {
	r := NewResolver(DefaultConfig())
	original := "Seminar on graph colorings, Tuesday 3pm in 32-123. Refreshments after."
	reminder := "Seminar on graph colorings, Tuesday 3pm in 32-123. Reminder, today!"
	window := []Prior{{EventID: 7, Body: original}}

	id, existing := r.Resolve(reminder, window)
	if id != 7 || !existing {
		t.Errorf("Resolve() = (%d, %v), want (7, true)", id, existing)
	}
}

func TestResolveCorrectionUsesLooserThreshold(t *testing.T) {
	r := NewResolver(DefaultConfig())

	// Shared suffix of 30 chars, disjoint 60-char bodies otherwise:
	// the ratio is exactly 60/180, between the two thresholds.
	common := strings.Repeat("z", 30)
	prior := strings.Repeat("x", 60) + common
	next := strings.Repeat("y", 60) + common

	id, existing := r.Resolve(next, []Prior{{EventID: 3, Body: prior, IsCorrection: true}})
	if id != 3 || !existing {
		t.Errorf("Resolve() against correction = (%d, %v), want (3, true)", id, existing)
	}

	// The same ratio against a plain record is below the merge threshold.
	id, existing = r.Resolve(next, []Prior{{EventID: 3, Body: prior}})
	if id != 4 || existing {
		t.Errorf("Resolve() against plain record = (%d, %v), want (4, false)", id, existing)
	}
}

func TestResolveMostRecentMatchWins(t *testing.T) {
	r := NewResolver(DefaultConfig())
	body := "Thesis defense on sparse solvers, Friday 2pm in 26-310"
	window := []Prior{
		{EventID: 1, Body: body},
		{EventID: 9, Body: strings.Repeat("q", 50)},
		{EventID: 4, Body: body},
	}

	id, existing := r.Resolve(body, window)
	if id != 4 || !existing {
		t.Errorf("Resolve() = (%d, %v), want (4, true)", id, existing)
	}
}
