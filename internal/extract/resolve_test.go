package extract

import (
	"testing"

	"github.com/tmoulton/seminar-events/internal/temporal"
)

func TestResolveEndToEnd(t *testing.T) {
	r := NewResolver(temporal.NewRules(), DefaultConfig())

	got := r.Resolve("Seminar: Friday 3-4:30pm in 32-123", "", posted)
	want := Resolved{Date: "2026-03-06", Start: "15:00", End: "16:30"}
	if got != want {
		t.Errorf("Resolve() = %+v, want %+v", got, want)
	}
	if !got.HasStart() {
		t.Error("HasStart() = false, want true")
	}

	// Resolution has no hidden state; running it again must agree.
	if again := r.Resolve("Seminar: Friday 3-4:30pm in 32-123", "", posted); again != got {
		t.Errorf("second Resolve() = %+v, differs from first %+v", again, got)
	}
}

func TestResolveQuarterHourBias(t *testing.T) {
	// An irregular minute is likely parser noise, so a single quarter-hour
	// mention outweighs a single irregular one even if the latter came first.
	tagger := fakeTagger{spans: map[string][]temporal.Span{
		"body": {
			{Type: temporal.TagTime, Text: "2:07pm", Value: "T14:07"},
			{Type: temporal.TagTime, Text: "2:15pm", Value: "T14:15"},
		},
	}}
	r := NewResolver(tagger, DefaultConfig())

	got := r.Resolve("", "body", posted)
	if got.Start != "14:15" {
		t.Errorf("Start = %s, want 14:15", got.Start)
	}
}

func TestResolveTitleRangeOutweighsRepeatedBodyDates(t *testing.T) {
	// One explicit range in the title carries both multipliers and beats a
	// date the body merely repeats.
	tagger := fakeTagger{spans: map[string][]temporal.Span{
		"title": {
			{Type: temporal.TagDuration, Text: "title", Pair: &temporal.Range{
				Begin: "2026-03-10T14:00",
				End:   "2026-03-10T15:30",
			}},
		},
		"body": {
			{Type: temporal.TagDate, Text: "March 12", Value: "2026-03-12"},
			{Type: temporal.TagDate, Text: "March 12", Value: "2026-03-12"},
		},
	}}
	r := NewResolver(tagger, DefaultConfig())

	got := r.Resolve("title", "body", posted)
	if got.Date != "2026-03-10" {
		t.Errorf("Date = %s, want 2026-03-10", got.Date)
	}
}

func TestResolveDefaultDuration(t *testing.T) {
	tagger := fakeTagger{spans: map[string][]temporal.Span{
		"body": {
			{Type: temporal.TagDate, Text: "March 10", Value: "2026-03-10"},
			{Type: temporal.TagTime, Text: "2pm", Value: "T14:00"},
		},
	}}
	r := NewResolver(tagger, DefaultConfig())

	got := r.Resolve("", "body", posted)
	want := Resolved{Date: "2026-03-10", Start: "14:00", End: "15:00"}
	if got != want {
		t.Errorf("Resolve() = %+v, want %+v", got, want)
	}
}

func TestResolveRangeOverridesDefaultEnd(t *testing.T) {
	tagger := fakeTagger{spans: map[string][]temporal.Span{
		"body": {
			{Type: temporal.TagDate, Text: "March 10", Value: "2026-03-10"},
			{Type: temporal.TagDuration, Text: "2 to 3:30pm", Pair: &temporal.Range{
				Begin: "T14:00",
				End:   "T15:30",
			}},
		},
	}}
	r := NewResolver(tagger, DefaultConfig())

	got := r.Resolve("", "body", posted)
	if got.End != "15:30" {
		t.Errorf("End = %s, want 15:30", got.End)
	}
}

func TestResolveEarlyTimePromoted(t *testing.T) {
	// Informal announcements never mean 5:30 in the morning.
	tagger := fakeTagger{spans: map[string][]temporal.Span{
		"body": {
			{Type: temporal.TagTime, Text: "5:30", Value: "T05:30"},
		},
	}}
	r := NewResolver(tagger, DefaultConfig())

	got := r.Resolve("", "body", posted)
	if got.Start != "17:30" {
		t.Errorf("Start = %s, want 17:30", got.Start)
	}
}

func TestResolveNoEvidence(t *testing.T) {
	r := NewResolver(fakeTagger{}, DefaultConfig())

	got := r.Resolve("no dates here", "still nothing", posted)
	if got != (Resolved{}) {
		t.Errorf("Resolve() = %+v, want zero value", got)
	}
	if got.HasStart() {
		t.Error("HasStart() = true, want false")
	}
}

func TestResolveDateWithoutTime(t *testing.T) {
	tagger := fakeTagger{spans: map[string][]temporal.Span{
		"body": {
			{Type: temporal.TagDate, Text: "March 10", Value: "2026-03-10"},
		},
	}}
	r := NewResolver(tagger, DefaultConfig())

	got := r.Resolve("", "body", posted)
	want := Resolved{Date: "2026-03-10"}
	if got != want {
		t.Errorf("Resolve() = %+v, want %+v", got, want)
	}
	if got.HasStart() {
		t.Error("HasStart() = true, want false")
	}
}
