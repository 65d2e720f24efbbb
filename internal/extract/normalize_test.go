package extract

import (
	"testing"
	"time"

	"github.com/tmoulton/seminar-events/internal/temporal"
)

// posted is a Thursday.
var posted = time.Date(2026, time.March, 5, 9, 30, 0, 0, time.UTC)

// fakeTagger returns canned spans per input text, mimicking taggers whose
// output needs repair.
type fakeTagger struct {
	spans map[string][]temporal.Span
}

func (f fakeTagger) Tag(text string, ref time.Time) []temporal.Span {
	return f.spans[text]
}

func TestRewriteDates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "short slash date becomes month name",
			text: "talk on 3/14 at 2pm",
			want: "talk on March 14 at 2pm",
		},
		{
			name: "full slash date left alone",
			text: "submitted 03/14/2026",
			want: "submitted 03/14/2026",
		},
		{
			name: "repeated dashes collapse",
			text: "Talk --- graph theory",
			want: "Talk - graph theory",
		},
		{
			name: "unparseable fragment untouched",
			text: "ratio 19/0 stays",
			want: "ratio 19/0 stays",
		},
		{
			name: "no rewriting needed",
			text: "nothing to do here",
			want: "nothing to do here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RewriteDates(tt.text); got != tt.want {
				t.Errorf("RewriteDates(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalizeRepairsShortTimes(t *testing.T) {
	// A tagger anchored "2pm" to the reference date; the date component is
	// spurious and must be truncated back to a bare time.
	tagger := fakeTagger{spans: map[string][]temporal.Span{
		"talk at 2pm": {{
			Type:  temporal.TagTime,
			Text:  "2pm",
			Start: 8,
			End:   11,
			Value: "2026-03-05T14:00",
		}},
	}}

	evidence := NewNormalizer(tagger).Normalize("talk at 2pm", posted)
	if len(evidence) != 1 {
		t.Fatalf("got %d evidence items, want 1", len(evidence))
	}
	if evidence[0].Kind != KindTime {
		t.Errorf("kind = %s, want time", evidence[0].Kind)
	}
	if evidence[0].Value != "T14:00" {
		t.Errorf("value = %s, want T14:00", evidence[0].Value)
	}
}

func TestNormalizeLongDatetimeNotTruncated(t *testing.T) {
	// Only short matched text gets the truncation repair; a real combined
	// expression keeps its date.
	tagger := fakeTagger{spans: map[string][]temporal.Span{
		"March 10 at 2pm": {{
			Type:  temporal.TagTime,
			Text:  "March 10 at 2pm",
			Start: 0,
			End:   15,
			Value: "2026-03-10T14:00",
		}},
	}}

	evidence := NewNormalizer(tagger).Normalize("March 10 at 2pm", posted)
	if len(evidence) != 1 {
		t.Fatalf("got %d evidence items, want 1", len(evidence))
	}
	if evidence[0].Kind != KindDateTime {
		t.Errorf("kind = %s, want datetime", evidence[0].Kind)
	}
	if evidence[0].Value != "2026-03-10T14:00" {
		t.Errorf("value = %s, want 2026-03-10T14:00", evidence[0].Value)
	}
}

func TestNormalizeWeekShift(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantValue string
		wantKept  bool
	}{
		{
			name:      "date on posted date accepted as is",
			value:     "2026-03-05",
			wantValue: "2026-03-05",
			wantKept:  true,
		},
		{
			name:      "date in week before shifts forward",
			value:     "2026-03-03",
			wantValue: "2026-03-10",
			wantKept:  true,
		},
		{
			name:     "date too far past is dropped",
			value:    "2026-02-10",
			wantKept: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tagger := fakeTagger{spans: map[string][]temporal.Span{
				"x": {{Type: temporal.TagDate, Text: "x", Value: tt.value}},
			}}
			evidence := NewNormalizer(tagger).Normalize("x", posted)

			if !tt.wantKept {
				if len(evidence) != 0 {
					t.Fatalf("evidence kept, want dropped")
				}
				return
			}
			if len(evidence) != 1 {
				t.Fatalf("got %d evidence items, want 1", len(evidence))
			}
			if evidence[0].Value != tt.wantValue {
				t.Errorf("value = %s, want %s", evidence[0].Value, tt.wantValue)
			}
		})
	}
}

func TestNormalizeDropsUnrecognizedValues(t *testing.T) {
	tagger := fakeTagger{spans: map[string][]temporal.Span{
		"x": {
			{Type: temporal.TagDate, Text: "next spring", Value: "2026-SP"},
			{Type: temporal.TagDuration, Text: "an hour", Value: "PT1H"},
			{Type: temporal.TagTime, Text: "3pm", Value: "T15:00"},
		},
	}}

	evidence := NewNormalizer(tagger).Normalize("x", posted)
	if len(evidence) != 1 {
		t.Fatalf("got %d evidence items, want 1", len(evidence))
	}
	if evidence[0].Value != "T15:00" {
		t.Errorf("surviving value = %s, want T15:00", evidence[0].Value)
	}
}

func TestNormalizeRangeClassification(t *testing.T) {
	tests := []struct {
		name     string
		pair     *temporal.Range
		wantKind Kind
		wantKept bool
	}{
		{
			name:     "time pair",
			pair:     &temporal.Range{Begin: "T14:00", End: "T15:30"},
			wantKind: KindRange,
			wantKept: true,
		},
		{
			name:     "datetime pair",
			pair:     &temporal.Range{Begin: "2026-03-10T14:00", End: "2026-03-10T15:30"},
			wantKind: KindRange,
			wantKept: true,
		},
		{
			name:     "pair of bare dates rejected",
			pair:     &temporal.Range{Begin: "2026-03-10", End: "2026-03-11"},
			wantKept: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tagger := fakeTagger{spans: map[string][]temporal.Span{
				"x": {{Type: temporal.TagDuration, Text: "x", Pair: tt.pair}},
			}}
			evidence := NewNormalizer(tagger).Normalize("x", posted)

			if !tt.wantKept {
				if len(evidence) != 0 {
					t.Fatal("pair kept, want dropped")
				}
				return
			}
			if len(evidence) != 1 {
				t.Fatalf("got %d evidence items, want 1", len(evidence))
			}
			if evidence[0].Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", evidence[0].Kind, tt.wantKind)
			}
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	norm := NewNormalizer(temporal.NewRules())
	text := "Seminar Friday 3-4pm in 32-123, reception after at 5:15pm"

	first := norm.Normalize(text, posted)
	second := norm.Normalize(text, posted)
	if len(first) != len(second) {
		t.Fatalf("repeated normalization returned %d then %d items", len(first), len(second))
	}
	for i := range first {
		if first[i].Value != second[i].Value || first[i].Kind != second[i].Kind {
			t.Errorf("evidence %d differs between runs", i)
		}
	}
}
