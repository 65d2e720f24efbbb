// Package extract mines structured event metadata (date, time span, room)
// out of free-form announcement text. Temporal expressions are tagged by a
// temporal.Tagger, cleaned up against the announcement's posted date, and the
// surviving evidence is scored to pick the most credible candidates.
package extract

import (
	"strings"
	"time"

	"github.com/tmoulton/seminar-events/internal/temporal"
)

// Origin marks which part of the announcement a piece of evidence came from.
type Origin string

const (
	OriginTitle Origin = "title"
	OriginBody  Origin = "body"
)

// Kind classifies a normalized temporal value.
type Kind int

const (
	// KindInvalid marks evidence that failed strict format checks; it is
	// dropped and never leaves the normalizer.
	KindInvalid Kind = iota
	KindDate         // "2006-01-02"
	KindTime         // "T15:04"
	KindDateTime     // "2006-01-02T15:04"
	KindRange        // begin/end pair, both sides time-like
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindDateTime:
		return "datetime"
	case KindRange:
		return "range"
	}
	return "invalid"
}

// Evidence is one tagged temporal fragment after normalization and repair.
type Evidence struct {
	Origin Origin
	Kind   Kind
	Raw    string
	Start  int
	End    int
	Value  string          // scalar value for date/time/datetime kinds
	Pair   *temporal.Range // begin/end pair for KindRange
}

// Normalizer cleans raw text, tags it, and repairs the tagger's common
// misalignments before classification.
type Normalizer struct {
	tagger temporal.Tagger
}

func NewNormalizer(tagger temporal.Tagger) *Normalizer {
	return &Normalizer{tagger: tagger}
}

// Normalize returns the usable temporal evidence in text, anchored at the
// announcement's posted date. Unparseable fragments are dropped, never fatal.
func (n *Normalizer) Normalize(text string, posted time.Time) []Evidence {
	text = RewriteDates(text)
	spans := n.tagger.Tag(text, posted)

	evidence := make([]Evidence, 0, len(spans))
	for _, span := range spans {
		span, ok := repair(span, posted)
		if !ok {
			continue
		}
		kind := classify(span)
		if kind == KindInvalid {
			continue
		}
		evidence = append(evidence, Evidence{
			Origin: OriginBody,
			Kind:   kind,
			Raw:    span.Text,
			Start:  span.Start,
			End:    span.End,
			Value:  span.Value,
			Pair:   span.Pair,
		})
	}
	return evidence
}

// repair fixes two known tagger misalignments against the posted date.
// The second return is false when the evidence should be dropped entirely.
func repair(span temporal.Span, posted time.Time) (temporal.Span, bool) {
	postedDate := posted.Format("2006-01-02")

	// A short fragment like "2pm" can come back anchored to the reference
	// date. Truncate the spurious date component back to a bare time.
	if span.Type == temporal.TagTime && len(span.Text) <= 8 && kindOf(span.Value) == KindDateTime {
		if t, err := time.Parse("2006-01-02T15:04", span.Value); err == nil {
			span.Value = t.Format("T15:04")
		}
	}

	// A weekday like "Friday" can resolve into the reference week even
	// when the announcement means the week after. If shifting forward a
	// week lands on or after the posted date, take the shift; otherwise
	// the date is truly past or ambiguous and we refuse to guess.
	if span.Type == temporal.TagDate && kindOf(span.Value) == KindDate && span.Value < postedDate {
		t, err := time.Parse("2006-01-02", span.Value)
		if err != nil {
			return span, false
		}
		shifted := t.AddDate(0, 0, 7).Format("2006-01-02")
		if shifted < postedDate {
			return span, false
		}
		span.Value = shifted
	}

	return span, true
}

// classify applies strict format checks to a span's normalized value.
func classify(span temporal.Span) Kind {
	if span.Pair != nil {
		begin, end := kindOf(span.Pair.Begin), kindOf(span.Pair.End)
		if (begin == KindTime || begin == KindDateTime) && (end == KindTime || end == KindDateTime) {
			return KindRange
		}
		return KindInvalid
	}
	return kindOf(span.Value)
}

func kindOf(value string) Kind {
	if _, err := time.Parse("2006-01-02", value); err == nil {
		return KindDate
	}
	if _, err := time.Parse("2006-01-02T15:04", value); err == nil {
		return KindDateTime
	}
	if _, err := time.Parse("T15:04", value); err == nil {
		return KindTime
	}
	return KindInvalid
}

// RewriteDates pre-processes announcement text before tagging: repeated
// dashes collapse to single dashes, and short slash dates like "3/14" are
// rewritten to "March 14", which taggers parse far more reliably. Full
// mm/dd/yyyy dates are left alone.
func RewriteDates(text string) string {
	for strings.Contains(text, "--") {
		text = strings.ReplaceAll(text, "--", "-")
	}

	var fragments []string
	for i := 0; i < len(text); i++ {
		if text[i] != '/' {
			continue
		}
		window := text[clamp(i-3, len(text)):clamp(i+4, len(text))]
		if strings.Count(window, "/") != 1 {
			continue
		}
		fragment := strings.TrimSpace(text[clamp(i-2, len(text)):clamp(i+3, len(text))])
		fragments = append(fragments, fragment)
	}

	for _, fragment := range fragments {
		t, err := time.Parse("1/2", fragment)
		if err != nil {
			continue
		}
		text = strings.ReplaceAll(text, fragment, t.Format("January 02"))
	}
	return text
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
