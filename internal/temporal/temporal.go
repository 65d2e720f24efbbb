package temporal

import "time"

// TagType identifies what a tagged span claims to be. The values mirror the
// classic temporal-annotation types so alternative taggers can be dropped in.
type TagType string

const (
	TagDate     TagType = "DATE"
	TagTime     TagType = "TIME"
	TagDateTime TagType = "DATETIME"
	TagDuration TagType = "DURATION"
)

// Range is a begin/end pair attached to DURATION spans. Both sides use the
// same normalized forms as scalar values ("T15:04" or "2006-01-02T15:04").
type Range struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
}

// Span is a single tagged temporal expression within a piece of text.
// Value holds a normalized scalar ("2006-01-02", "2006-01-02T15:04" or
// "T15:04"); Pair is set instead for DURATION spans.
type Span struct {
	Type  TagType `json:"type"`
	Text  string  `json:"text"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Value string  `json:"value,omitempty"`
	Pair  *Range  `json:"pair,omitempty"`
}

// Tagger extracts temporal expressions from free-form text. The reference
// time anchors relative expressions ("Friday", "tomorrow"). Implementations
// must be deterministic: the same text and reference yield the same spans in
// the same order.
type Tagger interface {
	Tag(text string, ref time.Time) []Span
}
