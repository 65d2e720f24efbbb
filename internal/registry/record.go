// Package registry maintains the correction-aware event registry: one
// resolved metadata record per announcement, appended in posting order, with
// stable event ids linking an announcement to its later reminders and
// corrections.
package registry

import "time"

// EventTime is a calendar-ready date and time in a fixed zone.
type EventTime struct {
	DateTime string `json:"dateTime"` // "2006-01-02T15:04:05"
	TimeZone string `json:"timeZone"` // IANA name, e.g. "America/New_York"
}

// Record is the resolved metadata for one announcement. Records are
// immutable once appended to the history, except Pushed, which flips to true
// after a successful calendar publish.
type Record struct {
	EventID      int        `json:"event_id"`
	Summary      string     `json:"summary"`
	Description  string     `json:"description"` // source URL of the listing
	Location     string     `json:"location,omitempty"`
	Body         string     `json:"body"` // message text, kept for identity matching
	PostedAt     time.Time  `json:"posted_at"`
	Start        *EventTime `json:"start,omitempty"`
	End          *EventTime `json:"end,omitempty"`
	IsTalk       bool       `json:"is_talk"`
	IsCorrection bool       `json:"is_correction"`
	Pushed       bool       `json:"pushed"`
}

// History is the append-only, time-ordered log of resolved records. Identity
// resolution only ever consults a bounded recent window of it.
type History struct {
	records []*Record
	seen    map[string]bool // descriptions (source URLs) already resolved
}

// NewHistory builds a history from previously persisted records, which must
// already be in posting order.
func NewHistory(records []*Record) *History {
	h := &History{
		records: make([]*Record, 0, len(records)),
		seen:    make(map[string]bool),
	}
	for _, rec := range records {
		h.Append(rec)
	}
	return h
}

// Append adds a fully-assembled record to the history.
func (h *History) Append(rec *Record) {
	h.records = append(h.records, rec)
	h.seen[rec.Description] = true
}

// Records returns the full log, oldest first. Callers must not mutate it.
func (h *History) Records() []*Record {
	return h.records
}

// Window returns the most recent n records, oldest first.
func (h *History) Window(n int) []*Record {
	if n <= 0 || n >= len(h.records) {
		return h.records
	}
	return h.records[len(h.records)-n:]
}

// Seen reports whether a source URL has already been resolved.
func (h *History) Seen(description string) bool {
	return h.seen[description]
}

// Len returns the number of records in the history.
func (h *History) Len() int {
	return len(h.records)
}

// Pending returns the records still awaiting a calendar publish: talks with
// a resolved start that were appended with Pushed=false.
func (h *History) Pending() []*Record {
	var pending []*Record
	for _, rec := range h.records {
		if !rec.Pushed && rec.IsTalk && rec.Start != nil {
			pending = append(pending, rec)
		}
	}
	return pending
}
