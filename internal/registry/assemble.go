package registry

import (
	"context"
	"sort"
	"time"

	"github.com/tmoulton/seminar-events/internal/announce"
	"github.com/tmoulton/seminar-events/internal/extract"
	"github.com/tmoulton/seminar-events/internal/identity"
	"github.com/tmoulton/seminar-events/internal/logger"
)

// Publisher persists an eligible record to an external calendar.
type Publisher interface {
	Publish(ctx context.Context, calendarName string, rec *Record) error
}

// Config holds the assembler's policy knobs.
type Config struct {
	CalendarName       string   `yaml:"calendar_name"`
	Timezone           string   `yaml:"timezone"`
	TalkKeywords       []string `yaml:"talk_keywords"`
	CorrectionKeywords []string `yaml:"correction_keywords"`
}

// DefaultConfig returns the assembler defaults.
func DefaultConfig() Config {
	return Config{
		CalendarName:       "seminars",
		Timezone:           "America/New_York",
		TalkKeywords:       []string{"talk", "seminar", "thesis defense"},
		CorrectionKeywords: []string{"correction", "corrected", "update", "postpone", "reschedul", "cancel"},
	}
}

// Assembler composes date/time resolution, location resolution and identity
// resolution into one metadata record per announcement and maintains the
// running history. Processing is strictly sequential: each record sees the
// history left by all prior records.
type Assembler struct {
	resolver  *extract.Resolver
	rooms     *extract.Rooms
	ident     *identity.Resolver
	window    int
	publisher Publisher
	cfg       Config
}

// NewAssembler wires the resolvers together. The window is the identity
// lookback in records.
func NewAssembler(resolver *extract.Resolver, rooms *extract.Rooms, ident *identity.Resolver, window int, publisher Publisher, cfg Config) *Assembler {
	return &Assembler{
		resolver:  resolver,
		rooms:     rooms,
		ident:     ident,
		window:    window,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Assemble resolves each new announcement in posting order, appending every
// record to the history before the next announcement is processed. Eligible
// talks are handed to the publisher; a publish failure leaves the record in
// the history with Pushed=false and never blocks later announcements.
func (a *Assembler) Assemble(ctx context.Context, history *History, announcements []*announce.Announcement) []*Record {
	ordered := make([]*announce.Announcement, len(announcements))
	copy(ordered, announcements)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PostedAt.Before(ordered[j].PostedAt)
	})

	added := make([]*Record, 0, len(ordered))
	for _, ann := range ordered {
		rec, isNew := a.resolveOne(ann, history)

		if a.eligible(rec, isNew, history) {
			if err := a.publisher.Publish(ctx, a.cfg.CalendarName, rec); err != nil {
				logger.Error("calendar publish failed", logger.Fields{
					"source":   rec.Description,
					"event_id": rec.EventID,
				}, err)
			} else {
				rec.Pushed = true
			}
		}

		history.Append(rec)
		added = append(added, rec)
		logger.Info("added to registry", logger.Fields{
			"source":   rec.Description,
			"event_id": rec.EventID,
			"pushed":   rec.Pushed,
		})
	}
	return added
}

// Retry re-publishes records that are still pending. Extraction and identity
// results are never recomputed; only the Pushed flag changes.
func (a *Assembler) Retry(ctx context.Context, history *History) int {
	published := 0
	for _, rec := range history.Pending() {
		if err := a.publisher.Publish(ctx, a.cfg.CalendarName, rec); err != nil {
			logger.Error("calendar publish retry failed", logger.Fields{
				"source":   rec.Description,
				"event_id": rec.EventID,
			}, err)
			continue
		}
		rec.Pushed = true
		published++
	}
	return published
}

// resolveOne runs the full extraction pipeline for a single announcement.
func (a *Assembler) resolveOne(ann *announce.Announcement, history *History) (*Record, bool) {
	resolved := a.resolver.Resolve(ann.Title, ann.Body, ann.PostedAt)
	location := a.rooms.Resolve(ann.Body)

	window := history.Window(a.window)
	priors := make([]identity.Prior, len(window))
	for i, prev := range window {
		priors[i] = identity.Prior{
			EventID:      prev.EventID,
			Body:         prev.Body,
			IsCorrection: prev.IsCorrection,
		}
	}
	eventID, existing := a.ident.Resolve(ann.Body, priors)

	rec := &Record{
		EventID:      eventID,
		Summary:      announce.CleanTitle(ann.Title),
		Description:  ann.SourceID,
		Location:     location,
		Body:         ann.Body,
		PostedAt:     ann.PostedAt,
		IsTalk:       announce.MatchesKeyword(ann.Title, a.cfg.TalkKeywords),
		IsCorrection: existing && announce.MatchesKeyword(ann.Title, a.cfg.CorrectionKeywords),
	}

	if resolved.HasStart() && resolved.End != "" {
		rec.Start = &EventTime{
			DateTime: resolved.Date + "T" + resolved.Start + ":00",
			TimeZone: a.cfg.Timezone,
		}
		rec.End = &EventTime{
			DateTime: resolved.Date + "T" + resolved.End + ":00",
			TimeZone: a.cfg.Timezone,
		}
	}

	return rec, !existing
}

// eligible is the publication conjunction: a talk with a resolved start that
// is either brand new, a correction, or the very first record.
func (a *Assembler) eligible(rec *Record, isNew bool, history *History) bool {
	if !rec.IsTalk || rec.Start == nil {
		return false
	}
	return isNew || rec.IsCorrection || history.Len() == 0
}

// StartTime parses a record's start into a time.Time in the record's zone.
// The zero time is returned when the record has no start.
func (r *Record) StartTime() time.Time {
	if r.Start == nil {
		return time.Time{}
	}
	loc, err := time.LoadLocation(r.Start.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", r.Start.DateTime, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}
