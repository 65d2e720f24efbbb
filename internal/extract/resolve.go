package extract

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tmoulton/seminar-events/internal/temporal"
)

// Config holds the extraction heuristics that are tunable rather than
// structural. EarliestHour encodes the assumption that announcements never
// mean literal pre-8am times; anything earlier is promoted by twelve hours.
type Config struct {
	EarliestHour    string        `yaml:"earliest_hour"`
	DefaultDuration time.Duration `yaml:"default_duration"`
}

// DefaultConfig returns the extraction defaults.
func DefaultConfig() Config {
	return Config{
		EarliestHour:    "08:00",
		DefaultDuration: time.Hour,
	}
}

// UnmarshalYAML accepts durations in time.ParseDuration form ("90m", "1h30m")
// and leaves fields the file omits at their current values.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		EarliestHour    string `yaml:"earliest_hour"`
		DefaultDuration string `yaml:"default_duration"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.EarliestHour != "" {
		c.EarliestHour = raw.EarliestHour
	}
	if raw.DefaultDuration != "" {
		d, err := time.ParseDuration(raw.DefaultDuration)
		if err != nil {
			return fmt.Errorf("parsing default_duration: %w", err)
		}
		c.DefaultDuration = d
	}
	return nil
}

// Resolved is the outcome of date/time resolution for one announcement.
// Empty fields mean no credible evidence was found, which is a valid result.
type Resolved struct {
	Date  string // "2006-01-02"
	Start string // "15:04"
	End   string // "15:04"
}

// HasStart reports whether both a date and a start time were resolved.
func (r Resolved) HasStart() bool {
	return r.Date != "" && r.Start != ""
}

// Resolver selects the single best date and time span from the noisy,
// sometimes conflicting evidence in an announcement's title and body.
// Tagging informal text produces multiple partial matches; weighted plurality
// voting across all of them beats trusting any single match.
type Resolver struct {
	norm *Normalizer
	cfg  Config
}

func NewResolver(tagger temporal.Tagger, cfg Config) *Resolver {
	return &Resolver{norm: NewNormalizer(tagger), cfg: cfg}
}

type featureRow struct {
	value  string
	origin Origin
	kind   Kind
}

// Resolve extracts the best-supported date, start time and end time from the
// title and body of an announcement posted at the given time.
func (r *Resolver) Resolve(title, body string, posted time.Time) Resolved {
	evidence := r.gather(title, body, posted)
	dates, times := r.splitFeatures(evidence)

	resolved := Resolved{
		Date:  pickBest(dates, false),
		Start: pickBest(times, true),
	}
	if resolved.Start == "" {
		return resolved
	}

	// Default every event to one hour, then let any explicit range whose
	// begin matches the chosen start override the end.
	resolved.End = addToClock(resolved.Start, r.cfg.DefaultDuration)
	for _, ev := range evidence {
		if ev.Kind != KindRange {
			continue
		}
		_, begin := splitDateTime(ev.Pair.Begin)
		_, end := splitDateTime(ev.Pair.End)
		if begin == "" || end == "" {
			continue
		}
		if r.promote(begin) == resolved.Start {
			resolved.End = r.promote(end)
		}
	}
	return resolved
}

// gather normalizes the title and body. A title with several separate
// matches ("Talk - Tuesday at 3pm") is re-tagged as the concatenation of just
// the matched fragments, which usually collapses into one coherent parse.
func (r *Resolver) gather(title, body string, posted time.Time) []Evidence {
	titleEvidence := r.norm.Normalize(title, posted)
	if len(titleEvidence) > 1 {
		raws := make([]string, len(titleEvidence))
		for i, ev := range titleEvidence {
			raws[i] = ev.Raw
		}
		titleEvidence = r.norm.Normalize(strings.Join(raws, " "), posted)
	}
	for i := range titleEvidence {
		titleEvidence[i].Origin = OriginTitle
	}

	bodyEvidence := r.norm.Normalize(body, posted)
	return append(titleEvidence, bodyEvidence...)
}

// splitFeatures separates evidence into date rows and time rows. Combined
// values contribute to both; ranges contribute their begin side. All times
// are represented in 24-hour form with the pre-EarliestHour promotion
// applied.
func (r *Resolver) splitFeatures(evidence []Evidence) (dates, times []featureRow) {
	for _, ev := range evidence {
		switch ev.Kind {
		case KindDate:
			dates = append(dates, featureRow{ev.Value, ev.Origin, ev.Kind})
		case KindDateTime, KindTime:
			date, clock := splitDateTime(ev.Value)
			if date != "" {
				dates = append(dates, featureRow{date, ev.Origin, ev.Kind})
			}
			if clock != "" {
				times = append(times, featureRow{r.promote(clock), ev.Origin, ev.Kind})
			}
		case KindRange:
			date, clock := splitDateTime(ev.Pair.Begin)
			if date != "" {
				dates = append(dates, featureRow{date, ev.Origin, ev.Kind})
			}
			if clock != "" {
				times = append(times, featureRow{r.promote(clock), ev.Origin, ev.Kind})
			}
		}
	}
	return dates, times
}

// pickBest accumulates a score per distinct value and returns the highest
// scoring one, first seen winning ties. Title evidence weighs 1.5x, explicit
// ranges 1.5x, and for times an irregular minute is treated as parser noise
// and halved rather than discarded.
func pickBest(rows []featureRow, timeBias bool) string {
	scores := make(map[string]float64)
	var order []string

	for _, row := range rows {
		score := 1.0
		if row.origin == OriginTitle {
			score *= 1.5
		}
		if row.kind == KindRange {
			score *= 1.5
		}
		if timeBias && !onQuarterHour(row.value) {
			score *= 0.5
		}
		if _, seen := scores[row.value]; !seen {
			order = append(order, row.value)
		}
		scores[row.value] += score
	}

	best := ""
	bestScore := 0.0
	for _, value := range order {
		if scores[value] > bestScore {
			best, bestScore = value, scores[value]
		}
	}
	return best
}

func onQuarterHour(clock string) bool {
	switch clock[len(clock)-2:] {
	case "00", "15", "30", "45":
		return true
	}
	return false
}

// promote applies the 24-hour assumption: a time before EarliestHour is
// taken to mean the afternoon.
func (r *Resolver) promote(clock string) string {
	if clock < r.cfg.EarliestHour {
		return addToClock(clock, 12*time.Hour)
	}
	return clock
}

// splitDateTime splits a normalized value on its "T" separator. Either part
// may be empty: "T15:04" has no date, "2026-03-05" has no clock.
func splitDateTime(value string) (date, clock string) {
	parts := strings.SplitN(value, "T", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func addToClock(clock string, d time.Duration) string {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return clock
	}
	return t.Add(d).Format("15:04")
}
