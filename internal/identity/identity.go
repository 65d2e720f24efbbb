// Package identity decides whether a new announcement refers to an event
// already seen in the recent history or to a brand-new one. Announcements and
// their later reminders or corrections share one stable event id; unrelated
// events never merge.
package identity

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Config holds the identity thresholds. Both thresholds and the lookback
// window are tunable heuristics, not derived constants.
type Config struct {
	// MergeThreshold is the minimum similarity ratio for a new body to be
	// considered another mention of an existing event.
	MergeThreshold float64 `yaml:"merge_threshold"`
	// CorrectionThreshold is the looser ratio used against records that
	// were themselves corrections, which tend to reword heavily.
	CorrectionThreshold float64 `yaml:"correction_threshold"`
	// Window is the number of most recent records consulted. A true
	// duplicate older than the window becomes a new event; that false
	// negative is acceptable, a false merge is not.
	Window int `yaml:"window"`
}

// DefaultConfig returns the identity defaults.
func DefaultConfig() Config {
	return Config{
		MergeThreshold:      0.5,
		CorrectionThreshold: 0.3,
		Window:              30,
	}
}

// Prior is the slice of an already-resolved record that identity resolution
// needs.
type Prior struct {
	EventID      int
	Body         string
	IsCorrection bool
}

// Resolver matches announcement bodies against a bounded window of prior
// records.
type Resolver struct {
	cfg Config
	dmp *diffmatchpatch.DiffMatchPatch
}

func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg, dmp: diffmatchpatch.New()}
}

// Resolve returns the event id for a new announcement body given the recent
// window, oldest first, plus whether that id belongs to an existing event.
// The provisional answer is a new event (max id + 1); any sufficiently
// similar prior record overwrites it, and later window entries overwrite
// earlier ones, so the most recent match wins.
func (r *Resolver) Resolve(newBody string, window []Prior) (eventID int, existing bool) {
	if len(window) == 0 {
		return 0, false
	}

	eventID = maxEventID(window) + 1
	for _, prior := range window {
		ratio := r.Similarity(prior.Body, newBody)
		if ratio > r.cfg.MergeThreshold {
			eventID = prior.EventID
			existing = true
		}
		if prior.IsCorrection && ratio > r.cfg.CorrectionThreshold {
			eventID = prior.EventID
			existing = true
		}
	}
	return eventID, existing
}

// Similarity is a normalized ratio in [0,1]: twice the matched character
// count over the total length of both strings, computed from a character
// level diff. 1.0 means identical, and small edits only dent the score.
func (r *Resolver) Similarity(a, b string) float64 {
	if len(a)+len(b) == 0 {
		return 1.0
	}
	diffs := r.dmp.DiffMain(a, b, false)
	matched := 0
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			matched += len(d.Text)
		}
	}
	return 2.0 * float64(matched) / float64(len(a)+len(b))
}

func maxEventID(window []Prior) int {
	max := 0
	for _, prior := range window {
		if prior.EventID > max {
			max = prior.EventID
		}
	}
	return max
}
