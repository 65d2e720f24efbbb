package calendar

import (
	"context"
	"fmt"
	"io"

	"github.com/tmoulton/seminar-events/internal/registry"
)

// DryRun is a Publisher that prints what would be published instead of
// writing anything.
type DryRun struct {
	out io.Writer
}

func NewDryRun(out io.Writer) *DryRun {
	return &DryRun{out: out}
}

// Publish prints the would-be calendar entry and reports success.
func (d *DryRun) Publish(ctx context.Context, calendarName string, rec *registry.Record) error {
	start := "unscheduled"
	if rec.Start != nil {
		start = rec.Start.DateTime
	}
	fmt.Fprintf(d.out, "[DRY RUN] would publish to %s: event %d %q at %s\n",
		calendarName, rec.EventID, rec.Summary, start)
	return nil
}
