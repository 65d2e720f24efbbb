// Package calendar publishes resolved event records to a calendar. The
// shipped publisher writes one iCalendar file per event into an outbox
// directory that a calendar service imports.
package calendar

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tmoulton/seminar-events/internal/registry"
)

// ICSPublisher writes RFC 5545 .ics files to an outbox directory. A
// republished event id overwrites the earlier file, so corrections supersede
// the original entry.
type ICSPublisher struct {
	outDir string
}

// NewICSPublisher creates the outbox directory if needed.
func NewICSPublisher(outDir string) (*ICSPublisher, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("creating outbox directory: %w", err)
	}
	return &ICSPublisher{outDir: outDir}, nil
}

// Publish writes the record's calendar entry. Records without a resolved
// start are rejected; eligibility upstream should prevent them arriving.
func (p *ICSPublisher) Publish(ctx context.Context, calendarName string, rec *registry.Record) error {
	if rec.Start == nil || rec.End == nil {
		return fmt.Errorf("record %d has no resolved start", rec.EventID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ics, err := GenerateICS(calendarName, rec)
	if err != nil {
		return err
	}

	path := filepath.Join(p.outDir, fmt.Sprintf("%s-event-%04d.ics", calendarName, rec.EventID))
	if err := os.WriteFile(path, []byte(ics), 0644); err != nil {
		return fmt.Errorf("writing calendar entry: %w", err)
	}
	return nil
}

// GenerateICS renders a record as an iCalendar document.
func GenerateICS(calendarName string, rec *registry.Record) (string, error) {
	start, err := parseEventTime(rec.Start)
	if err != nil {
		return "", fmt.Errorf("record %d start: %w", rec.EventID, err)
	}
	end, err := parseEventTime(rec.End)
	if err != nil {
		return "", fmt.Errorf("record %d end: %w", rec.EventID, err)
	}

	var ics strings.Builder
	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//seminar-events//seminar-events//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	ics.WriteString("BEGIN:VEVENT\r\n")

	ics.WriteString(fmt.Sprintf("UID:event-%d@%s\r\n", rec.EventID, calendarName))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", time.Now().UTC().Format("20060102T150405Z")))
	ics.WriteString(fmt.Sprintf("DTSTART;TZID=%s:%s\r\n", rec.Start.TimeZone, start.Format("20060102T150405")))
	ics.WriteString(fmt.Sprintf("DTEND;TZID=%s:%s\r\n", rec.End.TimeZone, end.Format("20060102T150405")))
	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(rec.Summary)))
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(rec.Description)))
	if rec.Location != "" {
		ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(rec.Location)))
	}

	// A correction bumps the sequence so importers replace the entry.
	sequence := 0
	if rec.IsCorrection {
		sequence = 1
	}
	ics.WriteString(fmt.Sprintf("SEQUENCE:%d\r\n", sequence))
	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")

	ics.WriteString("END:VEVENT\r\n")
	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String(), nil
}

func parseEventTime(et *registry.EventTime) (time.Time, error) {
	return time.Parse("2006-01-02T15:04:05", et.DateTime)
}

// escapeICS escapes special characters according to RFC 5545.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
