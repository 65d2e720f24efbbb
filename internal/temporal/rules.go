package temporal

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Rules is a deterministic, regex-driven Tagger. It recognizes the temporal
// vocabulary that actually occurs in seminar announcements: month-name dates,
// mm/dd/yyyy dates, weekday names, today/tomorrow, clock times and
// begin-end time ranges.
type Rules struct {
	timeRange *regexp.Regexp
	monthDay  *regexp.Regexp
	slashDate *regexp.Regexp
	weekday   *regexp.Regexp
	relDay    *regexp.Regexp
	clockTime *regexp.Regexp
	hourMerid *regexp.Regexp
	namedTime *regexp.Regexp
}

// NewRules compiles the recognizer patterns. The returned value is immutable
// and safe for concurrent use.
func NewRules() *Rules {
	return &Rules{
		timeRange: regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\s*(?:-|–|to|until)\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`),
		monthDay:  regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sept|Sep|Oct|Nov|Dec)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`),
		slashDate: regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2,4})\b`),
		weekday:   regexp.MustCompile(`(?i)\b(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday|Mon|Tues|Tue|Wed|Thurs|Thu|Fri|Sat|Sun)\b`),
		relDay:    regexp.MustCompile(`(?i)\b(today|tonight|tomorrow)\b`),
		clockTime: regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*(am|pm)?\b`),
		hourMerid: regexp.MustCompile(`(?i)\b(\d{1,2})\s*(am|pm)\b`),
		namedTime: regexp.MustCompile(`(?i)\b(noon|midnight)\b`),
	}
}

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var weekdaysByPrefix = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday,
	"wed": time.Wednesday, "thu": time.Thursday, "fri": time.Friday,
	"sat": time.Saturday,
}

// Tag scans text for temporal expressions. Ranges are claimed first so that
// "3-4pm" does not also produce two bare times; remaining matches are
// suppressed if they overlap an already-claimed span. Spans come back in
// text order.
func (r *Rules) Tag(text string, ref time.Time) []Span {
	var spans []Span
	var claimed [][2]int

	overlaps := func(start, end int) bool {
		for _, c := range claimed {
			if start < c[1] && end > c[0] {
				return true
			}
		}
		return false
	}
	claim := func(s Span) {
		spans = append(spans, s)
		claimed = append(claimed, [2]int{s.Start, s.End})
	}

	for _, m := range r.timeRange.FindAllStringSubmatchIndex(text, -1) {
		s, ok := r.rangeSpan(text, m)
		if ok && !overlaps(m[0], m[1]) {
			claim(s)
		}
	}
	for _, m := range r.monthDay.FindAllStringSubmatchIndex(text, -1) {
		s, ok := monthDaySpan(text, m, ref)
		if ok && !overlaps(m[0], m[1]) {
			claim(s)
		}
	}
	for _, m := range r.slashDate.FindAllStringSubmatchIndex(text, -1) {
		s, ok := slashDateSpan(text, m)
		if ok && !overlaps(m[0], m[1]) {
			claim(s)
		}
	}
	for _, m := range r.relDay.FindAllStringSubmatchIndex(text, -1) {
		if !overlaps(m[0], m[1]) {
			day := ref
			if strings.EqualFold(text[m[2]:m[3]], "tomorrow") {
				day = ref.AddDate(0, 0, 1)
			}
			claim(dateSpan(text, m[0], m[1], day))
		}
	}
	for _, m := range r.weekday.FindAllStringSubmatchIndex(text, -1) {
		if !overlaps(m[0], m[1]) {
			wd := weekdaysByPrefix[strings.ToLower(text[m[2]:m[3]])[:3]]
			// Resolve to that weekday within the reference week
			// (Sunday-Saturday). A mention of next week's day lands
			// before the reference date and is repaired downstream.
			day := ref.AddDate(0, 0, int(wd)-int(ref.Weekday()))
			claim(dateSpan(text, m[0], m[1], day))
		}
	}
	for _, m := range r.clockTime.FindAllStringSubmatchIndex(text, -1) {
		s, ok := clockSpan(text, m)
		if ok && !overlaps(m[0], m[1]) {
			claim(s)
		}
	}
	for _, m := range r.hourMerid.FindAllStringSubmatchIndex(text, -1) {
		s, ok := hourMeridSpan(text, m)
		if ok && !overlaps(m[0], m[1]) {
			claim(s)
		}
	}
	for _, m := range r.namedTime.FindAllStringSubmatchIndex(text, -1) {
		if !overlaps(m[0], m[1]) {
			value := "T12:00"
			if strings.EqualFold(text[m[2]:m[3]], "midnight") {
				value = "T00:00"
			}
			claim(Span{Type: TagTime, Text: text[m[0]:m[1]], Start: m[0], End: m[1], Value: value})
		}
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}

// rangeSpan builds a DURATION span from a timeRange match. A match with no
// meridiem and no minutes on either side is rejected: "32-123" is a room
// number, not a time range.
func (r *Rules) rangeSpan(text string, m []int) (Span, bool) {
	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return text[m[2*i]:m[2*i+1]]
	}
	h1, min1, mer1 := group(1), group(2), group(3)
	h2, min2, mer2 := group(4), group(5), group(6)

	if mer1 == "" && mer2 == "" && min1 == "" && min2 == "" {
		return Span{}, false
	}
	// A trailing meridiem qualifies both sides: "3-4pm".
	if mer1 == "" {
		mer1 = mer2
	}
	begin, ok := clockValue(h1, min1, mer1)
	if !ok {
		return Span{}, false
	}
	end, ok := clockValue(h2, min2, mer2)
	if !ok {
		return Span{}, false
	}
	return Span{
		Type:  TagDuration,
		Text:  text[m[0]:m[1]],
		Start: m[0],
		End:   m[1],
		Pair:  &Range{Begin: begin, End: end},
	}, true
}

func monthDaySpan(text string, m []int, ref time.Time) (Span, bool) {
	name := strings.ToLower(text[m[2]:m[3]])
	month, ok := monthsByPrefix[name[:3]]
	if !ok {
		return Span{}, false
	}
	day, err := strconv.Atoi(text[m[4]:m[5]])
	if err != nil || day < 1 || day > 31 {
		return Span{}, false
	}
	year := ref.Year()
	if m[6] >= 0 {
		year, _ = strconv.Atoi(text[m[6]:m[7]])
	}
	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day {
		// Normalized away, e.g. Feb 30.
		return Span{}, false
	}
	return dateSpan(text, m[0], m[1], date), true
}

func slashDateSpan(text string, m []int) (Span, bool) {
	month, _ := strconv.Atoi(text[m[2]:m[3]])
	day, _ := strconv.Atoi(text[m[4]:m[5]])
	year, _ := strconv.Atoi(text[m[6]:m[7]])
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Span{}, false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day {
		return Span{}, false
	}
	return dateSpan(text, m[0], m[1], date), true
}

func dateSpan(text string, start, end int, day time.Time) Span {
	return Span{
		Type:  TagDate,
		Text:  text[start:end],
		Start: start,
		End:   end,
		Value: day.Format("2006-01-02"),
	}
}

func clockSpan(text string, m []int) (Span, bool) {
	hour := text[m[2]:m[3]]
	minute := text[m[4]:m[5]]
	meridiem := ""
	if m[6] >= 0 {
		meridiem = text[m[6]:m[7]]
	}
	value, ok := clockValue(hour, minute, meridiem)
	if !ok {
		return Span{}, false
	}
	return Span{Type: TagTime, Text: text[m[0]:m[1]], Start: m[0], End: m[1], Value: value}, true
}

func hourMeridSpan(text string, m []int) (Span, bool) {
	value, ok := clockValue(text[m[2]:m[3]], "", text[m[4]:m[5]])
	if !ok {
		return Span{}, false
	}
	return Span{Type: TagTime, Text: text[m[0]:m[1]], Start: m[0], End: m[1], Value: value}, true
}

// clockValue normalizes an hour/minute/meridiem triple to "T15:04".
func clockValue(hourText, minuteText, meridiem string) (string, bool) {
	hour, err := strconv.Atoi(hourText)
	if err != nil {
		return "", false
	}
	minute := 0
	if minuteText != "" {
		minute, err = strconv.Atoi(minuteText)
		if err != nil || minute > 59 {
			return "", false
		}
	}
	switch strings.ToLower(meridiem) {
	case "pm":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if hour == 12 {
			hour = 0
		}
	default:
		if hour > 23 {
			return "", false
		}
	}
	return fmt.Sprintf("T%02d:%02d", hour, minute), true
}
