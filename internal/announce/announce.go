// Package announce models a single mailing-list announcement and extracts it
// from a stored archive listing page.
package announce

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// nextPartMarker separates the message text from MIME attachment dumps in
// pipermail listing pages.
const nextPartMarker = "-------------- next part --------------"

// Announcement is one fetched announcement, immutable once parsed.
type Announcement struct {
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	PostedAt time.Time `json:"posted_at"`
	SourceID string    `json:"source_id"` // archive URL of the listing
}

// postedLayouts are the timestamp formats seen in pipermail <i> headers.
var postedLayouts = []string{
	time.UnixDate,                     // Tue Mar  6 09:12:41 EST 2018
	"Mon Jan 2 15:04:05 MST 2006",     // single-space day
	"Mon, 2 Jan 2006 15:04:05 -0700",  // RFC 2822
	time.RFC1123,
	time.RFC1123Z,
	time.ANSIC,
}

// ParseListing extracts an Announcement from a stored listing page. The page
// title becomes the announcement title, the first <pre> block up to the
// attachment marker becomes the body, and the first <i> holds the posted
// time.
func ParseListing(r io.Reader, sourceID string) (*Announcement, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing listing HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	pre := doc.Find("pre").First()
	if pre.Length() == 0 {
		return nil, fmt.Errorf("listing %s has no message body", sourceID)
	}
	body := strings.TrimSpace(pre.Text())
	body = strings.TrimSpace(strings.SplitN(body, nextPartMarker, 2)[0])

	postedText := strings.TrimSpace(doc.Find("i").First().Text())
	posted, err := parsePostedTime(postedText)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", sourceID, err)
	}

	return &Announcement{
		Title:    title,
		Body:     body,
		PostedAt: posted,
		SourceID: sourceID,
	}, nil
}

func parsePostedTime(text string) (time.Time, error) {
	for _, layout := range postedLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized posted time %q", text)
}

var bracketedGroup = regexp.MustCompile(`[\(\[].*?[\)\]]`)

// CleanTitle strips leading bracketed list tags like "[mitml]" or
// "(seminars)" from a title. Several stacked tags are removed one at a time.
func CleanTitle(title string) string {
	title = strings.TrimSpace(title)
	for len(title) > 0 && (title[0] == '(' || title[0] == '[') {
		loc := bracketedGroup.FindStringIndex(title)
		if loc == nil {
			break
		}
		title = strings.TrimSpace(title[:loc[0]] + title[loc[1]:])
	}
	return title
}

// MatchesKeyword reports whether any keyword occurs in the title,
// case-insensitively.
func MatchesKeyword(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, keyword := range keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
