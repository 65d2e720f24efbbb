package announce

import (
	"strings"
	"testing"
	"time"
)

const listingPage = `<html>
<head><title>[seminars] Talk: graph colorings</title></head>
<body>
<b>Alyssa P. Hacker</b>
<i>Tue Mar  3 09:12:41 EST 2026</i>
<pre>Seminar on Friday at 3pm in 32-123.

We discuss chromatic numbers of planar graphs.
-------------- next part --------------
A non-text attachment was scrubbed...
</pre>
</body>
</html>`

func TestParseListing(t *testing.T) {
	ann, err := ParseListing(strings.NewReader(listingPage), "msg00001.html")
	if err != nil {
		t.Fatalf("ParseListing() error: %v", err)
	}

	if ann.Title != "[seminars] Talk: graph colorings" {
		t.Errorf("Title = %q", ann.Title)
	}
	if ann.SourceID != "msg00001.html" {
		t.Errorf("SourceID = %q, want msg00001.html", ann.SourceID)
	}
	if strings.Contains(ann.Body, "next part") {
		t.Error("body still contains the attachment marker section")
	}
	if !strings.HasPrefix(ann.Body, "Seminar on Friday at 3pm") {
		t.Errorf("Body = %q", ann.Body)
	}
	if !strings.HasSuffix(ann.Body, "planar graphs.") {
		t.Errorf("Body = %q, attachment dump not trimmed", ann.Body)
	}

	want := time.Date(2026, time.March, 3, 9, 12, 41, 0, ann.PostedAt.Location())
	if !ann.PostedAt.Equal(want) {
		t.Errorf("PostedAt = %v, want %v", ann.PostedAt, want)
	}
}

func TestParseListingMissingBody(t *testing.T) {
	page := `<html><head><title>empty</title></head><body><i>Tue Mar  3 09:12:41 EST 2026</i></body></html>`
	if _, err := ParseListing(strings.NewReader(page), "msg00002.html"); err == nil {
		t.Error("ParseListing() without <pre> returned nil error")
	}
}

func TestParseListingBadPostedTime(t *testing.T) {
	page := `<html><head><title>t</title></head><body><i>sometime last week</i><pre>body</pre></body></html>`
	if _, err := ParseListing(strings.NewReader(page), "msg00003.html"); err == nil {
		t.Error("ParseListing() with unparseable time returned nil error")
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "single list tag", title: "[seminars] Talk: graph colorings", want: "Talk: graph colorings"},
		{name: "stacked tags", title: "[seminars] (fwd) Talk time", want: "Talk time"},
		{name: "parenthesized tag", title: "(mitml) Thesis defense", want: "Thesis defense"},
		{name: "no tag", title: "Talk: graph colorings", want: "Talk: graph colorings"},
		{name: "interior brackets kept", title: "Talk on [0,1] intervals", want: "Talk on [0,1] intervals"},
		{name: "unbalanced bracket", title: "[broken title", want: "[broken title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanTitle(tt.title); got != tt.want {
				t.Errorf("CleanTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestMatchesKeyword(t *testing.T) {
	keywords := []string{"talk", "seminar", "thesis defense"}

	tests := []struct {
		title string
		want  bool
	}{
		{"Seminar: graph colorings", true},
		{"TALK announcement", true},
		{"Thesis Defense of A. Student", true},
		{"Reading group this week", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := MatchesKeyword(tt.title, keywords); got != tt.want {
			t.Errorf("MatchesKeyword(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}
