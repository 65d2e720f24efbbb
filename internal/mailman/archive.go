package mailman

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher is the part of Session that Archive needs; it exists so tests can
// crawl canned pages.
type Fetcher interface {
	Get(ctx context.Context, pageURL string) ([]byte, error)
	BaseURL() string
}

// Archive crawls a pipermail archive for listing URLs. The archive home
// links one period page per month; each period page lists the individual
// messages.
type Archive struct {
	fetcher Fetcher
}

func NewArchive(fetcher Fetcher) *Archive {
	return &Archive{fetcher: fetcher}
}

// NewListingURLs returns the listing URLs not yet in known, newest first.
// Period pages are walked in the archive's order and each page's messages
// newest first; the crawl stops at the first already-known URL, since
// everything older is known too.
func (a *Archive) NewListingURLs(ctx context.Context, known map[string]bool) ([]string, error) {
	home, err := a.fetch(ctx, a.fetcher.BaseURL())
	if err != nil {
		return nil, err
	}

	var urls []string
	for _, periodURL := range periodLinks(home, a.fetcher.BaseURL()) {
		page, err := a.fetch(ctx, periodURL)
		if err != nil {
			return nil, err
		}

		indices := messageLinks(page)
		for i := len(indices) - 1; i >= 0; i-- {
			listingURL := dirname(periodURL) + "/" + indices[i]
			if known[listingURL] {
				return urls, nil
			}
			urls = append(urls, listingURL)
		}
	}
	return urls, nil
}

// Download fetches one listing page.
func (a *Archive) Download(ctx context.Context, listingURL string) ([]byte, error) {
	return a.fetcher.Get(ctx, listingURL)
}

func (a *Archive) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := a.fetcher.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", pageURL, err)
	}
	return doc, nil
}

// periodLinks extracts the per-month archive pages from the list home: the
// table links whose href mentions "date".
func periodLinks(home *goquery.Document, baseURL string) []string {
	var links []string
	home.Find("table a[href]").Each(func(i int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if strings.Contains(href, "date") {
			links = append(links, baseURL+"/"+href)
		}
	})
	return links
}

// messageLinks extracts the message hrefs from a period page. Pipermail puts
// the navigation links in the first <ul> and the messages in the second.
func messageLinks(page *goquery.Document) []string {
	var hrefs []string
	page.Find("ul").Eq(1).Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}

func dirname(pageURL string) string {
	if i := strings.LastIndex(pageURL, "/"); i >= 0 {
		return pageURL[:i]
	}
	return pageURL
}

// Index returns the file name component of a listing URL, which doubles as
// its local storage name.
func Index(listingURL string) string {
	if i := strings.LastIndex(listingURL, "/"); i >= 0 {
		return listingURL[i+1:]
	}
	return listingURL
}
