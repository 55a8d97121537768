// Package scrape fetches package pages from packagecontrol.io and extracts
// install statistics into the local dataset.
package scrape

import (
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Installs holds the install counters shown on a package page.
type Installs struct {
	Total int
	Win   int
	Mac   int
	Linux int
}

// Page is the data extracted from one package page.
type Page struct {
	FirstSeen string // dataset timestamp, empty when the page omits it
	Installs  Installs
}

// ParsePage extracts the first-seen date and install counters from a
// package page. Missing sections yield zero values rather than errors;
// the site renders pages without install totals for brand-new packages.
func ParsePage(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	page := &Page{}

	if title, ok := doc.Find("#details > ul > li.first_seen > span").First().Attr("title"); ok {
		page.FirstSeen = normalizeFirstSeen(title)
	}

	doc.Find("#installs > ul.totals > li").Each(func(_ int, li *goquery.Selection) {
		label := li.Find("span.total, span.platform").First()
		if label.Length() == 0 {
			return
		}
		counter := label.NextAllFiltered("span").First()
		if counter.Length() == 0 {
			return
		}
		count := parseCount(counter.AttrOr("title", "0"))

		switch strings.TrimSpace(label.Text()) {
		case "Total":
			page.Installs.Total = count
		case "Win":
			page.Installs.Win = count
		case "Mac":
			page.Installs.Mac = count
		case "Linux":
			page.Installs.Linux = count
		}
	})

	return page, nil
}

// normalizeFirstSeen converts the page's RFC 3339 title attribute
// ("2025-05-07T18:00:05Z") to the dataset timestamp layout.
func normalizeFirstSeen(t string) string {
	return strings.TrimSuffix(strings.Replace(t, "T", " ", 1), "Z")
}

// parseCount reads an install counter, stripping thousands separators.
// Unparseable counts read as 0.
func parseCount(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0
	}
	return n
}
