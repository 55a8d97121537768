package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/matzehuels/pkgpulse/pkg/cache"
	"github.com/matzehuels/pkgpulse/pkg/dataset"
	"github.com/matzehuels/pkgpulse/pkg/httputil"
)

// BaseURL is the package page location on packagecontrol.io.
const BaseURL = "https://packagecontrol.io/packages/"

// Client fetches and parses package pages.
// All methods are safe for concurrent use.
type Client struct {
	http    *httputil.Client
	baseURL string
}

// NewClient creates a page client with the given cache backend.
//
// Parameters:
//   - backend: cache backend for page bodies (use cache.NewNullCache() for none)
//   - cacheTTL: how long pages stay cached (typical: 1-24 hours)
//   - userAgent: User-Agent header sent with every request
func NewClient(backend cache.Cache, cacheTTL time.Duration, userAgent string) *Client {
	return &Client{
		http:    httputil.NewClient(backend, cacheTTL, map[string]string{"User-Agent": userAgent}),
		baseURL: BaseURL,
	}
}

// FetchPackage retrieves and parses the page for one package.
//
// The now parameter stamps the record's last_scraped field; callers pass a
// single timestamp for the whole run so records from one run sort together.
// If refresh is true, the page cache is bypassed.
//
// Non-200 responses yield a failure record (fail_reason "HTTP <code>") and
// a nil error; the run carries on. Transport errors that survive retries
// return a nil record and the error, producing no dataset entry.
func (c *Client) FetchPackage(ctx context.Context, name string, refresh bool, now string) (*dataset.PackageInfo, error) {
	pageURL := c.baseURL + url.PathEscape(name)

	body, err := c.http.GetCached(ctx, "packagecontrol:"+name, pageURL, refresh)
	if err != nil {
		if code, ok := httputil.StatusCode(err); ok {
			return &dataset.PackageInfo{
				Name:        name,
				LastScraped: now,
				FailReason:  fmt.Sprintf("HTTP %d", code),
			}, nil
		}
		return nil, err
	}

	page, err := ParsePage(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page for %s: %w", name, err)
	}

	return &dataset.PackageInfo{
		Name:          name,
		FirstSeen:     page.FirstSeen,
		TotalInstalls: page.Installs.Total,
		WinInstalls:   page.Installs.Win,
		MacInstalls:   page.Installs.Mac,
		LinuxInstalls: page.Installs.Linux,
		LastScraped:   now,
	}, nil
}
