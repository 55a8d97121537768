package registry

import (
	"context"

	"github.com/matzehuels/pkgpulse/pkg/errors"
	"github.com/matzehuels/pkgpulse/pkg/httputil"
)

// DefaultURL is the crawler project's release artifact. Each crawler run
// publishes a fresh registry.json under the latest release.
const DefaultURL = "https://github.com/matzehuels/pkgcrawl/releases/latest/download/registry.json"

// Fetch downloads and validates a registry document from url.
func Fetch(ctx context.Context, client *httputil.Client, url string) (*Registry, error) {
	data, err := client.Get(ctx, url)
	if err != nil {
		if code, ok := httputil.StatusCode(err); ok {
			return nil, errors.New(errors.ErrCodeNotFound, "registry download failed with HTTP %d", code)
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "download registry")
	}
	return Parse(data)
}
