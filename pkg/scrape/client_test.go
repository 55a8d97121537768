package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/pkgpulse/pkg/cache"
	"github.com/matzehuels/pkgpulse/pkg/httputil"
)

func testPageClient(serverURL string) *Client {
	return &Client{
		http:    httputil.NewClient(cache.NewNullCache(), time.Hour, nil),
		baseURL: serverURL + "/packages/",
	}
}

func TestClient_FetchPackage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/packages/Anaconda" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	c := testPageClient(server.URL)

	info, err := c.FetchPackage(context.Background(), "Anaconda", false, "2025-05-07 18:00:05")
	if err != nil {
		t.Fatalf("FetchPackage failed: %v", err)
	}

	if info.Name != "Anaconda" {
		t.Errorf("Name = %q", info.Name)
	}
	if info.FirstSeen != "2013-10-31 16:01:55" {
		t.Errorf("FirstSeen = %q", info.FirstSeen)
	}
	if info.TotalInstalls != 1234567 {
		t.Errorf("TotalInstalls = %d", info.TotalInstalls)
	}
	if info.LastScraped != "2025-05-07 18:00:05" {
		t.Errorf("LastScraped = %q", info.LastScraped)
	}
	if info.Failed() {
		t.Errorf("unexpected fail reason %q", info.FailReason)
	}
}

func TestClient_FetchPackageNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := testPageClient(server.URL)

	info, err := c.FetchPackage(context.Background(), "Ghost", false, "2025-05-07 18:00:05")
	if err != nil {
		t.Fatalf("FetchPackage should record 404s, got error: %v", err)
	}
	if info.FailReason != "HTTP 404" {
		t.Errorf("FailReason = %q, want %q", info.FailReason, "HTTP 404")
	}
	if info.LastScraped != "2025-05-07 18:00:05" {
		t.Errorf("LastScraped = %q", info.LastScraped)
	}
	if info.TotalInstalls != 0 || info.FirstSeen != "" {
		t.Errorf("failure record should carry no stats: %+v", info)
	}
}

func TestClient_FetchPackageEscapesName(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	c := testPageClient(server.URL)

	if _, err := c.FetchPackage(context.Background(), "C++ Snippets", false, "2025-05-07 18:00:05"); err != nil {
		t.Fatalf("FetchPackage failed: %v", err)
	}
	if gotPath != "/packages/C++%20Snippets" {
		t.Errorf("request path = %q", gotPath)
	}
}

func TestClient_FetchPackageTransportError(t *testing.T) {
	// Point at a server that is already closed.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := testPageClient(server.URL)

	// The short deadline cuts the retry backoff off after the first failed
	// attempt; the retry behavior itself is covered in httputil.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	info, err := c.FetchPackage(ctx, "Anaconda", false, "2025-05-07 18:00:05")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if info != nil {
		t.Errorf("transport errors should produce no record, got %+v", info)
	}
}
