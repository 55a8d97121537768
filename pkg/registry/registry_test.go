package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/pkgpulse/pkg/cache"
	"github.com/matzehuels/pkgpulse/pkg/errors"
	"github.com/matzehuels/pkgpulse/pkg/httputil"
)

func TestParse(t *testing.T) {
	data := []byte(`{
		"schema_version": "4.0.0",
		"packages": [
			{"name": "Anaconda", "description": "Python IDE"},
			{"name": "GitGutter"}
		]
	}`)

	r, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if r.SchemaVersion != "4.0.0" {
		t.Errorf("SchemaVersion = %q", r.SchemaVersion)
	}
	names := r.Names()
	if len(names) != 2 || names[0] != "Anaconda" || names[1] != "GitGutter" {
		t.Errorf("Names() = %v", names)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		registry Registry
		wantCode errors.Code
	}{
		{
			name:     "empty registry",
			registry: Registry{},
			wantCode: errors.ErrCodeInvalidRegistry,
		},
		{
			name:     "empty name",
			registry: Registry{Packages: []Entry{{Name: ""}}},
			wantCode: errors.ErrCodeInvalidRegistry,
		},
		{
			name:     "duplicate name",
			registry: Registry{Packages: []Entry{{Name: "A"}, {Name: "A"}}},
			wantCode: errors.ErrCodeInvalidRegistry,
		},
		{
			name:     "valid",
			registry: Registry{Packages: []Entry{{Name: "A"}, {Name: "B"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.registry.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("Validate() = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestLoadWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	r := &Registry{
		SchemaVersion: SchemaVersion,
		Packages:      []Entry{{Name: "Anaconda", Labels: []string{"python"}}},
	}

	if err := Write(path, r); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Packages) != 1 || got.Packages[0].Name != "Anaconda" {
		t.Errorf("round trip mismatch: %+v", got.Packages)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "registry.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load missing file = %v, want FILE_NOT_FOUND", err)
	}
}

func writeCrawlDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	writeCrawlDoc(t, dir, "channel_main.json", `{
		"source": "https://packagecontrol.io/channel_v3.json",
		"packages": [
			{"name": "GitGutter", "description": "Git diff gutter"},
			{"name": "Anaconda"}
		]
	}`)
	writeCrawlDoc(t, dir, "channel_extra.json", `{
		"source": "https://example.org/channel.json",
		"packages": [
			{"name": "Anaconda", "description": "Python IDE", "homepage": "https://example.org"},
			{"name": "SideBarGit"}
		]
	}`)

	now := time.Date(2025, 5, 7, 18, 0, 5, 0, time.UTC)
	r, err := Build(dir, now)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if r.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %q", r.SchemaVersion)
	}
	if r.GeneratedAt != "2025-05-07T18:00:05Z" {
		t.Errorf("GeneratedAt = %q", r.GeneratedAt)
	}

	names := r.Names()
	want := []string{"Anaconda", "GitGutter", "SideBarGit"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	// First occurrence wins, later docs fill in missing fields.
	anaconda, ok := r.Lookup("Anaconda")
	if !ok {
		t.Fatal("Anaconda missing")
	}
	if anaconda.Description != "Python IDE" || anaconda.Homepage != "https://example.org" {
		t.Errorf("merge did not fill missing fields: %+v", anaconda)
	}
}

func TestBuildEmptyDir(t *testing.T) {
	_, err := Build(t.TempDir(), time.Now())
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Build empty dir = %v, want FILE_NOT_FOUND", err)
	}
}

func TestBuildRejectsEmptyName(t *testing.T) {
	dir := t.TempDir()
	writeCrawlDoc(t, dir, "bad.json", `{"source": "x", "packages": [{"name": ""}]}`)

	_, err := Build(dir, time.Now())
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Build = %v, want INVALID_INPUT", err)
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"schema_version": "4.0.0", "packages": [{"name": "Anaconda"}]}`))
	}))
	defer server.Close()

	client := httputil.NewClient(cache.NewNullCache(), time.Hour, nil)
	r, err := Fetch(context.Background(), client, server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(r.Packages) != 1 {
		t.Errorf("Packages = %+v", r.Packages)
	}
}

func TestFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := httputil.NewClient(cache.NewNullCache(), time.Hour, nil)
	_, err := Fetch(context.Background(), client, server.URL)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Fetch = %v, want NOT_FOUND", err)
	}
}
