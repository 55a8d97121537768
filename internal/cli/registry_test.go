package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRegistryBuildCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	crawlDir := t.TempDir()
	doc := `{"source": "channel", "packages": [{"name": "Emmet"}, {"name": "GitGutter"}]}`
	if err := os.WriteFile(filepath.Join(crawlDir, "channel.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(t.TempDir(), "registry.json")

	c, buf := newTestCLI()
	root := c.RootCommand()
	root.SetArgs([]string{"registry", "build", "--crawl", crawlDir, "-o", output})
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))

	if err := root.Execute(); err != nil {
		t.Fatalf("registry build failed: %v", err)
	}

	if _, err := os.Stat(output); err != nil {
		t.Errorf("registry file not written: %v", err)
	}

	// The build summary goes through the logger with its elapsed time.
	if !strings.Contains(buf.String(), "Built registry with 2 packages") {
		t.Errorf("log output = %q, want build summary", buf.String())
	}
}

func TestRegistryBuildCommandEmptyDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c, _ := newTestCLI()
	root := c.RootCommand()
	root.SetArgs([]string{"registry", "build", "--crawl", t.TempDir(), "-o", filepath.Join(t.TempDir(), "registry.json")})
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))

	if err := root.Execute(); err == nil {
		t.Fatal("registry build with no crawl documents should fail")
	}
}
