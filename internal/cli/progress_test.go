package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestProgressModelCounts(t *testing.T) {
	m := newProgressModel(3)

	next, _ := m.Update(packageStartMsg{name: "Emmet"})
	m = next.(progressModel)
	if m.current != "Emmet" {
		t.Errorf("current = %q, want Emmet", m.current)
	}

	next, _ = m.Update(packageDoneMsg{name: "Emmet"})
	m = next.(progressModel)
	next, _ = m.Update(packageDoneMsg{name: "GitGutter", failReason: "HTTP 404"})
	m = next.(progressModel)
	next, _ = m.Update(packageDoneMsg{name: "SideBar", err: errors.New("timeout")})
	m = next.(progressModel)

	if m.done != 3 {
		t.Errorf("done = %d, want 3", m.done)
	}
	if m.failed != 2 {
		t.Errorf("failed = %d, want 2", m.failed)
	}
}

func TestProgressModelView(t *testing.T) {
	m := newProgressModel(4)
	next, _ := m.Update(packageDoneMsg{name: "Emmet"})
	m = next.(progressModel)

	view := m.View()
	if !strings.Contains(view, "1/4") {
		t.Errorf("view should show progress count, got %q", view)
	}
}

func TestScrapeUINonInteractive(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.DebugLevel)

	ui := newScrapeUI(logger, nil)
	ui.interactive = false

	ctx := context.Background()
	ui.OnRunStart(ctx, 2)
	ui.OnPackageStart(ctx, "Emmet")
	ui.OnPackageDone(ctx, "Emmet", "", 10*time.Millisecond, nil)
	ui.OnPackageDone(ctx, "GitGutter", "HTTP 404", 5*time.Millisecond, nil)
	ui.OnRunComplete(ctx, 1, 1, 15*time.Millisecond)

	out := buf.String()
	if !strings.Contains(out, "starting scrape") {
		t.Errorf("output should log run start, got %q", out)
	}
	if !strings.Contains(out, "HTTP 404") {
		t.Errorf("output should log the fail reason, got %q", out)
	}
}

func TestScrapeUIInterruptCancelsRun(t *testing.T) {
	// The progress bar reads the terminal in raw mode, so ctrl-c shows up
	// as a key press that quits the UI. The UI exiting before the run
	// completes must cancel the run context.
	logger := newLogger(&bytes.Buffer{}, log.InfoLevel)

	cancelled := false
	ui := newScrapeUI(logger, func() { cancelled = true })

	ui.programExited()
	if !cancelled {
		t.Error("UI exit before run completion should cancel the run")
	}
}

func TestScrapeUINoCancelAfterRunComplete(t *testing.T) {
	logger := newLogger(&bytes.Buffer{}, log.InfoLevel)

	cancelled := false
	ui := newScrapeUI(logger, func() { cancelled = true })

	ui.OnRunComplete(context.Background(), 3, 0, time.Second)
	ui.programExited()
	if cancelled {
		t.Error("UI exit after run completion should not cancel anything")
	}
}
