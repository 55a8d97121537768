package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/pkgpulse/pkg/observability"
)

// =============================================================================
// Scrape Progress UI
// =============================================================================

// progressInteractive reports whether the live progress display should be
// used: stderr must be a terminal and CI must not be set.
func progressInteractive() bool {
	if os.Getenv("CI") == "true" {
		return false
	}
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// scrapeUI bridges scrape hooks to either a live bubbletea progress bar or,
// when not attached to a terminal, plain log lines.
//
// The progress bar reads the terminal in raw mode, so ctrl-c arrives as a
// key press instead of SIGINT. When the bar exits before the run finishes,
// cancel is invoked so the run aborts the same way a plain interrupt would.
type scrapeUI struct {
	logger      *log.Logger
	cancel      context.CancelFunc
	interactive bool

	mu        sync.Mutex
	program   *tea.Program
	done      chan struct{}
	completed bool
}

func newScrapeUI(logger *log.Logger, cancel context.CancelFunc) *scrapeUI {
	return &scrapeUI{
		logger:      logger,
		cancel:      cancel,
		interactive: progressInteractive(),
	}
}

func (u *scrapeUI) OnRunStart(_ context.Context, total int) {
	if !u.interactive {
		u.logger.Info("starting scrape", "packages", total)
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	program := tea.NewProgram(newProgressModel(total), tea.WithOutput(os.Stderr))
	done := make(chan struct{})
	u.program = program
	u.done = done
	go func() {
		defer close(done)
		_, _ = program.Run()
		u.programExited()
	}()
}

// programExited cancels the run if the progress bar quit before the run
// completed (the user hit ctrl-c inside the raw-mode UI).
func (u *scrapeUI) programExited() {
	u.mu.Lock()
	completed := u.completed
	u.mu.Unlock()

	if !completed && u.cancel != nil {
		u.cancel()
	}
}

func (u *scrapeUI) OnPackageStart(_ context.Context, name string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.program != nil {
		u.program.Send(packageStartMsg{name: name})
	}
}

func (u *scrapeUI) OnPackageDone(_ context.Context, name, failReason string, duration time.Duration, err error) {
	u.mu.Lock()
	p := u.program
	u.mu.Unlock()

	if p != nil {
		p.Send(packageDoneMsg{name: name, failReason: failReason, err: err})
		return
	}

	switch {
	case err != nil:
		u.logger.Warn("fetch failed", "package", name, "error", err)
	case failReason != "":
		u.logger.Warn("scrape failed", "package", name, "reason", failReason, "duration", duration)
	default:
		u.logger.Debug("scraped", "package", name, "duration", duration)
	}
}

func (u *scrapeUI) OnRunComplete(context.Context, int, int, time.Duration) {
	u.mu.Lock()
	u.completed = true
	p, done := u.program, u.done
	u.program = nil
	u.mu.Unlock()

	if p == nil {
		return
	}
	p.Send(runCompleteMsg{})
	<-done
}

// =============================================================================
// Progress Model
// =============================================================================

const progressBarWidth = 30

type packageStartMsg struct{ name string }

type packageDoneMsg struct {
	name       string
	failReason string
	err        error
}

type runCompleteMsg struct{}

type progressTickMsg time.Time

// progressModel renders a progress bar over the planned packages with live
// done/failed counts and elapsed time.
type progressModel struct {
	total   int
	done    int
	failed  int
	current string
	start   time.Time
	now     time.Time
}

func newProgressModel(total int) progressModel {
	now := time.Now()
	return progressModel{total: total, start: now, now: now}
}

func progressTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return progressTickMsg(t)
	})
}

func (m progressModel) Init() tea.Cmd {
	return progressTick()
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case packageStartMsg:
		m.current = msg.name
	case packageDoneMsg:
		m.done++
		if msg.failReason != "" || msg.err != nil {
			m.failed++
		}
	case runCompleteMsg:
		return m, tea.Quit
	case progressTickMsg:
		m.now = time.Time(msg)
		return m, progressTick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder

	filled := 0
	if m.total > 0 {
		filled = m.done * progressBarWidth / m.total
	}
	bar := styleBarFilled.Render(strings.Repeat("█", filled)) +
		styleBarEmpty.Render(strings.Repeat("░", progressBarWidth-filled))

	elapsed := m.now.Sub(m.start).Round(time.Second)

	b.WriteString(fmt.Sprintf("  %s %s\n", bar, StyleValue.Render(fmt.Sprintf("%d/%d", m.done, m.total))))

	status := fmt.Sprintf("%s elapsed", elapsed)
	if m.failed > 0 {
		status += StyleWarning.Render(fmt.Sprintf("  %d failed", m.failed))
	}
	if m.current != "" && m.done < m.total {
		status += "  " + styleIconSpinner.Render(iconArrow) + " " + m.current
	}
	b.WriteString("  " + StyleDim.Render(status) + "\n")

	return b.String()
}

// interface guard
var _ observability.ScrapeHooks = (*scrapeUI)(nil)
