package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	spinnerFrames    = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	styleSpinner     = lipgloss.NewStyle().Foreground(colorCyan)
	styleBarFilled   = lipgloss.NewStyle().Foreground(colorCyan)
	styleBarEmpty    = lipgloss.NewStyle().Foreground(colorDim)
	progressBarWidth = 24
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// =============================================================================
// progressModel - bubbletea view of a running check
// =============================================================================

type (
	progressMsg     struct{ done, total int }
	progressDoneMsg struct{}
	progressTickMsg time.Time
)

type progressModel struct {
	done, total int
	frame       int
	finished    bool
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg { return progressTickMsg(t) })
}

func (m progressModel) Init() tea.Cmd {
	return tick()
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressTickMsg:
		if m.finished {
			return m, nil
		}
		m.frame++
		return m, tick()
	case progressMsg:
		// Verdicts may be reported out of order.
		m.done = max(m.done, msg.done)
		m.total = msg.total
	case progressDoneMsg:
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.finished {
		return ""
	}
	frame := styleSpinner.Render(spinnerFrames[m.frame%len(spinnerFrames)])
	return fmt.Sprintf("%s %s %s %s\n",
		frame,
		StyleDim.Render("Checking dependencies"),
		renderBar(m.done, m.total, progressBarWidth),
		StyleDim.Render(fmt.Sprintf("%d/%d", m.done, m.total)))
}

// renderBar draws a width-cell bar filled in proportion to done/total.
func renderBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = min(width, done*width/total)
	}
	return styleBarFilled.Render(strings.Repeat("█", filled)) +
		styleBarEmpty.Render(strings.Repeat("░", width-filled))
}

// =============================================================================
// progressView - drives a progressModel from resolver callbacks
// =============================================================================

// progressView renders live progress on a terminal. Its update method is
// safe for concurrent use.
type progressView struct {
	program *tea.Program
	exited  chan struct{}
}

func startProgress(ctx context.Context, w io.Writer, total int) *progressView {
	v := &progressView{
		program: tea.NewProgram(progressModel{total: total},
			tea.WithContext(ctx),
			tea.WithOutput(w),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		),
		exited: make(chan struct{}),
	}
	go func() {
		defer close(v.exited)
		_, _ = v.program.Run()
	}()
	return v
}

func (v *progressView) update(done, total int) {
	v.program.Send(progressMsg{done: done, total: total})
}

// stop clears the view and waits for the program to exit.
func (v *progressView) stop() {
	v.program.Send(progressDoneMsg{})
	<-v.exited
}
