package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sandfall/strata/pkg/pipeline"
)

// stepsPerFrame is how many runner steps one animation frame performs. High
// enough that small presets finish in a few frames, low enough that the view
// visibly progresses through the phases on large ones.
const stepsPerFrame = 32

var (
	watchStateStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	watchBarStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	watchTrackStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// watchRun drives the runner inside a live bubbletea view until it
// completes or the user quits.
func watchRun(ctx context.Context, runner *pipeline.Runner) error {
	model := watchModel{
		runner: runner,
		passes: runner.Passes(),
		start:  time.Now(),
	}
	p := tea.NewProgram(model, tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

type watchTickMsg time.Time

func watchTick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

// watchModel is the bubbletea model for the generate --watch view.
type watchModel struct {
	runner *pipeline.Runner
	passes int
	start  time.Time
	status pipeline.Status
	ended  bool
}

func (m watchModel) Init() tea.Cmd {
	return watchTick()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.runner.Cancel()
		}
		return m, nil

	case watchTickMsg:
		if m.ended {
			return m, tea.Quit
		}
		ctx := context.Background()
		for i := 0; i < stepsPerFrame; i++ {
			m.status = m.runner.Step(ctx)
			if m.status != pipeline.StatusContinue {
				m.ended = true
				break
			}
		}
		if m.ended {
			return m, tea.Quit
		}
		return m, watchTick()
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Generating terrain"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q: cancel"))
	b.WriteString("\n\n")

	state := m.runner.State()
	b.WriteString(watchStateStyle.Render(state.String()))
	b.WriteString("\n")

	pass := m.runner.Pass()
	if pass > m.passes {
		pass = m.passes
	}
	b.WriteString(renderBar(pass, m.passes, 30))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  pass %d/%d", pass, m.passes)))
	b.WriteString("\n\n")

	stats := m.runner.Stats()
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d cells placed · %s elapsed",
		stats.CellsWritten, time.Since(m.start).Round(time.Millisecond))))
	b.WriteString("\n")

	if m.ended {
		switch m.status {
		case pipeline.StatusDone:
			b.WriteString(StyleSuccess.Render("\n" + iconSuccess + " complete"))
		case pipeline.StatusCancelled:
			b.WriteString(StyleWarning.Render("\n" + iconWarning + " cancelled"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderBar draws a fixed-width progress bar.
func renderBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	filled := done * width / total
	if filled > width {
		filled = width
	}
	return "  " +
		watchBarStyle.Render(strings.Repeat("█", filled)) +
		watchTrackStyle.Render(strings.Repeat("░", width-filled))
}
