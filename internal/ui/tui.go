package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/envdoctor/internal/output"
	"github.com/Aman-CERP/envdoctor/internal/preflight"
)

// TUIRenderer provides an inline terminal UI using bubbletea.
type TUIRenderer struct {
	mu      sync.Mutex
	cfg     Config
	program *tea.Program
	model   *checkModel
	tracker *ProgressTracker
	cancel  context.CancelFunc
	started bool
	done    chan struct{}
}

// NewTUIRenderer creates a TUI renderer.
// Returns an error if the output is not a terminal.
func NewTUIRenderer(cfg Config) (*TUIRenderer, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}

	tracker := NewProgressTracker(cfg.Total)
	model := newCheckModel(tracker, cfg.ProjectDir)
	if cfg.NoColor || DetectNoColor() {
		model.styles = NoColorStyles()
	}

	return &TUIRenderer{
		cfg:     cfg,
		tracker: tracker,
		model:   model,
		done:    make(chan struct{}),
	}, nil
}

// Start implements Renderer.
func (r *TUIRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	ctx, r.cancel = context.WithCancel(ctx)

	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithInput(nil)}
	if f, ok := r.cfg.Output.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}

	r.program = tea.NewProgram(r.model, opts...)
	r.started = true

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()

	return nil
}

// GroupStarted implements preflight.Observer.
func (r *TUIRenderer) GroupStarted(name string, probes int) {
	r.tracker.StartGroup(name, probes)
	r.send(refreshMsg{})
}

// OutcomeRecorded implements preflight.Observer.
func (r *TUIRenderer) OutcomeRecorded(o preflight.Outcome) {
	r.tracker.Record(o)
	r.send(refreshMsg{})
}

// GroupFinished implements preflight.Observer.
func (r *TUIRenderer) GroupFinished(res preflight.GroupResult) {
	r.tracker.FinishGroup(res)
	r.send(refreshMsg{})
}

func (r *TUIRenderer) send(msg tea.Msg) {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Stop implements Renderer. It leaves the final frame on screen.
func (r *TUIRenderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.program == nil {
		return nil
	}

	r.program.Send(finishedMsg{})

	// Wait with timeout to avoid hanging on an unresponsive terminal
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		r.program.Kill()
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.program = nil
	return nil
}

// Message types for bubbletea
type refreshMsg struct{}
type finishedMsg struct{}

// checkModel is the bubbletea model for a running check.
type checkModel struct {
	tracker     *ProgressTracker
	width       int
	finished    bool
	spinner     spinner.Model
	progressBar progress.Model
	styles      Styles
	projectDir  string
}

func newCheckModel(tracker *ProgressTracker, projectDir string) *checkModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime))

	p := progress.New(
		progress.WithSolidFill(ColorLime),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	return &checkModel{
		tracker:     tracker,
		spinner:     s,
		progressBar: p,
		styles:      DefaultStyles(),
		width:       80,
		projectDir:  projectDir,
	}
}

// Init implements tea.Model.
func (m *checkModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *checkModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progressBar.Width = msg.Width - 30
		if m.progressBar.Width < 20 {
			m.progressBar.Width = 20
		}

	case finishedMsg:
		m.finished = true
		return m, tea.Quit

	case refreshMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *checkModel) View() string {
	stats := m.tracker.Stats()

	var b strings.Builder
	title := "Environment check"
	if m.projectDir != "" {
		title += " • " + output.SanitizeLine(m.projectDir)
	}
	b.WriteString(m.styles.Header.Render(title))
	b.WriteString("\n")

	for i, g := range stats.Completed {
		b.WriteString(m.renderGroupLine(i+1, stats.TotalGroups, g))
		b.WriteString("\n")
	}

	if !m.finished {
		if stats.Group != "" {
			fmt.Fprintf(&b, "%s %s %s\n",
				m.spinner.View(),
				m.styles.Active.Render(output.SanitizeLine(stats.Group)),
				m.styles.Dim.Render(fmt.Sprintf("%d/%d", stats.Done, stats.Probes)))
		}
		fmt.Fprintf(&b, "%s  %s\n",
			m.progressBar.ViewAs(stats.Progress),
			m.styles.Label.Render(fmt.Sprintf("%d/%d groups", len(stats.Completed), stats.TotalGroups)))
	}

	b.WriteString(m.renderCounts(stats))
	b.WriteString("\n")
	return b.String()
}

func (m *checkModel) renderGroupLine(index, total int, g GroupLine) string {
	style := m.styles.Success
	switch g.Status {
	case preflight.StatusWarn:
		style = m.styles.Warning
	case preflight.StatusFail:
		style = m.styles.Error
	}
	counter := m.styles.Dim.Render(fmt.Sprintf("[%d/%d]", index, total))
	line := fmt.Sprintf("%s %s %s", counter, style.Render(Glyph(g.Status)), output.SanitizeLine(g.Name))
	return line + m.styles.Dim.Render(" ("+plural(g.Checks, "check")+")")
}

func (m *checkModel) renderCounts(stats ProgressStats) string {
	sep := m.styles.Border.Render("  •  ")
	return strings.Join([]string{
		m.styles.Success.Render(fmt.Sprintf("%d passed", stats.Pass)),
		m.styles.Warning.Render(fmt.Sprintf("%d warnings", stats.Warn)),
		m.styles.Error.Render(fmt.Sprintf("%d failed", stats.Fail)),
		m.styles.Dim.Render(formatDuration(stats.Elapsed)),
	}, sep)
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", m, s)
}
