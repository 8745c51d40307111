package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/fizzfib/internal/config"
	apperrors "github.com/agbru/fizzfib/internal/errors"
	"github.com/agbru/fizzfib/internal/fibonacci"
	"github.com/agbru/fizzfib/internal/format"
	"github.com/agbru/fizzfib/internal/orchestration"
)

const (
	// Minimum; the name column grows to the longest calculator name.
	colWidthName     = 28
	colWidthProgress = 30
	colWidthPct      = 7
	colWidthDur      = 10
	tickInterval     = 250 * time.Millisecond
	// resultEdges is the number of leading and trailing digits shown.
	resultEdges = 20
)

type rowStatus int

const (
	statusRunning rowStatus = iota
	statusDone
	statusFailed
)

func (s rowStatus) String() string {
	switch s {
	case statusDone:
		return "done"
	case statusFailed:
		return "failed"
	default:
		return "running"
	}
}

// algoRow is the state of one calculator on screen.
type algoRow struct {
	name     string
	progress float64
	duration time.Duration
	status   rowStatus
	err      error
}

// ExecutionState holds the fields of the current run.
type ExecutionState struct {
	ctx         context.Context
	cancel      context.CancelFunc
	calculators []fibonacci.Calculator
	generation  uint64
	done        bool
	exitCode    int
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	header HeaderModel
	keymap KeyMap

	ExecutionState

	rows    []algoRow
	average float64
	eta     time.Duration
	final   *FinalResultMsg
	failure error
	width   int

	parentCtx context.Context
	config    config.AppConfig
	ref       *programRef
}

// NewModel creates a dashboard for calculators computing F(cfg.N).
func NewModel(parentCtx context.Context, calculators []fibonacci.Calculator, cfg config.AppConfig, version string) Model {
	ctx, cancel := context.WithCancel(parentCtx)
	return Model{
		header: NewHeaderModel(version, cfg.N),
		keymap: DefaultKeyMap(),
		ExecutionState: ExecutionState{
			ctx:         ctx,
			cancel:      cancel,
			calculators: calculators,
			exitCode:    apperrors.ExitSuccess,
		},
		rows:      newRows(calculators),
		parentCtx: parentCtx,
		config:    cfg,
		ref:       &programRef{},
	}
}

func newRows(calculators []fibonacci.Calculator) []algoRow {
	rows := make([]algoRow, len(calculators))
	for i, c := range calculators {
		rows[i] = algoRow{name: c.Name()}
	}
	return rows
}

func (m Model) Init() tea.Cmd {
	return m.startCmds()
}

func (m Model) startCmds() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		startCalculationCmd(m.ref, m.ctx, m.calculators, m.config, m.generation),
		watchContextCmd(m.ctx, m.generation),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.header.SetWidth(msg.Width)
		return m, nil

	case ProgressMsg:
		if msg.CalculatorIndex >= 0 && msg.CalculatorIndex < len(m.rows) {
			m.rows[msg.CalculatorIndex].progress = msg.Value
		}
		m.average = msg.AverageProgress
		m.eta = msg.ETA
		return m, nil

	case ComparisonResultsMsg:
		m.applyResults(msg.Results)
		return m, nil

	case FinalResultMsg:
		m.final = &msg
		return m, nil

	case ErrorMsg:
		m.failure = msg.Err
		return m, nil

	case TickMsg:
		if m.done {
			return m, nil
		}
		return m, tickCmd()

	case CalculationCompleteMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.done = true
		m.exitCode = msg.ExitCode
		m.header.SetDone()
		return m, nil

	case ContextCancelledMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.done = true
		m.header.SetDone()
		return m, tea.Quit
	}
	return m, nil
}

// applyResults matches results to rows by calculator name.
func (m *Model) applyResults(results []orchestration.CalculationResult) {
	for _, res := range results {
		for i := range m.rows {
			if m.rows[i].name != res.Name {
				continue
			}
			m.rows[i].duration = res.Duration
			m.rows[i].err = res.Err
			if res.Err != nil {
				m.rows[i].status = statusFailed
			} else {
				m.rows[i].status = statusDone
				m.rows[i].progress = 1
			}
		}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Rerun):
		if m.cancel != nil {
			m.cancel()
		}
		m.generation++
		m.ctx, m.cancel = context.WithCancel(m.parentCtx)
		m.rows = newRows(m.calculators)
		m.average, m.eta = 0, 0
		m.final, m.failure = nil, nil
		m.done = false
		m.exitCode = apperrors.ExitSuccess
		m.header.Reset()
		return m, m.startCmds()
	}
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.renderTable())
	b.WriteString("\n")
	b.WriteString(m.renderSummary())

	panelWidth := m.width - 2
	if panelWidth < 0 {
		panelWidth = 0
	}
	body := panelStyle.Width(panelWidth).Render(b.String())
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.renderFooter())
}

// nameColumnWidth returns the width that keeps every calculator name on
// one line.
func nameColumnWidth(rows []algoRow) int {
	w := colWidthName
	for _, row := range rows {
		if n := lipgloss.Width(row.name); n > w {
			w = n
		}
	}
	return w
}

func (m Model) renderTable() string {
	name := lipgloss.NewStyle().Width(nameColumnWidth(m.rows))
	pct := lipgloss.NewStyle().Width(colWidthPct).Align(lipgloss.Right)
	dur := lipgloss.NewStyle().Width(colWidthDur).Align(lipgloss.Right)

	var b strings.Builder
	b.WriteString(titleStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		name.Render("Algorithm"), " ",
		lipgloss.NewStyle().Width(colWidthProgress).Render("Progress"), " ",
		pct.Render("%"), " ",
		dur.Render("Duration"), "  Status")))
	b.WriteString("\n")

	for _, row := range m.rows {
		duration := "-"
		if row.status != statusRunning {
			duration = format.FormatExecutionDuration(row.duration)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			name.Render(row.name), " ",
			renderBar(row.progress, colWidthProgress), " ",
			pct.Render(fmt.Sprintf("%.1f%%", row.progress*100)), " ",
			dur.Render(duration), "  ",
			statusStyle(row.status).Render(row.status.String())))
		b.WriteString("\n")
	}
	return b.String()
}

func renderBar(progress float64, width int) string {
	bar := format.ProgressBar(progress, width)
	filled := strings.Count(bar, "█")
	return barFullStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}

func statusStyle(s rowStatus) lipgloss.Style {
	switch s {
	case statusDone:
		return successStyle
	case statusFailed:
		return errorStyle
	default:
		return accentStyle
	}
}

func (m Model) renderSummary() string {
	switch {
	case m.failure != nil:
		return errorStyle.Render("No algorithm completed: " + m.failure.Error())
	case m.done && m.exitCode == apperrors.ExitErrorMismatch:
		return errorStyle.Render(fmt.Sprintf("The algorithms returned different values for F(%d).", m.config.N))
	case m.final != nil:
		digits := m.final.Result.Result.String()
		value := digits
		if len(digits) > 2*resultEdges+3 {
			value = format.TruncateDigits(digits, resultEdges)
		}
		return successStyle.Render("All results agree.") + "\n" +
			fmt.Sprintf("Fastest: %s in %s\n", m.final.Result.Name, format.FormatExecutionDuration(m.final.Result.Duration)) +
			fmt.Sprintf("Digits : %s\n", format.FormatNumberString(fmt.Sprint(len(digits)))) +
			fmt.Sprintf("F(%d) = %s", m.final.Options.N, accentStyle.Render(value))
	case m.done:
		return warningStyle.Render("Stopped.")
	default:
		return dimStyle.Render(fmt.Sprintf("Average %.1f%%  ETA %s", m.average*100, format.FormatETA(m.eta)))
	}
}

func (m Model) renderFooter() string {
	parts := make([]string, 0, len(m.keymap.ShortHelp()))
	for _, b := range m.keymap.ShortHelp() {
		parts = append(parts, keyStyle.Render(b.Help().Key)+" "+dimStyle.Render(b.Help().Desc))
	}
	status := accentStyle.Render("RUNNING")
	if m.done {
		status = successStyle.Render("DONE")
		if m.exitCode != apperrors.ExitSuccess {
			status = errorStyle.Render("FAILED")
		}
	}
	return " " + strings.Join(parts, dimStyle.Render(" • ")) + "   " + status
}

// ExitCode returns the exit code of the last completed run.
func (m Model) ExitCode() int { return m.exitCode }

// Run shows the dashboard until the user quits or ctx is canceled, and
// returns the exit code of the last run.
func Run(ctx context.Context, calculators []fibonacci.Calculator, cfg config.AppConfig, version string) int {
	initTUIStyles()

	model := NewModel(ctx, calculators, cfg, version)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen())
	model.ref.SetProgram(p)

	finalModel, err := p.Run()
	if err != nil {
		return apperrors.ExitErrorGeneric
	}
	if m, ok := finalModel.(Model); ok {
		m.cancel()
		return m.exitCode
	}
	return apperrors.ExitSuccess
}

func startCalculationCmd(ref *programRef, ctx context.Context, calculators []fibonacci.Calculator, cfg config.AppConfig, gen uint64) tea.Cmd {
	return func() tea.Msg {
		reporter := &TUIProgressReporter{ref: ref}
		presenter := &TUIResultPresenter{ref: ref}

		results := orchestration.ExecuteCalculations(ctx, calculators, cfg.N, cfg.ToCalculationOptions(), reporter, io.Discard)
		opts := orchestration.PresentationOptions{
			N:         cfg.N,
			Verbose:   cfg.Verbose,
			Details:   cfg.Details,
			ShowValue: cfg.ShowValue,
		}
		exitCode := orchestration.AnalyzeComparisonResults(results, opts, presenter, presenter, io.Discard)
		return CalculationCompleteMsg{ExitCode: exitCode, Generation: gen}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func watchContextCmd(ctx context.Context, gen uint64) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err(), Generation: gen}
	}
}
