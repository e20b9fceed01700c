// Package ui is the Bubble Tea front end started by `devflow tui`.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/VoxDroid/devflow/internal/executor"
	"github.com/VoxDroid/devflow/internal/models"
	modelpkg "github.com/VoxDroid/devflow/internal/tui/model"
	"github.com/VoxDroid/devflow/internal/tui/sanitize"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okMark      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("✅")
	failMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("❌")
	paneStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8"))
	activeStyle = paneStyle.BorderForeground(lipgloss.Color("12"))
)

const helpText = "enter run • s stop • r reload • tab focus • / filter • q quit"

// Model is the part of the UI model the Bubble Tea program depends on.
type Model interface {
	RefreshList(ctx context.Context) error
	ListCached() []models.Automation
	Get(ctx context.Context, ref string) (models.Automation, error)
	Run(ctx context.Context, ref string) (*modelpkg.RunHandle, error)
}

// TuiModel is the Bubble Tea model used by cmd/tui.
type TuiModel struct {
	uiModel Model
	list    list.Model
	vp      viewport.Model
	spin    spinner.Model

	width  int
	height int

	run        *modelpkg.RunHandle
	logs       []string
	status     string
	lastID     string
	focusRight bool
}

type automationItem struct{ a models.Automation }

func (i automationItem) Title() string       { return sanitize.Line(i.a.Name) }
func (i automationItem) Description() string { return itemDescription(i.a) }
func (i automationItem) FilterValue() string {
	return i.a.Name + " " + i.a.Description + " " + strings.Join(i.a.Tags, " ")
}

type (
	reloadedMsg struct {
		items []list.Item
		err   error
	}
	runEventMsg executor.Event
	runDoneMsg  struct {
		report executor.Report
		err    error
	}
)

// NewModel constructs the TUI model around ui.
func NewModel(ui Model) *TuiModel {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 30, 10)
	l.Title = "devflow automations"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &TuiModel{uiModel: ui, list: l, vp: viewport.New(40, 12), spin: sp, status: helpText}
}

// NewProgram constructs the tea.Program for the TUI.
func NewProgram(ui Model) *tea.Program {
	return tea.NewProgram(NewModel(ui), tea.WithAltScreen())
}

// Init loads the automation list.
func (m *TuiModel) Init() tea.Cmd { return m.reload() }

func (m *TuiModel) reload() tea.Cmd {
	return func() tea.Msg {
		if err := m.uiModel.RefreshList(context.Background()); err != nil {
			return reloadedMsg{err: err}
		}
		all := m.uiModel.ListCached()
		items := make([]list.Item, 0, len(all))
		for _, a := range all {
			items = append(items, automationItem{a: a})
		}
		return reloadedMsg{items: items}
	}
}

// readLoop reads one event from the run; Update schedules it again until
// the stream closes.
func readLoop(h *modelpkg.RunHandle) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-h.Events()
		if !ok {
			rep, err := h.Wait()
			return runDoneMsg{report: rep, err: err}
		}
		return runEventMsg(ev)
	}
}

func (m *TuiModel) running() bool { return m.run != nil }

func (m *TuiModel) selected() (models.Automation, bool) {
	it, ok := m.list.SelectedItem().(automationItem)
	return it.a, ok
}

func (m *TuiModel) showPreview() {
	a, ok := m.selected()
	if !ok {
		m.lastID = ""
		m.vp.SetContent(dimStyle.Render("No automations. Create one with `devflow create`."))
		return
	}
	if full, err := m.uiModel.Get(context.Background(), a.ID); err == nil {
		a = full
	}
	m.lastID = a.ID
	m.vp.SetContent(formatDetails(a, m.vp.Width))
	m.vp.GotoTop()
}

func (m *TuiModel) appendLog(lines ...string) {
	m.logs = append(m.logs, lines...)
	m.vp.SetContent(strings.Join(m.logs, "\n"))
	m.vp.GotoBottom()
}

func (m *TuiModel) startRun() tea.Cmd {
	if m.running() {
		m.status = "a run is already in progress (s to stop)"
		return nil
	}
	a, ok := m.selected()
	if !ok {
		return nil
	}
	h, err := m.uiModel.Run(context.Background(), a.ID)
	if err != nil {
		var perr *models.ParameterError
		if errors.As(err, &perr) {
			m.status = fmt.Sprintf("%s needs parameters (%s); use `devflow run %s -p name=value`",
				sanitize.Line(a.Name), strings.Join(perr.Missing, ", "), a.Name)
		} else {
			m.status = "cannot run: " + sanitize.Line(err.Error())
		}
		return nil
	}
	m.run = h
	m.logs = nil
	m.focusRight = true
	m.status = "running " + sanitize.Line(a.Name)
	return tea.Batch(m.spin.Tick, readLoop(h))
}

// Update handles input, run events and window resizes.
func (m *TuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "ctrl+c":
			if m.running() {
				m.run.Cancel()
			}
			return m, tea.Quit
		case "enter":
			return m, m.startRun()
		case "s":
			if m.running() {
				m.run.Stop()
				m.status = "stop requested; the current command will finish"
			}
			return m, nil
		case "r":
			if !m.running() {
				m.status = "reloading"
				return m, m.reload()
			}
			return m, nil
		case "tab", "left", "right":
			m.focusRight = !m.focusRight
			return m, nil
		}

	case reloadedMsg:
		if msg.err != nil {
			m.status = "load failed: " + sanitize.Line(msg.err.Error())
			return m, nil
		}
		cmd := m.list.SetItems(msg.items)
		if !m.running() {
			m.logs = nil
			m.showPreview()
			m.status = helpText
		}
		return m, cmd

	case itemsMsg:
		return m, m.list.SetItems([]list.Item(msg))

	case runEventMsg:
		m.appendLog(eventLines(executor.Event(msg))...)
		if m.run != nil {
			return m, readLoop(m.run)
		}
		return m, nil

	case runDoneMsg:
		m.run = nil
		m.status = summaryLine(msg.report, msg.err)
		m.appendLog("", m.status)
		return m, m.reloadKeepingLog()

	case spinner.TickMsg:
		if !m.running() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	if m.focusRight {
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}
	m.list, cmd = m.list.Update(msg)
	if a, ok := m.selected(); ok && a.ID != m.lastID && !m.running() {
		m.showPreview()
	}
	return m, cmd
}

// reloadKeepingLog refreshes list metadata after a run without replacing
// the run output in the viewport.
func (m *TuiModel) reloadKeepingLog() tea.Cmd {
	return func() tea.Msg {
		if err := m.uiModel.RefreshList(context.Background()); err != nil {
			return nil
		}
		items := make([]list.Item, 0, len(m.uiModel.ListCached()))
		for _, a := range m.uiModel.ListCached() {
			items = append(items, automationItem{a: a})
		}
		return itemsMsg(items)
	}
}

type itemsMsg []list.Item

func summaryLine(rep executor.Report, err error) string {
	switch {
	case err != nil:
		return "run failed: " + sanitize.Line(err.Error())
	case rep.Cancelled:
		return fmt.Sprintf("%s cancelled after %d results", sanitize.Line(rep.Automation.Name), len(rep.Results))
	case rep.Halted:
		return fmt.Sprintf("%s stopped at command %d", sanitize.Line(rep.Automation.Name), rep.HaltIndex+1)
	case rep.Succeeded():
		return fmt.Sprintf("%s finished: %d commands succeeded in %s", sanitize.Line(rep.Automation.Name), len(rep.Automation.Commands), rep.Duration.Round(time.Millisecond))
	default:
		return fmt.Sprintf("%s finished with %d failures", sanitize.Line(rep.Automation.Name), len(rep.Failures()))
	}
}

func (m *TuiModel) resize(width, height int) {
	m.width, m.height = width, height
	bodyH := height - 4
	if bodyH < 3 {
		bodyH = 3
	}
	sideW := width * 35 / 100
	if sideW > 40 {
		sideW = 40
	}
	if sideW < 20 {
		sideW = 20
	}
	rightW := width - sideW - 4
	if rightW < 12 {
		rightW = 12
	}
	m.list.SetSize(sideW-2, bodyH)
	if m.vp.Width != rightW-2 || m.vp.Height != bodyH {
		off := m.vp.YOffset
		m.vp = viewport.New(rightW-2, bodyH)
		m.vp.YOffset = off
	}
	if m.running() || len(m.logs) > 0 {
		m.vp.SetContent(strings.Join(m.logs, "\n"))
		return
	}
	m.showPreview()
}

// View renders the two panes and the status line.
func (m *TuiModel) View() string {
	left, right := activeStyle, paneStyle
	if m.focusRight {
		left, right = paneStyle, activeStyle
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		left.Render(m.list.View()),
		right.Render(m.vp.View()),
	)
	status := m.status
	if m.running() {
		status = m.spin.View() + " " + status
	}
	return body + "\n" + dimStyle.Render(status)
}
