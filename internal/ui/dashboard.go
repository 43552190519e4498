package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Status of the supervised process as shown in the dashboard
type Status string

const (
	StatusStarting   Status = "starting"
	StatusRunning    Status = "running"
	StatusRestarting Status = "restarting"
	StatusExited     Status = "exited"
	StatusCrashed    Status = "crashed"
	StatusStopped    Status = "stopped"
)

const defaultMaxLines = 1000

// DashboardConfig holds configuration for the dashboard
type DashboardConfig struct {
	Title    string // launch target id
	Command  string
	Cwd      string
	MaxLines int

	// OnRestart and OnQuit are called from the UI goroutine when the
	// matching key is pressed. They must not block.
	OnRestart func()
	OnQuit    func()
}

// DashboardModel is the bubbletea model for a single supervised target
type DashboardModel struct {
	title   string
	command string
	cwd     string

	status   Status
	pid      int32
	restarts int
	since    time.Time

	logs      *LogBuffer
	resources ResourceStats

	width    int
	height   int
	viewport viewport.Model
	showHelp bool
	quitting bool

	onRestart func()
	onQuit    func()

	updateChan chan tea.Msg
	keys       keyMap
	styles     *Styles
}

// keyMap defines the key bindings for the dashboard
type keyMap struct {
	Restart key.Binding
	Quit    key.Binding
	Clear   key.Binding
	Up      key.Binding
	Down    key.Binding
	Help    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Restart: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "restart"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear logs"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// Styles holds all lipgloss styles for the dashboard
type Styles struct {
	Header lipgloss.Style
	Footer lipgloss.Style

	StatusPending lipgloss.Style
	StatusRunning lipgloss.Style
	StatusError   lipgloss.Style
	StatusStopped lipgloss.Style

	Detail      lipgloss.Style
	LogViewport lipgloss.Style
	HelpKey     lipgloss.Style
}

// DefaultStyles returns the default color scheme
func DefaultStyles() *Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#666", Dark: "#999"}
	highlight := lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#AD8EE6"}
	success := lipgloss.AdaptiveColor{Light: "#00AA00", Dark: "#00FF00"}
	warning := lipgloss.AdaptiveColor{Light: "#AAAA00", Dark: "#FFFF00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#AA0000", Dark: "#FF0000"}

	return &Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(highlight).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(subtle).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(subtle).
			Padding(0, 1),

		StatusPending: lipgloss.NewStyle().Foreground(subtle),
		StatusRunning: lipgloss.NewStyle().Foreground(success).Bold(true),
		StatusError:   lipgloss.NewStyle().Foreground(errorColor).Bold(true),
		StatusStopped: lipgloss.NewStyle().Foreground(warning),

		Detail: lipgloss.NewStyle().Foreground(subtle),

		LogViewport: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlight).
			Padding(0, 1),

		HelpKey: lipgloss.NewStyle().
			Foreground(highlight).
			Bold(true),
	}
}

// Messages for bubbletea
type tickMsg time.Time
type resourceUpdateMsg ResourceStats
type statusMsg struct {
	status Status
	pid    int32
}
type logMsg struct {
	line string
}
type quitMsg struct{}

// NewDashboard creates a new dashboard model
func NewDashboard(cfg DashboardConfig) *DashboardModel {
	maxLines := cfg.MaxLines
	if maxLines <= 0 {
		maxLines = defaultMaxLines
	}

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	return &DashboardModel{
		title:      cfg.Title,
		command:    cfg.Command,
		cwd:        cfg.Cwd,
		status:     StatusStarting,
		since:      time.Now(),
		logs:       NewLogBuffer(maxLines),
		viewport:   vp,
		onRestart:  cfg.OnRestart,
		onQuit:     cfg.OnQuit,
		updateChan: make(chan tea.Msg, 256),
		keys:       defaultKeyMap(),
		styles:     DefaultStyles(),
	}
}

// Init implements tea.Model
func (m *DashboardModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.listenForUpdates(),
	)
}

// tickCmd returns a command that ticks every second
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// listenForUpdates listens for external updates
func (m *DashboardModel) listenForUpdates() tea.Cmd {
	return func() tea.Msg {
		return <-m.updateChan
	}
}

// Update implements tea.Model
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.onQuit == nil {
				m.quitting = true
				return m, tea.Quit
			}
			// The owner stops the process and then sends quitMsg.
			m.onQuit()

		case key.Matches(msg, m.keys.Restart):
			if m.onRestart != nil {
				m.onRestart()
			}

		case key.Matches(msg, m.keys.Clear):
			m.logs.Clear()
			m.updateViewportContent()

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-4, 20)
		m.viewport.Height = max(msg.Height-7, 3)
		m.updateViewportContent()

	case tickMsg:
		cmds = append(cmds, tickCmd(), m.fetchResourceStats())

	case resourceUpdateMsg:
		m.resources = ResourceStats(msg)

	case statusMsg:
		if msg.status == StatusRestarting {
			m.restarts++
		}
		if msg.status != m.status {
			m.since = time.Now()
		}
		m.status = msg.status
		m.pid = msg.pid
		cmds = append(cmds, m.listenForUpdates())

	case logMsg:
		m.logs.Append(msg.line)
		m.updateViewportContent()
		cmds = append(cmds, m.listenForUpdates())

	case quitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, tea.Batch(cmds...)
}

// fetchResourceStats fetches host and process statistics
func (m *DashboardModel) fetchResourceStats() tea.Cmd {
	pid := m.pid
	if m.status != StatusRunning {
		pid = 0
	}
	return func() tea.Msg {
		return resourceUpdateMsg(GetResourceStats(pid))
	}
}

// updateViewportContent updates the viewport with current logs
func (m *DashboardModel) updateViewportContent() {
	// Only auto-scroll to bottom if user was already at the bottom
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(strings.Join(m.logs.GetAll(), "\n"))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// View implements tea.Model
func (m *DashboardModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.styles.Detail.Render(fmt.Sprintf(" %s  (%s)", m.command, m.cwd)))
	b.WriteString("\n")
	b.WriteString(m.styles.LogViewport.Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader renders the dashboard header
func (m *DashboardModel) renderHeader() string {
	title := "🚀 " + m.title + "  " + m.renderStatus()

	var stats []string
	if m.status == StatusRunning && m.resources.ProcCount > 0 {
		stats = append(stats, fmt.Sprintf("pid %d", m.pid))
		stats = append(stats, fmt.Sprintf("app CPU %.1f%%", m.resources.ProcCPU))
		stats = append(stats, "RSS "+FormatBytes(m.resources.ProcRSS))
	}
	if m.resources.CPUPercent > 0 {
		stats = append(stats, fmt.Sprintf("CPU %.0f%%", m.resources.CPUPercent))
	}
	if m.resources.MemPercent > 0 {
		stats = append(stats, fmt.Sprintf("Mem %.0f%%", m.resources.MemPercent))
	}
	if m.resources.CPUTemp > 0 {
		stats = append(stats, fmt.Sprintf("%.0f°C", m.resources.CPUTemp))
	}
	if m.restarts > 0 {
		stats = append(stats, fmt.Sprintf("restarts %d", m.restarts))
	}
	status := strings.Join(stats, " | ")

	headerWidth := max(m.width-2, 40)
	padding := max(headerWidth-lipgloss.Width(title)-lipgloss.Width(status)-2, 1)
	return m.styles.Header.Width(headerWidth).Render(title + strings.Repeat(" ", padding) + status)
}

// renderStatus renders the status with an icon
func (m *DashboardModel) renderStatus() string {
	var (
		style lipgloss.Style
		icon  string
	)
	switch m.status {
	case StatusRunning:
		style, icon = m.styles.StatusRunning, "●"
	case StatusCrashed:
		style, icon = m.styles.StatusError, "✗"
	case StatusExited, StatusStopped:
		style, icon = m.styles.StatusStopped, "■"
	default:
		style, icon = m.styles.StatusPending, "◌"
	}
	return style.Render(fmt.Sprintf("%s %s %s", icon, m.status, formatSince(time.Since(m.since))))
}

// renderFooter renders the dashboard footer with help
func (m *DashboardModel) renderFooter() string {
	bindings := []key.Binding{m.keys.Restart, m.keys.Quit}
	if m.showHelp {
		bindings = append(bindings, m.keys.Up, m.keys.Down, m.keys.Clear)
	}
	bindings = append(bindings, m.keys.Help)

	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, m.styles.HelpKey.Render(h.Key)+" "+h.Desc)
	}
	return m.styles.Footer.Render(strings.Join(parts, " • "))
}

func formatSince(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}

// Public methods for external updates

// SendStatus reports a new process status to the dashboard
func (m *DashboardModel) SendStatus(status Status, pid int32) {
	select {
	case m.updateChan <- statusMsg{status: status, pid: pid}:
	default:
		// Channel full, drop update
	}
}

// SendLog sends a log line to the dashboard
func (m *DashboardModel) SendLog(line string) {
	select {
	case m.updateChan <- logMsg{line: line}:
	default:
		// Channel full, drop log
	}
}

// SendQuit sends a quit signal to the dashboard
func (m *DashboardModel) SendQuit() {
	select {
	case m.updateChan <- quitMsg{}:
	default:
	}
}
