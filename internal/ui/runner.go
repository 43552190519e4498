package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// DashboardRunner manages the TUI dashboard lifecycle
type DashboardRunner struct {
	dashboard *DashboardModel
	options   []tea.ProgramOption

	mu      sync.Mutex
	program *tea.Program
	running bool
}

// NewDashboardRunner creates a new dashboard runner. Extra program options
// are applied after the defaults.
func NewDashboardRunner(config DashboardConfig, opts ...tea.ProgramOption) *DashboardRunner {
	return &DashboardRunner{
		dashboard: NewDashboard(config),
		options:   opts,
	}
}

// Run shows the dashboard until it is stopped, the user quits with no quit
// handler installed, or ctx is cancelled.
func (dr *DashboardRunner) Run(ctx context.Context) error {
	dr.mu.Lock()
	if dr.running {
		dr.mu.Unlock()
		return fmt.Errorf("dashboard already running")
	}
	dr.running = true

	// Signals belong to the controller; the dashboard only sees keys.
	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	}
	dr.program = tea.NewProgram(dr.dashboard, append(opts, dr.options...)...)
	program := dr.program
	dr.mu.Unlock()

	_, err := program.Run()

	dr.mu.Lock()
	dr.running = false
	dr.mu.Unlock()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Stop closes the dashboard
func (dr *DashboardRunner) Stop() {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	if !dr.running || dr.program == nil {
		return
	}
	dr.dashboard.SendQuit()
	dr.program.Quit()
}

// SetStatus reports a process status change
func (dr *DashboardRunner) SetStatus(status Status, pid int32) {
	dr.dashboard.SendStatus(status, pid)
}

// LogWriter returns a writer whose lines end up in the log pane
func (dr *DashboardRunner) LogWriter() io.Writer {
	return NewLineWriter(dr.dashboard.SendLog)
}
