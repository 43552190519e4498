// Package supervisor runs a launch spec as a child process, restarts it when
// watched files change or on request, and reports what happens as events.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/harshul/launchpad/internal/launch"
	"github.com/harshul/launchpad/internal/secrets"
	"github.com/harshul/launchpad/internal/ui"
)

const (
	DefaultDelay       = 500 * time.Millisecond
	DefaultStopTimeout = 5 * time.Second

	logPrefix = "[launchpad] "
)

// EventKind identifies a supervisor event.
type EventKind int

const (
	// EventStart reports a freshly started child.
	EventStart EventKind = iota
	// EventRestart reports that the child was stopped in order to restart.
	EventRestart
	// EventStderr carries one stderr line of the child.
	EventStderr
	// EventExit reports that the child exited on its own.
	EventExit
	// EventLog carries one coloured status line.
	EventLog
)

// Event is emitted on the channel returned by Events.
type Event struct {
	Kind     EventKind
	Line     string
	PID      int
	ExitCode int
}

// Crashed reports whether an EventExit came from a failing child.
func (e Event) Crashed() bool {
	return e.Kind == EventExit && e.ExitCode != 0
}

// Options configures a Supervisor.
type Options struct {
	Spec launch.Spec

	// Delay debounces bursts of file changes. Zero means DefaultDelay.
	Delay time.Duration
	// Ignore is added to Spec.Ignore and DefaultIgnore.
	Ignore []string
	// DisableWatch turns file watching off; only Restart restarts.
	DisableWatch bool

	// Stdout receives the child's standard output. Nil discards it.
	Stdout io.Writer

	// StopTimeout is how long a child gets to exit after SIGTERM before it
	// is killed. Zero means DefaultStopTimeout.
	StopTimeout time.Duration
}

// Supervisor owns the child process of one launch target.
type Supervisor struct {
	opts      Options
	events    chan Event
	restartCh chan struct{}
	done      chan struct{}

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	current *child
	stopErr error
}

type child struct {
	cmd      *exec.Cmd
	pid      int
	done     chan struct{}
	exitCode int
}

func (c *child) exited() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// New creates a supervisor. Nothing runs until Run is called.
func New(opts Options) *Supervisor {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = DefaultStopTimeout
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	return &Supervisor{
		opts:      opts,
		events:    make(chan Event, 256),
		restartCh: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Events returns the event stream. It is never closed; stop reading when
// Run has returned.
func (s *Supervisor) Events() <-chan Event {
	return s.events
}

// Restart asks for the child to be restarted. Requests made while one is
// already pending are merged.
func (s *Supervisor) Restart() {
	select {
	case s.restartCh <- struct{}{}:
	default:
	}
}

// PID returns the pid of the running child, or 0.
func (s *Supervisor) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.exited() {
		return 0
	}
	return s.current.pid
}

// Stop terminates the child process group and waits for Run to return.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	started, cancel := s.started, s.cancel
	s.mu.Unlock()
	if !started {
		return nil
	}

	cancel()
	<-s.done
	return s.stopErr
}

// Run starts the child and supervises it until ctx is done or Stop is
// called. A crashing child does not end Run; it waits for a file change or a
// restart request instead.
func (s *Supervisor) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("supervisor already running")
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	ctx = s.ctx
	s.mu.Unlock()
	defer close(s.done)
	defer s.cancel()

	spec := s.opts.Spec
	if len(spec.Argv()) == 0 {
		return errors.New("launch spec has no command")
	}

	var changes <-chan string
	if !s.opts.DisableWatch {
		ignore := append(append([]string{}, spec.Ignore...), s.opts.Ignore...)
		w, err := NewWatcher(spec.Cwd, spec.Watch, ignore, s.opts.Delay)
		if err != nil {
			s.logf(levelFail, "not watching files: %v", err)
		} else {
			go w.Run(ctx)
			changes = w.Changes()
			s.logf(levelDetail, "watching path(s): %s", strings.Join(w.Rules(), " "))
			if len(ignore) > 0 {
				s.logf(levelDetail, "ignoring: %s", strings.Join(ignore, " "))
			}
		}
	}
	s.logf(levelInfo, "to restart at any time, press ctrl+r")
	s.logf(levelStatus, "starting `%s`", spec.String())

	for {
		c, err := s.start(spec)
		if err != nil {
			s.logf(levelFail, "failed to start: %v", err)
			s.emit(Event{Kind: EventExit, ExitCode: -1})
			if !s.waitForTrigger(ctx, changes) {
				return nil
			}
			continue
		}
		s.emit(Event{Kind: EventStart, PID: c.pid})

		select {
		case <-ctx.Done():
			s.stopErr = s.stopChild(c)
			return nil

		case <-s.restartCh:
			s.logf(levelStatus, "restarting child process")
			s.restart(c, spec)

		case path := <-changes:
			s.logf(levelStatus, "restarting due to changes...")
			s.logf(levelDetail, "changed: %s", path)
			s.restart(c, spec)

		case <-c.done:
			s.emit(Event{Kind: EventExit, PID: c.pid, ExitCode: c.exitCode})
			if c.exitCode == 0 {
				s.logf(levelStatus, "clean exit - waiting for changes before restart")
			} else {
				s.logf(levelFail, "app crashed - waiting for file changes before starting...")
			}
			if !s.waitForTrigger(ctx, changes) {
				return nil
			}
			s.logf(levelStatus, "starting `%s`", spec.String())
		}
	}
}

func (s *Supervisor) restart(c *child, spec launch.Spec) {
	if err := s.stopChild(c); err != nil {
		slog.Debug("stopping child for restart", "pid", c.pid, "error", err)
	}
	s.emit(Event{Kind: EventRestart, PID: c.pid})
	s.logf(levelStatus, "starting `%s`", spec.String())
}

// waitForTrigger blocks until a restart is due. It returns false when ctx
// is done first.
func (s *Supervisor) waitForTrigger(ctx context.Context, changes <-chan string) bool {
	select {
	case <-ctx.Done():
		return false
	case <-s.restartCh:
		return true
	case <-changes:
		return true
	}
}

func (s *Supervisor) start(spec launch.Spec) (*child, error) {
	argv := spec.Argv()
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = spec.Cwd
	cmd.Env = mergeEnv(os.Environ(), spec.Env)
	cmd.Stdout = s.opts.Stdout
	stderr := ui.NewLineWriter(func(line string) {
		s.emit(Event{Kind: EventStderr, Line: line})
	})
	cmd.Stderr = stderr
	cmd.WaitDelay = time.Second
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	c := &child{cmd: cmd, pid: cmd.Process.Pid, done: make(chan struct{})}
	go func() {
		err := cmd.Wait()
		stderr.Flush()
		c.exitCode = exitCode(cmd, err)
		close(c.done)
	}()

	s.mu.Lock()
	s.current = c
	s.mu.Unlock()
	slog.Debug("child started", "pid", c.pid, "argv", argv, "cwd", spec.Cwd)
	return c, nil
}

func exitCode(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		if code := cmd.ProcessState.ExitCode(); code >= 0 {
			return code
		}
		// Killed by a signal.
		return 1
	}
	if err != nil {
		return 1
	}
	return 0
}

// stopChild terminates the process group of c, escalating to SIGKILL after
// the stop timeout, then kills descendants that left the group.
func (s *Supervisor) stopChild(c *child) error {
	if c == nil || c.exited() {
		return nil
	}

	tree := descendants(c.pid)
	if err := terminateGroup(c.pid); err != nil {
		slog.Debug("signalling process group", "pid", c.pid, "error", err)
	}

	var err error
	select {
	case <-c.done:
	case <-time.After(s.opts.StopTimeout):
		slog.Debug("child ignored SIGTERM, killing", "pid", c.pid)
		err = killGroup(c.pid)
		<-c.done
	}

	killStragglers(tree)
	return err
}

// descendants snapshots the process tree below pid.
func descendants(pid int) []*process.Process {
	root, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil
	}

	var out []*process.Process
	queue := []*process.Process{root}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		children, err := p.Children()
		if err != nil {
			continue
		}
		out = append(out, children...)
		queue = append(queue, children...)
	}
	return out
}

func killStragglers(procs []*process.Process) {
	for _, p := range procs {
		if running, err := p.IsRunning(); err != nil || !running {
			continue
		}
		if err := p.Kill(); err != nil {
			slog.Debug("killing leftover process", "pid", p.Pid, "error", err)
		}
	}
}

// mergeEnv appends env to base in key order. Later entries win in os/exec.
func mergeEnv(base []string, env map[string]string) []string {
	out := make([]string, 0, len(base)+len(env))
	out = append(out, base...)
	for _, k := range secrets.SortedKeys(env) {
		out = append(out, k+"="+env[k])
	}
	return out
}

func (s *Supervisor) emit(ev Event) {
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
	}
}

type level int

const (
	levelInfo level = iota
	levelStatus
	levelFail
	levelDetail
)

var levelStyles = map[level]lipgloss.Style{
	levelInfo:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	levelStatus: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	levelFail:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	levelDetail: lipgloss.NewStyle().Faint(true),
}

func (s *Supervisor) logf(l level, format string, args ...any) {
	line := logPrefix + fmt.Sprintf(format, args...)
	s.emit(Event{Kind: EventLog, Line: levelStyles[l].Render(line)})
}
