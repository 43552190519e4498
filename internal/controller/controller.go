// Package controller maps keyboard, signal and supervisor events onto
// supervisor commands for one running launch target.
package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// EventKind identifies what happened.
type EventKind int

const (
	// EventInterrupt asks for termination (ctrl+c, SIGINT, SIGTERM).
	EventInterrupt EventKind = iota
	// EventRestart asks for a manual restart (ctrl+r).
	EventRestart
	// EventExit reports that the supervised process exited.
	EventExit
	// EventStderr carries one line the process wrote to stderr.
	EventStderr
	// EventLog carries one supervisor status line.
	EventLog
)

func (k EventKind) String() string {
	switch k {
	case EventInterrupt:
		return "interrupt"
	case EventRestart:
		return "restart"
	case EventExit:
		return "exit"
	case EventStderr:
		return "stderr"
	case EventLog:
		return "log"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one input to the controller.
type Event struct {
	Kind EventKind
	Line string
}

// State of the controller.
type State int

const (
	Running State = iota
	Terminated
)

func (s State) String() string {
	if s == Terminated {
		return "terminated"
	}
	return "running"
}

// Supervisor is the part of the process supervisor the controller drives.
type Supervisor interface {
	Restart()
}

// TerminateFunc stops the supervised process group.
type TerminateFunc func() error

// Controller is a two state machine: Running until the first interrupt,
// then Terminated for good.
type Controller struct {
	id        string
	sup       Supervisor
	terminate TerminateFunc
	out       io.Writer

	mu    sync.Mutex
	state State
}

// New returns a Running controller for the target id. Exit notices, stderr
// and log lines are written to out.
func New(id string, sup Supervisor, terminate TerminateFunc, out io.Writer) *Controller {
	return &Controller{
		id:        id,
		sup:       sup,
		terminate: terminate,
		out:       out,
		state:     Running,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Handle applies one event and reports whether the controller has
// terminated. Events arriving after termination are ignored. The state
// flips to Terminated before the process group is stopped, so State does
// not wait on a slow shutdown.
func (c *Controller) Handle(ev Event) bool {
	c.mu.Lock()
	if c.state == Terminated {
		c.mu.Unlock()
		return true
	}
	if ev.Kind == EventInterrupt {
		c.state = Terminated
	}
	c.mu.Unlock()

	switch ev.Kind {
	case EventInterrupt:
		slog.Debug("terminating", "target", c.id)
		if c.terminate != nil {
			if err := c.terminate(); err != nil {
				slog.Warn("terminating process group", "target", c.id, "error", err)
			}
		}
		return true
	case EventRestart:
		slog.Debug("manual restart", "target", c.id)
		c.sup.Restart()
	case EventExit:
		fmt.Fprintf(c.out, "%s closed\n", c.id)
	case EventStderr, EventLog:
		fmt.Fprintln(c.out, ev.Line)
	default:
		slog.Debug("ignoring unknown event", "kind", ev.Kind)
	}
	return false
}

// Run handles events until an interrupt terminates the controller, events
// is closed, or ctx is done. Termination is a clean exit and returns nil.
func (c *Controller) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if c.Handle(ev) {
				return nil
			}
		}
	}
}
