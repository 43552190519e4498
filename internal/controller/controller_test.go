package controller

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSupervisor struct {
	restarts atomic.Int32
}

func (f *fakeSupervisor) Restart() { f.restarts.Add(1) }

type harness struct {
	sup        *fakeSupervisor
	terminated *atomic.Int32
	out        *bytes.Buffer
	ctrl       *Controller
}

func newHarness(t *testing.T) harness {
	t.Helper()
	h := harness{
		sup:        &fakeSupervisor{},
		terminated: &atomic.Int32{},
		out:        &bytes.Buffer{},
	}
	h.ctrl = New("api", h.sup, func() error {
		h.terminated.Add(1)
		return nil
	}, h.out)
	return h
}

func TestController_restartKeepsRunning(t *testing.T) {
	h := newHarness(t)

	done := h.ctrl.Handle(Event{Kind: EventRestart})

	assert.False(t, done)
	assert.Equal(t, int32(1), h.sup.restarts.Load())
	assert.Equal(t, Running, h.ctrl.State())
	assert.Zero(t, h.terminated.Load())
}

func TestController_interruptTerminatesOnce(t *testing.T) {
	h := newHarness(t)

	assert.True(t, h.ctrl.Handle(Event{Kind: EventInterrupt}))
	assert.Equal(t, Terminated, h.ctrl.State())
	assert.Equal(t, int32(1), h.terminated.Load())

	// Nothing after termination has an effect.
	assert.True(t, h.ctrl.Handle(Event{Kind: EventInterrupt}))
	assert.True(t, h.ctrl.Handle(Event{Kind: EventRestart}))
	assert.True(t, h.ctrl.Handle(Event{Kind: EventStderr, Line: "late"}))

	assert.Equal(t, int32(1), h.terminated.Load())
	assert.Zero(t, h.sup.restarts.Load())
	assert.Empty(t, h.out.String())
}

func TestController_terminateErrorStillTerminates(t *testing.T) {
	ctrl := New("api", &fakeSupervisor{}, func() error { return errors.New("boom") }, &bytes.Buffer{})

	assert.True(t, ctrl.Handle(Event{Kind: EventInterrupt}))
	assert.Equal(t, Terminated, ctrl.State())
}

func TestController_stateDuringSlowTerminate(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	ctrl := New("api", &fakeSupervisor{}, func() error {
		close(entered)
		<-release
		return nil
	}, &bytes.Buffer{})

	done := make(chan bool, 1)
	go func() { done <- ctrl.Handle(Event{Kind: EventInterrupt}) }()
	<-entered

	state := make(chan State, 1)
	go func() { state <- ctrl.State() }()
	select {
	case s := <-state:
		assert.Equal(t, Terminated, s)
	case <-time.After(time.Second):
		t.Fatal("State blocked while the process group was stopping")
	}
	assert.True(t, ctrl.Handle(Event{Kind: EventRestart}))

	close(release)
	assert.True(t, <-done)
}

func TestController_outputEvents(t *testing.T) {
	h := newHarness(t)

	h.ctrl.Handle(Event{Kind: EventStderr, Line: "Error: boom"})
	h.ctrl.Handle(Event{Kind: EventLog, Line: "[launchpad] restarting due to changes..."})
	h.ctrl.Handle(Event{Kind: EventExit})

	assert.Equal(t, "Error: boom\n[launchpad] restarting due to changes...\napi closed\n", h.out.String())
	assert.Equal(t, Running, h.ctrl.State())
	assert.Zero(t, h.terminated.Load())
}

func TestController_run(t *testing.T) {
	h := newHarness(t)
	events := make(chan Event, 8)
	events <- Event{Kind: EventRestart}
	events <- Event{Kind: EventExit}
	events <- Event{Kind: EventInterrupt}
	events <- Event{Kind: EventRestart}

	err := h.ctrl.Run(context.Background(), events)

	require.NoError(t, err)
	assert.Equal(t, int32(1), h.sup.restarts.Load())
	assert.Equal(t, int32(1), h.terminated.Load())
	assert.Len(t, events, 1, "events after termination stay unread")
}

func TestController_runStopsOnContext(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := h.ctrl.Run(ctx, make(chan Event))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Running, h.ctrl.State())
}

func TestController_runStopsOnClosedChannel(t *testing.T) {
	h := newHarness(t)
	events := make(chan Event)
	close(events)

	assert.NoError(t, h.ctrl.Run(context.Background(), events))
}

func TestKeyMap_EventFor(t *testing.T) {
	keys := DefaultKeyMap()

	ev, ok := keys.EventFor(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.True(t, ok)
	assert.Equal(t, EventRestart, ev.Kind)

	ev, ok = keys.EventFor(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.True(t, ok)
	assert.Equal(t, EventInterrupt, ev.Kind)

	_, ok = keys.EventFor(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	assert.False(t, ok)
}

func TestReadKeys(t *testing.T) {
	in := strings.NewReader("ab\x12c\x03\x12")
	out := make(chan Event, 8)

	err := ReadKeys(context.Background(), in, DefaultKeyMap(), out)
	require.NoError(t, err)
	close(out)

	var kinds []EventKind
	for ev := range out {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []EventKind{EventRestart, EventInterrupt, EventRestart}, kinds)
}

func TestKeyMsg(t *testing.T) {
	assert.Equal(t, "ctrl+r", keyMsg(0x12).String())
	assert.Equal(t, "ctrl+c", keyMsg(0x03).String())
	assert.Equal(t, "x", keyMsg('x').String())
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "restart", EventRestart.String())
	assert.Equal(t, "EventKind(42)", EventKind(42).String())
	assert.Equal(t, "terminated", Terminated.String())
}
