package controller

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// KeyMap binds keys to controller events.
type KeyMap struct {
	Restart   key.Binding
	Interrupt key.Binding
}

// DefaultKeyMap binds ctrl+r to restart and ctrl+c to interrupt.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Restart: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "restart"),
		),
		Interrupt: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// EventFor returns the event bound to msg, if any.
func (k KeyMap) EventFor(msg tea.KeyMsg) (Event, bool) {
	switch {
	case key.Matches(msg, k.Interrupt):
		return Event{Kind: EventInterrupt}, true
	case key.Matches(msg, k.Restart):
		return Event{Kind: EventRestart}, true
	}
	return Event{}, false
}

// keyMsg converts one raw input byte into the key message bubbletea would
// report for it. Control characters map onto tea's control key types.
func keyMsg(b byte) tea.KeyMsg {
	if b < 0x20 || b == 0x7f {
		return tea.KeyMsg{Type: tea.KeyType(b)}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{rune(b)}}
}

// ReadKeys reads raw bytes from r and sends the bound events to out until r
// is exhausted or ctx is done. A read in progress is not interrupted by ctx.
func ReadKeys(ctx context.Context, r io.Reader, keys KeyMap, out chan<- Event) error {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			ev, ok := keys.EventFor(keyMsg(b))
			if !ok {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// RawMode puts the terminal behind f into raw mode so ctrl+c and ctrl+r
// arrive as bytes. The returned func restores the previous mode.
func RawMode(f *os.File) (restore func() error, err error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("stdin is not a terminal")
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() error {
		return term.Restore(fd, state)
	}, nil
}

// ForwardSignals sends EventInterrupt to out for every SIGINT or SIGTERM
// until ctx is done.
func ForwardSignals(ctx context.Context, out chan<- Event) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigChan:
			select {
			case out <- Event{Kind: EventInterrupt}:
			case <-ctx.Done():
				return
			}
		}
	}
}
