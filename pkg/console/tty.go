// Package console manages the raw terminal used for key input and the
// styled text written back to it.
package console

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"
)

// ErrNotTerminal is returned by Enter when the file is not a terminal.
var ErrNotTerminal = errors.New("not a terminal")

// TTY puts a terminal into raw mode and restores its previous mode.
// Restore is safe to call more than once and from any goroutine.
type TTY struct {
	fd int

	mu    sync.Mutex
	state *term.State
}

// NewTTY returns a guard for f. Nothing changes until Enter is called.
func NewTTY(f *os.File) *TTY {
	return &TTY{fd: int(f.Fd())}
}

// IsTerminal reports whether the guarded file is a terminal.
func (t *TTY) IsTerminal() bool {
	return term.IsTerminal(t.fd)
}

// Enter switches the terminal to raw mode (no echo, no line buffering,
// no signal keys) and remembers the previous mode.
func (t *TTY) Enter() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != nil {
		return nil
	}
	if !term.IsTerminal(t.fd) {
		return ErrNotTerminal
	}
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	t.state = state
	return nil
}

// Restore puts the terminal back into the mode it had before Enter.
func (t *TTY) Restore() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == nil {
		return nil
	}
	err := term.Restore(t.fd, t.state)
	t.state = nil
	if err != nil {
		return fmt.Errorf("restore terminal: %w", err)
	}
	return nil
}
