package teleop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gwillem/roverteleop/pkg/console"
	"github.com/gwillem/roverteleop/pkg/keys"
)

// Terminal is a raw-mode guard.
type Terminal interface {
	Enter() error
	Restore() error
}

// Session runs the console teleoperation loop: keys are read from Input
// and applied to the controller while it publishes in the background.
type Session struct {
	Controller *Controller
	Terminal   Terminal // optional
	Input      io.Reader
	Printer    *console.Printer
	Logger     *slog.Logger
	Grace      time.Duration // delay between halting and stopping the loop
}

type readResult struct {
	press keys.Press
	err   error
}

// Run blocks until Ctrl-C, a read error or ctx is done. Read errors are
// logged and end the session like Ctrl-C does; in every case the drive is
// halted, the stop command published and the terminal restored. Only a
// failure to set up the terminal is returned.
func (s *Session) Run(ctx context.Context) (err error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if s.Terminal != nil {
		switch err := s.Terminal.Enter(); {
		case errors.Is(err, console.ErrNotTerminal):
			logger.Warn("input is not a terminal, reading it as-is")
		case err != nil:
			return err
		}
		defer func() {
			if rerr := s.Terminal.Restore(); rerr != nil {
				logger.Error("restore terminal", "error", rerr)
				if err == nil {
					err = rerr
				}
			}
		}()
	}

	shutdown := s.Controller.Background(ctx)
	// Runs before the terminal restore, also when unwinding a panic.
	defer shutdown(s.Grace)

	if s.Printer != nil {
		s.Printer.Instructions("Teleop started (continuous drive mode).", KeyMap())
	}

	stop := make(chan struct{})
	defer close(stop)
	presses := s.readKeys(stop)

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down", "reason", context.Cause(ctx))
			return nil
		case r := <-presses:
			if r.err != nil {
				logger.Error("read key", "error", r.err)
				if s.Printer != nil {
					s.Printer.Error(fmt.Errorf("read key: %w", r.err))
				}
				return nil
			}
			res := s.Controller.Handle(r.press)
			if res.Status != "" && s.Printer != nil {
				s.Printer.Status(res.Status)
			}
			if res.Quit {
				return nil
			}
		}
	}
}

// readKeys decodes Input in its own goroutine so the session loop can
// also watch ctx. The goroutine ends after the first error or when stop is
// closed; a read blocked on the terminal ends with the process.
func (s *Session) readKeys(stop <-chan struct{}) <-chan readResult {
	out := make(chan readResult)
	dec := keys.NewDecoder(s.Input)

	go func() {
		for {
			p, err := dec.Next()
			select {
			case out <- readResult{press: p, err: err}:
			case <-stop:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return out
}
