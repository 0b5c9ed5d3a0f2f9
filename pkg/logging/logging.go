// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

// Options selects where log records go. Each destination is optional.
type Options struct {
	Console io.Writer // text records, e.g. a CRLF writer over stderr
	File    io.Writer // JSON records
	Journal bool      // systemd journal
	Verbose bool      // debug level instead of info
}

// New returns a logger fanning out to every configured destination.
func New(opts Options) (*slog.Logger, error) {
	level := new(slog.LevelVar)
	if opts.Verbose {
		level.Set(slog.LevelDebug)
	}

	var handlers []slog.Handler

	if opts.Console != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.Console, &slog.HandlerOptions{
			Level: level,
		}))
	}

	if opts.File != nil {
		handlers = append(handlers, slog.NewJSONHandler(opts.File, &slog.HandlerOptions{
			Level: level,
		}))
	}

	if opts.Journal {
		h, err := slogjournal.NewHandler(&slogjournal.Options{
			ReplaceGroup: func(key string) string {
				return journalKey(key)
			},
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = journalKey(a.Key)
				return a
			},
		})
		if err != nil {
			return nil, fmt.Errorf("open systemd journal: %w", err)
		}
		handlers = append(handlers, h)
	}

	if len(handlers) == 0 {
		return slog.New(slog.DiscardHandler), nil
	}
	return slog.New(slogmulti.Fanout(handlers...)), nil
}

// journalKey maps an attribute key to the journal's field alphabet.
func journalKey(key string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, strings.ToUpper(key))
}
