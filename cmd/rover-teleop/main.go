package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/gwillem/roverteleop/pkg/logging"
)

type LogOptions struct {
	Verbose bool   `short:"v" long:"verbose" env:"ROVER_TELEOP_VERBOSE" description:"Log debug messages, including every published message"`
	File    string `long:"log-file" env:"ROVER_TELEOP_LOG_FILE" description:"Also write JSON logs to this file"`
	Journal bool   `long:"log-journal" env:"ROVER_TELEOP_LOG_JOURNAL" description:"Also log to the systemd journal"`
}

type Options struct {
	Log LogOptions `group:"Logging Options"`

	Drive DriveCommand `command:"drive" alias:"teleop" description:"Drive the rover and its arm from the keyboard"`
	Scan  ScanCommand  `command:"scan" description:"Scan serial ports for the rover arm"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "rover-teleop - keyboard teleoperation for a six-wheel rover with a 7-joint arm"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}

// newLogger builds the logger from the global logging options. Console
// may be nil. The returned close func releases the log file.
func (o LogOptions) newLogger(console io.Writer) (*slog.Logger, func() error, error) {
	lo := logging.Options{
		Console: console,
		Journal: o.Journal,
		Verbose: o.Verbose,
	}

	closeFile := func() error { return nil }
	if o.File != "" {
		f, err := os.OpenFile(o.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		lo.File = f
		closeFile = f.Close
	}

	logger, err := logging.New(lo)
	if err != nil {
		closeFile()
		return nil, nil, err
	}
	return logger, closeFile, nil
}
