package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gwillem/roverteleop/pkg/bus"
	"github.com/gwillem/roverteleop/pkg/console"
	"github.com/gwillem/roverteleop/pkg/robot"
	"github.com/gwillem/roverteleop/pkg/teleop"
)

type DriveCommand struct {
	Period      time.Duration `long:"period" env:"ROVER_TELEOP_PERIOD" default:"50ms" description:"Publish period"`
	Timeout     time.Duration `long:"timeout" env:"ROVER_TELEOP_TIMEOUT" default:"5s" description:"Stop driving after this long without input"`
	Speed       float64       `long:"speed" env:"ROVER_TELEOP_SPEED" default:"0.35" description:"Initial speed scale"`
	Granularity int32         `long:"granularity" env:"ROVER_TELEOP_GRANULARITY" default:"10" description:"Motor offset change per key press"`
	Grace       time.Duration `long:"grace" env:"ROVER_TELEOP_GRACE" default:"100ms" description:"Time allowed for the stop command to go out on exit"`

	TUI   bool   `long:"tui" env:"ROVER_TELEOP_TUI" description:"Show the dashboard instead of the plain console"`
	WSURL string `long:"ws-url" env:"ROVER_TELEOP_WS_URL" description:"Forward messages to a rosbridge-style WebSocket server (ws:// or wss://)"`

	ArmPort  string `long:"arm-port" env:"ROVER_TELEOP_ARM_PORT" description:"Serial port of the arm servo bus (see 'rover-teleop scan')"`
	ArmBaud  int    `long:"arm-baud" env:"ROVER_TELEOP_ARM_BAUD" default:"1000000" description:"Arm servo bus baud rate"`
	ArmSteps int    `long:"arm-steps" env:"ROVER_TELEOP_ARM_STEPS" default:"1" description:"Servo steps per motor offset unit"`
}

func (c *DriveCommand) Execute(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	// Raw mode turns off output post-processing, so console output needs
	// explicit carriage returns. The dashboard owns the screen and gets
	// no console logging.
	var logOut io.Writer
	if !c.TUI {
		logOut = console.NewCRLFWriter(os.Stderr)
	}
	logger, closeLog, err := opts.Log.newLogger(logOut)
	if err != nil {
		return err
	}
	defer closeLog()

	hub := bus.NewHub(logger, 0)
	defer func() {
		if err := hub.Close(); err != nil {
			logger.Error("close bus", "error", err)
		}
	}()

	hub.Attach(bus.NewLogSink(logger), bus.TopicVelocity, bus.TopicJointStates)

	if c.WSURL != "" {
		ws, err := bus.NewWebSocketSink(c.WSURL)
		if err != nil {
			return err
		}
		hub.Attach(ws, bus.TopicVelocity, bus.TopicJointStates)
		logger.Info("forwarding to websocket", "url", c.WSURL)
	}

	if c.ArmPort != "" {
		cfg := robot.DefaultArmConfig(c.ArmPort)
		cfg.BaudRate = c.ArmBaud
		cfg.StepsPerUnit = c.ArmSteps
		arm, err := robot.NewArm(cfg)
		if err != nil {
			return fmt.Errorf("arm on %s: %w", c.ArmPort, err)
		}
		hub.Attach(bus.NewArmSink(arm), bus.TopicJointStates)
		logger.Info("driving arm", "port", c.ArmPort)
	}

	ctrl := teleop.NewController(teleop.Config{
		Period:      c.Period,
		Timeout:     c.Timeout,
		Speed:       c.Speed,
		Granularity: c.Granularity,
	}, hub, logger)

	if c.TUI {
		return runDashboard(ctx, ctrl, hub, c.Grace)
	}

	session := &teleop.Session{
		Controller: ctrl,
		Terminal:   console.NewTTY(os.Stdin),
		Input:      os.Stdin,
		Printer:    console.NewPrinter(console.NewCRLFWriter(os.Stdout)),
		Logger:     logger,
		Grace:      c.Grace,
	}
	return session.Run(ctx)
}
