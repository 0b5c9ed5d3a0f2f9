// Package teleop provides keyboard teleoperation control for the rover.
package teleop

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gwillem/roverteleop/pkg/bus"
)

// Defaults for Config.
const (
	DefaultPeriod      = 50 * time.Millisecond
	DefaultTimeout     = 5 * time.Second
	DefaultSpeed       = 0.35
	DefaultGranularity = 10
	DefaultSpeedUp     = 1.1
	DefaultSpeedDown   = 0.9
	DefaultGrace       = 100 * time.Millisecond
)

// Config holds configuration for the controller. Zero fields take the
// defaults above.
type Config struct {
	Period      time.Duration // publish period
	Timeout     time.Duration // watchdog: zero the drive after this long without input
	Speed       float64       // initial speed scale
	Granularity int32         // motor offset change per key press
	SpeedUp     float64       // speed factor for 'o'
	SpeedDown   float64       // speed factor for 'p'
	Now         func() time.Time
}

func (c Config) withDefaults() Config {
	if c.Period <= 0 {
		c.Period = DefaultPeriod
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Speed <= 0 {
		c.Speed = DefaultSpeed
	}
	if c.Granularity == 0 {
		c.Granularity = DefaultGranularity
	}
	if c.SpeedUp <= 0 {
		c.SpeedUp = DefaultSpeedUp
	}
	if c.SpeedDown <= 0 {
		c.SpeedDown = DefaultSpeedDown
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Controller owns the teleoperation state and the publish loop.
type Controller struct {
	cfg    Config
	pub    bus.Publisher
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	running bool

	stateCh chan State
	logCh   chan string
}

// NewController creates a controller publishing to pub.
func NewController(cfg Config, pub bus.Publisher, logger *slog.Logger) *Controller {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Controller{
		cfg:    cfg,
		pub:    pub,
		logger: logger,
		state: State{
			Speed:     cfg.Speed,
			LastInput: cfg.Now(),
		},
		stateCh: make(chan State, 1),
		logCh:   make(chan string, 10),
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// States returns a channel that receives the state published on each tick.
// Only the latest state is kept.
func (c *Controller) States() <-chan State {
	return c.stateCh
}

// Logs returns a channel that receives controller log messages.
func (c *Controller) Logs() <-chan string {
	return c.logCh
}

// Period returns the publish period.
func (c *Controller) Period() time.Duration {
	return c.cfg.Period
}

// Timeout returns the watchdog timeout.
func (c *Controller) Timeout() time.Duration {
	return c.cfg.Timeout
}

func (c *Controller) log(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.logger.Info(msg)
	msg = fmt.Sprintf("[%s] %s", c.cfg.Now().Format("15:04:05"), msg)
	select {
	case c.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// Halt zeroes the drive intent. Speed and motor offsets are kept.
func (c *Controller) Halt() {
	c.mu.Lock()
	c.state.X, c.state.Turn = 0, 0
	c.mu.Unlock()
}

// Start runs the publish loop until ctx is cancelled. One final tick is
// published on the way out so a preceding Halt always reaches the bus.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("already running")
	}
	c.running = true
	c.mu.Unlock()

	c.log("Publishing every %v, watchdog %v", c.cfg.Period, c.cfg.Timeout)

	ticker := time.NewTicker(c.cfg.Period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.step(c.cfg.Now())
			c.mu.Lock()
			c.running = false
			c.mu.Unlock()
			return ctx.Err()
		case <-ticker.C:
			c.step(c.cfg.Now())
		}
	}
}

// step runs the watchdog and publishes the state.
func (c *Controller) step(now time.Time) {
	c.mu.Lock()
	idle := now.Sub(c.state.LastInput)
	fired := false
	if idle > c.cfg.Timeout {
		fired = c.state.X != 0 || c.state.Turn != 0
		c.state.X, c.state.Turn = 0, 0
		c.state.TimedOut = true
	} else {
		c.state.TimedOut = false
	}
	s := c.state
	c.mu.Unlock()

	if fired {
		c.log("Watchdog: no input for %v, drive stopped", idle.Truncate(time.Millisecond))
	}

	c.pub.PublishVelocity(s.Velocity())
	c.pub.PublishJointStates(s.JointStates())
	c.sendState(s)
}

func (c *Controller) sendState(s State) {
	select {
	case c.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-c.stateCh:
		default:
		}
		select {
		case c.stateCh <- s:
		default:
		}
	}
}

// Background starts the publish loop and returns a function that shuts it
// down: the drive is halted, grace is allowed for the stop command to be
// published, then the loop is stopped after a final publish. Cancelling
// ctx does not stop the loop; only shutdown does.
func (c *Controller) Background(ctx context.Context) (shutdown func(grace time.Duration)) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := c.Start(ctx); err != nil && ctx.Err() == nil {
			c.logger.Error("publish loop", "error", err)
		}
	}()

	var once sync.Once
	return func(grace time.Duration) {
		once.Do(func() {
			c.Halt()
			if grace > 0 {
				time.Sleep(grace)
			}
			cancel()
			<-done
			c.log("Teleoperation stopped")
		})
	}
}
