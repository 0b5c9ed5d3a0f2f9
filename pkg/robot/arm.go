package robot

import (
	"context"
	"fmt"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

// Arm represents the rover arm's servo bus.
type Arm struct {
	bus   *feetech.Bus
	group *feetech.ServoGroup
	cfg   ArmConfig
	home  Home
}

// NewArm opens the servo bus for an arm.
func NewArm(cfg ArmConfig) (*Arm, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bus, err := OpenBus(cfg.Port, cfg.BaudRate, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Arm{
		bus:   bus,
		group: feetech.NewServoGroupByIDs(bus, cfg.IDs...),
		cfg:   cfg,
	}, nil
}

// OpenBus opens a Feetech STS bus on port.
func OpenBus(port string, baud int, timeout time.Duration) (*feetech.Bus, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: baud,
		Protocol: feetech.ProtocolSTS,
		Timeout:  timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}
	return bus, nil
}

// Close closes the arm's bus connection.
func (a *Arm) Close() error {
	return a.bus.Close()
}

// Start captures the current pose as home and enables torque, so the arm
// holds where it is until offsets arrive.
func (a *Arm) Start(ctx context.Context) error {
	raw, err := a.group.Positions(ctx)
	if err != nil {
		return fmt.Errorf("read home positions: %w", err)
	}

	home := make(Home, len(raw))
	for id, pos := range raw {
		home[id] = pos
	}
	for _, id := range a.cfg.IDs {
		if _, ok := home[id]; !ok {
			return fmt.Errorf("servo %d did not report a position", id)
		}
	}
	a.home = home

	if err := a.group.EnableAll(ctx); err != nil {
		return fmt.Errorf("enable torque: %w", err)
	}
	return nil
}

// Stop disables torque on all servos.
func (a *Arm) Stop(ctx context.Context) error {
	if err := a.group.DisableAll(ctx); err != nil {
		return fmt.Errorf("disable torque: %w", err)
	}
	return nil
}

// WriteOffsets moves every joint to home plus its offset.
func (a *Arm) WriteOffsets(ctx context.Context, offsets []int32) error {
	if a.home == nil {
		return fmt.Errorf("arm not started")
	}

	goals := make(feetech.PositionMap, len(offsets))
	for i, off := range offsets {
		if i >= len(a.cfg.IDs) {
			break
		}
		id := a.cfg.IDs[i]
		if pos, ok := a.home.Target(id, off, a.cfg.StepsPerUnit); ok {
			goals[id] = pos
		}
	}

	if err := a.group.SetPositions(ctx, goals); err != nil {
		return fmt.Errorf("write positions: %w", err)
	}
	return nil
}
