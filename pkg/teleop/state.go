package teleop

import (
	"time"

	"github.com/gwillem/roverteleop/pkg/bus"
	"github.com/gwillem/roverteleop/pkg/robot"
)

// State is a snapshot of the teleoperation state.
type State struct {
	Speed     float64 // scale applied to X and Turn at publish time
	X         float64 // forward intent, -1..1
	Turn      float64 // rotate intent, -1..1, positive is left
	Motors    [robot.NumJoints]int32
	LastInput time.Time
	TimedOut  bool // the watchdog zeroed the drive intent on the last tick
}

// Velocity returns the velocity command for the state.
func (s State) Velocity() bus.Twist {
	return bus.Twist{
		Linear:  bus.Vector3{X: s.X * s.Speed},
		Angular: bus.Vector3{Z: s.Turn * s.Speed},
	}
}

// JointStates returns a copy of the motor offsets.
func (s State) JointStates() bus.Int32MultiArray {
	data := make([]int32, len(s.Motors))
	copy(data, s.Motors[:])
	return bus.Int32MultiArray{Data: data}
}
