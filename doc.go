// Package roverteleop provides keyboard teleoperation for a mobile robot
// with a 7-joint arm.
//
// Key presses on a raw terminal are turned into a drive intent and a set of
// joint offsets. Both are republished every 50 ms as a velocity command
// (cmd_vel) and a motor-state array (/joint_states), with a watchdog that
// stops the robot when no key has been pressed for 5 seconds.
//
// # Installation
//
//	go install github.com/gwillem/roverteleop/cmd/rover-teleop@latest
//
// # Usage
//
// Drive with the line console:
//
//	rover-teleop drive
//
// Drive with the full-screen dashboard, bridging messages to the robot:
//
//	rover-teleop drive --tui --ws-url ws://rover.local:8080/control
//
// Find a Feetech servo arm on the serial ports:
//
//	rover-teleop scan
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/rover-teleop: CLI with drive and scan commands
//   - pkg/keys: Raw key decoding
//   - pkg/console: Raw terminal mode and console output
//   - pkg/teleop: Drive state, key mapping, watchdog and publish loop
//   - pkg/bus: Messages, in-process hub and sinks
//   - pkg/robot: Joint names and the Feetech servo arm
//   - pkg/logging: Logger construction
package roverteleop
