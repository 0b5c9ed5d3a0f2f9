package robot

import (
	"errors"
	"fmt"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

// DefaultBaudRate is the Feetech STS bus speed.
const DefaultBaudRate = 1_000_000

// ArmConfig holds configuration for the servo arm.
type ArmConfig struct {
	Port         string
	BaudRate     int
	IDs          []int // servo ID per joint, in AllJoints order
	StepsPerUnit int   // raw servo steps per unit of joint offset
	Timeout      time.Duration
}

// DefaultIDs returns servo IDs 1..NumJoints.
func DefaultIDs() []int {
	ids := make([]int, NumJoints)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

// DefaultArmConfig returns the configuration for an arm on port.
func DefaultArmConfig(port string) ArmConfig {
	return ArmConfig{
		Port:         port,
		BaudRate:     DefaultBaudRate,
		IDs:          DefaultIDs(),
		StepsPerUnit: 1,
		Timeout:      100 * time.Millisecond,
	}
}

// Validate checks the configuration.
func (c ArmConfig) Validate() error {
	if c.Port == "" {
		return errors.New("arm port not set")
	}
	if len(c.IDs) != NumJoints {
		return fmt.Errorf("need %d servo IDs, got %d", NumJoints, len(c.IDs))
	}
	seen := make(map[int]bool, len(c.IDs))
	for _, id := range c.IDs {
		if id < 1 || id > 253 {
			return fmt.Errorf("servo ID %d out of range", id)
		}
		if seen[id] {
			return fmt.Errorf("duplicate servo ID %d", id)
		}
		seen[id] = true
	}
	if c.StepsPerUnit <= 0 {
		return fmt.Errorf("steps per unit must be positive, got %d", c.StepsPerUnit)
	}
	return nil
}

// IsRoverArm reports whether the servos found on a bus are exactly the
// arm's IDs.
func IsRoverArm(servos []feetech.FoundServo, ids []int) bool {
	if len(servos) != len(ids) {
		return false
	}

	found := make(map[int]bool)
	for _, s := range servos {
		found[s.ID] = true
	}

	for _, id := range ids {
		if !found[id] {
			return false
		}
	}

	return true
}
