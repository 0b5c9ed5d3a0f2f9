package robot

import (
	"testing"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

func TestHome_Target(t *testing.T) {
	home := Home{1: 2048, 6: 100, 7: 4000}

	tests := []struct {
		id       int
		offset   int32
		steps    int
		expected int
	}{
		{1, 0, 1, 2048},       // no offset -> home
		{1, 10, 1, 2058},      // positive offset
		{1, -30, 1, 2018},     // negative offset
		{1, 10, 5, 2098},      // scaled offset
		{6, -200, 1, 0},       // clamped at min
		{7, 200, 1, 4095},     // clamped at max
		{1, 1 << 30, 4, 4095}, // large offsets don't overflow
	}

	for _, tt := range tests {
		got, ok := home.Target(tt.id, tt.offset, tt.steps)
		if !ok {
			t.Fatalf("Target(%d) returned false", tt.id)
		}
		if got != tt.expected {
			t.Errorf("Target(%d, %d, %d) = %d, want %d", tt.id, tt.offset, tt.steps, got, tt.expected)
		}
	}
}

func TestHome_TargetUnknownID(t *testing.T) {
	home := Home{1: 2048}

	if _, ok := home.Target(99, 10, 1); ok {
		t.Error("Target(99) should return false")
	}
}

func TestAllJoints(t *testing.T) {
	joints := AllJoints()
	if len(joints) != NumJoints {
		t.Fatalf("AllJoints returned %d joints, want %d", len(joints), NumJoints)
	}
	if joints[5] != WristA || joints[6] != WristB {
		t.Errorf("differential pair at %v, %v", joints[5], joints[6])
	}
}

func TestArmConfig_Validate(t *testing.T) {
	valid := DefaultArmConfig("/dev/ttyACM0")
	if err := valid.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if valid.Timeout != 100*time.Millisecond {
		t.Errorf("default timeout = %v", valid.Timeout)
	}

	tests := []struct {
		name   string
		mutate func(*ArmConfig)
	}{
		{"no port", func(c *ArmConfig) { c.Port = "" }},
		{"too few ids", func(c *ArmConfig) { c.IDs = c.IDs[:6] }},
		{"duplicate id", func(c *ArmConfig) { c.IDs = []int{1, 2, 3, 4, 5, 6, 6} }},
		{"id out of range", func(c *ArmConfig) { c.IDs = []int{0, 2, 3, 4, 5, 6, 7} }},
		{"zero steps", func(c *ArmConfig) { c.StepsPerUnit = 0 }},
	}

	for _, tt := range tests {
		cfg := DefaultArmConfig("/dev/ttyACM0")
		tt.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate() returned nil", tt.name)
		}
	}
}

func TestIsRoverArm(t *testing.T) {
	ids := DefaultIDs()

	var servos []feetech.FoundServo
	for _, id := range ids {
		servos = append(servos, feetech.FoundServo{ID: id})
	}
	if !IsRoverArm(servos, ids) {
		t.Error("IsRoverArm should accept servos 1-7")
	}
	if IsRoverArm(servos[:6], ids) {
		t.Error("IsRoverArm should reject six servos")
	}

	servos[6].ID = 9
	if IsRoverArm(servos, ids) {
		t.Error("IsRoverArm should reject a wrong ID")
	}
}
