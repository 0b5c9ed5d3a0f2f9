// Package robot provides the rover arm's joints and the servo bus that
// drives them.
package robot

// NumJoints is the number of arm joints.
const NumJoints = 7

// JointName identifies a joint in the arm.
type JointName string

// Joint names. Wrist A and B form a differential pair: moving both the same
// way pitches the wrist, moving them oppositely rolls it.
const (
	Base     JointName = "base"
	Shoulder JointName = "shoulder"
	Elbow    JointName = "elbow"
	Forearm  JointName = "forearm"
	Gripper  JointName = "gripper"
	WristA   JointName = "wrist_a"
	WristB   JointName = "wrist_b"
)

// AllJoints returns all joint names in order (matching servo IDs 1-7).
func AllJoints() []JointName {
	return []JointName{
		Base,
		Shoulder,
		Elbow,
		Forearm,
		Gripper,
		WristA,
		WristB,
	}
}
