// Package bus carries the teleop messages from the publish loop to the
// sinks that deliver them.
package bus

// Topic names.
const (
	TopicVelocity    = "cmd_vel"
	TopicJointStates = "/joint_states"
)

// Vector3 is a 3D vector.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Twist is a velocity command; only Linear.X and Angular.Z are used.
type Twist struct {
	Linear  Vector3 `json:"linear"`
	Angular Vector3 `json:"angular"`
}

// Int32MultiArray carries the joint offsets.
type Int32MultiArray struct {
	Data []int32 `json:"data"`
}

// Message is what subscribers receive.
type Message struct {
	Topic   string `json:"topic"`
	Payload any    `json:"msg"`
}

// Publisher accepts messages for delivery. Publishing never blocks on
// delivery and never fails.
type Publisher interface {
	PublishVelocity(Twist)
	PublishJointStates(Int32MultiArray)
}
