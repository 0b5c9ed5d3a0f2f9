package robot

// Raw position limits of an STS servo (one turn, 12 bits).
const (
	MinPosition = 0
	MaxPosition = 4095
)

// Home holds the raw position captured for each servo ID when the arm
// started. Joint offsets are applied relative to it.
type Home map[int]int

// Target converts a joint offset into a raw goal position for servo id.
// The offset itself is unbounded; only the resulting position is clamped
// to what the servo can reach.
func (h Home) Target(id int, offset int32, stepsPerUnit int) (int, bool) {
	base, ok := h[id]
	if !ok {
		return 0, false
	}
	pos := int64(base) + int64(offset)*int64(stepsPerUnit)
	switch {
	case pos < MinPosition:
		pos = MinPosition
	case pos > MaxPosition:
		pos = MaxPosition
	}
	return int(pos), true
}
