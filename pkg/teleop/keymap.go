package teleop

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/gwillem/roverteleop/pkg/console"
	"github.com/gwillem/roverteleop/pkg/keys"
)

// Result describes what a key press did.
type Result struct {
	Matched bool   // the key is bound to an action
	Quit    bool   // the key ends the session
	Status  string // human-readable status line, if the action has one
}

// Wrist pair indices in the motor array.
const (
	wristA = 5
	wristB = 6
)

const decrementKeys = "QWERT"

// KeyMap returns the help rows for the bindings handled by Handle.
func KeyMap() []console.Binding {
	return []console.Binding{
		{Keys: "Up / Down", Action: "Drive forward / backward"},
		{Keys: "Left / Right", Action: "Turn left / right"},
		{Keys: "s", Action: "Stop (set drive commands to zero)"},
		{Keys: "o", Action: "Increase global speed (linear and angular)"},
		{Keys: "p", Action: "Decrease global speed"},
		{Keys: "1-5", Action: "Increment arm motor 1-5"},
		{Keys: "q w e r t", Action: "Decrement arm motor 1-5"},
		{Keys: "6 / y", Action: "Wrist motors 6, 7 both up / both down"},
		{Keys: "7 / u", Action: "Wrist motors 6, 7 apart / together"},
	}
}

// Handle applies a key press to the state. Bound keys refresh the last
// input time before their action runs; unbound keys change nothing.
func (c *Controller) Handle(p keys.Press) Result {
	now := c.cfg.Now()

	c.mu.Lock()
	res := c.apply(p, now)
	c.mu.Unlock()

	if res.Matched {
		c.logger.Debug("key", "key", p.String(), "status", res.Status)
	}
	return res
}

func (c *Controller) apply(p keys.Press, now time.Time) Result {
	s := &c.state
	g := c.cfg.Granularity
	touch := func() { s.LastInput = now }

	switch p.Key {
	case keys.KeyUp:
		touch()
		s.X, s.Turn = 1, 0
		return Result{Matched: true}
	case keys.KeyDown:
		touch()
		s.X, s.Turn = -1, 0
		return Result{Matched: true}
	case keys.KeyRight:
		touch()
		s.Turn, s.X = -1, 0
		return Result{Matched: true}
	case keys.KeyLeft:
		touch()
		s.Turn, s.X = 1, 0
		return Result{Matched: true}
	case keys.KeyInterrupt:
		touch()
		return Result{Matched: true, Quit: true}
	case keys.KeyRune:
	default:
		return Result{}
	}

	r := p.Rune
	upper := unicode.ToUpper(r)
	switch {
	case upper == 'S':
		touch()
		s.X, s.Turn = 0, 0
		return matched("Stop command issued.")
	case upper == 'O':
		touch()
		s.Speed *= c.cfg.SpeedUp
		return matched(fmt.Sprintf("Speed increased: %.3f", s.Speed))
	case upper == 'P':
		touch()
		s.Speed *= c.cfg.SpeedDown
		return matched(fmt.Sprintf("Speed decreased: %.3f", s.Speed))
	case r >= '1' && r <= '5':
		touch()
		idx := int(r - '1')
		s.Motors[idx] += g
		return matched(fmt.Sprintf("Motor %d increased to %d", idx+1, s.Motors[idx]))
	case r == '6':
		touch()
		s.Motors[wristA] += g
		s.Motors[wristB] += g
		return matched(wristStatus("increased", s))
	case r == '7':
		touch()
		s.Motors[wristA] += g
		s.Motors[wristB] -= g
		return matched(wristStatus("changed", s))
	case strings.ContainsRune(decrementKeys, upper):
		touch()
		idx := strings.IndexRune(decrementKeys, upper)
		s.Motors[idx] -= g
		return matched(fmt.Sprintf("Motor %d decreased to %d", idx+1, s.Motors[idx]))
	case upper == 'Y':
		touch()
		s.Motors[wristA] -= g
		s.Motors[wristB] -= g
		return matched(wristStatus("decreased", s))
	case upper == 'U':
		touch()
		s.Motors[wristA] -= g
		s.Motors[wristB] += g
		return matched(wristStatus("changed", s))
	}
	return Result{}
}

func matched(status string) Result {
	return Result{Matched: true, Status: status}
}

func wristStatus(verb string, s *State) string {
	return fmt.Sprintf("Motors %d, %d %s to %d, %d", wristA+1, wristB+1, verb, s.Motors[wristA], s.Motors[wristB])
}
