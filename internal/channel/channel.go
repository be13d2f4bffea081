// Package channel evaluates the secondary animation channels that run alongside the step
// sequence: progress fill, scroll offset, chrome fades, gates and staggered decorations.
// Channels are independent; none reads another channel's value.
package channel

import (
	"fmt"

	"github.com/ivlev/steps2video/internal/timeline"
)

// Slot is the semantic output a channel drives.
type Slot string

const (
	Opacity Slot = "opacity"
	Offset  Slot = "offset"
	Fill    Slot = "fill"
	Delay   Slot = "delay"
	Scalar  Slot = "scalar"
)

// Channel binds a curve to a named output. The curve is authored in local frames
// starting at Start.
type Channel struct {
	Name  string
	Slot  Slot
	Start timeline.Frame
	Curve timeline.Curve
}

// New validates a channel definition.
func New(name string, slot Slot, start timeline.Frame, c timeline.Curve) (Channel, error) {
	if name == "" {
		return Channel{}, fmt.Errorf("channel: empty name")
	}
	switch slot {
	case Opacity, Fill:
		// Ratios outside [0, 1] are always a tuning mistake, never a valid opacity.
		if lo, hi := c.Range(); lo < 0 || hi > 1 {
			return Channel{}, fmt.Errorf("%w: channel %q (%s) outputs [%g, %g] outside [0, 1]",
				timeline.ErrInvalidCurve, name, slot, lo, hi)
		}
	case Offset, Delay, Scalar:
	default:
		return Channel{}, fmt.Errorf("channel: %q has unknown slot %q", name, slot)
	}
	return Channel{Name: name, Slot: slot, Start: start, Curve: c}, nil
}

// Value evaluates the channel at an absolute frame.
func (c Channel) Value(f timeline.Frame) float64 {
	return c.Curve.Evaluate(f - c.Start)
}

// Gate turns a channel value into an on/off decision. It holds no state: the same
// frame always produces the same answer.
type Gate struct {
	Name      string
	Channel   string
	Threshold float64
}

// Open reports whether v passes the gate.
func (g Gate) Open(v float64) bool {
	return v > g.Threshold
}
