package channel

import (
	"fmt"

	"github.com/ivlev/steps2video/internal/timeline"
)

// Stagger drives Count decorative items with one shared base curve. Item i is delayed by
// min(i, Cap) units of Spacing frames, so every item at or beyond Cap moves in lockstep.
type Stagger struct {
	Name    string
	Count   int
	Cap     int
	Spacing int
	Gate    string // optional; items are hidden while the gate is closed
	Base    timeline.Curve
}

// NewStagger validates a stagger definition.
func NewStagger(name string, count, limit, spacing int, gate string, base timeline.Curve) (Stagger, error) {
	if name == "" {
		return Stagger{}, fmt.Errorf("channel: stagger with empty name")
	}
	if count < 0 || limit < 0 || spacing < 0 {
		return Stagger{}, fmt.Errorf("channel: stagger %q needs non-negative count, cap and spacing", name)
	}
	if lo, hi := base.Range(); lo < 0 || hi > 1 {
		return Stagger{}, fmt.Errorf("%w: stagger %q outputs [%g, %g] outside [0, 1]", timeline.ErrInvalidCurve, name, lo, hi)
	}
	return Stagger{Name: name, Count: count, Cap: limit, Spacing: spacing, Gate: gate, Base: base}, nil
}

// Delay returns the delay index of item i.
func (s Stagger) Delay(i int) int {
	return min(i, s.Cap)
}

// Value evaluates item i at an absolute frame.
func (s Stagger) Value(i int, f timeline.Frame) float64 {
	return s.Base.Evaluate(f - timeline.Frame(s.Delay(i)*s.Spacing))
}

// Values evaluates every item at an absolute frame.
func (s Stagger) Values(f timeline.Frame) []float64 {
	out := make([]float64, s.Count)
	for i := range out {
		out[i] = s.Value(i, f)
	}
	return out
}
