// Package timeline maps absolute frame numbers to step windows, transition blends and
// keyframe curve values. Every function is a pure function of its arguments.
package timeline

import (
	"fmt"
	"math"
	"sort"
)

// Frame is an absolute or local frame index.
type Frame int

// Extrapolate selects how a curve behaves outside its keyframe range.
type Extrapolate string

const (
	// Extend continues the slope of the outermost segment.
	Extend Extrapolate = "extend"
	// Clamp holds the outermost output value.
	Clamp Extrapolate = "clamp"
	// Identity returns the input frame itself.
	Identity Extrapolate = "identity"
)

// Extrapolation is the per-side extrapolation policy of a curve.
type Extrapolation struct {
	Left  Extrapolate `yaml:"left,omitempty" json:"left,omitempty"`
	Right Extrapolate `yaml:"right,omitempty" json:"right,omitempty"`
}

// ClampBoth clamps on both sides.
var ClampBoth = Extrapolation{Left: Clamp, Right: Clamp}

// Easing reshapes the interpolation ratio inside a segment.
type Easing string

const (
	Linear         Easing = "linear"
	EaseInCubic    Easing = "ease-in-cubic"
	EaseOutCubic   Easing = "ease-out-cubic"
	EaseInOutCubic Easing = "ease-in-out-cubic"
)

// Curve is a piecewise keyframe curve. The zero value is not usable; build one with NewCurve.
//
// Input keyframes are non-decreasing. Two equal consecutive inputs mark a discontinuity and the
// curve is right-continuous there: evaluating exactly at that frame yields the later output.
type Curve struct {
	input         []float64
	output        []float64
	extrapolation Extrapolation
	easing        Easing
}

// NewCurve validates keyframes and returns an immutable curve. Empty extrapolation sides
// default to Extend and an empty easing defaults to Linear.
func NewCurve(input, output []float64, ex Extrapolation, easing Easing) (Curve, error) {
	if len(input) != len(output) {
		return Curve{}, fmt.Errorf("%w: %d inputs vs %d outputs", ErrInvalidCurve, len(input), len(output))
	}
	if len(input) < 2 {
		return Curve{}, fmt.Errorf("%w: need at least 2 keyframes, got %d", ErrInvalidCurve, len(input))
	}
	for i := range input {
		if !finite(input[i]) || !finite(output[i]) {
			return Curve{}, fmt.Errorf("%w: non-finite keyframe at %d", ErrInvalidCurve, i)
		}
		if i == 0 {
			continue
		}
		if input[i] < input[i-1] {
			return Curve{}, fmt.Errorf("%w: input keyframes decrease at %d (%g < %g)", ErrInvalidCurve, i, input[i], input[i-1])
		}
		if i >= 2 && input[i] == input[i-1] && input[i-1] == input[i-2] {
			return Curve{}, fmt.Errorf("%w: three equal input keyframes at %g", ErrInvalidCurve, input[i])
		}
	}
	if input[0] == input[len(input)-1] {
		return Curve{}, fmt.Errorf("%w: curve spans a single frame", ErrInvalidCurve)
	}

	if ex.Left == "" {
		ex.Left = Extend
	}
	if ex.Right == "" {
		ex.Right = Extend
	}
	if !ex.Left.valid() || !ex.Right.valid() {
		return Curve{}, fmt.Errorf("%w: unknown extrapolation %q/%q", ErrInvalidCurve, ex.Left, ex.Right)
	}
	if easing == "" {
		easing = Linear
	}
	if !easing.valid() {
		return Curve{}, fmt.Errorf("%w: unknown easing %q", ErrInvalidCurve, easing)
	}

	return Curve{
		input:         append([]float64(nil), input...),
		output:        append([]float64(nil), output...),
		extrapolation: ex,
		easing:        easing,
	}, nil
}

// MustCurve is NewCurve for static definitions; it panics on invalid keyframes.
func MustCurve(input, output []float64, ex Extrapolation, easing Easing) Curve {
	c, err := NewCurve(input, output, ex, easing)
	if err != nil {
		panic(err)
	}
	return c
}

// Ramp returns a two-keyframe curve from (start, from) to (end, to), clamped on both sides.
func Ramp(start, end Frame, from, to float64, easing Easing) (Curve, error) {
	return NewCurve([]float64{float64(start), float64(end)}, []float64{from, to}, ClampBoth, easing)
}

// Evaluate returns the curve value at frame f.
func (c Curve) Evaluate(f Frame) float64 {
	return c.EvaluateAt(float64(f))
}

// EvaluateAt returns the curve value at a real-valued position.
func (c Curve) EvaluateAt(x float64) float64 {
	n := len(c.input)
	first, last := c.input[0], c.input[n-1]

	if x < first {
		switch c.extrapolation.Left {
		case Clamp:
			return c.output[0]
		case Identity:
			return x
		}
		return c.output[0] + c.slope(0)*(x-first)
	}

	if x >= last {
		if x == last {
			return c.output[n-1]
		}
		switch c.extrapolation.Right {
		case Clamp:
			return c.output[n-1]
		case Identity:
			return x
		}
		return c.output[n-1] + c.slope(n-2)*(x-last)
	}

	// Last keyframe at or before x; a duplicated input resolves to its right side.
	i := sort.Search(n, func(j int) bool { return c.input[j] > x }) - 1
	x0, x1 := c.input[i], c.input[i+1]
	t := (x - x0) / (x1 - x0)
	return lerp(c.output[i], c.output[i+1], c.ease(t))
}

// Input returns a copy of the input keyframes.
func (c Curve) Input() []float64 { return append([]float64(nil), c.input...) }

// Output returns a copy of the output keyframes.
func (c Curve) Output() []float64 { return append([]float64(nil), c.output...) }

// Extrapolation returns the curve's extrapolation policy.
func (c Curve) Extrapolation() Extrapolation { return c.extrapolation }

// Easing returns the curve's in-segment easing.
func (c Curve) Easing() Easing { return c.easing }

// Bounds returns the minimum and maximum output keyframe.
func (c Curve) Bounds() (lo, hi float64) {
	lo, hi = c.output[0], c.output[0]
	for _, v := range c.output[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// Range returns the lowest and highest value the curve takes over every frame, extrapolation
// included. A side that extends with a nonzero slope or follows the input is unbounded.
func (c Curve) Range() (lo, hi float64) {
	lo, hi = c.Bounds()
	n := len(c.input)
	first, last := c.input[0], c.input[n-1]

	switch c.extrapolation.Left {
	case Identity:
		lo, hi = math.Inf(-1), math.Max(hi, first)
	case Extend:
		if s := c.slope(0); s > 0 {
			lo = math.Inf(-1)
		} else if s < 0 {
			hi = math.Inf(1)
		}
	}
	switch c.extrapolation.Right {
	case Identity:
		lo, hi = math.Min(lo, last), math.Inf(1)
	case Extend:
		if s := c.slope(n - 2); s > 0 {
			hi = math.Inf(1)
		} else if s < 0 {
			lo = math.Inf(-1)
		}
	}
	return lo, hi
}

// slope of segment [i, i+1]; zero-width segments hold.
func (c Curve) slope(i int) float64 {
	dx := c.input[i+1] - c.input[i]
	if dx == 0 {
		return 0
	}
	return (c.output[i+1] - c.output[i]) / dx
}

func (c Curve) ease(t float64) float64 {
	switch c.easing {
	case EaseInCubic:
		return t * t * t
	case EaseOutCubic:
		return 1 - pow(1-t, 3)
	case EaseInOutCubic:
		return easeInOutCubic(t)
	}
	return t
}

func (e Extrapolate) valid() bool {
	switch e {
	case Extend, Clamp, Identity:
		return true
	}
	return false
}

func (e Easing) valid() bool {
	switch e {
	case Linear, EaseInCubic, EaseOutCubic, EaseInOutCubic:
		return true
	}
	return false
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
