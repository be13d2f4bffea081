package timeline

import "fmt"

// NoStep marks the absence of an outgoing step in a Blend.
const NoStep = -1

// Anchor positions a transition relative to the boundary between two steps.
type Anchor string

const (
	// Leading transitions occupy the first frames of the incoming step's window.
	Leading Anchor = "leading"
	// Trailing transitions occupy the last frames of the outgoing step's window.
	Trailing Anchor = "trailing"
	// Centered transitions straddle the boundary.
	Centered Anchor = "centered"
)

// TransitionSpec configures the blend between consecutive steps.
type TransitionSpec struct {
	Frames int    `yaml:"frames" json:"frames"`
	Anchor Anchor `yaml:"anchor,omitempty" json:"anchor,omitempty"`
	Easing Easing `yaml:"easing,omitempty" json:"easing,omitempty"`
}

// Blend is the transition state at one frame. Ratio 0 shows only Outgoing,
// ratio 1 shows only Incoming.
type Blend struct {
	Outgoing int     `json:"outgoing"`
	Incoming int     `json:"incoming"`
	Ratio    float64 `json:"ratio"`
}

// Blending reports whether two steps are on screen.
func (b Blend) Blending() bool { return b.Outgoing != NoStep }

// Span is the frame range of the transition into step Boundary.
type Span struct {
	Boundary int   `yaml:"boundary" json:"boundary"`
	Start    Frame `yaml:"start" json:"start"`
	Frames   int   `yaml:"frames" json:"frames"`
}

// Transitions computes blend state for every step boundary of a sequencer.
type Transitions struct {
	seq    *Sequencer
	spec   TransitionSpec
	before int // frames borrowed from the outgoing window
	curve  Curve
}

// NewTransitions validates the transition against every step window.
func NewTransitions(seq *Sequencer, spec TransitionSpec) (*Transitions, error) {
	if spec.Frames < 0 {
		return nil, fmt.Errorf("%w: negative transition length %d", ErrInvalidDuration, spec.Frames)
	}
	if spec.Anchor == "" {
		spec.Anchor = Leading
	}
	if spec.Easing == "" {
		spec.Easing = Linear
	}

	t := &Transitions{seq: seq, spec: spec}
	switch spec.Anchor {
	case Leading:
		t.before = 0
	case Trailing:
		t.before = spec.Frames
	case Centered:
		t.before = spec.Frames / 2
	default:
		return nil, fmt.Errorf("timeline: unknown transition anchor %q", spec.Anchor)
	}
	after := spec.Frames - t.before

	n := seq.Len()
	for j := 0; j < n; j++ {
		borrowed := 0
		if j >= 1 {
			borrowed += after
		}
		if j < n-1 {
			borrowed += t.before
		}
		// Every window must outlast the transition itself, even one no boundary borrows from.
		need := max(borrowed, spec.Frames)
		if w := seq.Window(j); need > 0 && need >= w.Duration {
			return nil, fmt.Errorf("%w: step %d needs %d transition frames, window has %d",
				ErrTransitionTooLong, j, need, w.Duration)
		}
	}

	if spec.Frames > 0 {
		c, err := Ramp(0, Frame(spec.Frames), 0, 1, spec.Easing)
		if err != nil {
			return nil, err
		}
		t.curve = c
	}
	return t, nil
}

// Spec returns the resolved transition configuration.
func (t *Transitions) Spec() TransitionSpec { return t.spec }

// Span returns the transition into step k, for 1 <= k < steps.
func (t *Transitions) Span(k int) Span {
	return Span{Boundary: k, Start: t.seq.Boundary(k) - Frame(t.before), Frames: t.spec.Frames}
}

// BlendAt returns which steps are visible at f and how far the blend has progressed.
func (t *Transitions) BlendAt(f Frame) (Blend, error) {
	active, err := t.seq.ActiveStepAt(f)
	if err != nil {
		return Blend{}, err
	}
	solo := Blend{Outgoing: NoStep, Incoming: active.Index, Ratio: 1}
	if t.spec.Frames == 0 {
		return solo, nil
	}

	// Only the boundaries at either edge of the active window can reach f.
	for _, k := range [2]int{active.Index, active.Index + 1} {
		if k < 1 || k >= t.seq.Len() {
			continue
		}
		span := t.Span(k)
		if f >= span.Start && f < span.Start+Frame(span.Frames) {
			return Blend{
				Outgoing: k - 1,
				Incoming: k,
				Ratio:    t.curve.Evaluate(f - span.Start),
			}, nil
		}
	}
	return solo, nil
}
