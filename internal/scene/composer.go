// Package scene assembles the per-frame render descriptor from the step sequencer,
// the transition controller and the channel set.
package scene

import (
	"fmt"

	"github.com/ivlev/steps2video/internal/channel"
	"github.com/ivlev/steps2video/internal/timeline"
)

// Settings is the static configuration of one render. It is fixed before the first
// frame is composed and never changes afterwards.
type Settings struct {
	Labels      []string // one per step, in order
	TotalFrames int
	FPS         int
	Transition  timeline.TransitionSpec
	Progress    channel.ProgressMode
	Channels    []channel.Channel
	Gates       []channel.Gate
	Staggers    []channel.Stagger
}

// Composer turns a frame number into a Descriptor. It keeps no per-frame state and is
// safe for concurrent use.
type Composer struct {
	labels      []string
	fps         int
	seq         *timeline.Sequencer
	transitions *timeline.Transitions
	set         *channel.Set
}

// NewComposer builds the sequencer, transitions and channel set, failing on the first
// invalid piece of configuration.
func NewComposer(s Settings) (*Composer, error) {
	if len(s.Labels) == 0 {
		return nil, fmt.Errorf("scene: %w", timeline.ErrEmptySequence)
	}
	if s.FPS <= 0 {
		return nil, fmt.Errorf("%w: fps must be positive, got %d", timeline.ErrMissingConfiguration, s.FPS)
	}

	seq, err := timeline.NewSequencer(len(s.Labels), s.TotalFrames)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	tr, err := timeline.NewTransitions(seq, s.Transition)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	set, err := channel.NewSet(seq, s.Progress, s.Channels, s.Gates, s.Staggers)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}

	return &Composer{
		labels:      append([]string(nil), s.Labels...),
		fps:         s.FPS,
		seq:         seq,
		transitions: tr,
		set:         set,
	}, nil
}

// ComposeFrame computes the descriptor for frame f. Identical input always yields an
// identical descriptor, in any call order.
func (c *Composer) ComposeFrame(f timeline.Frame) (Descriptor, error) {
	active, err := c.seq.ActiveStepAt(f)
	if err != nil {
		return Descriptor{}, err
	}
	blend, err := c.transitions.BlendAt(f)
	if err != nil {
		return Descriptor{}, err
	}
	values, err := c.set.Evaluate(f)
	if err != nil {
		return Descriptor{}, err
	}

	d := Descriptor{
		Frame: f,
		Time:  float64(f) / float64(c.fps),
		Step: StepState{
			Index:  active.Index,
			Label:  c.labels[active.Index],
			Local:  active.Local,
			Window: active.Window,
		},
		Blend:         blend,
		IncomingLabel: c.labels[blend.Incoming],
		Channels:      values.Channels,
		Gates:         values.Gates,
		Staggers:      values.Staggers,
		Progress:      values.Progress,
	}
	if blend.Blending() {
		d.OutgoingLabel = c.labels[blend.Outgoing]
	}
	return d, nil
}

// Frames returns the total frame count.
func (c *Composer) Frames() int { return c.seq.Total() }

// FPS returns the frame rate.
func (c *Composer) FPS() int { return c.fps }

// Labels returns the step labels in order.
func (c *Composer) Labels() []string { return append([]string(nil), c.labels...) }

// Sequencer exposes the step sequencer.
func (c *Composer) Sequencer() *timeline.Sequencer { return c.seq }

// Transitions exposes the transition controller.
func (c *Composer) Transitions() *timeline.Transitions { return c.transitions }

// Channels exposes the channel set.
func (c *Composer) Channels() *channel.Set { return c.set }
