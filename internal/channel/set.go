package channel

import (
	"fmt"

	"github.com/ivlev/steps2video/internal/timeline"
)

// ProgressMode selects how the progress indicator fills.
type ProgressMode string

const (
	// ProgressTotal fills one bar from 0 to 1 across the whole video.
	ProgressTotal ProgressMode = "total"
	// ProgressPerStep fills one segment per step.
	ProgressPerStep ProgressMode = "per-step"
)

// Progress is the progress indicator state at one frame.
type Progress struct {
	Mode  ProgressMode `json:"mode"`
	Total float64      `json:"total"`
	Steps []float64    `json:"steps,omitempty"`
}

// Values is everything the channel set produces for one frame.
type Values struct {
	Channels map[string]float64   `json:"channels"`
	Gates    map[string]bool      `json:"gates"`
	Staggers map[string][]float64 `json:"staggers"`
	Progress Progress             `json:"progress"`
}

// Set is the immutable collection of channels evaluated each frame.
type Set struct {
	seq      *timeline.Sequencer
	channels []Channel
	gates    []Gate
	staggers []Stagger
	mode     ProgressMode
	fill     timeline.Curve
	single   bool // one-frame render, fill is always 1
}

// NewSet checks names and references and precomputes the progress curve.
func NewSet(seq *timeline.Sequencer, mode ProgressMode, channels []Channel, gates []Gate, staggers []Stagger) (*Set, error) {
	if mode == "" {
		mode = ProgressPerStep
	}
	if mode != ProgressTotal && mode != ProgressPerStep {
		return nil, fmt.Errorf("channel: unknown progress mode %q", mode)
	}

	names := make(map[string]bool)
	byChannel := make(map[string]bool)
	for _, c := range channels {
		if names[c.Name] {
			return nil, fmt.Errorf("channel: duplicate name %q", c.Name)
		}
		names[c.Name] = true
		byChannel[c.Name] = true
	}

	byGate := make(map[string]bool)
	for _, g := range gates {
		if names[g.Name] {
			return nil, fmt.Errorf("channel: duplicate name %q", g.Name)
		}
		if !byChannel[g.Channel] {
			return nil, fmt.Errorf("channel: gate %q references unknown channel %q", g.Name, g.Channel)
		}
		names[g.Name] = true
		byGate[g.Name] = true
	}

	for _, s := range staggers {
		if names[s.Name] {
			return nil, fmt.Errorf("channel: duplicate name %q", s.Name)
		}
		if s.Gate != "" && !byGate[s.Gate] {
			return nil, fmt.Errorf("channel: stagger %q references unknown gate %q", s.Name, s.Gate)
		}
		names[s.Name] = true
	}

	set := &Set{
		seq:      seq,
		channels: append([]Channel(nil), channels...),
		gates:    append([]Gate(nil), gates...),
		staggers: append([]Stagger(nil), staggers...),
		mode:     mode,
	}

	if last := timeline.Frame(seq.Total() - 1); last > 0 {
		fill, err := timeline.Ramp(0, last, 0, 1, timeline.Linear)
		if err != nil {
			return nil, err
		}
		set.fill = fill
	} else {
		set.single = true
	}
	return set, nil
}

// Channels returns the configured channels.
func (s *Set) Channels() []Channel { return append([]Channel(nil), s.channels...) }

// Gates returns the configured gates.
func (s *Set) Gates() []Gate { return append([]Gate(nil), s.gates...) }

// Staggers returns the configured staggers.
func (s *Set) Staggers() []Stagger { return append([]Stagger(nil), s.staggers...) }

// Mode returns the progress mode.
func (s *Set) Mode() ProgressMode { return s.mode }

// Evaluate computes every channel, gate, stagger and the progress indicator at f.
func (s *Set) Evaluate(f timeline.Frame) (Values, error) {
	steps, err := s.seq.StepProgress(f)
	if err != nil {
		return Values{}, err
	}

	v := Values{
		Channels: make(map[string]float64, len(s.channels)),
		Gates:    make(map[string]bool, len(s.gates)),
		Staggers: make(map[string][]float64, len(s.staggers)),
	}

	for _, c := range s.channels {
		v.Channels[c.Name] = c.Value(f)
	}
	for _, g := range s.gates {
		v.Gates[g.Name] = g.Open(v.Channels[g.Channel])
	}
	for _, st := range s.staggers {
		if st.Gate != "" && !v.Gates[st.Gate] {
			v.Staggers[st.Name] = []float64{}
			continue
		}
		v.Staggers[st.Name] = st.Values(f)
	}

	v.Progress = Progress{Mode: s.mode, Total: 1}
	if !s.single {
		v.Progress.Total = s.fill.Evaluate(f)
	}
	if s.mode == ProgressPerStep {
		v.Progress.Steps = steps
	}
	return v, nil
}
