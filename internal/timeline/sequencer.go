package timeline

import (
	"fmt"
	"sort"
)

// Active is the step shown at a queried frame.
type Active struct {
	Index  int    `json:"index"`
	Local  Frame  `json:"local"`
	Window Window `json:"window"`
}

// Sequencer partitions a total frame count across an ordered list of steps.
// It is immutable after construction and safe for concurrent use.
type Sequencer struct {
	bounds []Frame // len = steps+1, bounds[0] = 0, bounds[steps] = total
}

// WindowsFor splits total frames into stepCount windows that tile [0, total) exactly.
//
// Step i starts at round(i*total/stepCount), so durations differ by at most one frame
// when total is not divisible by stepCount.
func WindowsFor(stepCount, total int) ([]Window, error) {
	seq, err := NewSequencer(stepCount, total)
	if err != nil {
		return nil, err
	}
	return seq.Windows(), nil
}

// NewSequencer builds a sequencer for stepCount steps over total frames.
func NewSequencer(stepCount, total int) (*Sequencer, error) {
	if stepCount <= 0 {
		return nil, ErrEmptySequence
	}
	if total < stepCount {
		return nil, fmt.Errorf("%w: %d frames for %d steps", ErrInvalidDuration, total, stepCount)
	}

	bounds := make([]Frame, stepCount+1)
	for i := 0; i <= stepCount; i++ {
		bounds[i] = boundary(i, stepCount, total)
	}
	return &Sequencer{bounds: bounds}, nil
}

// boundary computes round(i*total/n) with round-half-up in integer arithmetic.
func boundary(i, n, total int) Frame {
	return Frame((2*i*total + n) / (2 * n))
}

// Len returns the number of steps.
func (s *Sequencer) Len() int { return len(s.bounds) - 1 }

// Total returns the total frame count.
func (s *Sequencer) Total() int { return int(s.bounds[len(s.bounds)-1]) }

// Boundary returns the first frame of step i; Boundary(Len()) is Total().
func (s *Sequencer) Boundary(i int) Frame { return s.bounds[i] }

// Window returns the window of step i.
func (s *Sequencer) Window(i int) Window {
	return Window{Start: s.bounds[i], Duration: int(s.bounds[i+1] - s.bounds[i])}
}

// Windows returns all step windows in order.
func (s *Sequencer) Windows() []Window {
	out := make([]Window, s.Len())
	for i := range out {
		out[i] = s.Window(i)
	}
	return out
}

// ActiveStepAt returns the step whose window contains f and the local frame within it.
func (s *Sequencer) ActiveStepAt(f Frame) (Active, error) {
	if err := s.check(f); err != nil {
		return Active{}, err
	}
	n := s.Len()
	i := sort.Search(n, func(j int) bool { return s.bounds[j+1] > f })
	w := s.Window(i)
	return Active{Index: i, Local: f - w.Start, Window: w}, nil
}

// StepProgress returns one fill ratio per step: completed steps are 1, the active
// step is (local+1)/duration and upcoming steps are 0.
func (s *Sequencer) StepProgress(f Frame) ([]float64, error) {
	active, err := s.ActiveStepAt(f)
	if err != nil {
		return nil, err
	}
	out := make([]float64, s.Len())
	for i := range out {
		switch {
		case i < active.Index:
			out[i] = 1
		case i == active.Index:
			out[i] = float64(active.Local+1) / float64(active.Window.Duration)
		}
	}
	return out, nil
}

func (s *Sequencer) check(f Frame) error {
	if f < 0 || int(f) >= s.Total() {
		return outOfRange(f, s.Total())
	}
	return nil
}
