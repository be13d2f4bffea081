package timeline

// Window is the half-open frame interval [Start, Start+Duration) allotted to one step.
type Window struct {
	Start    Frame `yaml:"start" json:"start"`
	Duration int   `yaml:"duration" json:"duration"`
}

// LocalFrame is an absolute frame expressed relative to a window.
type LocalFrame struct {
	Frame    Frame `json:"frame"`
	InWindow bool  `json:"in_window"`
}

// End returns the first frame after the window.
func (w Window) End() Frame {
	return w.Start + Frame(w.Duration)
}

// Contains reports whether f lies inside the window.
func (w Window) Contains(f Frame) bool {
	return f >= w.Start && f < w.End()
}

// ToLocal maps an absolute frame into the window, clamping to [0, Duration-1].
func (w Window) ToLocal(f Frame) LocalFrame {
	local := f - w.Start
	if local < 0 {
		local = 0
	}
	if last := Frame(w.Duration - 1); local > last {
		local = last
	}
	if local < 0 {
		local = 0
	}
	return LocalFrame{Frame: local, InWindow: w.Contains(f)}
}
