package director

import "github.com/ivlev/steps2video/internal/timeline"

// PlanVersion is bumped whenever the plan layout changes.
const PlanVersion = "2.0"

// Plan is the static timeline of a render, exported for inspection and for external
// tooling that rebuilds the video from expressions.
type Plan struct {
	Version     string                  `yaml:"version"`
	RunID       string                  `yaml:"run_id"`
	Source      string                  `yaml:"source,omitempty"`
	FPS         int                     `yaml:"fps"`
	TotalFrames int                     `yaml:"total_frames"`
	Duration    float64                 `yaml:"duration"` // seconds
	Transition  timeline.TransitionSpec `yaml:"transition"`
	Steps       []StepPlan              `yaml:"steps"`
	Channels    []ChannelPlan           `yaml:"channels,omitempty"`
	Gates       []GatePlan              `yaml:"gates,omitempty"`
	Staggers    []StaggerPlan           `yaml:"staggers,omitempty"`
}

// StepPlan is one step window and the transition that reveals it.
type StepPlan struct {
	Index    int            `yaml:"index"`
	Label    string         `yaml:"label"`
	Start    timeline.Frame `yaml:"start"`
	Duration int            `yaml:"duration"`
	Time     float64        `yaml:"time"` // start in seconds
	In       *timeline.Span `yaml:"in,omitempty"`
	Blend    string         `yaml:"blend,omitempty"` // ffmpeg expression of the incoming ratio
}

// Keyframe is one curve point in local frames.
type Keyframe struct {
	Frame float64 `yaml:"frame"`
	Value float64 `yaml:"value"`
}

type ChannelPlan struct {
	Name          string                 `yaml:"name"`
	Slot          string                 `yaml:"slot"`
	Start         timeline.Frame         `yaml:"start"`
	Keyframes     []Keyframe             `yaml:"keyframes"`
	Extrapolation timeline.Extrapolation `yaml:"extrapolation"`
	Easing        timeline.Easing        `yaml:"easing"`
	Expression    string                 `yaml:"expression"`
}

type GatePlan struct {
	Name      string  `yaml:"name"`
	Channel   string  `yaml:"channel"`
	Threshold float64 `yaml:"threshold"`
}

type StaggerPlan struct {
	Name    string `yaml:"name"`
	Count   int    `yaml:"count"`
	Cap     int    `yaml:"cap"`
	Spacing int    `yaml:"spacing"`
	Gate    string `yaml:"gate,omitempty"`
	Delays  []int  `yaml:"delays"` // per item, in frames
}
