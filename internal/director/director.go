package director

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ivlev/steps2video/internal/renderer"
	"github.com/ivlev/steps2video/internal/scene"
	"github.com/ivlev/steps2video/internal/timeline"
)

// Director turns a composer's static configuration into a Plan.
type Director struct {
	composer *scene.Composer
}

func NewDirector(c *scene.Composer) *Director {
	return &Director{composer: c}
}

// NewRunID returns a fresh identifier for a render run.
func NewRunID() string {
	return uuid.NewString()
}

// GeneratePlan describes every window, transition, channel, gate and stagger.
func (d *Director) GeneratePlan(source, runID string) *Plan {
	c := d.composer
	seq := c.Sequencer()
	tr := c.Transitions()
	labels := c.Labels()
	fps := float64(c.FPS())

	plan := &Plan{
		Version:     PlanVersion,
		RunID:       runID,
		Source:      source,
		FPS:         c.FPS(),
		TotalFrames: c.Frames(),
		Duration:    float64(c.Frames()) / fps,
		Transition:  tr.Spec(),
	}

	for i, w := range seq.Windows() {
		step := StepPlan{
			Index:    i,
			Label:    labels[i],
			Start:    w.Start,
			Duration: w.Duration,
			Time:     float64(w.Start) / fps,
		}
		if i > 0 && tr.Spec().Frames > 0 {
			span := tr.Span(i)
			step.In = &span
			step.Blend = renderer.BlendExpression(tr, i)
		}
		plan.Steps = append(plan.Steps, step)
	}

	set := c.Channels()
	for _, ch := range set.Channels() {
		in, out := ch.Curve.Input(), ch.Curve.Output()
		kfs := make([]Keyframe, len(in))
		for i := range in {
			kfs[i] = Keyframe{Frame: in[i], Value: out[i]}
		}
		plan.Channels = append(plan.Channels, ChannelPlan{
			Name:          ch.Name,
			Slot:          string(ch.Slot),
			Start:         ch.Start,
			Keyframes:     kfs,
			Extrapolation: ch.Curve.Extrapolation(),
			Easing:        ch.Curve.Easing(),
			Expression:    renderer.CurveExpression(ch.Curve, ch.Start, renderer.FrameVar),
		})
	}
	for _, g := range set.Gates() {
		plan.Gates = append(plan.Gates, GatePlan{Name: g.Name, Channel: g.Channel, Threshold: g.Threshold})
	}
	for _, s := range set.Staggers() {
		delays := make([]int, s.Count)
		for i := range delays {
			delays[i] = s.Delay(i) * s.Spacing
		}
		plan.Staggers = append(plan.Staggers, StaggerPlan{
			Name: s.Name, Count: s.Count, Cap: s.Cap, Spacing: s.Spacing, Gate: s.Gate, Delays: delays,
		})
	}
	return plan
}

// Check verifies that a plan read back from disk still tiles its frame range.
func (p *Plan) Check() error {
	if p.Version != PlanVersion {
		return fmt.Errorf("plan version %q, expected %q", p.Version, PlanVersion)
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("plan: %w", timeline.ErrEmptySequence)
	}
	var next timeline.Frame
	for _, s := range p.Steps {
		if s.Start != next || s.Duration <= 0 {
			return fmt.Errorf("plan: step %d window [%d, +%d) does not follow frame %d", s.Index, s.Start, s.Duration, next)
		}
		next = s.Start + timeline.Frame(s.Duration)
	}
	if int(next) != p.TotalFrames {
		return fmt.Errorf("plan: windows end at %d, total is %d", next, p.TotalFrames)
	}
	return nil
}
