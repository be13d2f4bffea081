package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/steps2video/internal/channel"
	"github.com/ivlev/steps2video/internal/scene"
	"github.com/ivlev/steps2video/internal/timeline"
)

const (
	DefaultFPS        = 30
	DefaultWidth      = 1920
	DefaultHeight     = 1080
	DefaultPadding    = 40
	DefaultTransition = 30
	DefaultDPI        = 150
)

// Config is the on-disk description of one render.
type Config struct {
	FPS             int     `yaml:"fps"`
	DurationFrames  int     `yaml:"duration_frames,omitempty"`
	DurationSeconds float64 `yaml:"duration_seconds,omitempty"`
	StepFrames      int     `yaml:"step_frames,omitempty"`

	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	CodeWidth int `yaml:"code_width,omitempty"` // 0 = full width
	Padding   int `yaml:"padding"`

	Transition timeline.TransitionSpec `yaml:"transition"`
	Progress   channel.ProgressMode    `yaml:"progress,omitempty"`
	Channels   []ChannelConfig         `yaml:"channels,omitempty"`
	Gates      []GateConfig            `yaml:"gates,omitempty"`
	Staggers   []StaggerConfig         `yaml:"staggers,omitempty"`

	Steps StepsConfig `yaml:"steps"`
	Theme ThemeConfig `yaml:"theme"`

	Audio   string `yaml:"audio,omitempty"`
	Output  string `yaml:"output,omitempty"`
	Workers int    `yaml:"workers,omitempty"`
	Debug   bool   `yaml:"debug,omitempty"`
}

// StepsConfig locates the step artifacts: a PDF, a directory of images or a directory of code files.
type StepsConfig struct {
	Path string `yaml:"path"`
	DPI  int    `yaml:"dpi,omitempty"`
}

// CurveConfig is a keyframe curve as written in YAML.
type CurveConfig struct {
	Input       []float64              `yaml:"input"`
	Output      []float64              `yaml:"output"`
	Extrapolate timeline.Extrapolation `yaml:"extrapolate,omitempty"`
	Easing      timeline.Easing        `yaml:"easing,omitempty"`
}

type ChannelConfig struct {
	Name  string       `yaml:"name"`
	Slot  channel.Slot `yaml:"slot"`
	Start int          `yaml:"start,omitempty"`
	Curve CurveConfig  `yaml:"curve"`
}

type GateConfig struct {
	Name      string  `yaml:"name"`
	Channel   string  `yaml:"channel"`
	Threshold float64 `yaml:"threshold,omitempty"`
}

type StaggerConfig struct {
	Name    string      `yaml:"name"`
	Count   int         `yaml:"count"`
	Cap     int         `yaml:"cap"`
	Spacing int         `yaml:"spacing"`
	Gate    string      `yaml:"gate,omitempty"`
	Curve   CurveConfig `yaml:"curve"`
}

// DefaultConfig holds the implicit defaults. Steps and theme are left empty on purpose:
// a render without them is refused by Validate.
func DefaultConfig() *Config {
	return &Config{
		FPS:     DefaultFPS,
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		Padding: DefaultPadding,
		Transition: timeline.TransitionSpec{
			Frames: DefaultTransition,
			Anchor: timeline.Leading,
			Easing: timeline.Linear,
		},
		Progress: channel.ProgressPerStep,
		Steps:    StepsConfig{DPI: DefaultDPI},
	}
}

// Load reads a YAML file over DefaultConfig.
func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver reads a YAML file over base. Lists in the file replace the base lists.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks that everything a render needs is present.
func (c *Config) Validate() error {
	if c.Steps.Path == "" {
		return fmt.Errorf("%w: steps.path is not set", timeline.ErrMissingConfiguration)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", timeline.ErrMissingConfiguration, c.FPS)
	}
	if c.DurationFrames <= 0 && c.DurationSeconds <= 0 && c.StepFrames <= 0 {
		return fmt.Errorf("%w: one of duration_frames, duration_seconds or step_frames is required",
			timeline.ErrMissingConfiguration)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: frame size %dx%d", timeline.ErrMissingConfiguration, c.Width, c.Height)
	}
	if _, err := c.Theme.Palette(); err != nil {
		return err
	}
	return nil
}

// TotalFrames resolves the render length for stepCount steps. An explicit frame count wins
// over seconds, and seconds win over a per-step length.
func (c *Config) TotalFrames(stepCount int) (int, error) {
	switch {
	case c.DurationFrames > 0:
		return c.DurationFrames, nil
	case c.DurationSeconds > 0:
		if c.FPS <= 0 {
			return 0, fmt.Errorf("%w: fps must be positive to convert seconds", timeline.ErrMissingConfiguration)
		}
		return int(math.Round(c.DurationSeconds * float64(c.FPS))), nil
	case c.StepFrames > 0:
		return c.StepFrames * stepCount, nil
	}
	return 0, fmt.Errorf("%w: render length is not set", timeline.ErrMissingConfiguration)
}

// ContentWidth is the width of the code column.
func (c *Config) ContentWidth() int {
	full := c.Width - 2*c.Padding
	if c.CodeWidth <= 0 || c.CodeWidth > full {
		return full
	}
	return c.CodeWidth
}

// Build validates the configuration and turns it into immutable scene settings for the
// given step labels.
func (c *Config) Build(labels []string) (scene.Settings, error) {
	if err := c.Validate(); err != nil {
		return scene.Settings{}, err
	}
	if len(labels) == 0 {
		return scene.Settings{}, fmt.Errorf("config: %w", timeline.ErrEmptySequence)
	}
	total, err := c.TotalFrames(len(labels))
	if err != nil {
		return scene.Settings{}, err
	}

	s := scene.Settings{
		Labels:      append([]string(nil), labels...),
		TotalFrames: total,
		FPS:         c.FPS,
		Transition:  c.Transition,
		Progress:    c.Progress,
	}

	for _, cc := range c.Channels {
		curve, err := cc.Curve.Build()
		if err != nil {
			return scene.Settings{}, fmt.Errorf("channel %q: %w", cc.Name, err)
		}
		ch, err := channel.New(cc.Name, cc.Slot, timeline.Frame(cc.Start), curve)
		if err != nil {
			return scene.Settings{}, err
		}
		s.Channels = append(s.Channels, ch)
	}
	for _, gc := range c.Gates {
		s.Gates = append(s.Gates, channel.Gate{Name: gc.Name, Channel: gc.Channel, Threshold: gc.Threshold})
	}
	for _, sc := range c.Staggers {
		curve, err := sc.Curve.Build()
		if err != nil {
			return scene.Settings{}, fmt.Errorf("stagger %q: %w", sc.Name, err)
		}
		st, err := channel.NewStagger(sc.Name, sc.Count, sc.Cap, sc.Spacing, sc.Gate, curve)
		if err != nil {
			return scene.Settings{}, err
		}
		s.Staggers = append(s.Staggers, st)
	}
	return s, nil
}

// Build validates the keyframes.
func (cc CurveConfig) Build() (timeline.Curve, error) {
	return timeline.NewCurve(cc.Input, cc.Output, cc.Extrapolate, cc.Easing)
}
