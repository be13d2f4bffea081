package config

import (
	"sort"

	"github.com/ivlev/steps2video/internal/channel"
	"github.com/ivlev/steps2video/internal/timeline"
)

var rightClamp = timeline.Extrapolation{Left: timeline.Extend, Right: timeline.Clamp}

// chrome is the scroller decoration: border and content fade in, the background scrolls down
// and back, and fifteen blocks stagger in once the content is visible.
func chrome() ([]ChannelConfig, []GateConfig, []StaggerConfig) {
	channels := []ChannelConfig{
		{Name: "scroll", Slot: channel.Offset, Curve: CurveConfig{
			Input: []float64{220, 260, 300}, Output: []float64{0, 1000, 0}, Extrapolate: timeline.ClampBoth,
		}},
		{Name: "border", Slot: channel.Opacity, Curve: CurveConfig{
			Input: []float64{0, 30, 40}, Output: []float64{0, 0, 1}, Extrapolate: rightClamp,
		}},
		{Name: "content", Slot: channel.Opacity, Curve: CurveConfig{
			Input: []float64{0, 80, 90}, Output: []float64{0, 0, 1}, Extrapolate: rightClamp,
		}},
	}
	gates := []GateConfig{
		{Name: "border-visible", Channel: "border"},
		{Name: "content-visible", Channel: "content"},
	}
	staggers := []StaggerConfig{
		{Name: "blocks", Count: 15, Cap: 8, Spacing: 3, Gate: "content-visible", Curve: CurveConfig{
			Input: []float64{80, 95}, Output: []float64{0, 1}, Extrapolate: timeline.ClampBoth,
		}},
	}
	return channels, gates, staggers
}

func withChrome(c *Config) *Config {
	c.Channels, c.Gates, c.Staggers = chrome()
	return c
}

// Presets are named starting points. Each call returns a fresh config.
var Presets = map[string]func() *Config{
	"default": func() *Config {
		c := withChrome(DefaultConfig())
		c.Theme.Name = "github-light"
		return c
	},
	"dark": func() *Config {
		c := withChrome(DefaultConfig())
		c.Theme.Name = "github-dark"
		return c
	},
	"smooth": func() *Config {
		c := withChrome(DefaultConfig())
		c.Theme.Name = "github-light"
		c.Transition = timeline.TransitionSpec{Frames: 20, Anchor: timeline.Centered, Easing: timeline.EaseInOutCubic}
		return c
	},
	"minimal": func() *Config {
		c := DefaultConfig()
		c.Theme.Name = "github-light"
		c.Transition.Frames = 0
		c.Progress = channel.ProgressTotal
		return c
	},
	"vertical": func() *Config {
		c := withChrome(DefaultConfig())
		c.Theme.Name = "github-dark"
		c.Width, c.Height = 1080, 1920
		return c
	},
}

// GetPreset returns a fresh copy of a preset, or nil if it does not exist.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p()
}

// ListPresets returns the preset names, sorted.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
