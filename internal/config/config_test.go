package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/steps2video/internal/channel"
	"github.com/ivlev/steps2video/internal/scene"
	"github.com/ivlev/steps2video/internal/timeline"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30, cfg.FPS)
	assert.Equal(t, 1920, cfg.Width)
	assert.Equal(t, 1080, cfg.Height)
	assert.Equal(t, 30, cfg.Transition.Frames)
	assert.Equal(t, timeline.Leading, cfg.Transition.Anchor)
	assert.Equal(t, channel.ProgressPerStep, cfg.Progress)
	assert.Equal(t, cfg.Width-2*cfg.Padding, cfg.ContentWidth())
}

func TestValidateFailsFast(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no steps", func(c *Config) { c.Steps.Path = "" }},
		{"no theme", func(c *Config) { c.Theme = ThemeConfig{} }},
		{"partial theme", func(c *Config) { c.Theme = ThemeConfig{Background: "#000000"} }},
		{"no fps", func(c *Config) { c.FPS = 0 }},
		{"no duration", func(c *Config) { c.StepFrames = 0 }},
		{"no size", func(c *Config) { c.Width = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetPreset("default")
			cfg.Steps.Path = "steps"
			cfg.StepFrames = 90
			require.NoError(t, cfg.Validate())

			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), timeline.ErrMissingConfiguration)
		})
	}
}

func TestThemePalette(t *testing.T) {
	p, err := ThemeConfig{Name: "github-dark", Accent: "#ff0000"}.Palette()
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", p.Accent.Hex())
	assert.Equal(t, "#0d1117", p.Background.Hex())

	_, err = ThemeConfig{Name: "nope"}.Palette()
	assert.Error(t, err)

	_, err = ThemeConfig{Name: "github-light", Border: "not-a-color"}.Palette()
	assert.Error(t, err)

	for _, name := range ThemeNames() {
		_, err := ThemeConfig{Name: name}.Palette()
		assert.NoError(t, err, name)
	}
}

func TestTotalFrames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StepFrames = 100
	n, err := cfg.TotalFrames(4)
	require.NoError(t, err)
	assert.Equal(t, 400, n)

	cfg.DurationSeconds = 10.5
	n, err = cfg.TotalFrames(4)
	require.NoError(t, err)
	assert.Equal(t, 315, n)

	cfg.DurationFrames = 120
	n, err = cfg.TotalFrames(4)
	require.NoError(t, err)
	assert.Equal(t, 120, n)

	_, err = DefaultConfig().TotalFrames(4)
	assert.ErrorIs(t, err, timeline.ErrMissingConfiguration)
}

func TestLoadOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.yaml")
	data := `
steps:
  path: ./steps
duration_seconds: 12
theme:
  name: github-light
  accent: "#112233"
transition:
  frames: 20
  anchor: centered
  easing: ease-in-out-cubic
channels:
  - name: fade
    slot: opacity
    start: 10
    curve:
      input: [0, 10]
      output: [0, 1]
      extrapolate: {left: clamp, right: clamp}
gates:
  - name: fade-visible
    channel: fade
    threshold: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./steps", cfg.Steps.Path)
	assert.Equal(t, DefaultDPI, cfg.Steps.DPI)
	assert.Equal(t, 30, cfg.FPS)
	assert.Equal(t, timeline.Centered, cfg.Transition.Anchor)
	require.Len(t, cfg.Channels, 1)
	assert.Equal(t, channel.Opacity, cfg.Channels[0].Slot)
	assert.Equal(t, timeline.Clamp, cfg.Channels[0].Curve.Extrapolate.Left)

	s, err := cfg.Build([]string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, 360, s.TotalFrames)
	require.Len(t, s.Channels, 1)
	assert.Equal(t, 0.5, s.Channels[0].Value(15))
	assert.Equal(t, "fade-visible", s.Gates[0].Name)
}

func TestLoadOverPresetReplacesLists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.yaml")
	require.NoError(t, os.WriteFile(path, []byte("channels: []\ngates: []\nstaggers: []\n"), 0644))

	cfg, err := LoadOver(GetPreset("default"), path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Channels)
	assert.Empty(t, cfg.Gates)
	assert.Empty(t, cfg.Staggers)
	assert.Equal(t, "github-light", cfg.Theme.Name)
}

func TestSaveLoadKeepsConfig(t *testing.T) {
	cfg := GetPreset("smooth")
	cfg.Steps.Path = "deck.pdf"
	cfg.DurationFrames = 600

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestBuildRejectsBadChannels(t *testing.T) {
	cfg := GetPreset("default")
	cfg.Steps.Path = "steps"
	cfg.StepFrames = 100
	cfg.Channels[1].Curve.Output = []float64{0, 0, 9}

	_, err := cfg.Build([]string{"a"})
	assert.ErrorIs(t, err, timeline.ErrInvalidCurve)

	cfg = GetPreset("default")
	cfg.Steps.Path = "steps"
	cfg.StepFrames = 100
	_, err = cfg.Build(nil)
	assert.ErrorIs(t, err, timeline.ErrEmptySequence)
}

func TestBuildRejectsUnclampedOpacity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.yaml")
	data := `
steps:
  path: ./steps
duration_frames: 120
theme:
  name: github-light
channels:
  - name: border
    slot: opacity
    curve:
      input: [0, 30, 40]
      output: [0, 0, 1]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	_, err = cfg.Build([]string{"a", "b"})
	assert.ErrorIs(t, err, timeline.ErrInvalidCurve)

	cfg.Channels[0].Curve.Extrapolate = timeline.Extrapolation{Right: timeline.Clamp}
	s, err := cfg.Build([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Channels[0].Value(100))
}

func TestPresets(t *testing.T) {
	assert.Equal(t, []string{"dark", "default", "minimal", "smooth", "vertical"}, ListPresets())
	assert.Nil(t, GetPreset("nonexistent"))

	// Presets hand out fresh copies.
	a := GetPreset("default")
	a.Channels[0].Name = "mutated"
	assert.Equal(t, "scroll", GetPreset("default").Channels[0].Name)

	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			cfg.Steps.Path = "steps"
			cfg.DurationFrames = 1200
			s, err := cfg.Build([]string{"one", "two", "three", "four"})
			require.NoError(t, err)

			_, err = scene.NewComposer(s)
			assert.NoError(t, err)
		})
	}
}

func TestDefaultPresetChrome(t *testing.T) {
	cfg := GetPreset("default")
	cfg.Steps.Path = "steps"
	cfg.DurationFrames = 1200
	s, err := cfg.Build([]string{"a", "b", "c", "d"})
	require.NoError(t, err)
	c, err := scene.NewComposer(s)
	require.NoError(t, err)

	d, err := c.ComposeFrame(30)
	require.NoError(t, err)
	assert.False(t, d.Gates["border-visible"])

	d, err = c.ComposeFrame(35)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, d.Channels["border"], 1e-12)
	assert.True(t, d.Gates["border-visible"])
	assert.False(t, d.Gates["content-visible"])
	assert.Empty(t, d.Staggers["blocks"])

	d, err = c.ComposeFrame(260)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, d.Channels["scroll"])
	assert.Len(t, d.Staggers["blocks"], 15)

	d, err = c.ComposeFrame(1000)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d.Channels["scroll"])
	assert.Equal(t, 1.0, d.Channels["content"])
}
