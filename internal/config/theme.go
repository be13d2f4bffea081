package config

import (
	"fmt"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ivlev/steps2video/internal/timeline"
)

// ThemeConfig names a built-in theme and/or overrides its colors with hex values.
type ThemeConfig struct {
	Name       string `yaml:"name,omitempty"`
	Background string `yaml:"background,omitempty"`
	Foreground string `yaml:"foreground,omitempty"`
	Accent     string `yaml:"accent,omitempty"`
	Border     string `yaml:"border,omitempty"`
}

// Palette is a resolved theme.
type Palette struct {
	Background colorful.Color
	Foreground colorful.Color
	Accent     colorful.Color
	Border     colorful.Color
}

// Themes are the built-in color sets.
var Themes = map[string]ThemeConfig{
	"github-light": {Background: "#ffffff", Foreground: "#24292f", Accent: "#0969da", Border: "#d0d7de"},
	"github-dark":  {Background: "#0d1117", Foreground: "#c9d1d9", Accent: "#58a6ff", Border: "#30363d"},
	"dracula":      {Background: "#282a36", Foreground: "#f8f8f2", Accent: "#bd93f9", Border: "#44475a"},
	"solarized":    {Background: "#fdf6e3", Foreground: "#657b83", Accent: "#268bd2", Border: "#eee8d5"},
}

// ThemeNames returns the built-in theme names, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(Themes))
	for n := range Themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Palette resolves the named theme, applies overrides and parses every color.
// A missing color is a configuration error, not a silent default.
func (t ThemeConfig) Palette() (Palette, error) {
	resolved := ThemeConfig{}
	if t.Name != "" {
		base, ok := Themes[t.Name]
		if !ok {
			return Palette{}, fmt.Errorf("config: unknown theme %q", t.Name)
		}
		resolved = base
	}
	if t.Background != "" {
		resolved.Background = t.Background
	}
	if t.Foreground != "" {
		resolved.Foreground = t.Foreground
	}
	if t.Accent != "" {
		resolved.Accent = t.Accent
	}
	if t.Border != "" {
		resolved.Border = t.Border
	}

	var p Palette
	fields := []struct {
		name string
		hex  string
		dst  *colorful.Color
	}{
		{"background", resolved.Background, &p.Background},
		{"foreground", resolved.Foreground, &p.Foreground},
		{"accent", resolved.Accent, &p.Accent},
		{"border", resolved.Border, &p.Border},
	}
	for _, f := range fields {
		if f.hex == "" {
			return Palette{}, fmt.Errorf("%w: theme color %s is not defined", timeline.ErrMissingConfiguration, f.name)
		}
		c, err := colorful.Hex(f.hex)
		if err != nil {
			return Palette{}, fmt.Errorf("config: theme %s: %w", f.name, err)
		}
		*f.dst = c
	}
	return p, nil
}
