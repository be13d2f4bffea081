package renderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/steps2video/internal/config"
	"github.com/ivlev/steps2video/internal/effects"
	"github.com/ivlev/steps2video/internal/scene"
	"github.com/ivlev/steps2video/internal/system"
	"github.com/ivlev/steps2video/internal/timeline"
)

func solid(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func testLayout() Layout {
	return Layout{
		Frame:   image.Rect(0, 0, 64, 48),
		Content: image.Rect(8, 8, 56, 40),
	}
}

var testPalette = config.Palette{Background: colorful.Color{R: 1, G: 1, B: 1}}

func TestNewLayout(t *testing.T) {
	cfg := config.DefaultConfig()
	l := NewLayout(cfg)

	assert.Equal(t, image.Rect(0, 0, 1920, 1080), l.Frame)
	assert.Equal(t, 40, l.Content.Min.X)
	assert.Equal(t, 1880, l.Content.Max.X)
	assert.True(t, l.Progress.Max.Y <= l.Content.Min.Y)
	assert.True(t, l.Scroller.In(l.Frame))

	cfg.CodeWidth = 800
	assert.Equal(t, 840, NewLayout(cfg).Content.Max.X)
}

func TestFitKeepsAspect(t *testing.T) {
	big := fit(solid(200, 100, color.RGBA{A: 255}), image.Pt(100, 100))
	assert.Equal(t, image.Pt(100, 50), big.Rect.Size())

	tall := fit(solid(50, 400, color.RGBA{A: 255}), image.Pt(100, 100))
	assert.Equal(t, image.Pt(12, 100), tall.Rect.Size())

	small := fit(solid(10, 10, color.RGBA{A: 255}), image.Pt(100, 100))
	assert.Equal(t, image.Pt(10, 10), small.Rect.Size())
}

func TestRenderBlendsSteps(t *testing.T) {
	steps := []image.Image{
		solid(48, 32, color.RGBA{R: 255, A: 255}),
		solid(48, 32, color.RGBA{B: 255, A: 255}),
	}
	c := NewCompositor(testLayout(), testPalette, steps, nil, system.NewFramePool())

	img, err := c.Render(scene.Descriptor{Blend: timeline.Blend{Outgoing: timeline.NoStep, Incoming: 0, Ratio: 1}})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(2, 2), "background")
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(20, 20))
	c.Release(img)

	img, err = c.Render(scene.Descriptor{Blend: timeline.Blend{Outgoing: 0, Incoming: 1, Ratio: 0.5}})
	require.NoError(t, err)
	px := img.RGBAAt(20, 20)
	assert.InDelta(t, 127, int(px.R), 1)
	assert.InDelta(t, 128, int(px.B), 1)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(2, 2), "background repainted")
	c.Release(img)

	_, err = c.Render(scene.Descriptor{Blend: timeline.Blend{Outgoing: timeline.NoStep, Incoming: 2, Ratio: 1}})
	assert.Error(t, err)
}

func TestRenderFadesUncoveredOutgoing(t *testing.T) {
	steps := []image.Image{
		solid(48, 32, color.RGBA{R: 255, A: 255}),
		solid(16, 16, color.RGBA{B: 255, A: 255}),
	}
	c := NewCompositor(testLayout(), testPalette, steps, nil, nil)

	img, err := c.Render(scene.Descriptor{Blend: timeline.Blend{Outgoing: 0, Incoming: 1, Ratio: 0.5}})
	require.NoError(t, err)
	defer c.Release(img)

	// Under both steps: half red, half blue.
	px := img.RGBAAt(12, 12)
	assert.InDelta(t, 127, int(px.R), 1)
	assert.InDelta(t, 128, int(px.B), 1)

	// Only the outgoing step was here: half red, half white background.
	for _, p := range []image.Point{{40, 12}, {12, 36}, {40, 36}} {
		px := img.RGBAAt(p.X, p.Y)
		assert.Equal(t, uint8(255), px.R, "at %v", p)
		assert.InDelta(t, 128, int(px.G), 1, "at %v", p)
		assert.InDelta(t, 128, int(px.B), 1, "at %v", p)
	}
}

func TestUncovered(t *testing.T) {
	out := image.Rect(0, 0, 10, 10)
	assert.Equal(t, []image.Rectangle{
		image.Rect(0, 4, 10, 10),
		image.Rect(4, 0, 10, 4),
	}, uncovered(out, image.Rect(0, 0, 4, 4)))

	assert.Empty(t, uncovered(out, image.Rect(0, 0, 12, 12)))
	assert.Equal(t, []image.Rectangle{out}, uncovered(out, image.Rect(20, 20, 30, 30)))
	assert.Len(t, uncovered(out, image.Rect(3, 3, 6, 6)), 4)
}

type countingEffect struct{ calls int }

func (e *countingEffect) Name() string { return "count" }

func (e *countingEffect) Apply(dst *image.RGBA, d scene.Descriptor) { e.calls++ }

func TestRenderAppliesEffects(t *testing.T) {
	e := &countingEffect{}
	c := NewCompositor(testLayout(), testPalette, []image.Image{solid(4, 4, color.RGBA{A: 255})}, []effects.Effect{e}, nil)

	for i := 0; i < 3; i++ {
		img, err := c.Render(scene.Descriptor{Blend: timeline.Blend{Outgoing: timeline.NoStep, Ratio: 1}})
		require.NoError(t, err)
		c.Release(img)
	}
	assert.Equal(t, 3, e.calls)
}

func TestDefaultEffects(t *testing.T) {
	cfg := config.GetPreset("default")
	cfg.Debug = true
	names := func(effs []effects.Effect) []string {
		var out []string
		for _, e := range effs {
			out = append(out, e.Name())
		}
		return out
	}

	assert.Equal(t, []string{"progress", "scroller", "stamp"}, names(DefaultEffects(cfg, NewLayout(cfg), testPalette)))

	minimal := config.GetPreset("minimal")
	assert.Equal(t, []string{"progress"}, names(DefaultEffects(minimal, NewLayout(minimal), testPalette)))
}
