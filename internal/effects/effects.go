// Package effects paints the auxiliary UI over a composed frame. Effects read only the
// frame descriptor, so any frame can be painted in isolation.
package effects

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/ivlev/steps2video/internal/channel"
	"github.com/ivlev/steps2video/internal/scene"
)

type Effect interface {
	Name() string
	Apply(dst *image.RGBA, d scene.Descriptor)
}

// RGBA converts a theme color to an opaque image color.
func RGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Fill paints r with c at the given opacity, composited over what is already there.
func Fill(dst *image.RGBA, r image.Rectangle, c colorful.Color, alpha float64) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() || alpha <= 0 {
		return
	}
	src := image.NewUniform(RGBA(c))
	if alpha >= 1 {
		draw.Draw(dst, r, src, image.Point{}, draw.Src)
		return
	}
	mask := image.NewUniform(color.Alpha{A: uint8(alpha*255 + 0.5)})
	draw.DrawMask(dst, r, src, image.Point{}, mask, image.Point{}, draw.Over)
}

// Outline paints a border of width w just inside r.
func Outline(dst *image.RGBA, r image.Rectangle, w int, c colorful.Color, alpha float64) {
	Fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w), c, alpha)
	Fill(dst, image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y), c, alpha)
	Fill(dst, image.Rect(r.Min.X, r.Min.Y+w, r.Min.X+w, r.Max.Y-w), c, alpha)
	Fill(dst, image.Rect(r.Max.X-w, r.Min.Y+w, r.Max.X, r.Max.Y-w), c, alpha)
}

// ProgressBar shows how far the video has advanced, either as one bar or one segment per step.
type ProgressBar struct {
	Rect  image.Rectangle
	Track colorful.Color
	Bar   colorful.Color
	Gap   int
}

func (p *ProgressBar) Name() string { return "progress" }

func (p *ProgressBar) Apply(dst *image.RGBA, d scene.Descriptor) {
	if d.Progress.Mode == channel.ProgressTotal || len(d.Progress.Steps) == 0 {
		p.segment(dst, p.Rect, d.Progress.Total)
		return
	}

	n := len(d.Progress.Steps)
	width := p.Rect.Dx() - p.Gap*(n-1)
	for i, v := range d.Progress.Steps {
		x0 := p.Rect.Min.X + i*width/n + i*p.Gap
		x1 := p.Rect.Min.X + (i+1)*width/n + i*p.Gap
		p.segment(dst, image.Rect(x0, p.Rect.Min.Y, x1, p.Rect.Max.Y), v)
	}
}

func (p *ProgressBar) segment(dst *image.RGBA, r image.Rectangle, v float64) {
	Fill(dst, r, p.Track, 1)
	filled := int(float64(r.Dx())*clamp01(v) + 0.5)
	Fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+filled, r.Max.Y), p.Bar, 1)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
