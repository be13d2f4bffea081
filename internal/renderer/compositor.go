package renderer

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/ivlev/steps2video/internal/config"
	"github.com/ivlev/steps2video/internal/effects"
	"github.com/ivlev/steps2video/internal/scene"
	"github.com/ivlev/steps2video/internal/system"
)

const progressHeight = 8

// Layout places the regions of a frame.
type Layout struct {
	Frame    image.Rectangle
	Progress image.Rectangle
	Content  image.Rectangle
	Scroller image.Rectangle
}

// NewLayout derives the regions from the frame size, padding and code column width.
// The code column is left-aligned at the padding; the scroller overlays the right edge.
func NewLayout(cfg *config.Config) Layout {
	w, h, p := cfg.Width, cfg.Height, cfg.Padding
	cw := cfg.ContentWidth()
	top := p/2 + progressHeight + p/2

	return Layout{
		Frame:    image.Rect(0, 0, w, h),
		Progress: image.Rect(p, p/2, p+cw, p/2+progressHeight),
		Content:  image.Rect(p, top, p+cw, h-p),
		Scroller: image.Rect(w-p-w/6, top, w-p, h-p),
	}
}

// Compositor rasterizes a frame descriptor: background, outgoing and incoming steps, then effects.
type Compositor struct {
	layout  Layout
	palette config.Palette
	steps   []*image.RGBA
	effects []effects.Effect
	pool    *system.FramePool
}

// NewCompositor scales every step once to fit the content region.
func NewCompositor(layout Layout, palette config.Palette, steps []image.Image, effs []effects.Effect, pool *system.FramePool) *Compositor {
	if pool == nil {
		pool = system.NewFramePool()
	}
	c := &Compositor{layout: layout, palette: palette, effects: effs, pool: pool}
	for _, s := range steps {
		c.steps = append(c.steps, fit(s, layout.Content.Size()))
	}
	return c
}

// fit scales src to fit inside size keeping its aspect ratio. Images are never enlarged
// past the region and never shrunk when they already fit.
func fit(src image.Image, size image.Point) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > size.X {
		h = h * size.X / w
		w = size.X
	}
	if h > size.Y {
		w = w * size.Y / h
		h = size.Y
	}
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	}
	return dst
}

func (c *Compositor) Layout() Layout { return c.layout }

// Render paints d into a pooled buffer. Hand the buffer back with Release when done.
func (c *Compositor) Render(d scene.Descriptor) (*image.RGBA, error) {
	if d.Blend.Incoming < 0 || d.Blend.Incoming >= len(c.steps) || d.Blend.Outgoing >= len(c.steps) {
		return nil, fmt.Errorf("frame %d references step %d/%d, have %d images",
			d.Frame, d.Blend.Outgoing, d.Blend.Incoming, len(c.steps))
	}

	img := c.pool.Get(c.layout.Frame.Size())
	effects.Fill(img, img.Bounds(), c.palette.Background, 1)

	if d.Blend.Blending() {
		c.drawStep(img, d.Blend.Outgoing, 1)
		// Outgoing pixels the incoming step does not cover fade toward the background.
		for _, r := range uncovered(c.stepRect(d.Blend.Outgoing), c.stepRect(d.Blend.Incoming)) {
			effects.Fill(img, r, c.palette.Background, d.IncomingOpacity())
		}
	}
	c.drawStep(img, d.Blend.Incoming, d.IncomingOpacity())

	for _, e := range c.effects {
		e.Apply(img, d)
	}
	return img, nil
}

// Release returns a frame buffer to the pool.
func (c *Compositor) Release(img *image.RGBA) {
	c.pool.Put(img)
}

// drawStep composites step i over dst. Drawing the outgoing step opaque, fading its uncovered
// part toward the background and drawing the incoming one at ratio r yields out*(1-r) + in*r.
func (c *Compositor) drawStep(dst *image.RGBA, i int, alpha float64) {
	if alpha <= 0 {
		return
	}
	step := c.steps[i]
	r := c.stepRect(i)
	if alpha >= 1 {
		draw.Draw(dst, r, step, image.Point{}, draw.Over)
		return
	}
	mask := image.NewUniform(color.Alpha{A: uint8(alpha*255 + 0.5)})
	draw.DrawMask(dst, r, step, image.Point{}, mask, image.Point{}, draw.Over)
}

func (c *Compositor) stepRect(i int) image.Rectangle {
	return image.Rectangle{Min: c.layout.Content.Min, Max: c.layout.Content.Min.Add(c.steps[i].Rect.Size())}
}

// uncovered returns the parts of out that lie outside in.
func uncovered(out, in image.Rectangle) []image.Rectangle {
	in = in.Intersect(out)
	if in.Empty() {
		return []image.Rectangle{out}
	}
	parts := []image.Rectangle{
		{Min: out.Min, Max: image.Pt(out.Max.X, in.Min.Y)},
		{Min: image.Pt(out.Min.X, in.Max.Y), Max: out.Max},
		{Min: image.Pt(out.Min.X, in.Min.Y), Max: image.Pt(in.Min.X, in.Max.Y)},
		{Min: image.Pt(in.Max.X, in.Min.Y), Max: image.Pt(out.Max.X, in.Max.Y)},
	}
	var rs []image.Rectangle
	for _, r := range parts {
		if !r.Empty() {
			rs = append(rs, r)
		}
	}
	return rs
}

// DefaultEffects builds the progress bar, the scroller when the configuration drives one, and
// the debug stamp when asked for.
func DefaultEffects(cfg *config.Config, layout Layout, palette config.Palette) []effects.Effect {
	effs := []effects.Effect{&effects.ProgressBar{
		Rect:  layout.Progress,
		Track: palette.Border,
		Bar:   palette.Accent,
		Gap:   6,
	}}

	if hasStagger(cfg, "blocks") {
		effs = append(effs, &effects.Scroller{
			Rect:           layout.Scroller,
			Border:         palette.Border,
			Block:          palette.Accent,
			BorderWidth:    3,
			BlockHeight:    48,
			BlockGap:       16,
			ScrollChannel:  "scroll",
			BorderChannel:  "border",
			BorderGate:     "border-visible",
			ContentChannel: "content",
			Blocks:         "blocks",
		})
	}

	if cfg.Debug {
		effs = append(effs, &effects.DebugStamp{Size: 96, Margin: 12})
	}
	return effs
}

func hasStagger(cfg *config.Config, name string) bool {
	for _, s := range cfg.Staggers {
		if s.Name == name {
			return true
		}
	}
	return false
}
