package effects

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ivlev/steps2video/internal/scene"
)

// Scroller is the decorative side panel: a border that fades in behind a gate, a column
// of staggered blocks and a vertical scroll offset. Channel names refer to the channel set.
type Scroller struct {
	Rect image.Rectangle

	Border      colorful.Color
	Block       colorful.Color
	BorderWidth int
	BlockHeight int
	BlockGap    int

	ScrollChannel  string
	BorderChannel  string
	BorderGate     string
	ContentChannel string
	Blocks         string
}

func (s *Scroller) Name() string { return "scroller" }

func (s *Scroller) Apply(dst *image.RGBA, d scene.Descriptor) {
	if s.BorderGate != "" && !d.Gates[s.BorderGate] {
		return
	}
	Outline(dst, s.Rect, s.BorderWidth, s.Border, d.Channels[s.BorderChannel])

	inner := s.Rect.Inset(s.BorderWidth * 2)
	content := 1.0
	if s.ContentChannel != "" {
		content = d.Channels[s.ContentChannel]
	}
	scroll := int(d.Channels[s.ScrollChannel] + 0.5)

	clip := dst.SubImage(inner).(*image.RGBA)
	pitch := s.BlockHeight + s.BlockGap
	for i, v := range d.Staggers[s.Blocks] {
		y := inner.Min.Y + i*pitch - scroll
		r := image.Rect(inner.Min.X, y, inner.Max.X, y+s.BlockHeight)
		Fill(clip, r, s.Block, v*content)
	}
}
