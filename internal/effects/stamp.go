package effects

import (
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/steps2video/internal/scene"
)

// DebugStamp burns the frame number, active step and blend ratio into the bottom-right
// corner, as text and as a QR code, so reordered or duplicated frames are easy to spot.
type DebugStamp struct {
	Size   int
	Margin int
}

func (s *DebugStamp) Name() string { return "stamp" }

// StampText is the payload encoded for frame d.
func StampText(d scene.Descriptor) string {
	return fmt.Sprintf("frame=%d step=%d ratio=%.4f", d.Frame, d.Step.Index, d.Blend.Ratio)
}

func (s *DebugStamp) Apply(dst *image.RGBA, d scene.Descriptor) {
	text := StampText(d)
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		log.Printf("[!] Debug stamp for frame %d: %v", d.Frame, err)
		return
	}
	code := q.Image(s.Size)

	b := dst.Bounds()
	at := image.Pt(b.Max.X-s.Margin-s.Size, b.Max.Y-s.Margin-s.Size)
	draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(image.Pt(s.Size, s.Size))}, code, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	label := image.Rect(at.X-len(text)*face.Advance-2*s.Margin, at.Y, at.X-s.Margin, at.Y+face.Height+4)
	draw.Draw(dst, label, image.NewUniform(color.Black), image.Point{}, draw.Src)
	dr := &font.Drawer{Dst: dst, Src: image.NewUniform(color.RGBA{R: 255, G: 220, A: 255}), Face: face}
	dr.Dot = fixed.P(label.Min.X+s.Margin/2, label.Min.Y+2+face.Ascent)
	dr.DrawString(text)
}
