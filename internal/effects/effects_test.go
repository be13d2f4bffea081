package effects

import (
	"image"
	"image/color"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"

	"github.com/ivlev/steps2video/internal/channel"
	"github.com/ivlev/steps2video/internal/scene"
)

var (
	white = colorful.Color{R: 1, G: 1, B: 1}
	black = colorful.Color{}
	red   = colorful.Color{R: 1}
)

func canvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	Fill(img, img.Bounds(), white, 1)
	return img
}

func TestFillBlends(t *testing.T) {
	img := canvas(4, 4)
	Fill(img, image.Rect(0, 0, 2, 4), black, 0.5)

	assert.InDelta(t, 128, int(img.RGBAAt(0, 0).R), 1)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(3, 0))

	Fill(img, image.Rect(2, 0, 4, 4), black, 0)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(3, 0))

	// Out-of-bounds rectangles are clipped.
	Fill(img, image.Rect(-10, -10, 1, 1), red, 1)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(0, 0))
}

func TestProgressBarPerStep(t *testing.T) {
	img := canvas(100, 4)
	bar := &ProgressBar{Rect: image.Rect(0, 0, 100, 4), Track: black, Bar: red, Gap: 0}

	bar.Apply(img, scene.Descriptor{Progress: channel.Progress{
		Mode:  channel.ProgressPerStep,
		Steps: []float64{1, 0.5, 0, 0},
	}})

	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(10, 1), "completed step")
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(30, 1), "first half of active step")
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(45, 1), "second half of active step")
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(90, 1), "upcoming step")
}

func TestProgressBarTotal(t *testing.T) {
	img := canvas(100, 4)
	bar := &ProgressBar{Rect: image.Rect(0, 0, 100, 4), Track: black, Bar: red}

	bar.Apply(img, scene.Descriptor{Progress: channel.Progress{Mode: channel.ProgressTotal, Total: 0.25}})

	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(24, 0))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(26, 0))
}

func newScroller() *Scroller {
	return &Scroller{
		Rect:           image.Rect(0, 0, 40, 100),
		Border:         black,
		Block:          red,
		BorderWidth:    2,
		BlockHeight:    10,
		BlockGap:       5,
		ScrollChannel:  "scroll",
		BorderChannel:  "border",
		BorderGate:     "border-visible",
		ContentChannel: "content",
		Blocks:         "blocks",
	}
}

func TestScrollerHiddenWhileGateClosed(t *testing.T) {
	img := canvas(40, 100)
	newScroller().Apply(img, scene.Descriptor{
		Channels: map[string]float64{"border": 0},
		Gates:    map[string]bool{"border-visible": false},
	})
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(0, 0))
}

func TestScrollerDrawsBorderAndBlocks(t *testing.T) {
	img := canvas(40, 100)
	newScroller().Apply(img, scene.Descriptor{
		Channels: map[string]float64{"border": 1, "content": 1, "scroll": 15},
		Gates:    map[string]bool{"border-visible": true},
		Staggers: map[string][]float64{"blocks": {1, 1, 0}},
	})

	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(0, 50), "border")
	// Inner area starts at y=4; block 1 sits at 4+15-15 = 4.
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(20, 6))
	// Block 2 has value 0 and stays invisible.
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(20, 21))
}

func TestDebugStamp(t *testing.T) {
	img := canvas(400, 200)
	d := scene.Descriptor{Frame: 42, Step: scene.StepState{Index: 1}}
	(&DebugStamp{Size: 64, Margin: 8}).Apply(img, d)

	assert.Equal(t, "frame=42 step=1 ratio=0.0000", StampText(d))

	dark := 0
	for y := 200 - 8 - 64; y < 200-8; y++ {
		for x := 400 - 8 - 64; x < 400-8; x++ {
			if img.RGBAAt(x, y).R < 128 {
				dark++
			}
		}
	}
	assert.Positive(t, dark, "QR modules drawn")
}
