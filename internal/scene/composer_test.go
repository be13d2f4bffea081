package scene

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/steps2video/internal/channel"
	"github.com/ivlev/steps2video/internal/timeline"
)

func testSettings(t *testing.T) Settings {
	t.Helper()
	right := timeline.Extrapolation{Right: timeline.Clamp}

	parent, err := channel.New("parent", channel.Opacity, 0,
		timeline.MustCurve([]float64{0, 30, 40}, []float64{0, 0, 1}, right, timeline.Linear))
	require.NoError(t, err)
	content, err := channel.New("content", channel.Opacity, 0,
		timeline.MustCurve([]float64{0, 80, 90}, []float64{0, 0, 1}, right, timeline.Linear))
	require.NoError(t, err)
	scroll, err := channel.New("scroll", channel.Offset, 0,
		timeline.MustCurve([]float64{220, 260, 300}, []float64{0, 1000, 0}, right, timeline.Linear))
	require.NoError(t, err)
	blocks, err := channel.NewStagger("blocks", 15, 8, 3, "content-visible",
		timeline.MustCurve([]float64{0, 10}, []float64{0, 1}, timeline.ClampBoth, timeline.Linear))
	require.NoError(t, err)

	return Settings{
		Labels:      []string{"intro", "add-handler", "wire-router", "done"},
		TotalFrames: 400,
		FPS:         30,
		Transition:  timeline.TransitionSpec{Frames: 30},
		Progress:    channel.ProgressPerStep,
		Channels:    []channel.Channel{parent, content, scroll},
		Gates: []channel.Gate{
			{Name: "parent-visible", Channel: "parent"},
			{Name: "content-visible", Channel: "content"},
		},
		Staggers: []channel.Stagger{blocks},
	}
}

func TestComposeFrame(t *testing.T) {
	c, err := NewComposer(testSettings(t))
	require.NoError(t, err)
	assert.Equal(t, 400, c.Frames())
	assert.Equal(t, 30, c.FPS())

	d, err := c.ComposeFrame(0)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Step.Index)
	assert.Equal(t, "intro", d.Step.Label)
	assert.False(t, d.Blend.Blending())
	assert.Equal(t, 1.0, d.IncomingOpacity())
	assert.Equal(t, 0.0, d.OutgoingOpacity())
	assert.False(t, d.Gates["parent-visible"])
	assert.Empty(t, d.Staggers["blocks"])

	// Step 1 starts at frame 100 and blends in over 30 frames.
	d, err = c.ComposeFrame(115)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Step.Index)
	assert.Equal(t, timeline.Frame(15), d.Step.Local)
	assert.Equal(t, "intro", d.OutgoingLabel)
	assert.Equal(t, "add-handler", d.IncomingLabel)
	assert.InDelta(t, 0.5, d.IncomingOpacity(), 1e-12)
	assert.InDelta(t, 0.5, d.OutgoingOpacity(), 1e-12)
	assert.True(t, d.Gates["parent-visible"])
	assert.True(t, d.Gates["content-visible"])
	assert.Len(t, d.Staggers["blocks"], 15)
	assert.InDelta(t, 115.0/30.0, d.Time, 1e-12)

	d, err = c.ComposeFrame(260)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, d.Channels["scroll"])
	assert.Equal(t, []float64{1, 1, 0.61, 0}, roundAll(d.Progress.Steps))
}

func roundAll(in []float64) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(int(v*100+0.5)) / 100
	}
	return out
}

func TestComposeFrameOutOfRange(t *testing.T) {
	c, err := NewComposer(testSettings(t))
	require.NoError(t, err)

	_, err = c.ComposeFrame(400)
	assert.ErrorIs(t, err, timeline.ErrFrameOutOfRange)
	_, err = c.ComposeFrame(-1)
	assert.ErrorIs(t, err, timeline.ErrFrameOutOfRange)
}

func TestComposeFrameIsOrderIndependent(t *testing.T) {
	c, err := NewComposer(testSettings(t))
	require.NoError(t, err)

	sequential := make([]string, c.Frames())
	for f := range sequential {
		d, err := c.ComposeFrame(timeline.Frame(f))
		require.NoError(t, err)
		sequential[f], err = d.Digest()
		require.NoError(t, err)
	}

	order := rand.New(rand.NewSource(7)).Perm(c.Frames())
	shuffled := make([]string, c.Frames())
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < len(order); i += 4 {
				f := order[i]
				d, err := c.ComposeFrame(timeline.Frame(f))
				if err != nil {
					return
				}
				shuffled[f], _ = d.Digest()
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, sequential, shuffled)
}

func TestNewComposerFailsFast(t *testing.T) {
	s := testSettings(t)
	s.Labels = nil
	_, err := NewComposer(s)
	assert.ErrorIs(t, err, timeline.ErrEmptySequence)

	s = testSettings(t)
	s.FPS = 0
	_, err = NewComposer(s)
	assert.ErrorIs(t, err, timeline.ErrMissingConfiguration)

	s = testSettings(t)
	s.TotalFrames = 120 // 30-frame windows cannot host a 30-frame transition
	_, err = NewComposer(s)
	assert.ErrorIs(t, err, timeline.ErrTransitionTooLong)

	s = testSettings(t)
	s.Gates = append(s.Gates, channel.Gate{Name: "ghost", Channel: "missing"})
	_, err = NewComposer(s)
	assert.Error(t, err)
}

func TestComposerCopiesLabels(t *testing.T) {
	s := testSettings(t)
	c, err := NewComposer(s)
	require.NoError(t, err)

	s.Labels[0] = "mutated"
	d, err := c.ComposeFrame(0)
	require.NoError(t, err)
	assert.Equal(t, "intro", d.Step.Label)
	assert.Equal(t, "intro", c.Labels()[0])
}
