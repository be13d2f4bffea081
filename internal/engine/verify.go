package engine

import (
	"context"
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/steps2video/internal/scene"
	"github.com/ivlev/steps2video/internal/timeline"
)

// Mismatch is a frame whose descriptor depended on evaluation order.
type Mismatch struct {
	Frame      timeline.Frame
	Sequential string
	Shuffled   string
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("frame %d: sequential digest %s, shuffled digest %s", m.Frame, m.Sequential[:12], m.Shuffled[:12])
}

// Verify composes every frame twice, once in order on one goroutine and once in a
// seeded random order across workers, and fails on the first differing descriptor.
func Verify(ctx context.Context, c *scene.Composer, workers int, seed int64) error {
	total := c.Frames()

	sequential := make([]string, total)
	for f := range sequential {
		d, err := c.ComposeFrame(timeline.Frame(f))
		if err != nil {
			return err
		}
		if sequential[f], err = d.Digest(); err != nil {
			return err
		}
	}

	order := rand.New(rand.NewSource(seed)).Perm(total)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for _, f := range order {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := c.ComposeFrame(timeline.Frame(f))
			if err != nil {
				return err
			}
			digest, err := d.Digest()
			if err != nil {
				return err
			}
			if digest != sequential[f] {
				return &Mismatch{Frame: timeline.Frame(f), Sequential: sequential[f], Shuffled: digest}
			}
			return nil
		})
	}
	return g.Wait()
}
