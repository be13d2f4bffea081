package engine

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/steps2video/internal/config"
	"github.com/ivlev/steps2video/internal/director"
	"github.com/ivlev/steps2video/internal/renderer"
	"github.com/ivlev/steps2video/internal/scene"
	"github.com/ivlev/steps2video/internal/source"
	"github.com/ivlev/steps2video/internal/system"
	"github.com/ivlev/steps2video/internal/timeline"
)

// VideoProject ties a configuration and a step source to a composer and a compositor.
type VideoProject struct {
	Config     *config.Config
	Source     source.Source
	Composer   *scene.Composer
	Compositor *renderer.Compositor
	RunID      string

	pool *system.FramePool
}

// NewVideoProject builds the timeline and rasterizes every step once.
func NewVideoProject(ctx context.Context, cfg *config.Config, src source.Source) (*VideoProject, error) {
	settings, err := cfg.Build(source.Labels(src))
	if err != nil {
		return nil, err
	}
	composer, err := scene.NewComposer(settings)
	if err != nil {
		return nil, err
	}
	palette, err := cfg.Theme.Palette()
	if err != nil {
		return nil, err
	}

	steps, err := loadSteps(ctx, src, workers(cfg.Workers))
	if err != nil {
		return nil, err
	}

	pool := system.NewFramePool()
	layout := renderer.NewLayout(cfg)
	comp := renderer.NewCompositor(layout, palette, steps, renderer.DefaultEffects(cfg, layout, palette), pool)

	return &VideoProject{
		Config:     cfg,
		Source:     src,
		Composer:   composer,
		Compositor: comp,
		RunID:      director.NewRunID(),
		pool:       pool,
	}, nil
}

func workers(n int) int {
	if n > 0 {
		return n
	}
	return system.DefaultWorkers()
}

func loadSteps(ctx context.Context, src source.Source, n int) ([]image.Image, error) {
	steps := make([]image.Image, src.StepCount())
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	for i := range steps {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := src.RenderStep(i)
			if err != nil {
				return fmt.Errorf("step %d (%s): %w", i, src.Label(i), err)
			}
			steps[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return steps, nil
}

// RenderOptions select which frames to write and where.
type RenderOptions struct {
	OutDir       string
	From, To     timeline.Frame // [From, To); To == 0 means the last frame
	Every        int            // keep every n-th frame; 0 or 1 keeps all
	Workers      int
	ShowStats    bool
	BenchmarkLog string
	BuildVersion string
}

// Frames lists the frames the options select out of total.
func (o RenderOptions) Frames(total int) ([]timeline.Frame, error) {
	to := o.To
	if to == 0 {
		to = timeline.Frame(total)
	}
	if o.From < 0 || to > timeline.Frame(total) || o.From >= to {
		return nil, fmt.Errorf("%w: range [%d, %d) of %d frames", timeline.ErrFrameOutOfRange, o.From, to, total)
	}
	every := max(o.Every, 1)
	var frames []timeline.Frame
	for f := o.From; f < to; f += timeline.Frame(every) {
		frames = append(frames, f)
	}
	return frames, nil
}

// FramePath is the PNG path of frame f in dir.
func FramePath(dir string, f timeline.Frame) string {
	return filepath.Join(dir, fmt.Sprintf("frame_%06d.png", f))
}

// Render writes the selected frames as PNG files. Frames are independent, so workers take
// them in whatever order the pool schedules.
func (p *VideoProject) Render(ctx context.Context, opts RenderOptions) (*Stats, error) {
	start := time.Now()
	frames, err := opts.Frames(p.Composer.Frames())
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, err
	}

	n := workers(opts.Workers)
	fmt.Println("--- [PROJECT: STEP TIMELINE] ---")
	fmt.Printf("[*] Run: %s | Steps: %d | Frames: %d of %d\n", p.RunID, len(p.Composer.Labels()), len(frames), p.Composer.Frames())
	fmt.Printf("[*] Resolution: %dx%d @ %d FPS | Workers: %d\n", p.Config.Width, p.Config.Height, p.Config.FPS, n)
	fmt.Println("-----------------------------")

	var done atomic.Int64
	report := max(len(frames)/20, 1)
	encoder := &png.Encoder{CompressionLevel: png.BestSpeed}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	for _, f := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := p.renderFrame(encoder, f, FramePath(opts.OutDir, f)); err != nil {
				return err
			}
			if c := done.Add(1); c%int64(report) == 0 || int(c) == len(frames) {
				fmt.Printf("[>] Ready: %d/%d\n", c, len(frames))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	allocated, reused := p.pool.Stats()
	stats := &Stats{
		RunID:        p.RunID,
		BuildVersion: opts.BuildVersion,
		Input:        p.Config.Steps.Path,
		Steps:        len(p.Composer.Labels()),
		Frames:       len(frames),
		Workers:      n,
		Elapsed:      time.Since(start),
		Allocated:    allocated,
		Reused:       reused,
	}
	if opts.ShowStats {
		fmt.Print(stats.Report(system.ReadHostStats()))
	}
	if opts.BenchmarkLog != "" {
		if err := stats.Append(opts.BenchmarkLog); err != nil {
			fmt.Printf("[!] Could not write %s: %v\n", opts.BenchmarkLog, err)
		}
	}
	return stats, nil
}

// RenderFrame composes and rasterizes a single frame.
func (p *VideoProject) RenderFrame(f timeline.Frame) (*image.RGBA, scene.Descriptor, error) {
	d, err := p.Composer.ComposeFrame(f)
	if err != nil {
		return nil, scene.Descriptor{}, err
	}
	img, err := p.Compositor.Render(d)
	if err != nil {
		return nil, d, err
	}
	return img, d, nil
}

// Release returns a frame from RenderFrame to the pool.
func (p *VideoProject) Release(img *image.RGBA) {
	p.Compositor.Release(img)
}

func (p *VideoProject) renderFrame(enc *png.Encoder, f timeline.Frame, path string) error {
	img, _, err := p.RenderFrame(f)
	if err != nil {
		return fmt.Errorf("frame %d: %w", f, err)
	}
	defer p.Release(img)

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(out)
	if err := enc.Encode(w, img); err != nil {
		out.Close()
		return fmt.Errorf("frame %d: %w", f, err)
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
