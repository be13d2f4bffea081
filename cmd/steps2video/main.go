package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ivlev/steps2video/internal/config"
	"github.com/ivlev/steps2video/internal/director"
	"github.com/ivlev/steps2video/internal/engine"
	"github.com/ivlev/steps2video/internal/scene"
	"github.com/ivlev/steps2video/internal/source"
	"github.com/ivlev/steps2video/internal/system"
	"github.com/ivlev/steps2video/internal/timeline"
)

// BuildVersion is set at link time.
var BuildVersion = "dev"

var (
	configFile string
	preset     string
	stepsPath  string
	audioPath  string
	audioSync  bool
	workers    int
	debug      bool

	outDir    string
	fromFrame int
	toFrame   int
	every     int
	showStats bool
	benchLog  string

	planDir string
	seed    int64
)

func main() {
	system.InitResourceLimits()

	rootCmd := &cobra.Command{
		Use:          "steps2video",
		Short:        "render step-by-step walkthroughs as deterministic frame sequences",
		SilenceUsage: true,
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default: latest yaml in input/)")
	pf.StringVar(&preset, "preset", "", "start from a preset instead of the defaults")
	pf.StringVar(&stepsPath, "steps", "", "PDF, image directory or code directory (overrides steps.path)")
	pf.StringVar(&audioPath, "audio", "", "audio track; its length sets duration_seconds (default: latest in input/audio/)")
	pf.BoolVar(&audioSync, "audio-sync", true, "pick up the latest track in input/audio/ when none is configured")
	pf.IntVar(&workers, "workers", 0, "worker goroutines (default: logical CPUs)")
	pf.BoolVar(&debug, "debug", false, "stamp every frame with a QR code of its state")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "write frames as PNG files",
		RunE:  runRender,
	}
	renderCmd.Flags().StringVar(&outDir, "out", "", "frame directory (default: output/frames_<run>)")
	renderCmd.Flags().IntVar(&fromFrame, "from", 0, "first frame")
	renderCmd.Flags().IntVar(&toFrame, "to", 0, "end frame, exclusive (default: last)")
	renderCmd.Flags().IntVar(&every, "every", 1, "keep every n-th frame")
	renderCmd.Flags().BoolVar(&showStats, "stats", false, "print the performance report")
	renderCmd.Flags().StringVar(&benchLog, "benchmark-log", "benchmark.log", "append a run summary here (empty disables)")

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "write the resolved timeline as a YAML plan",
		RunE:  runPlan,
	}
	planCmd.Flags().StringVar(&planDir, "dir", director.DefaultPlanDir, "plan directory")

	inspectCmd := &cobra.Command{
		Use:   "inspect [frame...]",
		Short: "print frame descriptors as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runInspect,
	}

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "check that every frame is independent of evaluation order",
		RunE:  runVerify,
	}
	verifyCmd.Flags().Int64Var(&seed, "seed", 1, "shuffle seed")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets and themes",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(renderCmd, planCmd, inspectCmd, verifyCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("[-] %v", err)
	}
}

// loadConfig layers preset, config file and flags, in that order.
func loadConfig() (*config.Config, error) {
	base := config.DefaultConfig()
	if preset != "" {
		base = config.GetPreset(preset)
		if base == nil {
			return nil, fmt.Errorf("unknown preset %q (have %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
	}

	path := configFile
	if path == "" && preset == "" {
		if latest, err := system.FindLatest("input", system.ConfigExts...); err == nil {
			path = latest
			fmt.Printf("[*] Using config: %s\n", path)
		}
	}

	cfg := base
	if path != "" {
		var err error
		if cfg, err = config.LoadOver(base, path); err != nil {
			return nil, err
		}
	}

	if stepsPath != "" {
		cfg.Steps.Path = stepsPath
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if debug {
		cfg.Debug = true
	}
	if audioPath != "" {
		cfg.Audio = audioPath
	}
	if cfg.Audio == "" && audioSync {
		if latest, err := system.FindLatestAudio(filepath.Join("input", "audio")); err == nil {
			cfg.Audio = latest
			fmt.Printf("[*] Using audio: %s\n", latest)
		}
	}
	if cfg.Audio != "" {
		d, err := system.GetMediaDuration(cfg.Audio)
		if err != nil {
			log.Printf("[!] Could not read audio duration: %v", err)
		} else {
			cfg.DurationFrames = 0
			cfg.DurationSeconds = d
			fmt.Printf("[*] Duration set from audio: %.2fs\n", d)
		}
	}
	return cfg, cfg.Validate()
}

func openSource(cfg *config.Config) (source.Source, error) {
	palette, err := cfg.Theme.Palette()
	if err != nil {
		return nil, err
	}
	return source.Open(cfg.Steps.Path, source.Options{
		DPI:        cfg.Steps.DPI,
		Foreground: palette.Foreground,
		Background: palette.Background,
	})
}

// composer resolves the timeline without rasterizing any step.
func composer() (*config.Config, *scene.Composer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	src, err := openSource(cfg)
	if err != nil {
		return nil, nil, err
	}
	defer src.Close()

	settings, err := cfg.Build(source.Labels(src))
	if err != nil {
		return nil, nil, err
	}
	c, err := scene.NewComposer(settings)
	return cfg, c, err
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p, err := engine.NewVideoProject(ctx, cfg, src)
	if err != nil {
		return err
	}

	dir := outDir
	if dir == "" {
		dir = cfg.Output
	}
	if dir == "" {
		dir = filepath.Join("output", "frames_"+p.RunID[:8])
	}

	stats, err := p.Render(ctx, engine.RenderOptions{
		OutDir:       dir,
		From:         timeline.Frame(fromFrame),
		To:           timeline.Frame(toFrame),
		Every:        every,
		Workers:      cfg.Workers,
		ShowStats:    showStats,
		BenchmarkLog: benchLog,
		BuildVersion: BuildVersion,
	})
	if err != nil {
		return err
	}
	fmt.Printf("[+++] Done! %d frames in %s (%.2f FPS)\n", stats.Frames, dir, stats.FPS())
	return nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, c, err := composer()
	if err != nil {
		return err
	}
	plan := director.NewDirector(c).GeneratePlan(cfg.Steps.Path, director.NewRunID())
	if err := plan.Check(); err != nil {
		return err
	}
	path := director.GeneratePlanPath(planDir)
	if err := director.WritePlan(plan, path); err != nil {
		return err
	}
	fmt.Printf("[+] Plan: %s (%d steps, %d frames)\n", path, len(plan.Steps), plan.TotalFrames)
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	_, c, err := composer()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	for _, arg := range args {
		var f timeline.Frame
		if _, err := fmt.Sscan(arg, &f); err != nil {
			return fmt.Errorf("frame %q: %w", arg, err)
		}
		d, err := c.ComposeFrame(f)
		if err != nil {
			return err
		}
		if err := enc.Encode(d); err != nil {
			return err
		}
	}
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, c, err := composer()
	if err != nil {
		return err
	}
	n := cfg.Workers
	if n <= 0 {
		n = system.DefaultWorkers()
	}
	fmt.Printf("[*] Verifying %d frames with %d workers (seed %d)\n", c.Frames(), n, seed)
	if err := engine.Verify(cmd.Context(), c, n, seed); err != nil {
		return err
	}
	fmt.Println("[+] Every frame matches its sequential evaluation")
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tTHEME\tSIZE\tTRANSITION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%d %s\n", name, p.Theme.Name, p.Width, p.Height, p.Transition.Frames, p.Transition.Anchor)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nthemes: %s\n", strings.Join(config.ThemeNames(), ", "))
	return nil
}
