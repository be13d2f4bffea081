package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/steps2video/internal/system"
)

// Stats summarizes one render run.
type Stats struct {
	RunID        string
	BuildVersion string
	Input        string
	Steps        int
	Frames       int
	Workers      int
	Elapsed      time.Duration
	Allocated    int64 // frame buffers allocated
	Reused       int64 // frame buffers served from the pool
}

// FPS is the effective render rate.
func (s *Stats) FPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Elapsed.Seconds()
}

func (s *Stats) Report(host system.HostStats) string {
	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Run: %s\n"+
			"Build: %s\n"+
			"Host: %s\n"+
			"Frames: %d (%d steps, %d workers)\n"+
			"Total Time: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"Frame buffers: %d allocated, %d reused\n"+
			"----------------------------\n",
		s.RunID, s.BuildVersion, host, s.Frames, s.Steps, s.Workers,
		s.Elapsed.Seconds(), s.FPS(), s.Allocated, s.Reused,
	)
}

// Append adds one line for this run to a benchmark log.
func (s *Stats) Append(path string) error {
	entry := fmt.Sprintf("[%s] Run: %s | Build: %s | Input: %s | Steps: %d | Frames: %d | Workers: %d | Total: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		s.RunID,
		s.BuildVersion,
		filepath.Base(s.Input),
		s.Steps,
		s.Frames,
		s.Workers,
		s.Elapsed.Seconds(),
		s.FPS(),
	)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(entry); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
