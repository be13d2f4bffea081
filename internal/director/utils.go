package director

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ivlev/steps2video/internal/system"
)

// DefaultPlanDir is where plans land when no output path is given.
const DefaultPlanDir = "output/plans"

// GeneratePlanPath creates a timestamped plan filename in dir
func GeneratePlanPath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("plan_%s.yaml", timestamp))
}

// FindLatestPlan finds the most recently modified plan in dir
func FindLatestPlan(dir string) (string, error) {
	return system.FindLatest(dir, ".yaml")
}
