package workers

import (
	"os"
	"runtime"
	"strconv"
)

// OverrideEnv names the environment variable that pins the conversion slot count.
const OverrideEnv = "CONVERSION_WORKERS"

// Count returns the number of concurrent conversions to allow.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The multiplier scales the CPU count; conversions are CPU-bound
// (SSIM scoring and PNG encoding) so callers normally pass 1.0.
//
// The limit parameter caps the result. Use 0 for no limit.
//
// Can be overridden with the CONVERSION_WORKERS environment variable.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv(OverrideEnv); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForCPU returns the slot count for CPU-bound work (1 per CPU), capped by limit.
func ForCPU(limit int) int {
	return Count(1.0, limit)
}
