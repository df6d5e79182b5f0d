package fold

import (
	"os"
	"runtime"
)

// Package-level state - initialized once at package init.
// No mutex needed: Go guarantees init() runs before any other code.
var (
	// activeStrategy is the kernel that Auto resolves to.
	activeStrategy Strategy

	// hasOverride is true if FOLDSUM_STRATEGY was set.
	hasOverride bool

	// CPU feature flags (set by platform-specific init)
	hasASIMD bool // ARM64 NEON
	hasAVX2  bool // x86-64 AVX2
)

// initCapabilities is called from platform-specific init functions
// after CPU features are detected.
func initCapabilities() {
	if override := os.Getenv("FOLDSUM_STRATEGY"); override != "" {
		if s, ok := ParseStrategy(override); ok && s != Auto {
			hasOverride = true
			activeStrategy = s
			return
		}
		// Invalid override - fall through to auto-selection
	}

	activeStrategy = selectBestStrategy()
}

// selectBestStrategy chooses the default kernel for the current platform.
// Every kernel is portable Go; the choice is a throughput heuristic only,
// all kernels produce identical output.
func selectBestStrategy() Strategy {
	switch runtime.GOARCH {
	case "amd64":
		// Wide out-of-order cores keep all sixteen interleaved
		// accumulators in flight.
		if hasAVX2 {
			return Interleaved16
		}
		return Unrolled8
	case "arm64":
		if hasASIMD {
			return Interleaved16
		}
		return Unrolled8
	default:
		if runtime.GOARCH == "386" || runtime.GOARCH == "arm" {
			return Words
		}
		return Unrolled8
	}
}

// ActiveStrategy returns the kernel that Auto currently resolves to.
func ActiveStrategy() Strategy {
	return activeStrategy
}

// IsOverridden returns true if FOLDSUM_STRATEGY was set.
func IsOverridden() bool {
	return hasOverride
}
