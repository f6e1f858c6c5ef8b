package health

import (
	"context"
	"fmt"
	"runtime"
)

// RuntimeCheckerConfig configures the runtime health checker.
type RuntimeCheckerConfig struct {
	// GoroutineWarning is the goroutine count above which the process is
	// degraded. Default: 5000.
	GoroutineWarning int

	// GoroutineCritical is the goroutine count above which the process is
	// unhealthy. Default: 20000.
	GoroutineCritical int
}

func (c RuntimeCheckerConfig) withDefaults() RuntimeCheckerConfig {
	if c.GoroutineWarning <= 0 {
		c.GoroutineWarning = 5000
	}
	if c.GoroutineCritical <= c.GoroutineWarning {
		c.GoroutineCritical = 4 * c.GoroutineWarning
	}
	return c
}

// RuntimeChecker watches the Go runtime. A runaway goroutine count is the
// usual symptom of leaked waiters on a stuck upstream, so it is the primary
// grading signal; heap figures are reported as details.
type RuntimeChecker struct {
	cfg RuntimeCheckerConfig
}

// NewRuntimeChecker creates a runtime checker with the given thresholds.
func NewRuntimeChecker(cfg RuntimeCheckerConfig) *RuntimeChecker {
	return &RuntimeChecker{cfg: cfg.withDefaults()}
}

// Name identifies the checker.
func (c *RuntimeChecker) Name() string { return "runtime" }

// Check grades the goroutine count and reports memory statistics.
func (c *RuntimeChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("check cancelled", ctx.Err())
	default:
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	goroutines := runtime.NumGoroutine()

	details := map[string]any{
		"goroutines":    goroutines,
		"heap_alloc_mb": float64(mem.HeapAlloc) / (1 << 20),
		"heap_sys_mb":   float64(mem.HeapSys) / (1 << 20),
		"heap_objects":  mem.HeapObjects,
		"num_gc":        mem.NumGC,
		"go_version":    runtime.Version(),
	}

	switch {
	case goroutines >= c.cfg.GoroutineCritical:
		return Unhealthy(
			fmt.Sprintf("goroutine count critical: %d", goroutines),
			ErrCheckFailed,
		).WithDetails(details)
	case goroutines >= c.cfg.GoroutineWarning:
		return Degraded(
			fmt.Sprintf("goroutine count high: %d", goroutines),
		).WithDetails(details)
	default:
		return Healthy(
			fmt.Sprintf("%d goroutines", goroutines),
		).WithDetails(details)
	}
}
