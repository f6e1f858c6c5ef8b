package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/odoogate/pool"
)

// PoolStats is the slice of the session pool the checker needs.
type PoolStats interface {
	Stats() pool.Stats
}

// Thresholds for the authentication failure ratio.
const (
	poolFailureWarn     = 0.5
	poolFailureCritical = 0.9
	poolFailureFloor    = 10 // ratio is meaningless below this many attempts
)

// PoolChecker reports on the session pool: cached sessions, hit and miss
// counters, and the share of authentication attempts that failed. A high
// failure ratio usually means the upstream ERP is rejecting logins or
// unreachable.
type PoolChecker struct {
	source PoolStats
}

// NewPoolChecker creates a checker over the given pool.
func NewPoolChecker(source PoolStats) *PoolChecker {
	return &PoolChecker{source: source}
}

// Name identifies the checker.
func (c *PoolChecker) Name() string { return "session_pool" }

// Check reads the pool counters and grades the authentication failure ratio.
func (c *PoolChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("check cancelled", ctx.Err())
	default:
	}

	stats := c.source.Stats()
	details := map[string]any{
		"entries":         stats.Entries,
		"hits":            stats.Hits,
		"misses":          stats.Misses,
		"authentications": stats.Authentications,
		"auth_failures":   stats.AuthFailures,
		"expirations":     stats.Expirations,
		"evictions":       stats.Evictions,
	}

	if stats.Authentications >= poolFailureFloor {
		ratio := float64(stats.AuthFailures) / float64(stats.Authentications)
		details["failure_ratio"] = ratio

		if ratio >= poolFailureCritical {
			return Unhealthy(
				fmt.Sprintf("authentication failing: %.0f%% of attempts rejected", ratio*100),
				ErrCheckFailed,
			).WithDetails(details)
		}
		if ratio >= poolFailureWarn {
			return Degraded(
				fmt.Sprintf("authentication failures elevated: %.0f%% of attempts", ratio*100),
			).WithDetails(details)
		}
	}

	return Healthy(fmt.Sprintf("%d cached sessions", stats.Entries)).WithDetails(details)
}
