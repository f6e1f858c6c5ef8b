package health

import (
	"context"
	"sync"
	"time"
)

// DefaultTimeout bounds a full CheckAll pass.
const DefaultTimeout = 10 * time.Second

// AggregatorConfig configures an Aggregator.
type AggregatorConfig struct {
	// Timeout is the maximum time for one CheckAll pass. Default: 10 seconds.
	Timeout time.Duration

	// Sequential runs checks one at a time instead of in parallel.
	Sequential bool
}

func (c AggregatorConfig) withDefaults() AggregatorConfig {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Aggregator runs a set of named checkers and folds their results into one
// gateway-level status.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Ownership: checkers registered under the same name replace each other;
//     registration order is preserved for reporting.
type Aggregator struct {
	cfg AggregatorConfig

	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string
}

// NewAggregator creates an aggregator with the given configuration.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	return &Aggregator{
		cfg:      cfg.withDefaults(),
		checkers: make(map[string]Checker),
	}
}

// Register adds a checker under its own name, replacing any previous checker
// with that name.
func (a *Aggregator) Register(c Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	name := c.Name()
	if _, exists := a.checkers[name]; !exists {
		a.order = append(a.order, name)
	}
	a.checkers[name] = c
}

// Deregister removes the named checker. Unknown names are ignored.
func (a *Aggregator) Deregister(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.checkers[name]; !ok {
		return
	}
	delete(a.checkers, name)
	for i, n := range a.order {
		if n == name {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

// Names returns the registered checker names in registration order.
func (a *Aggregator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.order))
	copy(names, a.order)
	return names
}

// Check runs the named checker. Unknown names return ErrCheckerNotFound.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	c, ok := a.checkers[name]
	a.mu.RUnlock()

	if !ok {
		return Result{}, ErrCheckerNotFound
	}
	return a.run(ctx, c), nil
}

// CheckAll runs every registered checker under the aggregator timeout and
// returns the results keyed by checker name.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	a.mu.RLock()
	checkers := make([]Checker, 0, len(a.order))
	for _, name := range a.order {
		checkers = append(checkers, a.checkers[name])
	}
	a.mu.RUnlock()

	results := make(map[string]Result, len(checkers))
	if len(checkers) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	if a.cfg.Sequential {
		for _, c := range checkers {
			results[c.Name()] = a.run(ctx, c)
		}
		return results
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, c := range checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			r := a.run(ctx, c)
			mu.Lock()
			results[c.Name()] = r
			mu.Unlock()
		}(c)
	}
	wg.Wait()

	return results
}

// run executes one check, abandoning it if ctx ends first. An abandoned
// check keeps running in its goroutine; its result is discarded.
func (a *Aggregator) run(ctx context.Context, c Checker) Result {
	start := time.Now()
	resCh := make(chan Result, 1)

	go func() {
		r := c.Check(ctx)
		r.Duration = time.Since(start)
		if r.Timestamp.IsZero() {
			r.Timestamp = start
		}
		resCh <- r
	}()

	select {
	case r := <-resCh:
		return r
	case <-ctx.Done():
		return Result{
			Status:    StatusUnhealthy,
			Message:   "check timed out",
			Err:       ErrCheckTimeout,
			Duration:  time.Since(start),
			Timestamp: start,
		}
	}
}

// OverallStatus folds a result set into one status: any unhealthy check makes
// the whole set unhealthy, otherwise any degraded check makes it degraded.
// An empty set is healthy.
func OverallStatus(results map[string]Result) Status {
	overall := StatusHealthy
	for _, r := range results {
		switch r.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			overall = StatusDegraded
		}
	}
	return overall
}

// Checker returns the aggregator itself as a single composite Checker, for
// nesting one aggregator inside another.
func (a *Aggregator) Checker() Checker {
	return NewChecker("aggregate", func(ctx context.Context) Result {
		results := a.CheckAll(ctx)
		status := OverallStatus(results)

		details := make(map[string]any, len(results))
		for name, r := range results {
			details[name] = map[string]any{
				"status":   r.Status.String(),
				"message":  r.Message,
				"duration": r.Duration.String(),
			}
		}

		var message string
		switch status {
		case StatusHealthy:
			message = "all checks passed"
		case StatusDegraded:
			message = "some checks degraded"
		case StatusUnhealthy:
			message = "some checks failed"
		}

		return Result{
			Status:    status,
			Message:   message,
			Details:   details,
			Timestamp: time.Now(),
		}
	})
}
