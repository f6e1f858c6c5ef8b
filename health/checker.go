package health

import (
	"context"
	"time"
)

// Status is the health state of one component, or of the gateway as a whole.
type Status int

const (
	// StatusHealthy means the component is fully operational.
	StatusHealthy Status = iota
	// StatusDegraded means the component works but something needs attention.
	StatusDegraded
	// StatusUnhealthy means the component cannot do its job.
	StatusUnhealthy
)

// String returns the lowercase wire form of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Result is the outcome of a single check run.
type Result struct {
	// Status is the component's health state.
	Status Status

	// Message is a short human explanation of the state.
	Message string

	// Details carries check-specific metadata, such as pool counters.
	Details map[string]any

	// Duration is how long the check ran.
	Duration time.Duration

	// Timestamp is when the check started.
	Timestamp time.Time

	// Err is the failure cause for unhealthy results, nil otherwise.
	Err error
}

// Healthy builds a healthy result with the given message.
func Healthy(message string) Result {
	return Result{Status: StatusHealthy, Message: message, Timestamp: time.Now()}
}

// Degraded builds a degraded result with the given message.
func Degraded(message string) Result {
	return Result{Status: StatusDegraded, Message: message, Timestamp: time.Now()}
}

// Unhealthy builds an unhealthy result carrying the failure cause.
func Unhealthy(message string, err error) Result {
	return Result{Status: StatusUnhealthy, Message: message, Err: err, Timestamp: time.Now()}
}

// WithDetails returns a copy of the result with details attached.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// Checker probes one component of the gateway.
//
// Contract:
//   - Concurrency: Check may be called from multiple goroutines.
//   - Context: Check must return promptly once ctx is done; the aggregator
//     abandons checks that outlive their deadline.
//   - Errors: failures are reported through the Result, never by panicking.
type Checker interface {
	// Name identifies the checker in results and URLs.
	Name() string

	// Check probes the component.
	Check(ctx context.Context) Result
}

type funcChecker struct {
	name string
	fn   func(context.Context) Result
}

// NewChecker adapts a plain function into a named Checker.
func NewChecker(name string, fn func(context.Context) Result) Checker {
	return &funcChecker{name: name, fn: fn}
}

func (c *funcChecker) Name() string { return c.name }

func (c *funcChecker) Check(ctx context.Context) Result { return c.fn(ctx) }
