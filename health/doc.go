// Package health reports on the moving parts of the gateway: the session
// pool, the token codec, and the Go runtime itself.
//
// A Checker probes one component and grades it healthy, degraded, or
// unhealthy. The Aggregator runs a set of checkers, in parallel by default,
// and folds their results into one gateway-level status: any unhealthy check
// makes the gateway unhealthy, any degraded check makes it degraded.
//
//	agg := health.NewAggregator(health.AggregatorConfig{})
//	agg.Register(health.NewPoolChecker(sessionPool))
//	agg.Register(health.NewCodecChecker(codec))
//	agg.Register(health.NewRuntimeChecker(health.RuntimeCheckerConfig{}))
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg, "odoogate")
//
// Three HTTP surfaces are mounted: /healthz answers liveness probes without
// running any checker, /readyz runs every checker and answers in plain text,
// and /health serves the full JSON report. A degraded gateway still answers
// readiness with 200; only unhealthy returns 503 and takes the instance out
// of rotation.
package health
