package health_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/jonwraymond/odoogate/health"
)

func ExampleAggregator() {
	agg := health.NewAggregator(health.AggregatorConfig{})

	agg.Register(health.NewChecker("upstream", func(ctx context.Context) health.Result {
		return health.Healthy("reachable")
	}))
	agg.Register(health.NewChecker("disk", func(ctx context.Context) health.Result {
		return health.Degraded("85% full")
	}))

	results := agg.CheckAll(context.Background())
	fmt.Println(health.OverallStatus(results))

	// Output:
	// degraded
}

func ExampleRegisterHandlers() {
	agg := health.NewAggregator(health.AggregatorConfig{})
	agg.Register(health.NewRuntimeChecker(health.RuntimeCheckerConfig{}))

	mux := http.NewServeMux()
	health.RegisterHandlers(mux, agg, "odoogate")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	fmt.Println(rec.Code, rec.Body.String())

	// Output:
	// 200 OK
}
