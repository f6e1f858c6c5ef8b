package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Probe handler timeouts. Readiness probes are hit frequently and must
// answer quickly even when a checker hangs.
const (
	readinessTimeout = 5 * time.Second
	detailedTimeout  = 10 * time.Second
)

// LivenessHandler answers liveness probes. It only proves the process is
// serving HTTP; no checkers run.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler answers readiness probes by running every checker. A
// degraded gateway still accepts traffic; only unhealthy takes it out of
// rotation.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := OverallStatus(agg.CheckAll(ctx))

		w.Header().Set("Content-Type", "text/plain")
		switch status {
		case StatusHealthy:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		case StatusDegraded:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("DEGRADED"))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("UNHEALTHY"))
		}
	}
}

// Report is the JSON body of the detailed health endpoint.
type Report struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service,omitempty"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckReport `json:"checks,omitempty"`
}

// CheckReport is the JSON form of one checker's result.
type CheckReport struct {
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func checkReport(r Result) CheckReport {
	cr := CheckReport{
		Status:   r.Status.String(),
		Message:  r.Message,
		Duration: r.Duration.String(),
		Details:  r.Details,
	}
	if r.Err != nil {
		cr.Error = r.Err.Error()
	}
	return cr
}

func statusCode(s Status) int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// DetailedHandler serves the full health report as JSON: overall status plus
// one entry per checker.
func DetailedHandler(agg *Aggregator, service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), detailedTimeout)
		defer cancel()

		results := agg.CheckAll(ctx)
		status := OverallStatus(results)

		report := Report{
			Status:    status.String(),
			Service:   service,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    make(map[string]CheckReport, len(results)),
		}
		for name, res := range results {
			report.Checks[name] = checkReport(res)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode(status))
		_ = json.NewEncoder(w).Encode(report)
	}
}

// CheckHandler serves a single checker's result, named by the {check} path
// segment. Unknown names return 404.
func CheckHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		result, err := agg.Check(ctx, r.PathValue("check"))
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode(result.Status))
		_ = json.NewEncoder(w).Encode(checkReport(result))
	}
}

// RegisterHandlers mounts the health endpoints on mux: /healthz (liveness),
// /readyz (readiness), /health (detailed JSON), and /health/{check}.
func RegisterHandlers(mux *http.ServeMux, agg *Aggregator, service string) {
	mux.HandleFunc("GET /healthz", LivenessHandler())
	mux.HandleFunc("GET /readyz", ReadinessHandler(agg))
	mux.HandleFunc("GET /health", DetailedHandler(agg, service))
	mux.HandleFunc("GET /health/{check}", CheckHandler(agg))
}
