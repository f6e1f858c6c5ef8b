package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testMux(t *testing.T, checkers ...Checker) *http.ServeMux {
	t.Helper()

	agg := NewAggregator(AggregatorConfig{})
	for _, c := range checkers {
		agg.Register(c)
	}

	mux := http.NewServeMux()
	RegisterHandlers(mux, agg, "odoogate")
	return mux
}

func get(t *testing.T, mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLivenessHandler(t *testing.T) {
	mux := testMux(t, NewChecker("down", func(ctx context.Context) Result {
		return Unhealthy("broken", ErrCheckFailed)
	}))

	rec := get(t, mux, "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (liveness ignores checkers)", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("body = %q, want OK", rec.Body.String())
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		wantCode int
		wantBody string
	}{
		{"healthy", Healthy("ok"), http.StatusOK, "OK"},
		{"degraded still ready", Degraded("slow"), http.StatusOK, "DEGRADED"},
		{"unhealthy", Unhealthy("down", ErrCheckFailed), http.StatusServiceUnavailable, "UNHEALTHY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := testMux(t, NewChecker("probe", func(ctx context.Context) Result {
				return tt.result
			}))

			rec := get(t, mux, "/readyz")
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestDetailedHandler(t *testing.T) {
	mux := testMux(t,
		NewChecker("up", func(ctx context.Context) Result {
			return Healthy("fine").WithDetails(map[string]any{"entries": 1})
		}),
		NewChecker("down", func(ctx context.Context) Result {
			return Unhealthy("broken", ErrCheckFailed)
		}),
	)

	rec := get(t, mux, "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if report.Status != "unhealthy" {
		t.Errorf("report status = %q, want unhealthy", report.Status)
	}
	if report.Service != "odoogate" {
		t.Errorf("report service = %q, want odoogate", report.Service)
	}
	if report.Timestamp == "" {
		t.Error("report timestamp is empty")
	}

	if len(report.Checks) != 2 {
		t.Fatalf("report has %d checks, want 2", len(report.Checks))
	}
	if report.Checks["up"].Status != "healthy" {
		t.Errorf("up = %+v", report.Checks["up"])
	}
	if report.Checks["down"].Error == "" {
		t.Error("down check lost its error detail")
	}
}

func TestDetailedHandler_AllHealthy(t *testing.T) {
	mux := testMux(t, NewChecker("up", func(ctx context.Context) Result {
		return Healthy("fine")
	}))

	rec := get(t, mux, "/health")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if report.Status != "healthy" {
		t.Errorf("report status = %q, want healthy", report.Status)
	}
}

func TestCheckHandler(t *testing.T) {
	mux := testMux(t,
		NewChecker("up", func(ctx context.Context) Result {
			return Healthy("fine")
		}),
		NewChecker("shaky", func(ctx context.Context) Result {
			return Degraded("wobbling")
		}),
	)

	rec := get(t, mux, "/health/up")
	if rec.Code != http.StatusOK {
		t.Errorf("up status = %d, want 200", rec.Code)
	}

	var check CheckReport
	if err := json.Unmarshal(rec.Body.Bytes(), &check); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if check.Status != "healthy" || check.Message != "fine" {
		t.Errorf("check = %+v", check)
	}

	rec = get(t, mux, "/health/shaky")
	if rec.Code != http.StatusOK {
		t.Errorf("degraded status = %d, want 200", rec.Code)
	}
}

func TestCheckHandler_NotFound(t *testing.T) {
	mux := testMux(t)

	rec := get(t, mux, "/health/nonexistent")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["error"] == "" {
		t.Error("404 body is missing the error field")
	}
}

func TestRegisterHandlers_MethodNotAllowed(t *testing.T) {
	mux := testMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /healthz status = %d, want 405", rec.Code)
	}
}
