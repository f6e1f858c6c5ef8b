package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/odoogate/observe"
)

// headerRequestID carries the per-request correlation id, echoed back to the
// caller and attached to every log line.
const headerRequestID = "X-Request-Id"

// statusRecorder captures the response code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withRequestID assigns a request id when the caller did not send one and
// echoes it on the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(headerRequestID, id)
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r)
	})
}

// withRecovery converts handler panics into a 500 execution_error response
// instead of tearing down the connection.
func withRecovery(logger observe.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(r.Context(), "handler panic",
					observe.Field{Key: "panic", Value: rec},
					observe.Field{Key: "path", Value: r.URL.Path},
					observe.Field{Key: "request_id", Value: r.Header.Get(headerRequestID)},
				)
				writeJSON(w, http.StatusInternalServerError, errorBody{
					Status: StatusExecutionError,
					Error:  "internal error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withAccessLog writes one structured line per request. Bodies and
// credential headers never appear in the fields.
func withAccessLog(logger observe.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		logger.Info(r.Context(), "request",
			observe.Field{Key: "method", Value: r.Method},
			observe.Field{Key: "path", Value: r.URL.Path},
			observe.Field{Key: "status", Value: rec.status},
			observe.Field{Key: "duration_ms", Value: time.Since(start).Milliseconds()},
			observe.Field{Key: "request_id", Value: r.Header.Get(headerRequestID)},
		)
	})
}
