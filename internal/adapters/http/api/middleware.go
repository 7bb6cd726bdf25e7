package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/tactile/pkg/metrics"
)

// MetricsMiddleware records request count, latency and error class for
// endpoint. A panicking handler is answered with 500 and counted under
// the http component.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if p := recover(); p != nil {
				metrics.RecordErrorByComponent("http", "panic")
				if !rec.wroteHeader {
					writeError(rec, http.StatusInternalServerError, "internal", nil)
				} else {
					rec.status = http.StatusInternalServerError
				}
			}
			observe(endpoint, r.Method, rec.status, time.Since(start))
		}()

		next(rec, r)
	}
}

func observe(endpoint, method string, status int, took time.Duration) {
	code := strconv.Itoa(status)
	metrics.RecordHTTPRequest(endpoint, method, code)
	metrics.RecordHTTPRequestDuration(endpoint, method, code, float64(took.Microseconds())/1000)

	if status < http.StatusBadRequest {
		return
	}
	class := errorClass(status)
	metrics.RecordErrorByEndpoint(endpoint, method, class)
	metrics.RecordErrorByType(class, errorSeverity(status))
}

// errorClass names the failure behind an HTTP status.
func errorClass(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusTooManyRequests:
		return "backpressure"
	case http.StatusServiceUnavailable:
		return "unavailable"
	}
	if status >= http.StatusInternalServerError {
		return "server_error"
	}
	return "client_error"
}

// errorSeverity ranks a failing status. Backpressure is routine under
// load, an unavailable engine needs an operator, a 5xx is a bug.
func errorSeverity(status int) string {
	switch {
	case status == http.StatusTooManyRequests:
		return "low"
	case status == http.StatusServiceUnavailable:
		return "medium"
	case status >= http.StatusInternalServerError:
		return "high"
	default:
		return "medium"
	}
}

// statusRecorder captures the status written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.status = code
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
