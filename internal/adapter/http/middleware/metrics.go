package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/iho/gobank/internal/infrastructure/metrics"
)

// Metrics returns middleware that records HTTP metrics on m.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.HTTPInFlight.Inc()
			defer m.HTTPInFlight.Dec()

			// Wrap response writer to capture status code
			wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			m.RecordHTTPRequest(r.Method, normalizePath(r.URL.Path), wrapped.statusCode, time.Since(start))
		})
	}
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// normalizePath replaces account IDs so label cardinality stays bounded:
//
//	/account/01ABC              -> /account/:id
//	/account/01ABC/records      -> /account/:id/records
//	/account/transfer/01ABC     -> /account/transfer/:id
func normalizePath(path string) string {
	rest, ok := strings.CutPrefix(path, "/account/")
	if !ok || rest == "" {
		return path
	}

	parts := strings.Split(rest, "/")

	switch parts[0] {
	case "deposit", "withdraw", "transfer":
		if len(parts) == 2 && parts[1] != "" {
			return "/account/" + parts[0] + "/:id"
		}
		return path
	}

	parts[0] = ":id"

	return "/account/" + strings.Join(parts, "/")
}
