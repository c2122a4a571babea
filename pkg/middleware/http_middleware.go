package middleware

import (
	"gomarketplace_ingest/metrics"
	"net/http"
	"time"
)

// statusRecorder запоминает код ответа служебного сервера метрик.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// PrometheusMiddleware records method, route and status of every request to the
// metrics server. Unknown paths collapse into a single "other" label.
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		metrics.RecordRequest(r.Method, routeLabel(r.URL.Path), rw.status, time.Since(start))
	})
}

func routeLabel(path string) string {
	switch path {
	case "/metrics", "/healthz":
		return path
	default:
		return "other"
	}
}
