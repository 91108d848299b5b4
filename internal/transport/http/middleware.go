package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"corporate-agent/internal/metrics"
)

// instrument logs each request and records Prometheus metrics. The wrapped
// writer keeps http.Hijacker so websocket upgrades pass through.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			status := ww.Status()
			if status == 0 {
				// Hijacked connections never call WriteHeader on ww.
				status = http.StatusOK
				if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
					status = http.StatusSwitchingProtocols
				}
			}
			path := metricPath(r.URL.Path)
			elapsed := time.Since(start)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(elapsed.Seconds())

			slog.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"latency", elapsed,
				"request_id", chimw.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// metricPath keeps label cardinality bounded.
func metricPath(path string) string {
	switch path {
	case "/telegram", "/admin", "/status", "/ws":
		return path
	default:
		return "other"
	}
}
