package middleware

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"arff/pkg/metrics"
)

var requestSeq atomic.Uint64

// recorder remembers the status a handler wrote.
type recorder struct {
	http.ResponseWriter
	code int
}

func (rec *recorder) WriteHeader(code int) {
	rec.code = code
	rec.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the real writer.
func (rec *recorder) Unwrap() http.ResponseWriter { return rec.ResponseWriter }

// RouteFunc names the route a request matched, for metric labels.
type RouteFunc func(r *http.Request) string

// Timing logs every request and records it in m under route's label.
// Requests slower than slow are logged at WARN, the rest at DEBUG.
// A nil route, or one returning "", labels the request "other".
func Timing(m *metrics.Manager, slow time.Duration, route RouteFunc) func(http.Handler) http.Handler {
	label := func(r *http.Request) string {
		if route == nil {
			return "other"
		}
		if name := route(r); name != "" {
			return name
		}
		return "other"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			began := time.Now()
			rec := &recorder{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(rec, r)
			took := time.Since(began)

			level := slog.LevelDebug
			event := "request"
			if slow > 0 && took >= slow {
				level, event = slog.LevelWarn, "slow_request"
			}
			slog.Log(r.Context(), level, event,
				"request_id", requestSeq.Add(1),
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.code,
				"duration_ms", took.Milliseconds(),
			)
			m.ObserveRequest(label(r), r.Method, rec.code, took)
		})
	}
}
