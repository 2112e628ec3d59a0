package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/quietcut/quietcut/internal/logger"
)

const requestIDHeader = "X-Request-Id"

// withRequestID assigns every request a correlation id, echoes it back on
// the response, and logs the request's method/path/status/duration tagged
// with that id.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		logger.Info("request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

// Unwrap exposes the underlying ResponseWriter to http.NewResponseController,
// so controller-based calls reach the real connection. Plain type assertions
// do not use Unwrap; Flush below covers the http.Flusher case.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// Flush forwards to the embedded writer's Flusher, so a statusWriter wrapped
// around an SSE response stays a http.Flusher.
func (sw *statusWriter) Flush() {
	if f, ok := sw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
