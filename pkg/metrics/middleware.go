package metrics

import (
	"net/http"
	"time"
)

// Middleware wraps next and records request count and latency under route.
func (r *Recorder) Middleware(route string, next http.HandlerFunc) http.HandlerFunc {
	if r == nil {
		return next
	}
	return func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, req)

		r.ObserveHTTP(route, req.Method, wrapped.statusCode, time.Since(start))
	}
}

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}
