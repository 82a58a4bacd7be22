package http

import (
	"net/http"
	"time"

	"github.com/vogiaan1904/ticketbottle-reservation/pkg/logger"
)

// RequestLogger logs every request with its status and duration.
func RequestLogger(l logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(ww, r)

			l.Infof(r.Context(), "HTTP %s %s -> %d (%dms)",
				r.Method, r.URL.Path, ww.statusCode, time.Since(start).Milliseconds())
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
