package middleware

import (
	"net/http"
	"time"

	"github.com/quorum-wallet/quorum-wallet/internal/logger"
)

// Logging writes one structured access log line per request, with the
// request ID already attached to the context by the RequestID middleware.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := NewStatusRecorder(w)

		next.ServeHTTP(recorder, r)

		logger.Info(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.StatusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote", getIP(r),
		)
	})
}
