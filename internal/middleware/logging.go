package middleware

import (
	"net/http"
	"time"

	"financial-import-platform/internal/logger"
)

// LoggingMiddleware logs every request with method, path, status and duration,
// and recovers from handler panics.
type LoggingMiddleware struct {
	logger *logger.Logger
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(logger *logger.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Handler wraps the next handler with request logging and panic recovery
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if err := recover(); err != nil {
				m.logger.WithField("panic", err).Error("Handler panicked")
				http.Error(recorder, "Internal Server Error", http.StatusInternalServerError)
			}

			m.logger.WithField("method", r.Method).
				WithField("path", r.URL.Path).
				WithField("status", recorder.status).
				WithField("duration_ms", time.Since(start).Milliseconds()).
				Info("Handled request")
		}()

		next.ServeHTTP(recorder, r)
	})
}
