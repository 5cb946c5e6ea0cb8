package restapi

import (
	"log/slog"
	"net/http"
	"time"

	"planner.onebusaway.org/internal/logging"
)

// statusRecorder captures the status code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.written = true
	return rw.ResponseWriter.Write(b)
}

// NewRequestLoggingMiddleware logs one line per request and makes a request
// scoped logger available through logging.FromContext.
func NewRequestLoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestLogger := logger.With(
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path))
			r = r.WithContext(logging.WithLogger(r.Context(), requestLogger))

			recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(recorder, r)

			logging.LogHTTPRequest(logger,
				r.Method,
				r.URL.Path,
				recorder.statusCode,
				float64(time.Since(start).Microseconds())/1000,
				slog.String("user_agent", r.Header.Get("User-Agent")),
				slog.String("component", "http_server"))
		})
	}
}
