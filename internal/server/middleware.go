package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/Veraticus/roundup/internal/common"
	"github.com/google/uuid"
)

type ctxKey int

const requestIDKey ctxKey = iota

// RequestIDHeader carries the id assigned to every request.
const RequestIDHeader = "X-Request-ID"

// RequestID returns the id stored on ctx by the request middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// withRequestLogging assigns a request id and logs the start and end of
// every request.
func (s *Server) withRequestLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		w.Header().Set(RequestIDHeader, requestID)
		w.Header().Set("X-Content-Type-Options", "nosniff")

		common.LogDebug(ctx, "Request started", common.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"url":        r.URL.Path,
			"client_ip":  clientIP(r),
		})

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		common.LogInfo(ctx, "Request completed", common.Fields{
			"request_id":  requestID,
			"method":      r.Method,
			"url":         r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
