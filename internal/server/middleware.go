package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/upbit-mcp/internal/handlers"
)

// contextKey is the type for context keys used in middleware.
type contextKey string

const correlationIDKey contextKey = "correlation_id"

// maxBodySize limits MCP request bodies.
const maxBodySize = 1 << 20 // 1MB

// withMiddleware wraps the router with the middleware chain.
func (s *Server) withMiddleware(handler http.Handler) http.Handler {
	// Applied in reverse order (last applied = first executed)
	handler = s.recoveryMiddleware(handler)
	handler = s.maxBodySizeMiddleware(maxBodySize)(handler)
	handler = s.loggingMiddleware(handler)
	handler = s.correlationIDMiddleware(handler)
	return handler
}

// correlationIDMiddleware extracts or generates a correlation ID for request tracking.
func (s *Server) correlationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get("X-Request-ID")
		if correlationID == "" {
			correlationID = r.Header.Get("X-Correlation-ID")
		}
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		w.Header().Set("X-Correlation-ID", correlationID)

		ctx := context.WithValue(r.Context(), correlationIDKey, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs HTTP requests and responses.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		correlationID, _ := r.Context().Value(correlationIDKey).(string)
		logger := s.logger.WithCorrelationId(correlationID)

		event := logger.Debug()
		if rw.statusCode >= 500 {
			event = logger.Error()
		} else if rw.statusCode >= 400 {
			event = logger.Warn()
		}

		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Int("bytes", rw.bytesWritten).
			Str("remote", r.RemoteAddr).
			Msg("HTTP request")
	})
}

// recoveryMiddleware recovers from panics and returns 500 error.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				correlationID, _ := r.Context().Value(correlationIDKey).(string)

				s.logger.Error().
					Str("correlation_id", correlationID).
					Str("error", fmt.Sprintf("%v", err)).
					Str("path", r.URL.Path).
					Msg("panic recovered")

				handlers.WriteError(w, http.StatusInternalServerError, "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// maxBodySizeMiddleware limits the size of request bodies.
func (s *Server) maxBodySizeMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code and bytes written.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// Flush keeps event-stream responses from the MCP endpoint streaming.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
