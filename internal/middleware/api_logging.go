package middleware

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/repositories"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/timeutil"
)

// APILoggingMiddleware logs API requests to the request_logs table
type APILoggingMiddleware struct {
	repo    *repositories.RequestLogRepository
	logChan chan *models.APIRequestLog
}

// responseWriter wraps http.ResponseWriter to capture status code and size
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

// NewAPILoggingMiddleware creates a new API logging middleware
func NewAPILoggingMiddleware(repo *repositories.RequestLogRepository) *APILoggingMiddleware {
	m := &APILoggingMiddleware{
		repo:    repo,
		logChan: make(chan *models.APIRequestLog, 1000), // Buffer for async logging
	}

	// Start async log writer
	go m.asyncLogWriter()

	return m
}

// asyncLogWriter writes logs asynchronously to avoid blocking requests
func (m *APILoggingMiddleware) asyncLogWriter() {
	for entry := range m.logChan {
		if m.repo == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := m.repo.Insert(ctx, entry); err != nil {
			_ = err // Request logging must never affect requests
		}
		cancel()
	}
}

// Handler returns the middleware handler
func (m *APILoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip logging for static files and health checks
		if shouldSkipLogging(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := timeutil.Now()

		// Capture request size
		var requestSize int
		if r.Body != nil {
			body, _ := io.ReadAll(r.Body)
			requestSize = len(body)
			r.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		// Wrap response writer to capture status and size
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		// Authenticate runs deeper in the chain on subrouters, so its context
		// values never flow back here. Seed an identity carrier it can fill.
		ident := &RequestIdentity{}
		r = r.WithContext(WithRequestIdentity(r.Context(), ident))

		next.ServeHTTP(wrapped, r)

		logEntry := newLogEntry(r, wrapped, start, requestSize, ident)

		// Send to async writer (non-blocking)
		select {
		case m.logChan <- logEntry:
		default:
			log.Printf("[APILogging] Log buffer full, dropping log entry for %s", r.URL.Path)
		}
	})
}

// newLogEntry assembles a request_logs row from the completed request.
func newLogEntry(r *http.Request, wrapped *responseWriter, start time.Time, requestSize int, ident *RequestIdentity) *models.APIRequestLog {
	duration := time.Since(start)

	var userID *int
	var username *string
	if ident != nil && ident.UserID != 0 {
		userID = &ident.UserID
		username = &ident.Username
	}

	logEntry := &models.APIRequestLog{
		Time:         timeutil.Now(),
		Method:       r.Method,
		Path:         r.URL.Path,
		StatusCode:   wrapped.statusCode,
		DurationMs:   float64(duration.Microseconds()) / 1000.0,
		RequestSize:  requestSize,
		ResponseSize: wrapped.bytesWritten,
		UserID:       userID,
		Username:     username,
		IPAddress:    getClientIP(r),
		UserAgent:    r.UserAgent(),
	}

	// Capture error message for error responses
	if wrapped.statusCode >= 400 {
		errMsg := http.StatusText(wrapped.statusCode)
		logEntry.ErrorMessage = &errMsg
	}

	return logEntry
}

// shouldSkipLogging returns true for paths that shouldn't be logged
func shouldSkipLogging(path string) bool {
	skipPaths := []string{
		"/health",
		"/metrics",
		"/favicon.ico",
		"/ws",
	}

	for _, skip := range skipPaths {
		if strings.HasPrefix(path, skip) {
			return true
		}
	}
	return false
}

// getClientIP extracts the client IP, honoring reverse-proxy headers
func getClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return fwd
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	return r.RemoteAddr
}
