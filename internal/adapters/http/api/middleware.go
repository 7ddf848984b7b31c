package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/okian/ringside/internal/domain/types"
	"github.com/okian/ringside/pkg/metrics"
)

// Caller identity headers set by the upstream gateway.
const (
	HeaderCoachID   = "X-Coach-ID"
	HeaderCoachRole = "X-Coach-Role"
)

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		durationMs := float64(time.Since(start).Microseconds()) / 1000
		statusCodeStr := strconv.Itoa(wrapped.statusCode)

		metrics.RecordHTTPRequest(endpoint, r.Method, statusCodeStr)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, statusCodeStr, durationMs)

		if wrapped.statusCode >= http.StatusBadRequest {
			metrics.RecordErrorByEndpoint(endpoint, r.Method, getErrorType(wrapped.statusCode))
		}
	}
}

// getErrorType returns a standardized error type based on HTTP status code.
func getErrorType(statusCode int) string {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return "server_error"
	case statusCode == http.StatusTooManyRequests:
		return "rate_limit"
	case statusCode == http.StatusNotFound:
		return "not_found"
	case statusCode == http.StatusUnauthorized:
		return "unauthorized"
	case statusCode >= http.StatusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}

// CallerMiddleware resolves the caller from the identity headers and stores
// it in the request context. The coach id must be a UUID; a missing role
// means coach.
func CallerMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "api.caller"
		caller, err := callerFromHeaders(r.Header)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", WrapKind(op, ErrUnauthorized, err))
			return
		}
		next.ServeHTTP(w, r.WithContext(types.WithCaller(r.Context(), caller)))
	}
}

func callerFromHeaders(h http.Header) (types.Caller, error) {
	raw := strings.TrimSpace(h.Get(HeaderCoachID))
	if raw == "" {
		return types.Caller{}, fmt.Errorf("missing %s header", HeaderCoachID)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return types.Caller{}, fmt.Errorf("invalid %s header: %w", HeaderCoachID, err)
	}
	role := types.RoleCoach
	if v := h.Get(HeaderCoachRole); strings.TrimSpace(v) != "" {
		if role, err = types.ParseRole(v); err != nil {
			return types.Caller{}, err
		}
	}
	return types.Caller{CoachID: id.String(), Role: role}, nil
}

// RateLimiter keeps one token bucket per coach. Buckets idle long enough to
// have refilled are dropped, since a fresh bucket is in the same state.
type RateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
	limiters  map[string]*coachLimiter
}

type coachLimiter struct {
	*rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per coach with the given burst.
// It returns nil when perMinute is not positive.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	return newRateLimiter(perMinute, burst, time.Now)
}

func newRateLimiter(perMinute, burst int, now func() time.Time) *RateLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	every := time.Minute / time.Duration(perMinute)
	return &RateLimiter{
		limit:     rate.Every(every),
		burst:     burst,
		idle:      every * time.Duration(burst),
		lastSweep: now(),
		now:       now,
		limiters:  make(map[string]*coachLimiter),
	}
}

// Allow reports whether the coach may make another request now.
func (l *RateLimiter) Allow(coachID string) bool {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}
	lim, ok := l.limiters[coachID]
	if !ok {
		lim = &coachLimiter{Limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[coachID] = lim
	}
	lim.lastSeen = now
	l.mu.Unlock()

	return lim.AllowN(now, 1)
}

// sweep drops buckets idle for at least the refill time. l.mu must be held.
func (l *RateLimiter) sweep(now time.Time) {
	for id, lim := range l.limiters {
		if now.Sub(lim.lastSeen) >= l.idle {
			delete(l.limiters, id)
		}
	}
	l.lastSweep = now
}

// Middleware rejects requests over the caller's budget with 429. It must
// run after CallerMiddleware.
func (l *RateLimiter) Middleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "api.rate_limit"
		caller, _ := types.CallerFrom(r.Context())
		if !l.Allow(caller.CoachID) {
			metrics.RecordRateLimited(endpoint)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate_limited", NewKind(op, ErrRateLimited))
			return
		}
		next.ServeHTTP(w, r)
	}
}
