package app

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// RequestIDFrom returns the id assigned by the request-id middleware.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (g *Gateway) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)

		g.logger.WithFields(logrus.Fields{
			"request_id":  RequestIDFrom(r.Context()),
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      sr.status,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("http request")
	})
}

func (g *Gateway) instrument(next http.Handler) http.Handler {
	if g.cfg.Metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)

		// r.Pattern è impostato dal mux sulla stessa richiesta
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		g.cfg.Metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(sr.status)).Inc()
		g.cfg.Metrics.HTTPLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// rateLimit applies only to requests that change state.
func (g *Gateway) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead && !g.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
