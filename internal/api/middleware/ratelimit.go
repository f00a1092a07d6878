package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	apperrors "github.com/welldanyogia/folio-backend/internal/errors"
	"github.com/welldanyogia/folio-backend/internal/logger"
	"github.com/welldanyogia/folio-backend/internal/metrics"
	"golang.org/x/time/rate"
)

type visitor struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// VisitorLimiter keeps one token bucket per client IP
type VisitorLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// NewVisitorLimiter allows each IP limit requests per second with the given burst
func NewVisitorLimiter(limit rate.Limit, burst int) *VisitorLimiter {
	return &VisitorLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
		now:      time.Now,
	}
}

// Take spends one token for ip. When the bucket is empty it returns false and
// how long until a token is available; nothing is spent in that case.
func (l *VisitorLimiter) Take(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{bucket: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now

	r := v.bucket.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return false, wait
	}
	return true, 0
}

// Len is the number of IPs currently tracked
func (l *VisitorLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Prune forgets IPs idle for longer than maxIdle
func (l *VisitorLimiter) Prune(maxIdle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-maxIdle)
	for ip, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
		}
	}
}

// RunPruner calls Prune every interval until ctx is done
func (l *VisitorLimiter) RunPruner(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Prune(maxIdle)
		}
	}
}

// retryAfter renders wait as whole seconds, never less than one
func retryAfter(wait time.Duration) string {
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// RateLimit rejects requests from IPs that have exhausted their bucket with
// 429 RATE_LIMITED and a Retry-After header.
func RateLimit(limiter *VisitorLimiter, secLogger *logger.SecurityLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			allowed, wait := limiter.Take(ip)
			if allowed {
				return next(c)
			}

			if secLogger != nil {
				secLogger.RateLimitExceeded(ip, c.Request().URL.Path)
			}
			metrics.RateLimitHits.WithLabelValues(routePath(c)).Inc()

			after := retryAfter(wait)
			c.Response().Header().Set("Retry-After", after)
			return echo.NewHTTPError(http.StatusTooManyRequests, map[string]interface{}{
				"success":     false,
				"error":       apperrors.ErrRateLimited.Error(),
				"code":        apperrors.CodeRateLimited,
				"retry_after": after,
			})
		}
	}
}

// RateLimiterWithConfig is RateLimit over a fresh VisitorLimiter
func RateLimiterWithConfig(requestsPerSecond float64, burst int, secLogger *logger.SecurityLogger) echo.MiddlewareFunc {
	return RateLimit(NewVisitorLimiter(rate.Limit(requestsPerSecond), burst), secLogger)
}
