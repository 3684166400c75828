package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/api/response"
	apperrors "github.com/welldanyogia/webrana-voicemail-backend/internal/errors"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/logger"
	"golang.org/x/time/rate"
)

// Rate limiter defaults
const (
	DefaultRequestsPerSecond = 10.0
	DefaultBurst             = 20
	limiterIdleTTL           = 10 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter manages rate limiters per IP address
type IPRateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

// NewIPRateLimiter creates a new IP-based rate limiter
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
		now:      time.Now,
	}
}

// GetLimiter returns the rate limiter for the given IP
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	v, exists := i.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(i.rate, i.burst)}
		i.visitors[ip] = v
	}
	v.lastSeen = i.now()

	return v.limiter
}

// CleanupOldEntries drops limiters not used within maxIdle
func (i *IPRateLimiter) CleanupOldEntries(maxIdle time.Duration) int {
	i.mu.Lock()
	defer i.mu.Unlock()

	cutoff := i.now().Add(-maxIdle)
	removed := 0
	for ip, v := range i.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(i.visitors, ip)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked IPs
func (i *IPRateLimiter) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.visitors)
}

// RunCleanup evicts idle limiters every interval until ctx is done
func (i *IPRateLimiter) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.CleanupOldEntries(limiterIdleTTL)
		}
	}
}

// RateLimiterWithConfig returns per-IP rate limiting middleware.
// Non-positive values fall back to the defaults.
func RateLimiterWithConfig(requestsPerSecond float64, burst int, security *logger.SecurityLogger) echo.MiddlewareFunc {
	return RateLimit(NewRateLimiter(requestsPerSecond, burst), security)
}

// NewRateLimiter builds an IPRateLimiter, applying defaults for non-positive values
func NewRateLimiter(requestsPerSecond float64, burst int) *IPRateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRequestsPerSecond
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return NewIPRateLimiter(rate.Limit(requestsPerSecond), burst)
}

// RateLimit returns middleware backed by an existing limiter
func RateLimit(limiter *IPRateLimiter, security *logger.SecurityLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			if !limiter.GetLimiter(ip).Allow() {
				if security != nil {
					security.RateLimitExceeded(ip, c.Path())
				}

				c.Response().Header().Set("Retry-After", "60")
				return c.JSON(http.StatusTooManyRequests, response.ErrorResponse{
					Success: false,
					Error:   "rate limit exceeded",
					Code:    apperrors.CodeRateLimited,
				})
			}

			return next(c)
		}
	}
}
