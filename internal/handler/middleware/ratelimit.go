package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"coupon-issuer/internal/domain/coupon"
	"coupon-issuer/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL      = 15 * time.Minute
	limiterCleanupEvery = 2 * time.Minute
	retryAfterHeader    = "Retry-After"
)

// AdmissionLimiter keeps one token bucket per client IP in front of the admission endpoints.
type AdmissionLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rps     rate.Limit
	burst   int
	now     func() time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewAdmissionLimiter returns nil when cfg.AdmissionRPS is not positive.
func NewAdmissionLimiter(cfg config.IssueConfig) *AdmissionLimiter {
	if cfg.AdmissionRPS <= 0 {
		return nil
	}
	burst := cfg.AdmissionBurst
	if burst <= 0 {
		burst = 1
	}
	return &AdmissionLimiter{
		entries: make(map[string]*limiterEntry),
		rps:     rate.Limit(cfg.AdmissionRPS),
		burst:   burst,
		now:     time.Now,
	}
}

func (l *AdmissionLimiter) limiter(key string) *rate.Limiter {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if ent, ok := l.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(l.rps, l.burst)
	l.entries[key] = &limiterEntry{lim: lim, lastSeen: now}
	return lim
}

func (l *AdmissionLimiter) Cleanup() {
	cutoff := l.now().Add(-limiterIdleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, ent := range l.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(l.entries, k)
		}
	}
}

// StartJanitor drops idle buckets until ctx is done.
func (l *AdmissionLimiter) StartJanitor(ctx context.Context) {
	t := time.NewTicker(limiterCleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup()
			}
		}
	}()
}

// Middleware is a pass-through on a nil limiter.
func (l *AdmissionLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}

		res := l.limiter(c.ClientIP()).Reserve()
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			c.Header(retryAfterHeader, strconv.Itoa(int(delay.Round(time.Second)/time.Second)+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"message": "Too many requests"},
				"kind":  coupon.KindFailCouponIssueRequest,
			})
			return
		}
		c.Next()
	}
}
