//go:build unit

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coupon-issuer/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedRouter(l *AdmissionLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/issue", l.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hit(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/issue", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNewAdmissionLimiter_DisabledWithoutRate(t *testing.T) {
	l := NewAdmissionLimiter(config.IssueConfig{AdmissionRPS: 0, AdmissionBurst: 5})
	assert.Nil(t, l)

	r := newLimitedRouter(l)
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1").Code)
	}
}

func TestAdmissionLimiter_BurstThenReject(t *testing.T) {
	l := NewAdmissionLimiter(config.IssueConfig{AdmissionRPS: 0.001, AdmissionBurst: 2})
	require.NotNil(t, l)
	r := newLimitedRouter(l)

	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1").Code)

	w := hit(r, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.2").Code, "buckets are per client")
}

func TestAdmissionLimiter_CleanupDropsIdleBuckets(t *testing.T) {
	l := NewAdmissionLimiter(config.IssueConfig{AdmissionRPS: 1, AdmissionBurst: 1})
	require.NotNil(t, l)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.limiter("a")

	now = now.Add(limiterIdleTTL / 2)
	l.limiter("b")

	now = now.Add(limiterIdleTTL/2 + time.Second)
	l.Cleanup()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.entries, "a")
	assert.Contains(t, l.entries, "b")
}
