package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func uploadLimitRouter(limiter *RateLimiter, perMinute int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/documents", RateLimit(RateLimitConfig{
		Rules: map[string]RateLimitRule{
			"UPLOAD": {Rate: float64(perMinute) / 60.0, Burst: 2},
		},
		DefaultGroup: "UPLOAD",
		Limiter:      limiter,
	}), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func TestRateLimitAllowsBurstThenRejects(t *testing.T) {
	now := time.Now()
	limiter := NewRateLimiter(func() time.Time { return now })
	r := uploadLimitRouter(limiter, 30)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/documents", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("request %d: status = %d, want 201", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/documents", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("Retry-After header missing")
	}
}

func TestRateLimitRefillsOverTime(t *testing.T) {
	now := time.Now()
	limiter := NewRateLimiter(func() time.Time { return now })
	r := uploadLimitRouter(limiter, 60)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/documents", nil))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/documents", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 before refill", w.Code)
	}

	now = now.Add(2 * time.Second)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/documents", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 after refill", w.Code)
	}
}
