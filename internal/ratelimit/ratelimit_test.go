package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestLimiterAllow(t *testing.T) {
	limiter := New(Config{RequestsPerSecond: 1, BurstSize: 5, CleanupInterval: time.Minute})
	defer limiter.Stop()

	now := time.Now()
	key := "test-ip"

	// Should allow burst size requests immediately
	for i := 0; i < 5; i++ {
		if !limiter.allowAt(key, now) {
			t.Errorf("Request %d should be allowed (within burst)", i)
		}
	}

	if limiter.allowAt(key, now) {
		t.Error("Request after burst should be denied")
	}

	// One second refills one token at 1 rps
	if !limiter.allowAt(key, now.Add(time.Second)) {
		t.Error("Request after waiting should be allowed")
	}
}

func TestLimiterMultipleClients(t *testing.T) {
	limiter := New(Config{RequestsPerSecond: 1, BurstSize: 3})
	defer limiter.Stop()
	now := time.Now()

	for i := 0; i < 3; i++ {
		limiter.allowAt("client-a", now)
	}

	if limiter.allowAt("client-a", now) {
		t.Error("Client A should be rate limited")
	}
	if !limiter.allowAt("client-b", now) {
		t.Error("Client B should not be rate limited")
	}
}

func TestLimiterDisabled(t *testing.T) {
	limiter := New(Config{RequestsPerSecond: 0})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		if !limiter.Allow("any") {
			t.Fatal("disabled limiter should allow everything")
		}
	}
}

func TestLimiterEvict(t *testing.T) {
	limiter := New(Config{RequestsPerSecond: 1, BurstSize: 1})
	defer limiter.Stop()

	past := time.Now().Add(-time.Hour)
	limiter.allowAt("idle", past)
	limiter.evict(time.Now().Add(-time.Minute))

	limiter.mu.Lock()
	n := len(limiter.clients)
	limiter.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected idle client to be evicted, %d left", n)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.RequestsPerSecond != 20 {
		t.Errorf("Expected 20 requests/sec, got %v", cfg.RequestsPerSecond)
	}
	if cfg.BurstSize != 40 {
		t.Errorf("Expected burst size 40, got %d", cfg.BurstSize)
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := New(Config{RequestsPerSecond: 0.001, BurstSize: 1})
	defer limiter.Stop()

	r := gin.New()
	r.Use(limiter.Middleware())
	r.POST("/mcp", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Error("expected Retry-After header")
	}
}
