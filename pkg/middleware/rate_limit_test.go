package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowEnforcesLimitPerKey(t *testing.T) {
	limiter := NewClientRateLimiter(3, time.Minute, testLogger())
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
	}
	if limiter.Allow("10.0.0.1") {
		t.Error("Expected fourth request to be rejected")
	}

	// Another client keeps its own counter.
	if !limiter.Allow("10.0.0.2") {
		t.Error("Expected different client to be allowed")
	}
}

func TestAllowSlidingWindow(t *testing.T) {
	limiter := NewClientRateLimiter(1, 20*time.Millisecond, testLogger())
	defer limiter.Stop()

	if !limiter.Allow("10.0.0.1") {
		t.Fatal("Expected first request to be allowed")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatal("Expected second request to be rejected inside the window")
	}

	time.Sleep(25 * time.Millisecond)

	if !limiter.Allow("10.0.0.1") {
		t.Error("Expected request to be allowed after the window passed")
	}
}

func TestAllowEmptyKey(t *testing.T) {
	limiter := NewClientRateLimiter(1, time.Minute, testLogger())
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		if !limiter.Allow("") {
			t.Fatal("Expected unkeyed requests to pass through")
		}
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewClientRateLimiter(1, time.Minute, testLogger())
	defer limiter.Stop()

	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", rec.Code)
	}
}
