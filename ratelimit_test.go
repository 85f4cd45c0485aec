package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func limiterTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger = logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return gin.New()
}

func TestAnonRateLimitShortCircuits(t *testing.T) {
	r := limiterTestEngine(t)
	r.GET("/ping", anonRateLimit(newLimiter("2-M")), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i+1, rec.Code)
		}
	}
	rec := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once quota exhausted, got %d", rec.Code)
	}
}

func TestUserRateLimitKeyedPerUser(t *testing.T) {
	r := limiterTestEngine(t)
	l := newLimiter("1-M")
	// stand-in for jwtAuthMiddleware: identity comes from a header
	fakeAuth := func(c *gin.Context) {
		if c.GetHeader("X-User") == "2" {
			c.Set("userID", uint(2))
		} else {
			c.Set("userID", uint(1))
		}
	}
	r.GET("/ping", fakeAuth, userRateLimit(l), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	do := func(user string) int {
		rec := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-User", user)
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do("1"); code != http.StatusOK {
		t.Fatalf("user 1 first request: expected 200 got %d", code)
	}
	if code := do("1"); code != http.StatusTooManyRequests {
		t.Fatalf("user 1 second request: expected 429 got %d", code)
	}
	// a different user has its own quota
	if code := do("2"); code != http.StatusOK {
		t.Fatalf("user 2 first request: expected 200 got %d", code)
	}
}

func TestUserRateLimitRejectsMissingIdentity(t *testing.T) {
	r := limiterTestEngine(t)
	r.GET("/ping", userRateLimit(newLimiter("10-M")), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	rec := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}
}
