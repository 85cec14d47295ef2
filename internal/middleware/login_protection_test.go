// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// testLoginProtectionConfig returns a config suitable for fast testing.
func testLoginProtectionConfig(maxAttempts int, lockoutDuration, attemptWindow time.Duration) LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       10,
		IPBurst:           100,
		MaxFailedAttempts: maxAttempts,
		LockoutDuration:   lockoutDuration,
		AttemptWindow:     attemptWindow,
	}
}

func TestDefaultLoginProtectionConfig(t *testing.T) {
	cfg := DefaultLoginProtectionConfig()

	if cfg.IPRateLimit != 0.5 {
		t.Errorf("IPRateLimit = %v, want 0.5", cfg.IPRateLimit)
	}
	if cfg.IPBurst != 5 {
		t.Errorf("IPBurst = %d, want 5", cfg.IPBurst)
	}
	if cfg.MaxFailedAttempts != 5 {
		t.Errorf("MaxFailedAttempts = %d, want 5", cfg.MaxFailedAttempts)
	}
	if cfg.LockoutDuration != 15*time.Minute {
		t.Errorf("LockoutDuration = %v, want 15m", cfg.LockoutDuration)
	}
}

func TestNewLoginProtectionDefaultValues(t *testing.T) {
	// Zero config values fall back to defaults
	lp := NewLoginProtection(LoginProtectionConfig{})

	if lp.maxFailedAttempts != 5 {
		t.Errorf("maxFailedAttempts = %d, want 5 (default)", lp.maxFailedAttempts)
	}
	if lp.lockoutDuration != 15*time.Minute {
		t.Errorf("lockoutDuration = %v, want 15m (default)", lp.lockoutDuration)
	}
}

func TestLoginProtectionAccountLockout(t *testing.T) {
	cfg := testLoginProtectionConfig(3, 1*time.Second, 1*time.Minute)
	lp := NewLoginProtection(cfg)
	email := "test@example.com"

	locked, _ := lp.IsAccountLocked(email)
	if locked {
		t.Error("Account should not be locked initially")
	}

	for i := 0; i < cfg.MaxFailedAttempts; i++ {
		lp.RecordFailedAttempt(email)
	}

	locked, remaining := lp.IsAccountLocked(email)
	if !locked {
		t.Error("Account should be locked after max failed attempts")
	}
	if remaining <= 0 {
		t.Error("Remaining lockout time should be positive")
	}

	time.Sleep(cfg.LockoutDuration + 100*time.Millisecond)

	locked, _ = lp.IsAccountLocked(email)
	if locked {
		t.Error("Account should be unlocked after lockout expires")
	}
}

func TestLoginProtectionSuccessResetsAttempts(t *testing.T) {
	cfg := testLoginProtectionConfig(3, 1*time.Minute, 1*time.Minute)
	lp := NewLoginProtection(cfg)
	email := "test@example.com"

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	if got := lp.GetRemainingAttempts(email); got != 1 {
		t.Errorf("GetRemainingAttempts = %d, want 1", got)
	}

	lp.RecordSuccessfulLogin(email)
	if got := lp.GetRemainingAttempts(email); got != cfg.MaxFailedAttempts {
		t.Errorf("GetRemainingAttempts after success = %d, want %d", got, cfg.MaxFailedAttempts)
	}
}

func TestLoginProtectionExponentialBackoff(t *testing.T) {
	cfg := testLoginProtectionConfig(2, 1*time.Second, 1*time.Minute)
	lp := NewLoginProtection(cfg)
	email := "repeat@example.com"

	// First lockout uses the base duration
	lp.RecordFailedAttempt(email)
	locked, d1 := lp.RecordFailedAttempt(email)
	if !locked {
		t.Fatal("Account should lock on reaching max attempts")
	}
	if d1 != cfg.LockoutDuration {
		t.Errorf("first lockout = %v, want %v", d1, cfg.LockoutDuration)
	}

	time.Sleep(cfg.LockoutDuration + 100*time.Millisecond)

	// Second lockout doubles
	lp.RecordFailedAttempt(email)
	locked, d2 := lp.RecordFailedAttempt(email)
	if !locked {
		t.Fatal("Account should lock again")
	}
	if d2 != 2*cfg.LockoutDuration {
		t.Errorf("second lockout = %v, want %v", d2, 2*cfg.LockoutDuration)
	}
}

func TestLoginProtectionMiddleware(t *testing.T) {
	// One request per minute, burst 1: the second POST must be rejected
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       1.0 / 60.0,
		IPBurst:           1,
		MaxFailedAttempts: 5,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := lp.Middleware()(next)

	// GET requests bypass the limiter
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET request %d blocked: %d", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first POST blocked: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second POST status = %d, want 429", rec.Code)
	}

	// A different IP gets its own bucket
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST from second IP blocked: %d", rec.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		realIP     string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"x-real-ip preferred", "1.2.3.4", "5.6.7.8", "9.9.9.9:80", "1.2.3.4"},
		{"x-forwarded-for fallback", "", "5.6.7.8", "9.9.9.9:80", "5.6.7.8"},
		{"remote addr fallback", "", "", "9.9.9.9:80", "9.9.9.9:80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			req.RemoteAddr = tt.remoteAddr

			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
