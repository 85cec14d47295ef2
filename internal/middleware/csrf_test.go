package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDefaultCSRFConfig_Development(t *testing.T) {
	authKey := []byte("12345678901234567890123456789012")
	cfg := DefaultCSRFConfig(authKey, true)

	if len(cfg.AuthKey) != 32 {
		t.Errorf("expected 32-byte AuthKey, got %d bytes", len(cfg.AuthKey))
	}

	// TrustedOrigins must be host-only, not full URLs
	if len(cfg.TrustedOrigins) != 2 {
		t.Fatalf("expected 2 TrustedOrigins in dev mode, got %d", len(cfg.TrustedOrigins))
	}
	for _, origin := range cfg.TrustedOrigins {
		if strings.HasPrefix(origin, "http") {
			t.Errorf("TrustedOrigin should be host:port, not full URL: %s", origin)
		}
	}
}

func TestDefaultCSRFConfig_Production(t *testing.T) {
	authKey := []byte("12345678901234567890123456789012")
	cfg := DefaultCSRFConfig(authKey, false)

	if len(cfg.TrustedOrigins) != 0 {
		t.Errorf("expected no TrustedOrigins in production, got %d", len(cfg.TrustedOrigins))
	}
}

func TestCSRF_AllowsSafeMethods(t *testing.T) {
	authKey := []byte("12345678901234567890123456789012")
	h := CSRF(DefaultCSRFConfig(authKey, false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("cross-site GET status = %d, want 200", rec.Code)
	}
}

func TestCSRF_RejectsCrossSitePOST(t *testing.T) {
	authKey := []byte("12345678901234567890123456789012")
	h := CSRF(DefaultCSRFConfig(authKey, false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/dashboard/articles", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("cross-site POST status = %d, want 403", rec.Code)
	}
}

func TestCSRF_AllowsSameOriginPOST(t *testing.T) {
	authKey := []byte("12345678901234567890123456789012")
	h := CSRF(DefaultCSRFConfig(authKey, false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/dashboard/articles", nil)
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("same-origin POST status = %d, want 200", rec.Code)
	}
}
