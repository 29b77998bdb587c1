package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JonMunkholm/recipientcsv/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.RemoteAddr))
	})
}

func TestAPIKeyAuth(t *testing.T) {
	cfg := &config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"alpha", "beta"}}
	h := APIKeyAuth(cfg)(okHandler())

	tests := []struct {
		name     string
		header   string
		value    string
		want     int
		wantCode string
	}{
		{"missing", "", "", http.StatusUnauthorized, CodeMissingKey},
		{"invalid", "X-API-Key", "gamma", http.StatusForbidden, CodeInvalidKey},
		{"valid header", "X-API-Key", "beta", http.StatusOK, ""},
		{"valid bearer", "Authorization", "Bearer alpha", http.StatusOK, ""},
		{"other scheme", "Authorization", "Basic alpha", http.StatusUnauthorized, CodeMissingKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/errors", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.wantCode != "" && !strings.Contains(rec.Body.String(), tt.wantCode) {
				t.Errorf("body %q should contain %s", rec.Body.String(), tt.wantCode)
			}
		})
	}
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	h := APIKeyAuth(&config.SecurityConfig{})(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestTrustedRealIP(t *testing.T) {
	h := TrustedRealIP([]string{"10.0.0.0/8", "192.168.1.5", "not-an-ip"})(okHandler())

	tests := []struct {
		name   string
		remote string
		real   string
		xff    string
		want   string
	}{
		{"untrusted keeps remote", "203.0.113.9:4000", "198.51.100.1", "", "203.0.113.9:4000"},
		{"trusted uses real ip", "10.1.2.3:4000", "198.51.100.1", "", "198.51.100.1"},
		{"trusted single address", "192.168.1.5:80", "", "198.51.100.2, 10.0.0.1", "198.51.100.2"},
		{"trusted invalid header", "10.1.2.3:4000", "garbage", "", "10.1.2.3:4000"},
		{"trusted without headers", "10.1.2.3:4000", "", "", "10.1.2.3:4000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.real != "" {
				req.Header.Set("X-Real-IP", tt.real)
			}
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if got := rec.Body.String(); got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	got := ParseTrustedProxies([]string{" 10.0.0.0/8 ", "", "::1", "bogus"})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %v", len(got), got)
	}
	if got[1].Bits() != 128 {
		t.Errorf("bare IPv6 address should be a /128, got /%d", got[1].Bits())
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte("four"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/check/sms", nil))

	out := buf.String()
	for _, want := range []string{"level=WARN", "status=422", "bytes=4", "path=/api/check/sms"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q should contain %q", out, want)
		}
	}
}
