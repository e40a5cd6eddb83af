package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"consignhub/backend/internal/cache"
	"consignhub/backend/internal/lock"
	"consignhub/backend/internal/service"
	"consignhub/backend/internal/store/memory"
)

const testManagerPIN = "123456"

func newTestAPI(t *testing.T) http.Handler {
	t.Helper()
	repo := memory.NewSeeded()
	svc := service.New(repo, cache.NewMemoryMetricsCache(), lock.NewLocalLocker(), service.Options{CodeSeed: 11})
	auth := NewAuthManager("test-secret-key-for-handlers-0123456789", time.Hour, testManagerPIN, repo)
	return New(svc, auth, "*").Handler()
}

func doRequest(t *testing.T, h http.Handler, method string, path string, token string, csrf string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = raw
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if csrf != "" {
		req.Header.Set("X-CSRF-Token", csrf)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func loginAs(t *testing.T, h http.Handler, username string, password string) string {
	t.Helper()
	rec := doRequest(t, h, http.MethodPost, "/api/v1/auth/login", "", "", map[string]string{
		"username": username,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login as %s: expected 200, got %d: %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	decodeBody(t, rec, &resp)
	if resp.AccessToken == "" {
		t.Fatalf("login as %s returned empty token", username)
	}
	return resp.AccessToken
}

func fetchCSRFToken(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := doRequest(t, h, http.MethodGet, "/api/v1/auth/csrf-token", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("csrf token: expected 200, got %d", rec.Code)
	}
	var resp struct {
		Token string `json:"csrf_token"`
	}
	decodeBody(t, rec, &resp)
	if resp.Token == "" {
		t.Fatalf("empty csrf token")
	}
	return resp.Token
}

func TestSecurityHeaders(t *testing.T) {
	h := newTestAPI(t)
	rec := doRequest(t, h, http.MethodGet, "/healthz", "", "", nil)

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Fatalf("header %s: expected %q, got %q", header, want, got)
		}
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthy response, got %d", rec.Code)
	}
}

func TestPreflightReturnsNoContent(t *testing.T) {
	h := newTestAPI(t)
	rec := doRequest(t, h, http.MethodOptions, "/api/v1/consignors", "", "", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected configured origin in CORS header")
	}
}

func TestLoginRateLimit(t *testing.T) {
	h := newTestAPI(t)
	for i := 0; i < 5; i++ {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/auth/login", "", "", map[string]string{
			"username": "admin",
			"password": "wrong-password",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, rec.Code)
		}
	}
	rec := doRequest(t, h, http.MethodPost, "/api/v1/auth/login", "", "", map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after repeated failures, got %d", rec.Code)
	}
}

func TestOversizedBodyRejected(t *testing.T) {
	h := newTestAPI(t)
	token := loginAs(t, h, "admin", "admin123")
	csrf := fetchCSRFToken(t, h)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/consignors", token, csrf, map[string]string{
		"name":  "Big Body",
		"notes": strings.Repeat("x", 2<<20),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized body, got %d", rec.Code)
	}
}

func TestManagerPINRateLimit(t *testing.T) {
	h := newTestAPI(t)
	token := loginAs(t, h, "admin", "admin123")
	csrf := fetchCSRFToken(t, h)

	body := map[string]string{"reason": "wrong item", "manager_pin": "000000"}
	for i := 0; i < 8; i++ {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/sales/tx-nonexistent/void", token, csrf, body)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("attempt %d: expected 403, got %d", i+1, rec.Code)
		}
	}
	rec := doRequest(t, h, http.MethodPost, "/api/v1/sales/tx-nonexistent/void", token, csrf, body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after repeated PIN failures, got %d", rec.Code)
	}
}

func TestCSRFRequiredForMutations(t *testing.T) {
	h := newTestAPI(t)
	token := loginAs(t, h, "admin", "admin123")

	rec := doRequest(t, h, http.MethodPost, "/api/v1/consignors", token, "", map[string]string{"name": "No Token"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without CSRF token, got %d", rec.Code)
	}
	rec = doRequest(t, h, http.MethodPost, "/api/v1/consignors", token, "not-a-valid-token", map[string]string{"name": "Bad Token"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with forged CSRF token, got %d", rec.Code)
	}
}

func TestMissingOrInvalidBearerToken(t *testing.T) {
	h := newTestAPI(t)
	if rec := doRequest(t, h, http.MethodGet, "/api/v1/consignors", "", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := doRequest(t, h, http.MethodGet, "/api/v1/consignors", "garbage", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with invalid token, got %d", rec.Code)
	}
}

func TestParsePositiveLimit(t *testing.T) {
	cases := []struct {
		raw      string
		fallback int
		max      int
		want     int
	}{
		{"", 50, 200, 50},
		{"abc", 50, 200, 50},
		{"-3", 50, 200, 50},
		{"25", 50, 200, 25},
		{"9999", 50, 200, 200},
		{"9999", 50, 0, 9999},
	}
	for _, tc := range cases {
		if got := parsePositiveLimit(tc.raw, tc.fallback, tc.max); got != tc.want {
			t.Fatalf("parsePositiveLimit(%q, %d, %d) = %d, want %d", tc.raw, tc.fallback, tc.max, got, tc.want)
		}
	}
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	if got := clientKey(req); got != "203.0.113.7" {
		t.Fatalf("expected host without port, got %q", got)
	}
	req.RemoteAddr = "[2001:db8::1]:443"
	if got := clientKey(req); got != "2001:db8::1" {
		t.Fatalf("expected IPv6 host without port, got %q", got)
	}
}
