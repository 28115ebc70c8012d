package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/congregate/internal/app/system/auth"
	"go.uber.org/zap"
)

const testSecret = "test-jwt-secret-0123456789"

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func newTestTokens(t *testing.T) *auth.Tokens {
	t.Helper()
	tk, err := auth.NewTokens(testSecret, "congregate", time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	return tk
}

func protected(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := auth.CurrentAdmin(r)
		if !ok {
			t.Error("expected admin in context")
			return
		}
		w.Write([]byte(a.Email + " via " + a.Via))
	})
}

func TestRequireAdmin_NoCredentials_Returns401JSON(t *testing.T) {
	g := auth.NewGuard(newTestSessionManager(t), newTestTokens(t), zap.NewNop())

	rec := httptest.NewRecorder()
	g.RequireAdmin(protected(t)).ServeHTTP(rec, httptest.NewRequest("GET", "/api/admin/pending-users", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"message"`) {
		t.Errorf("expected JSON message, got %q", rec.Body.String())
	}
}

func TestRequireAdmin_BearerToken(t *testing.T) {
	tokens := newTestTokens(t)
	g := auth.NewGuard(nil, tokens, zap.NewNop())

	tok, err := tokens.Issue("admin@church.org")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	req := httptest.NewRequest("GET", "/api/admin/pending-users", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	g.RequireAdmin(protected(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "admin@church.org via token" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestRequireAdmin_BadToken(t *testing.T) {
	g := auth.NewGuard(newTestSessionManager(t), newTestTokens(t), zap.NewNop())

	for _, h := range []string{"Bearer nope", "Basic abc", "Bearer"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", h)
		rec := httptest.NewRecorder()
		g.RequireAdmin(protected(t)).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%q: expected 401, got %d", h, rec.Code)
		}
	}
}

func TestRequireAdmin_SessionCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	g := auth.NewGuard(sm, newTestTokens(t), zap.NewNop())

	// Sign in and capture the cookie.
	signRec := httptest.NewRecorder()
	if err := sm.SignIn(signRec, httptest.NewRequest("POST", "/api/admin/login", nil), "admin@church.org"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := signRec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	req := httptest.NewRequest("GET", "/api/admin/pending-users", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	g.RequireAdmin(protected(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "admin@church.org via session" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestSignOut_ExpiresCookie(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	if err := sm.SignOut(rec, httptest.NewRequest("POST", "/api/admin/logout", nil)); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 || cookies[0].MaxAge >= 0 {
		t.Error("expected an expired session cookie")
	}
}

func TestNewSessionManager_EmptyKeyInProduction(t *testing.T) {
	if _, err := auth.NewSessionManager("", "s", "", time.Hour, true, zap.NewNop()); err == nil {
		t.Error("expected error for empty key with secure cookies")
	}
	if _, err := auth.NewSessionManager("", "s", "", time.Hour, false, zap.NewNop()); err != nil {
		t.Errorf("dev mode should accept an empty key: %v", err)
	}
}
