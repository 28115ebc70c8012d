package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_AllowUntilLimit(t *testing.T) {
	l := New(2, time.Minute)
	defer l.Close()

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two requests should be allowed")
	}
	if l.Allow("a") {
		t.Error("third request should be blocked")
	}
	if !l.Allow("b") {
		t.Error("other keys are counted separately")
	}
	if got := l.Remaining("a"); got != 0 {
		t.Errorf("Remaining() = %d, want 0", got)
	}
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Close()

	now := time.Now()
	l.now = func() time.Time { return now }
	l.Allow("a")
	if l.Allow("a") {
		t.Fatal("second request in window should be blocked")
	}

	l.now = func() time.Time { return now.Add(2 * time.Minute) }
	if !l.Allow("a") {
		t.Error("request after window should be allowed")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header string
		value  string
		remote string
		want   string
	}{
		{"forwarded ignored", "X-Forwarded-For", "10.0.0.1, 10.0.0.2", "1.2.3.4:5", "1.2.3.4"},
		{"real ip ignored", "X-Real-IP", " 10.0.0.9 ", "1.2.3.4:5", "1.2.3.4"},
		{"remote addr", "", "", "1.2.3.4:5678", "1.2.3.4"},
		{"bare address", "", "", "198.51.100.7", "198.51.100.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.header != "" {
				r.Header.Set(tt.header, tt.value)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPerIP_Returns429(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Close()

	h := PerIP(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/register", nil))
		if rec.Code != want {
			t.Errorf("request %d: status = %d, want %d", i, rec.Code, want)
		}
	}
}

func TestLoginLimiter_ResetEmail(t *testing.T) {
	ll := NewLoginLimiter(100, 1)
	defer ll.Close()

	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	if ok, _ := ll.Check(r, "a@x.com"); !ok {
		t.Fatal("first attempt should pass")
	}
	if ok, msg := ll.Check(r, "A@X.com"); ok || msg == "" {
		t.Fatal("second attempt for same account should be blocked")
	}
	ll.ResetEmail("a@x.com")
	if ok, _ := ll.Check(r, "a@x.com"); !ok {
		t.Error("attempt after reset should pass")
	}
}
