package ratelimit_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/himatika/internal/app/system/ratelimit"
)

func TestLimiter_BurstThenBlock(t *testing.T) {
	l := ratelimit.New(1, 3)
	for i := 0; i < 3; i++ {
		if !l.Allow("a") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("a") {
		t.Error("fourth request should be blocked")
	}
	if l.RetryAfter("a") <= 0 {
		t.Error("expected positive retry-after")
	}
	if !l.Allow("b") {
		t.Error("other key should have its own bucket")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := ratelimit.New(1, 1)
	l.Allow("a")
	if l.Allow("a") {
		t.Fatal("second request should be blocked")
	}
	l.Reset("a")
	if !l.Allow("a") {
		t.Error("request after reset should be allowed")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"forwarded for", "203.0.113.5, 10.0.0.1", "", "10.0.0.2:1234", "203.0.113.5"},
		{"real ip", "", "198.51.100.7", "10.0.0.2:1234", "198.51.100.7"},
		{"remote addr", "", "", "192.0.2.1:5555", "192.0.2.1"},
		{"remote without port", "", "", "192.0.2.9", "192.0.2.9"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/signin", nil)
			r.RemoteAddr = tc.remote
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xri != "" {
				r.Header.Set("X-Real-IP", tc.xri)
			}
			if got := ratelimit.ClientIP(r); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSigninLimiter_PerUsername(t *testing.T) {
	s := ratelimit.NewSigninLimiter(60, 10) // username bucket: burst 5

	for i := 0; i < 5; i++ {
		r := httptest.NewRequest("POST", "/signin", nil)
		r.RemoteAddr = "192.0.2.1:1"
		if ok, _ := s.Check(r, "Rina"); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	// Same username from a different IP is still throttled.
	r := httptest.NewRequest("POST", "/signin", nil)
	r.RemoteAddr = "192.0.2.2:1"
	if ok, wait := s.Check(r, " rina "); ok || wait <= 0 {
		t.Errorf("expected username throttle, ok=%v wait=%v", ok, wait)
	}

	s.ResetUsername("RINA")
	if ok, _ := s.Check(r, "rina"); !ok {
		t.Error("expected attempt to pass after reset")
	}
}
