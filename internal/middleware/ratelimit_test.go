package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	l := NewInMemoryRateLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d denied, want allowed", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("request over limit allowed, want denied")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	l := NewInMemoryRateLimiter(1, time.Minute)
	if !l.Allow("a") {
		t.Fatal("first key denied")
	}
	if !l.Allow("b") {
		t.Fatal("second key denied, keys should not share budget")
	}
	if l.Allow("a") {
		t.Fatal("first key allowed twice")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	l := NewInMemoryRateLimiter(1, 10*time.Millisecond)
	if !l.Allow("x") {
		t.Fatal("first request denied")
	}
	if l.Allow("x") {
		t.Fatal("second request inside window allowed")
	}
	time.Sleep(20 * time.Millisecond)
	if !l.Allow("x") {
		t.Fatal("request after window expiry denied")
	}
}
