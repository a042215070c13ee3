package limiter

import (
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for deterministic refill tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newTestMemoryLimiter builds a memory limiter driven by clock
func newTestMemoryLimiter(t *testing.T, rate Rate, clock *fakeClock) *MemoryLimiter {
	t.Helper()

	limiter, err := NewMemoryLimiter(rate)
	if err != nil {
		t.Fatalf("NewMemoryLimiter() error = %v", err)
	}
	limiter.now = clock.Now
	limiter.lastCleanup = clock.Now()
	t.Cleanup(func() { limiter.Close() })

	return limiter
}

// TestMemoryLimiter_BasicRateLimit tests basic rate limiting functionality
func TestMemoryLimiter_BasicRateLimit(t *testing.T) {
	clock := newFakeClock()
	limiter := newTestMemoryLimiter(t, Rate{Limit: 5, Window: time.Second}, clock)

	ip := "192.168.1.1"

	for i := 0; i < 5; i++ {
		if !limiter.Allow(ip) {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	if limiter.Allow(ip) {
		t.Error("Request 6 should be rate limited")
	}

	clock.Advance(time.Second)

	if !limiter.Allow(ip) {
		t.Error("Request should be allowed after refill")
	}
}

// TestMemoryLimiter_PerIPIsolation tests that different IPs have separate limits
func TestMemoryLimiter_PerIPIsolation(t *testing.T) {
	limiter := newTestMemoryLimiter(t, Rate{Limit: 3, Window: time.Second}, newFakeClock())

	ip1 := "192.168.1.1"
	ip2 := "192.168.1.2"

	for i := 0; i < 3; i++ {
		if !limiter.Allow(ip1) {
			t.Errorf("Request %d for IP1 should be allowed", i+1)
		}
	}
	if limiter.Allow(ip1) {
		t.Error("IP1 should be rate limited")
	}

	// separate bucket
	for i := 0; i < 3; i++ {
		if !limiter.Allow(ip2) {
			t.Errorf("Request %d for IP2 should be allowed", i+1)
		}
	}
	if limiter.Allow(ip2) {
		t.Error("IP2 should be rate limited")
	}
}

// TestMemoryLimiter_Concurrency tests thread safety
func TestMemoryLimiter_Concurrency(t *testing.T) {
	// Frozen clock: no refill happens, so exactly Limit requests pass
	limiter := newTestMemoryLimiter(t, Rate{Limit: 100, Window: time.Second}, newFakeClock())

	ip := "192.168.1.1"
	allowedCount := 0
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow(ip) {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 100 {
		t.Errorf("Expected 100 allowed requests, got %d", allowedCount)
	}
}

// TestMemoryLimiter_TokenRefill tests that tokens refill over time
func TestMemoryLimiter_TokenRefill(t *testing.T) {
	clock := newFakeClock()
	limiter := newTestMemoryLimiter(t, Rate{Limit: 10, Window: time.Second}, clock)

	ip := "192.168.1.1"

	for i := 0; i < 10; i++ {
		limiter.Allow(ip)
	}
	if limiter.Allow(ip) {
		t.Error("Should be rate limited after using all tokens")
	}

	// half a window refills half the bucket
	clock.Advance(500 * time.Millisecond)

	allowedCount := 0
	for i := 0; i < 10; i++ {
		if limiter.Allow(ip) {
			allowedCount++
		}
	}
	if allowedCount != 5 {
		t.Errorf("Expected 5 allowed requests after 0.5s refill, got %d", allowedCount)
	}
}

// TestMemoryLimiter_LongWindow tests a limit spread over several seconds
func TestMemoryLimiter_LongWindow(t *testing.T) {
	clock := newFakeClock()
	limiter := newTestMemoryLimiter(t, Rate{Limit: 1, Window: 5 * time.Second}, clock)

	ip := "192.168.1.1"

	if !limiter.Allow(ip) {
		t.Fatal("first request should be allowed")
	}
	if limiter.Allow(ip) {
		t.Error("second request should be rate limited")
	}

	clock.Advance(2 * time.Second)
	if limiter.Allow(ip) {
		t.Error("request after 2s should still be rate limited")
	}

	clock.Advance(3 * time.Second)
	if !limiter.Allow(ip) {
		t.Error("request after a full window should be allowed")
	}
}

// TestMemoryLimiter_BucketCapacity tests that idle time does not bank extra tokens
func TestMemoryLimiter_BucketCapacity(t *testing.T) {
	clock := newFakeClock()
	limiter := newTestMemoryLimiter(t, Rate{Limit: 3, Window: time.Second}, clock)

	ip := "192.168.1.1"
	limiter.Allow(ip)

	clock.Advance(time.Minute)

	allowedCount := 0
	for i := 0; i < 10; i++ {
		if limiter.Allow(ip) {
			allowedCount++
		}
	}
	if allowedCount != 3 {
		t.Errorf("Expected burst capped at 3, got %d", allowedCount)
	}
}

// TestMemoryLimiter_Cleanup tests that idle buckets are dropped
func TestMemoryLimiter_Cleanup(t *testing.T) {
	clock := newFakeClock()
	limiter := newTestMemoryLimiter(t, Rate{Limit: 3, Window: time.Second}, clock)

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		limiter.Allow(ip)
	}
	if limiter.Len() != 3 {
		t.Fatalf("expected 3 buckets, got %d", limiter.Len())
	}

	clock.Advance(bucketIdleTTL + time.Minute)
	limiter.Allow("10.0.0.4")

	if limiter.Len() != 1 {
		t.Errorf("expected only the fresh bucket to remain, got %d", limiter.Len())
	}
}

// TestNewMemoryLimiter_InvalidRate tests rate validation
func TestNewMemoryLimiter_InvalidRate(t *testing.T) {
	tests := []struct {
		name string
		rate Rate
	}{
		{name: "zero limit", rate: Rate{Limit: 0, Window: time.Second}},
		{name: "negative limit", rate: Rate{Limit: -1, Window: time.Second}},
		{name: "zero window", rate: Rate{Limit: 10, Window: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMemoryLimiter(tt.rate); err == nil {
				t.Error("expected error for invalid rate")
			}
		})
	}
}

// TestRate_PerSecond tests the sustained rate calculation
func TestRate_PerSecond(t *testing.T) {
	tests := []struct {
		rate     Rate
		expected float64
	}{
		{Rate{Limit: 10, Window: time.Second}, 10},
		{Rate{Limit: 10, Window: 5 * time.Second}, 2},
		{Rate{Limit: 1, Window: 5 * time.Second}, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.rate.String(), func(t *testing.T) {
			if got := tt.rate.PerSecond(); got != tt.expected {
				t.Errorf("PerSecond() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// TestMemoryLimiter_Close tests that Close doesn't error
func TestMemoryLimiter_Close(t *testing.T) {
	limiter, err := NewMemoryLimiter(Rate{Limit: 10, Window: time.Second})
	if err != nil {
		t.Fatalf("NewMemoryLimiter() error = %v", err)
	}

	if err := limiter.Close(); err != nil {
		t.Errorf("Close should not return error, got: %v", err)
	}
}

func TestLimiterInterface(t *testing.T) {
	var _ Limiter = (*MemoryLimiter)(nil)
	var _ Limiter = (*RedisLimiter)(nil)
	var _ Limiter = (*MockLimiter)(nil)
}

// TestNewLimiter_Memory tests factory function for memory limiter
func TestNewLimiter_Memory(t *testing.T) {
	rate := Rate{Limit: 10, Window: time.Second}

	tests := []struct {
		name string
		cfg  LimiterConfig
	}{
		{name: "explicit memory type", cfg: LimiterConfig{Type: "memory", Rate: rate}},
		{name: "uppercase memory type", cfg: LimiterConfig{Type: "MEMORY", Rate: rate}},
		{name: "empty type defaults to memory", cfg: LimiterConfig{Type: "", Rate: rate}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter, err := NewLimiter(tt.cfg, nil)
			if err != nil {
				t.Fatalf("NewLimiter() error = %v", err)
			}
			defer limiter.Close()

			if _, ok := limiter.(*MemoryLimiter); !ok {
				t.Errorf("expected *MemoryLimiter, got %T", limiter)
			}
			if !limiter.Allow("192.168.1.1") {
				t.Error("First request should be allowed")
			}
		})
	}
}

// TestNewLimiter_InvalidType tests factory function with invalid type
func TestNewLimiter_InvalidType(t *testing.T) {
	_, err := NewLimiter(LimiterConfig{Type: "invalid", Rate: Rate{Limit: 10, Window: time.Second}}, nil)
	if err == nil {
		t.Error("Expected error for invalid limiter type")
	}
}

// TestMockLimiter tests the test double itself
func TestMockLimiter(t *testing.T) {
	mock := NewMockLimiter(true)

	if !mock.Allow("a") {
		t.Error("expected allow")
	}
	mock.SetAllow(false)
	if mock.Allow("b") {
		t.Error("expected deny")
	}

	calls := mock.Calls()
	if len(calls) != 2 || calls[0] != "a" || calls[1] != "b" {
		t.Errorf("unexpected calls: %v", calls)
	}

	mock.Close()
	if !mock.CloseCalled {
		t.Error("expected CloseCalled")
	}
}

// BenchmarkMemoryLimiter_Allow benchmarks the Allow method
func BenchmarkMemoryLimiter_Allow(b *testing.B) {
	limiter, _ := NewMemoryLimiter(Rate{Limit: 1_000_000, Window: time.Second})
	defer limiter.Close()

	ip := "192.168.1.1"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Allow(ip)
	}
}

// BenchmarkMemoryLimiter_AllowParallel benchmarks parallel access
func BenchmarkMemoryLimiter_AllowParallel(b *testing.B) {
	limiter, _ := NewMemoryLimiter(Rate{Limit: 1_000_000, Window: time.Second})
	defer limiter.Close()

	b.RunParallel(func(pb *testing.PB) {
		ip := "192.168.1.1"
		for pb.Next() {
			limiter.Allow(ip)
		}
	})
}
