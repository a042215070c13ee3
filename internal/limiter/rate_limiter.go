package limiter

import (
	"fmt"
	"sync"
	"time"
)

// Limiter decides whether a client may make another request.
// Keys are opaque client identifiers, normally the client IP.
type Limiter interface {
	Allow(key string) bool
	Close() error
}

// Rate is Limit requests per Window for a single client
type Rate struct {
	Limit  int
	Window time.Duration
}

// PerSecond is the sustained rate in requests per second
func (r Rate) PerSecond() float64 {
	return float64(r.Limit) / r.Window.Seconds()
}

func (r Rate) String() string {
	return fmt.Sprintf("%d req per %s", r.Limit, r.Window)
}

func (r Rate) validate() error {
	if r.Limit <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d", r.Limit)
	}
	if r.Window <= 0 {
		return fmt.Errorf("rate window must be positive, got %s", r.Window)
	}
	return nil
}

// bucketIdleTTL is how long an untouched bucket is kept before cleanup
const bucketIdleTTL = 5 * time.Minute

// tokenBucket holds the tokens of one client. It starts full, refills
// continuously at the sustained rate and never exceeds Limit tokens, so a
// client can burst a whole window's worth of requests at once.
type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// take refills the bucket for the time elapsed and consumes one token
func (b *tokenBucket) take(now time.Time, capacity, perSecond float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens = min(b.tokens+elapsed*perSecond, capacity)
		b.lastRefill = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (b *tokenBucket) idleSince(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return now.Sub(b.lastRefill)
}

// MemoryLimiter is a per-client token bucket limiter kept in process memory.
// Limits are not shared between instances; use RedisLimiter for that.
type MemoryLimiter struct {
	rate    Rate
	buckets sync.Map // client key -> *tokenBucket
	now     func() time.Time

	cleanupMu   sync.Mutex
	lastCleanup time.Time
}

// NewMemoryLimiter creates an in-memory limiter for rate
func NewMemoryLimiter(rate Rate) (*MemoryLimiter, error) {
	if err := rate.validate(); err != nil {
		return nil, err
	}
	return &MemoryLimiter{
		rate:        rate,
		now:         time.Now,
		lastCleanup: time.Now(),
	}, nil
}

// Allow consumes one token from the client's bucket
func (l *MemoryLimiter) Allow(key string) bool {
	now := l.now()

	bucket := l.bucket(key, now)
	allowed := bucket.take(now, float64(l.rate.Limit), l.rate.PerSecond())

	l.maybeCleanup(now)
	return allowed
}

func (l *MemoryLimiter) bucket(key string, now time.Time) *tokenBucket {
	if v, ok := l.buckets.Load(key); ok {
		return v.(*tokenBucket)
	}
	fresh := &tokenBucket{tokens: float64(l.rate.Limit), lastRefill: now}
	actual, _ := l.buckets.LoadOrStore(key, fresh)
	return actual.(*tokenBucket)
}

// maybeCleanup drops buckets idle for longer than bucketIdleTTL.
// It runs at most once per bucketIdleTTL.
func (l *MemoryLimiter) maybeCleanup(now time.Time) {
	l.cleanupMu.Lock()
	defer l.cleanupMu.Unlock()

	if now.Sub(l.lastCleanup) < bucketIdleTTL {
		return
	}

	l.buckets.Range(func(key, value any) bool {
		if value.(*tokenBucket).idleSince(now) >= bucketIdleTTL {
			l.buckets.Delete(key)
		}
		return true
	})
	l.lastCleanup = now
}

// Len reports the number of tracked clients
func (l *MemoryLimiter) Len() int {
	n := 0
	l.buckets.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close is a no-op for the in-memory limiter
func (l *MemoryLimiter) Close() error {
	return nil
}
