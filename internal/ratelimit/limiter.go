package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per client key.
type Limiter struct {
	rate      rate.Limit
	burst     int
	mu        sync.Mutex
	clients   map[string]*client
	now       func() time.Time
	bucketTTL time.Duration // idle eviction
	stopCh    chan struct{}
	stopOnce  sync.Once
}

type client struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// New creates a limiter with the given per-second rate and burst.
func New(ratePerSec, burst int) *Limiter {
	return newLimiter(ratePerSec, burst, time.Now, true)
}

// NewWithClock is for tests to inject a fake clock. No janitor is started.
func NewWithClock(ratePerSec, burst int, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return newLimiter(ratePerSec, burst, now, false)
}

func newLimiter(ratePerSec, burst int, now func() time.Time, janitor bool) *Limiter {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	if burst < ratePerSec {
		burst = ratePerSec
	}
	l := &Limiter{
		rate:      rate.Limit(ratePerSec),
		burst:     burst,
		clients:   make(map[string]*client),
		now:       now,
		bucketTTL: 10 * time.Minute,
		stopCh:    make(chan struct{}),
	}
	if janitor {
		go l.janitor()
	}
	return l
}

func (l *Limiter) Close() { l.stopOnce.Do(func() { close(l.stopCh) }) }

// Allow reports whether a request identified by key is permitted now.
// If not allowed, it returns a suggested Retry-After duration.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	if key == "" {
		key = "_anon"
	}
	now := l.now()

	l.mu.Lock()
	c, ok := l.clients[key]
	if !ok {
		c = &client{lim: rate.NewLimiter(l.rate, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	l.mu.Unlock()

	r := c.lim.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Second
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

// evictIdle drops buckets not seen for longer than bucketTTL.
func (l *Limiter) evictIdle(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, c := range l.clients {
		if now.Sub(c.lastSeen) > l.bucketTTL {
			delete(l.clients, k)
		}
	}
}

func (l *Limiter) janitor() {
	t := time.NewTicker(l.bucketTTL / 2)
	defer t.Stop()
	for {
		select {
		case <-l.stopCh:
			return
		case now := <-t.C:
			l.evictIdle(now)
		}
	}
}
