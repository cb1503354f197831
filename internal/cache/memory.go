package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"sync"
	"time"
)

type MemoryOptions struct {
	TTL         time.Duration
	MaxItems    int           // 0 => unlimited
	SweepMin    time.Duration // lower clamp for janitor tick
	SweepMax    time.Duration // upper clamp for janitor tick
	AutoJanitor bool          // start the janitor goroutine
	Now         func() time.Time
}

// Memory is an in-process LRU cache with per-entry expiry.
type Memory struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List // front = most recently used
	maxItems int
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type memEntry struct {
	key     string
	data    []byte
	expires time.Time // zero => never
}

func NewMemory(opt MemoryOptions) *Memory {
	if opt.Now == nil {
		opt.Now = time.Now
	}
	if opt.SweepMin <= 0 {
		opt.SweepMin = time.Second
	}
	if opt.SweepMax < opt.SweepMin {
		opt.SweepMax = opt.SweepMin
	}
	mc := &Memory{
		items:    make(map[string]*list.Element),
		order:    list.New(),
		maxItems: opt.MaxItems,
		ttl:      opt.TTL,
		interval: sweepInterval(opt.TTL, opt.SweepMin, opt.SweepMax),
		now:      opt.Now,
		stop:     make(chan struct{}),
	}
	if opt.AutoJanitor {
		go mc.janitor()
	}
	return mc
}

// sweepInterval is half the TTL clamped to [lo, hi]; without a TTL entries
// only expire through explicit per-Set ttls, so sweep lazily.
func sweepInterval(ttl, lo, hi time.Duration) time.Duration {
	if ttl <= 0 {
		return hi
	}
	d := ttl / 2
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

func (mc *Memory) Close() {
	mc.stopOnce.Do(func() { close(mc.stop) })
}

func (mc *Memory) Ping(ctx context.Context) error { return nil }

func (mc *Memory) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.order.Len()
}

func (mc *Memory) Get(ctx context.Context, key string, v any) (bool, error) {
	mc.mu.Lock()
	el, ok := mc.items[key]
	if !ok {
		mc.mu.Unlock()
		return false, nil
	}
	e := el.Value.(*memEntry)
	if mc.expired(e, mc.now()) {
		mc.removeElement(el)
		mc.mu.Unlock()
		return false, nil
	}
	mc.order.MoveToFront(el)
	data := e.data
	mc.mu.Unlock()

	// data is never mutated in place (Set swaps the slice), so decode unlocked.
	if err := json.Unmarshal(data, v); err != nil {
		return true, err
	}
	return true, nil
}

func (mc *Memory) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = mc.ttl
	}
	var expires time.Time
	if ttl > 0 {
		expires = mc.now().Add(ttl)
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	if el, ok := mc.items[key]; ok {
		e := el.Value.(*memEntry)
		e.data = b
		e.expires = expires
		mc.order.MoveToFront(el)
		return nil
	}
	mc.items[key] = mc.order.PushFront(&memEntry{key: key, data: b, expires: expires})
	for mc.maxItems > 0 && mc.order.Len() > mc.maxItems {
		mc.removeElement(mc.order.Back())
	}
	return nil
}

func (mc *Memory) Delete(ctx context.Context, key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if el, ok := mc.items[key]; ok {
		mc.removeElement(el)
	}
	return nil
}

func (mc *Memory) expired(e *memEntry, now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// removeElement must be called with mu held.
func (mc *Memory) removeElement(el *list.Element) {
	e := mc.order.Remove(el).(*memEntry)
	delete(mc.items, e.key)
}

func (mc *Memory) sweepOnce() {
	now := mc.now()
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for el := mc.order.Back(); el != nil; {
		prev := el.Prev()
		if mc.expired(el.Value.(*memEntry), now) {
			mc.removeElement(el)
		}
		el = prev
	}
}

func (mc *Memory) janitor() {
	t := time.NewTicker(mc.interval)
	defer t.Stop()
	for {
		select {
		case <-mc.stop:
			return
		case <-t.C:
			mc.sweepOnce()
		}
	}
}
