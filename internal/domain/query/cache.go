package query

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry struct {
	result    Result
	expiresAt time.Time
}

// cache is an LRU-bounded result cache with lazy TTL expiry
type cache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, entry]
	ttl     time.Duration
	now     func() time.Time
	gen     uint64

	hits    uint64
	misses  uint64
	expired uint64
	evicted uint64
}

func newCache(size int, ttl time.Duration, now func() time.Time) (*cache, error) {
	entries, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}
	return &cache{entries: entries, ttl: ttl, now: now}, nil
}

// get returns the live entry for key. An expired entry is removed and
// reported as a miss.
func (c *cache) get(key string) (Result, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Get(key)
	if !ok {
		c.misses++
		return Result{}, false, false
	}
	if !c.now().Before(e.expiresAt) {
		c.entries.Remove(key)
		c.expired++
		c.misses++
		return Result{}, false, true
	}
	c.hits++
	return e.result, true, false
}

// generation changes on every clear
func (c *cache) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// put stores r unless the cache was cleared after gen was read; such a
// result may predate the write that caused the clear
func (c *cache) put(key string, r Result, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return false
	}
	if c.entries.Add(key, entry{result: r, expiresAt: c.now().Add(c.ttl)}) {
		c.evicted++
	}
	return true
}

func (c *cache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.entries.Purge()
}

func (c *cache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

func (c *cache) stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Size:    c.entries.Len(),
		Hits:    c.hits,
		Misses:  c.misses,
		Expired: c.expired,
		Evicted: c.evicted,
		TTL:     c.ttl,
	}
}
