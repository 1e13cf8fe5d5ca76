package analysis

import (
	"strings"
	"sync"
	"time"

	"github.com/bunkai-app/server/internal/model"
	logx "github.com/bunkai-app/server/pkg/logger"
)

const (
	// DefaultCacheTTL bounds how long a memoized analysis stays valid.
	DefaultCacheTTL = time.Hour
	// DefaultSweepThreshold is the live entry count beyond which an insert
	// triggers an eager sweep of expired entries.
	DefaultSweepThreshold = 100
)

type cacheEntry struct {
	value     *model.SentenceAnalysis
	createdAt time.Time
}

// Cache memoizes successful analyses keyed by (provider, model, sentence).
// Entries expire lazily on read; inserts past the sweep threshold evict all
// expired entries so sustained traffic cannot grow the map without bound.
//
// Keys are not normalized and concurrent identical misses are not coalesced;
// both match the upstream behavior on purpose (a stampede of identical
// requests before the first fill is possible).
type Cache struct {
	mu             sync.RWMutex
	entries        map[string]cacheEntry
	ttl            time.Duration
	sweepThreshold int
	now            func() time.Time
}

func NewCache(ttl time.Duration, sweepThreshold int) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if sweepThreshold <= 0 {
		sweepThreshold = DefaultSweepThreshold
	}
	return &Cache{
		entries:        make(map[string]cacheEntry),
		ttl:            ttl,
		sweepThreshold: sweepThreshold,
		now:            time.Now,
	}
}

// CacheKey joins provider, model and the exact sentence. No normalization:
// sentences differing only in incidental formatting are distinct keys.
func CacheKey(provider, modelName, sentence string) string {
	return strings.Join([]string{provider, modelName, sentence}, ":")
}

// Get returns the cached analysis for key, or false on miss. An entry past
// its TTL counts as a miss and is evicted on the way out.
func (c *Cache) Get(key string) (*model.SentenceAnalysis, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().Sub(entry.createdAt) > c.ttl {
		c.mu.Lock()
		// re-check under the write lock; a fresher entry may have replaced it
		if cur, ok := c.entries[key]; ok && cur.createdAt.Equal(entry.createdAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

// Set stores a successful analysis. Error results are never cached; that is
// the caller's contract, not enforced here.
func (c *Cache) Set(key string, value *model.SentenceAnalysis) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{value: value, createdAt: c.now()}
	if len(c.entries) > c.sweepThreshold {
		c.sweepExpiredLocked()
	}
}

// Len reports the live entry count, expired entries included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) sweepExpiredLocked() {
	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.createdAt) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		logx.Debug().Int("removed", removed).Int("remaining", len(c.entries)).Msg("swept expired analysis cache entries")
	}
}
