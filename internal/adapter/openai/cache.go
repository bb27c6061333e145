package openai

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/climashield/internal/domain"
	"github.com/couchcryptid/climashield/internal/observability"
)

// CachedAdvisor wraps an Advisor with an in-memory LRU cache keyed by the
// reported (rounded) inputs, so identical assessments reuse one completion.
type CachedAdvisor struct {
	inner   domain.Advisor
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedAdvisor creates a cache decorator around an advisor.
func NewCachedAdvisor(inner domain.Advisor, maxEntries int, metrics *observability.Metrics) *CachedAdvisor {
	return &CachedAdvisor{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedAdvisor) Advise(ctx context.Context, in domain.AdvisoryInput) (string, error) {
	key := cacheKey(in)
	if text, ok := c.cache.get(key); ok {
		c.metrics.AdvisoryCache.WithLabelValues("hit").Inc()
		return text, nil
	}
	c.metrics.AdvisoryCache.WithLabelValues("miss").Inc()

	text, err := c.inner.Advise(ctx, in)
	if err != nil {
		return text, err
	}
	// Empty completions are not cached so they can be retried.
	if text != "" {
		c.cache.put(key, text)
	}
	return text, nil
}

func cacheKey(in domain.AdvisoryInput) string {
	r := in.Risk.Rounded()
	s := in.Soil.Rounded()
	return fmt.Sprintf("%s|%.1f,%.1f,%.1f,%.1f|%s,%s|%s,%.1f",
		in.Area,
		r.ClimateRiskScore, r.AirQuality, r.ConstructionStability, r.WaterManagement,
		in.Trend.AQITrend, in.Trend.RainfallTrend,
		s.SoilType, s.WaterloggingRisk,
	)
}

// lruCache is a simple thread-safe LRU cache of advisory text.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value string
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
