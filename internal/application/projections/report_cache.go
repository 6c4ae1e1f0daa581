package projections

import (
	"container/list"
	"sync"

	"arff/internal/domain/expiryreport"
	"arff/pkg/metrics"
)

// ReportKey identifies one memoized report. Revision ties the entry to the roster
// state it was computed from, so a write makes every older key unreachable.
type ReportKey struct {
	Revision int64
	Filter   expiryreport.Filter
	Report   string // "histogram" or "matrix:<kind>"
}

// ReportCache is a bounded LRU of computed reports, safe for concurrent use.
// A nil *ReportCache disables caching.
type ReportCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[ReportKey]*list.Element
	metrics  *metrics.Manager
}

type cacheEntry struct {
	key   ReportKey
	value any
}

// NewReportCache creates a cache holding at most capacity reports.
// PRE: capacity > 0
func NewReportCache(capacity int, m *metrics.Manager) *ReportCache {
	if capacity < 1 {
		capacity = 1
	}
	return &ReportCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[ReportKey]*list.Element, capacity),
		metrics:  m,
	}
}

// Get returns the cached report for key and marks it recently used.
func (c *ReportCache) Get(key ReportKey) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		c.metrics.RecordCacheLookup(metrics.CacheMiss)
		return nil, false
	}
	c.order.MoveToFront(el)
	c.metrics.RecordCacheLookup(metrics.CacheHit)
	return el.Value.(*cacheEntry).value, true
}

// Put stores value under key, evicting the least recently used entry when full.
// Entries from older revisions are dropped first.
// POST: Len() <= capacity
func (c *ReportCache) Put(key ReportKey, value any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).value = value
		c.order.MoveToFront(el)
		return
	}
	c.dropOlderThan(key.Revision)
	c.items[key] = c.order.PushFront(&cacheEntry{key: key, value: value})
	for c.order.Len() > c.capacity {
		last := c.order.Back()
		c.order.Remove(last)
		delete(c.items, last.Value.(*cacheEntry).key)
	}
}

// Len returns the number of cached reports.
func (c *ReportCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *ReportCache) dropOlderThan(revision int64) {
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if e := el.Value.(*cacheEntry); e.key.Revision < revision {
			c.order.Remove(el)
			delete(c.items, e.key)
		}
		el = prev
	}
}
