// Package style implements the transform cache that turns declarative
// style objects into native-consumable representations. Transform
// results are memoized under a content fingerprint with LRU eviction,
// so continuous UI re-renders of unchanged styles hit the cache instead
// of recomputing the transform on every frame.
package style

import (
	"container/list"
	"sync"

	"github.com/go-ferry/ferry/pkg/fingerprint"
	"github.com/go-ferry/ferry/pkg/value"
)

// DefaultCapacity bounds the cache when no capacity is configured.
const DefaultCapacity = 512

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	// HitRate is Hits / (Hits + Misses), 0 when no calls were made.
	HitRate float64 `json:"hitRate"`
}

// cacheEntry is owned exclusively by the cache; eviction destroys it.
type cacheEntry struct {
	sum         fingerprint.Sum
	transformed value.Value
}

// Cache memoizes style transforms keyed by content fingerprint.
// All operations are O(1) beyond the transform itself. A single coarse
// mutex guards the entry index and recency list; the critical sections
// are short and uncontended when driven from one render thread, but the
// cache stays correct with concurrent callers.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[fingerprint.Sum]*list.Element
	order    *list.List // front = most recently used
	hits     uint64
	misses   uint64
}

// NewCache creates a cache bounded to capacity entries.
// Non-positive capacities fall back to DefaultCapacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[fingerprint.Sum]*list.Element, capacity),
		order:    list.New(),
	}
}

// Transform returns the native-ready form of the given style object.
//
// A style whose fingerprint is already cached is returned without
// recomputation and counts as a hit. Otherwise the call counts as a
// miss, the transform runs, and the result is inserted, evicting the
// least-recently-used entry if the cache would exceed capacity. A
// failed transform is never inserted; the miss is still counted so
// hits+misses always equals the number of calls. The input is never
// mutated.
func (c *Cache) Transform(style value.Value) (value.Value, error) {
	return c.transform(fingerprint.Of(style), style)
}

// TransformMerged shallow-merges the given styles left to right (later
// styles win on conflicting keys) and transforms the merged object.
// Null and false entries are skipped, so optional and conditional
// styles can be passed directly. The merged result is cached under the
// merged object's own fingerprint, independent of any caching of the
// individual inputs.
//
// With zero usable inputs the empty object is transformed; that call
// participates in hit/miss accounting like any other, so the first such
// call is a miss and subsequent ones are hits.
func (c *Cache) TransformMerged(styles ...value.Value) (value.Value, error) {
	merged := value.Object(nil)
	for _, s := range styles {
		switch s.Kind() {
		case value.KindNull:
			continue
		case value.KindBool:
			if b, _ := s.AsBool(); !b {
				continue
			}
			return value.Value{}, c.recordMiss(&TransformError{Err: errNotObject})
		case value.KindObject:
			merged = merged.Merge(s)
		default:
			return value.Value{}, c.recordMiss(&TransformError{Err: errNotObject})
		}
	}
	return c.transform(fingerprint.Of(merged), merged)
}

// recordMiss counts a call that failed validation before the transform
// could run, keeping hits+misses equal to the number of calls.
func (c *Cache) recordMiss(err error) error {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	return err
}

func (c *Cache) transform(sum fingerprint.Sum, style value.Value) (value.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[sum]; ok {
		c.hits++
		c.order.MoveToFront(elem)
		return elem.Value.(*cacheEntry).transformed, nil
	}
	c.misses++

	transformed, err := transformStyle(style)
	if err != nil {
		// Poisoned entries must never be cached.
		return value.Value{}, err
	}

	elem := c.order.PushFront(&cacheEntry{sum: sum, transformed: transformed})
	c.entries[sum] = elem
	if c.order.Len() > c.capacity {
		c.evictOldest()
	}
	return transformed, nil
}

// evictOldest removes exactly one entry, the least recently used.
// Caller holds c.mu.
func (c *Cache) evictOldest() {
	back := c.order.Back()
	if back == nil {
		return
	}
	c.order.Remove(back)
	delete(c.entries, back.Value.(*cacheEntry).sum)
}

// Invalidate removes the cached transform for the given style, if
// present. Fingerprinting itself is stateless, so a later Transform of
// a structurally-equal style recomputes and re-inserts; callers should
// rely only on "no hit is guaranteed afterwards".
func (c *Cache) Invalidate(style value.Value) {
	sum := fingerprint.Of(style)
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[sum]; ok {
		c.order.Remove(elem)
		delete(c.entries, sum)
	}
}

// Clear empties the cache and resets the hit/miss counters atomically
// with respect to other cache operations.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[fingerprint.Sum]*list.Element, c.capacity)
	c.order.Init()
	c.hits = 0
	c.misses = 0
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Capacity returns the configured maximum entry count.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Stats returns a snapshot of the hit/miss counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{Hits: c.hits, Misses: c.misses}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}
