package mapbox

import "sync"

// lruCache is a thread-safe fixed-capacity cache that evicts the least
// recently used entry.
type lruCache[K comparable, V any] struct {
	capacity int
	mu       sync.Mutex
	items    map[K]*lruNode[K, V]
	newest   *lruNode[K, V]
	oldest   *lruNode[K, V]
}

type lruNode[K comparable, V any] struct {
	key          K
	value        V
	newer, older *lruNode[K, V]
}

func newLRUCache[K comparable, V any](capacity int) *lruCache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &lruCache[K, V]{
		capacity: capacity,
		items:    make(map[K]*lruNode[K, V], capacity),
	}
}

func (c *lruCache[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.touch(n)
	return n.value, true
}

func (c *lruCache[K, V]) put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.items[key]; ok {
		n.value = value
		c.touch(n)
		return
	}

	n := &lruNode[K, V]{key: key, value: value}
	c.items[key] = n
	c.pushNewest(n)

	if len(c.items) > c.capacity {
		evicted := c.oldest
		c.unlink(evicted)
		delete(c.items, evicted.key)
	}
}

func (c *lruCache[K, V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *lruCache[K, V]) touch(n *lruNode[K, V]) {
	if n == c.newest {
		return
	}
	c.unlink(n)
	c.pushNewest(n)
}

func (c *lruCache[K, V]) pushNewest(n *lruNode[K, V]) {
	n.older = c.newest
	n.newer = nil
	if c.newest != nil {
		c.newest.newer = n
	}
	c.newest = n
	if c.oldest == nil {
		c.oldest = n
	}
}

func (c *lruCache[K, V]) unlink(n *lruNode[K, V]) {
	if n.newer != nil {
		n.newer.older = n.older
	} else {
		c.newest = n.older
	}
	if n.older != nil {
		n.older.newer = n.newer
	} else {
		c.oldest = n.newer
	}
	n.newer, n.older = nil, nil
}
