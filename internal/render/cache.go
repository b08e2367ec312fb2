package render

import "container/list"

const defaultCacheSize = 256

type cacheKey struct {
	kind     string
	language string
	fileName string
	value    string
	width    int
}

type cacheEntry struct {
	key cacheKey
	out string
}

// lru memoises rendered blocks so content that has not changed since the
// last frame is not highlighted again. Not safe for concurrent use; the
// Bubble Tea loop is the only caller.
type lru struct {
	size  int
	order *list.List
	items map[cacheKey]*list.Element

	hits, misses int
}

func newLRU(size int) *lru {
	if size <= 0 {
		size = defaultCacheSize
	}
	return &lru{
		size:  size,
		order: list.New(),
		items: make(map[cacheKey]*list.Element, size),
	}
}

func (c *lru) get(k cacheKey) (string, bool) {
	el, ok := c.items[k]
	if !ok {
		c.misses++
		return "", false
	}
	c.hits++
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).out, true
}

func (c *lru) put(k cacheKey, out string) {
	if el, ok := c.items[k]; ok {
		el.Value.(*cacheEntry).out = out
		c.order.MoveToFront(el)
		return
	}
	c.items[k] = c.order.PushFront(&cacheEntry{key: k, out: out})
	for c.order.Len() > c.size {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

func (c *lru) len() int { return c.order.Len() }
