package guildconfig

import (
	"container/list"
	"sync"

	"github.com/anurag-krmkr/Parrot/pkg/models"
)

// lruCache is a bounded LRU over guild configs. It is an optimization only;
// the store remains the source of truth and a miss falls back to it.
type lruCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List
}

type cacheEntry struct {
	guildID string
	config  *models.GuildConfig
}

func newLRUCache(capacity int) *lruCache {
	if capacity <= 0 {
		capacity = 1000
	}
	return &lruCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (c *lruCache) get(guildID string) (*models.GuildConfig, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[guildID]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).config, true
}

func (c *lruCache) put(guildID string, config *models.GuildConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[guildID]; ok {
		elem.Value = &cacheEntry{guildID: guildID, config: config}
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&cacheEntry{guildID: guildID, config: config})
	c.entries[guildID] = elem

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			old := oldest.Value.(*cacheEntry)
			delete(c.entries, old.guildID)
			c.order.Remove(oldest)
		}
	}
}

func (c *lruCache) remove(guildID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[guildID]; ok {
		c.order.Remove(elem)
		delete(c.entries, guildID)
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
