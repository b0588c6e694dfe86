// cache.go

package main

import (
	"encoding/json"
	"sync"
	"time"
)

// ttlCache is a small in-process cache for read-heavy responses like the
// featured-products blend.
type ttlCache struct {
	items map[string]cacheItem
	mu    sync.RWMutex
	ttl   time.Duration
}

type cacheItem struct {
	data       []byte
	expiration int64
}

var featuredCache = newTTLCache(2 * time.Minute)

func newTTLCache(ttl time.Duration) *ttlCache {
	return &ttlCache{
		items: make(map[string]cacheItem),
		ttl:   ttl,
	}
}

func (c *ttlCache) Marshal(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cacheItem{
		data:       data,
		expiration: time.Now().Add(c.ttl).UnixNano(),
	}
	return nil
}

func (c *ttlCache) Unmarshal(key string, target interface{}) (bool, error) {
	c.mu.RLock()
	item, found := c.items[key]
	c.mu.RUnlock()

	if !found || time.Now().UnixNano() > item.expiration {
		return false, nil
	}
	if err := json.Unmarshal(item.data, target); err != nil {
		return false, err
	}
	return true, nil
}

func (c *ttlCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}
