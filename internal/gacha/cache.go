package gacha

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// pityCache is a short-TTL read cache for the pity display endpoint.
// Rolls invalidate the owner's entries so a roll response followed by a
// pity read never shows stale counters.
type pityCache struct {
	lru *expirable.LRU[string, *PityView]
}

func newPityCache(size int, ttl time.Duration) *pityCache {
	return &pityCache{
		lru: expirable.NewLRU[string, *PityView](size, nil, ttl),
	}
}

func cacheKey(userID, bannerID string) string {
	return userID + ":" + bannerID
}

func (c *pityCache) Get(userID, bannerID string) (*PityView, bool) {
	return c.lru.Get(cacheKey(userID, bannerID))
}

func (c *pityCache) Set(userID, bannerID string, view *PityView) {
	c.lru.Add(cacheKey(userID, bannerID), view)
}

// InvalidateUser drops every banner entry for the user. Counter state is
// global, so a roll on one banner invalidates reads on all of them.
func (c *pityCache) InvalidateUser(userID string) {
	prefix := userID + ":"
	for _, key := range c.lru.Keys() {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			c.lru.Remove(key)
		}
	}
}
