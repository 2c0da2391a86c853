package sheets

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// gridCache holds sheet grids keyed by name. Entries expire by age only;
// hits do not extend them and writes never invalidate them.
type gridCache struct {
	items *ttlcache.Cache[string, [][]string]
}

func newGridCache(ttl time.Duration) *gridCache {
	return &gridCache{items: ttlcache.New[string, [][]string](
		ttlcache.WithTTL[string, [][]string](ttl),
		ttlcache.WithDisableTouchOnHit[string, [][]string](),
	)}
}

func (c *gridCache) get(key string) ([][]string, bool) {
	item := c.items.Get(key)
	if item == nil || item.IsExpired() {
		return nil, false
	}
	return item.Value(), true
}

func (c *gridCache) set(key string, value [][]string) {
	c.items.Set(key, value, ttlcache.DefaultTTL)
}
