// pricing_cache.go - TTL cache over the scraped pricing map

package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/sniptex/sniptex_server/configs"
)

type pricingCache struct {
	prices   map[string]PriceEntry
	loadedAt time.Time
}

// Keyed by pricing URL so a base override gets its own entry.
var (
	pricingCacheMap = make(map[string]*pricingCache)
	pricingCacheMu  sync.RWMutex
)

const pricingCacheTTL = 5 * time.Minute

// CachedPricingMap returns the scraped pricing map, refreshing it at most
// once per TTL window. The pricing page changes rarely and every catalog
// listing needs it, so a short TTL is enough.
func CachedPricingMap(ctx context.Context) map[string]PriceEntry {
	url := configs.SILICONFLOW_PRICING_URL

	pricingCacheMu.RLock()
	cached, ok := pricingCacheMap[url]
	pricingCacheMu.RUnlock()
	if ok && time.Since(cached.loadedAt) < pricingCacheTTL {
		return cached.prices
	}

	pricingCacheMu.Lock()
	defer pricingCacheMu.Unlock()

	// Double-check after acquiring the write lock.
	cached, ok = pricingCacheMap[url]
	if ok && time.Since(cached.loadedAt) < pricingCacheTTL {
		return cached.prices
	}

	prices := FetchPricingMap(ctx)
	pricingCacheMap[url] = &pricingCache{prices: prices, loadedAt: time.Now()}
	return prices
}

// InvalidatePricingCache drops all cached pricing entries.
func InvalidatePricingCache() {
	pricingCacheMu.Lock()
	defer pricingCacheMu.Unlock()
	pricingCacheMap = make(map[string]*pricingCache)
}
