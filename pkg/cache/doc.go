// Package cache stores values with a TTL behind one [Cache] interface with
// two backends: an in-process LRU ([Memory]) and Redis ([Redis]).
//
// A zero TTL passed to Set means the backend default, a negative TTL means
// no expiry.
//
//	pages := cache.NewMemory[Page](cache.WithTTL(time.Minute), cache.WithMaxEntries(1000))
//	if cfg.Redis.Enabled() {
//		pages = cache.NewRedis[Page](client, cache.WithTTL(time.Minute), cache.WithPrefix("page"))
//	}
//
// [Loader] collapses concurrent misses for the same key into one load.
package cache
