// Package cache provides a generic LRU cache with an eviction callback.
//
//	c := cache.New[uint16, entry](1024)
//	c.OnEvict(func(k uint16, v entry) { release(v) })
//	v, ok := c.Get(k)
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
