package cache

import (
	"golang.org/x/sync/singleflight"
)

// Memo caches the result of a computation per key. Concurrent misses for
// the same key share a single call to the loader.
type Memo[T any] struct {
	lru   *LRUCache[T]
	group singleflight.Group
}

func NewMemo[T any](lru *LRUCache[T]) *Memo[T] {
	return &Memo[T]{lru: lru}
}

// Get returns the cached value for key, or calls load and caches its result.
// hit reports whether the value came from the cache. Errors are not cached.
func (m *Memo[T]) Get(key string, load func() (T, error)) (v T, hit bool, err error) {
	if v, ok := m.lru.Get(key); ok {
		return v, true, nil
	}
	res, err, _ := m.group.Do(key, func() (interface{}, error) {
		if v, ok := m.lru.Get(key); ok {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return nil, err
		}
		m.lru.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return res.(T), false, nil
}

// CleanExpired implements Cleaner.
func (m *Memo[T]) CleanExpired() int {
	return m.lru.CleanExpired()
}

// Size returns the number of cached keys.
func (m *Memo[T]) Size() int {
	return m.lru.Size()
}
