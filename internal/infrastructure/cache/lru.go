// Package cache provides the bounded, recency-ordered caches that front
// profile sources.
package cache

import "container/list"

// LRU is a fixed-capacity map ordered by access recency.
//
// LRU is not safe for concurrent use. Loading serializes every access to it
// under its own mutex so that store and pending updates stay atomic.
type LRU[K comparable, V any] struct {
	capacity int
	items    map[K]*list.Element
	order    *list.List // Front = most recent, Back = least recent
}

// entry holds a key-value pair in the LRU cache.
type entry[K comparable, V any] struct {
	key   K
	value V
}

// NewLRU creates a new LRU cache with the given capacity.
// Returns ErrInvalidCapacity when capacity is below 1.
func NewLRU[K comparable, V any](capacity int) (*LRU[K, V], error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	return &LRU[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
	}, nil
}

// Get retrieves a value by key and marks it as recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Peek retrieves a value by key without touching its recency.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	if elem, ok := c.items[key]; ok {
		return elem.Value.(*entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Set adds or updates a value and marks it as most recently used.
// Least recently used entries are evicted until the cache is back within
// capacity; their keys are returned oldest first.
func (c *LRU[K, V]) Set(key K, value V) []K {
	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*entry[K, V]).value = value
		return nil
	}

	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})

	var evicted []K
	for c.order.Len() > c.capacity {
		evicted = append(evicted, c.removeElement(c.order.Back()))
	}
	return evicted
}

// Remove deletes a key from the cache and reports whether it was present.
func (c *LRU[K, V]) Remove(key K) bool {
	elem, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeElement(elem)
	return true
}

// Len returns the number of items currently in the cache.
func (c *LRU[K, V]) Len() int {
	return c.order.Len()
}

// Capacity returns the maximum number of entries.
func (c *LRU[K, V]) Capacity() int {
	return c.capacity
}

// Keys returns the cached keys from most to least recently used.
func (c *LRU[K, V]) Keys() []K {
	keys := make([]K, 0, c.order.Len())
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*entry[K, V]).key)
	}
	return keys
}

// Clear removes all items from the cache.
func (c *LRU[K, V]) Clear() {
	clear(c.items)
	c.order.Init()
}

func (c *LRU[K, V]) removeElement(elem *list.Element) K {
	key := c.order.Remove(elem).(*entry[K, V]).key
	delete(c.items, key)
	return key
}
