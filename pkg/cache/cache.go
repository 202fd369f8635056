// Package cache provides a weighted least recently used cache.
package cache

import (
	"container/list"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrKeyExists = errors.New("key already exists in cache")

// Cache is a least recently used cache bounded by the total weight of its
// entries rather than their count. It is safe for concurrent use.
type Cache[K comparable, V any] struct {
	log *logrus.Entry

	mu     sync.Mutex
	order  *list.List
	lookup map[K]*list.Element
	weight int
	budget int
}

type entry[K comparable, V any] struct {
	key    K
	value  V
	weight int
}

// New returns an empty cache holding at most budget total weight.
func New[K comparable, V any](budget int) *Cache[K, V] {
	return &Cache[K, V]{
		log:    logrus.StandardLogger().WithField("type", "cache"),
		order:  list.New(),
		lookup: make(map[K]*list.Element),
		budget: budget,
	}
}

// Weight returns the current total weight of the cache.
func (c *Cache[K, V]) Weight() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.weight
}

// Budget returns the weight budget of the cache.
func (c *Cache[K, V]) Budget() int {
	return c.budget
}

// Insert adds a value, evicting the least recently used entries until the
// cache is within budget. Existing keys are not replaced.
func (c *Cache[K, V]) Insert(key K, value V, weight int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.lookup[key]; ok {
		return ErrKeyExists
	}

	c.lookup[key] = c.order.PushFront(&entry[K, V]{
		key:    key,
		value:  value,
		weight: weight,
	})
	c.weight += weight

	for c.weight > c.budget && c.order.Len() > 0 {
		evicted := c.order.Remove(c.order.Back()).(*entry[K, V])
		delete(c.lookup, evicted.key)
		c.weight -= evicted.weight

		c.log.WithFields(logrus.Fields{
			"key":          evicted.key,
			"weight":       evicted.weight,
			"spare_weight": c.budget - c.weight,
		}).Trace("cache eviction")
	}

	return nil
}

// Retrieve returns the value for key and marks it as recently used.
func (c *Cache[K, V]) Retrieve(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.lookup[key]
	if !ok {
		var zero V
		return zero, false
	}

	c.order.MoveToFront(element)
	return element.Value.(*entry[K, V]).value, true
}
