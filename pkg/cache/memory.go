package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type memEntry[V any] struct {
	expiresAt time.Time
	value     V
	key       string
}

func (e *memEntry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is an in-process LRU cache. Expired entries are dropped lazily on
// access or when the cache needs room.
type Memory[V any] struct {
	items map[string]*list.Element
	order *list.List // front is most recently used
	opts  options
	mu    sync.Mutex
}

// NewMemory creates an empty in-memory cache.
func NewMemory[V any](opts ...Option) *Memory[V] {
	return &Memory[V]{
		items: make(map[string]*list.Element),
		order: list.New(),
		opts:  newOptions(opts),
	}
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	el, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}
	e := el.Value.(*memEntry[V])
	if e.expired(time.Now()) {
		m.remove(el)
		return zero, ErrNotFound
	}
	m.order.MoveToFront(el)
	return e.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt := resolveTTL(ttl, m.opts.ttl)
	if el, ok := m.items[key]; ok {
		e := el.Value.(*memEntry[V])
		e.value, e.expiresAt = value, expiresAt
		m.order.MoveToFront(el)
		return nil
	}

	if m.opts.maxEntries > 0 && len(m.items) >= m.opts.maxEntries {
		m.makeRoom()
	}
	m.items[key] = m.order.PushFront(&memEntry[V]{key: key, value: value, expiresAt: expiresAt})
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.items[key]; ok {
		m.remove(el)
	}
	return nil
}

func (m *Memory[V]) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.items)
	m.order.Init()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// dropped.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// makeRoom drops expired entries, or the least recently used one when none
// has expired. Caller holds the lock.
func (m *Memory[V]) makeRoom() {
	now := time.Now()
	freed := false
	for el := m.order.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*memEntry[V]).expired(now) {
			m.remove(el)
			freed = true
		}
		el = prev
	}
	if !freed {
		if el := m.order.Back(); el != nil {
			m.remove(el)
		}
	}
}

func (m *Memory[V]) remove(el *list.Element) {
	m.order.Remove(el)
	delete(m.items, el.Value.(*memEntry[V]).key)
}

var _ Cache[any] = (*Memory[any])(nil)
