package shardmap

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// shard is one independently locked partition of the key space.
// The methods below do not lock; callers go through lock/rlock first.
type shard[K comparable, V any] struct {
	_        cpu.CacheLinePad
	mu       sync.RWMutex // r&w lock for every shard
	items    map[K]V
	poisoned atomic.Bool
	index    int
}

func newShard[K comparable, V any](index, capacity int) *shard[K, V] {
	return &shard[K, V]{
		items: make(map[K]V, capacity),
		index: index,
	}
}

// lock takes the write lock, panicking with a *PoisonError if the shard is poisoned.
func (s *shard[K, V]) lock() {
	s.mu.Lock()
	if s.poisoned.Load() {
		s.mu.Unlock()
		panic(&PoisonError{Shard: s.index})
	}
}

// rlock takes the read lock, panicking with a *PoisonError if the shard is poisoned.
func (s *shard[K, V]) rlock() {
	s.mu.RLock()
	if s.poisoned.Load() {
		s.mu.RUnlock()
		panic(&PoisonError{Shard: s.index})
	}
}

func (s *shard[K, V]) get(key K) (V, bool) {
	val, ok := s.items[key]
	return val, ok
}

func (s *shard[K, V]) set(key K, value V) {
	s.items[key] = value
}

func (s *shard[K, V]) has(key K) bool {
	_, ok := s.items[key]
	return ok
}

// pop deletes an element from the shard and returns it.
func (s *shard[K, V]) pop(key K) (V, bool) {
	val, exist := s.items[key]
	if exist {
		delete(s.items, key)
	}
	return val, exist
}
