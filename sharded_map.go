package shardmap

import (
	"fmt"

	"shardmap/util"
)

// ShardedMap is a concurrent map that spreads its keys over a fixed number of
// shards, each guarded by its own RWMutex. An operation on a single key locks
// only that key's shard and never holds two shard locks at once.
type ShardedMap[K comparable, V any] struct {
	shards   []*shard[K, V]
	count    uint64
	hasher   func(K) uint64
	cloner   func(V) V
	capacity int
}

// New creates a map with exactly shardCount shards.
// It returns ErrInvalidShardCount if shardCount is smaller than 1.
func New[K comparable, V any](shardCount int, opts ...Option[K, V]) (*ShardedMap[K, V], error) {
	if shardCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShardCount, shardCount)
	}

	o := options[K, V]{capacity: defaultInitialShardCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	if o.hasher == nil {
		o.hasher = defaultHasher[K]()
	}
	if o.capacity < 0 {
		o.capacity = 0
	}

	m := &ShardedMap[K, V]{
		shards:   make([]*shard[K, V], shardCount),
		count:    uint64(shardCount),
		hasher:   o.hasher,
		cloner:   o.cloner,
		capacity: o.capacity,
	}
	for i := 0; i < shardCount; i++ {
		m.shards[i] = newShard[K, V](i, o.capacity)
	}
	return m, nil
}

// MustNew is like New but panics if shardCount is smaller than 1.
func MustNew[K comparable, V any](shardCount int, opts ...Option[K, V]) *ShardedMap[K, V] {
	m, err := New[K, V](shardCount, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// NewFromConfig creates a map from cfg. Options given explicitly take precedence
// over cfg.InitialShardCapacity.
func NewFromConfig[K comparable, V any](cfg Config, opts ...Option[K, V]) (*ShardedMap[K, V], error) {
	all := make([]Option[K, V], 0, len(opts)+1)
	all = append(all, WithInitialCapacity[K, V](cfg.InitialShardCapacity))
	all = append(all, opts...)
	return New[K, V](cfg.ShardCount, all...)
}

// defaultHasher uses murmur3 for plain string keys and a seeded maphash for
// everything else.
func defaultHasher[K comparable]() func(K) uint64 {
	var zero K
	if _, ok := any(zero).(string); ok {
		return func(key K) uint64 {
			return util.Murmur3String(any(key).(string))
		}
	}
	return util.ComparableHasher[K]()
}

// ShardIndex returns the index of the shard that owns key. It takes no lock.
func (m *ShardedMap[K, V]) ShardIndex(key K) int {
	return int(m.hasher(key) % m.count)
}

func (m *ShardedMap[K, V]) shardFor(key K) *shard[K, V] {
	return m.shards[m.ShardIndex(key)]
}

// ShardCount returns the number of shards, which never changes.
func (m *ShardedMap[K, V]) ShardCount() int {
	return len(m.shards)
}

func (m *ShardedMap[K, V]) clone(v V) V {
	if m.cloner == nil {
		return v
	}
	return m.cloner(v)
}

// Update inserts value under key, replacing any previous value.
func (m *ShardedMap[K, V]) Update(key K, value V) {
	value = m.clone(value)
	s := m.shardFor(key)
	s.lock()
	defer s.mu.Unlock()
	s.set(key, value)
}

// Swap is like Update but also returns the replaced value, if there was one.
func (m *ShardedMap[K, V]) Swap(key K, value V) (old V, loaded bool) {
	value = m.clone(value)
	s := m.shardFor(key)
	s.lock()
	defer s.mu.Unlock()
	old, loaded = s.get(key)
	s.set(key, value)
	return old, loaded
}

// Get returns a copy of the value stored under key. The boolean is false if the
// key is absent.
func (m *ShardedMap[K, V]) Get(key K) (V, bool) {
	s := m.shardFor(key)
	s.rlock()
	defer s.mu.RUnlock()
	val, ok := s.get(key)
	if !ok {
		return val, false
	}
	return m.clone(val), true
}

// Has returns if the map contains a specific key.
func (m *ShardedMap[K, V]) Has(key K) bool {
	s := m.shardFor(key)
	s.rlock()
	defer s.mu.RUnlock()
	return s.has(key)
}

// Remove deletes key and returns the value it held. Removing an absent key is a
// no-op that returns false.
func (m *ShardedMap[K, V]) Remove(key K) (V, bool) {
	s := m.shardFor(key)
	s.lock()
	defer s.mu.Unlock()
	return s.pop(key)
}

// GetOrSet returns the existing value for key if present. Otherwise it stores
// value and returns it. loaded reports whether the value was already there.
func (m *ShardedMap[K, V]) GetOrSet(key K, value V) (actual V, loaded bool) {
	value = m.clone(value)
	s := m.shardFor(key)
	s.lock()
	defer s.mu.Unlock()
	if existing, ok := s.get(key); ok {
		return m.clone(existing), true
	}
	s.set(key, value)
	return m.clone(value), false
}

// Compute atomically replaces the value under key with the result of fn.
// fn receives the current value and whether it exists, and returns the new value
// and whether to keep it; returning keep == false deletes the key.
// Compute returns the resulting value and whether the key is present afterwards.
//
// fn runs under the shard's write lock and must not call back into the map.
// If fn panics the shard is poisoned and every later operation on it panics
// with a *PoisonError.
func (m *ShardedMap[K, V]) Compute(key K, fn func(old V, loaded bool) (V, bool)) (V, bool) {
	s := m.shardFor(key)
	s.lock()
	defer s.mu.Unlock()

	done := false
	defer func() {
		if !done {
			s.poisoned.Store(true)
		}
	}()

	old, loaded := s.get(key)
	val, keep := fn(old, loaded)
	if keep {
		s.set(key, val)
	} else if loaded {
		delete(s.items, key)
	}
	done = true

	if !keep {
		var zero V
		return zero, false
	}
	return m.clone(val), true
}
