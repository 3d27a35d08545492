package shardmap

import (
	"strings"

	"shardmap/ds"
	"shardmap/util"
)

// ShardStats describes the occupancy of one shard.
type ShardStats struct {
	Index int
	Count int
}

// Len returns the total number of entries. Shards are counted one after another,
// so the result is not a snapshot under concurrent writes.
func (m *ShardedMap[K, V]) Len() int {
	count := 0
	for _, s := range m.shards {
		s.rlock()
		count += len(s.items)
		s.mu.RUnlock()
	}
	return count
}

// Stats returns the number of entries held by every shard.
func (m *ShardedMap[K, V]) Stats() []ShardStats {
	stats := make([]ShardStats, len(m.shards))
	for i, s := range m.shards {
		s.rlock()
		stats[i] = ShardStats{Index: i, Count: len(s.items)}
		s.mu.RUnlock()
	}
	return stats
}

// Range calls fn for every entry until fn returns false.
// Each shard is visited under its own read lock, so fn must not write to the map.
// Entries written to a shard after it was visited are not seen.
func (m *ShardedMap[K, V]) Range(fn func(key K, value V) bool) {
	for _, s := range m.shards {
		if !m.rangeShard(s, fn) {
			return
		}
	}
}

func (m *ShardedMap[K, V]) rangeShard(s *shard[K, V], fn func(key K, value V) bool) bool {
	s.rlock()
	defer s.mu.RUnlock()
	for k, v := range s.items {
		if !fn(k, m.clone(v)) {
			return false
		}
	}
	return true
}

// Keys returns all keys in no particular order.
func (m *ShardedMap[K, V]) Keys() []K {
	keys := make([]K, 0, m.Len())
	for _, s := range m.shards {
		s.rlock()
		for k := range s.items {
			keys = append(keys, k)
		}
		s.mu.RUnlock()
	}
	return keys
}

// Clear removes all entries, one shard at a time.
func (m *ShardedMap[K, V]) Clear() {
	for _, s := range m.shards {
		s.lock()
		s.items = make(map[K]V, m.capacity)
		s.mu.Unlock()
	}
}

// SortedKeys returns every key of a string-keyed map in lexical order.
func SortedKeys[V any](m *ShardedMap[string, V]) []string {
	return ScanPrefix(m, "", -1)
}

// ScanPrefix returns up to count keys starting with prefix, in lexical order.
// No limitation if count is smaller than 0.
func ScanPrefix[V any](m *ShardedMap[string, V], prefix string, count int) []string {
	if count == 0 {
		return []string{}
	}

	// the radix tree does not hold empty keys; "" sorts first anyway
	tree := ds.NewART()
	hasEmpty := false
	for _, s := range m.shards {
		s.rlock()
		for k := range s.items {
			switch {
			case k == "":
				hasEmpty = prefix == ""
			case strings.HasPrefix(k, prefix):
				tree.Insert(util.StringToByte(k))
			}
		}
		s.mu.RUnlock()
	}

	keys := make([]string, 0, tree.Size()+1)
	if hasEmpty {
		keys = append(keys, "")
		if count > 0 {
			count--
			if count == 0 {
				return keys
			}
		}
	}
	for _, k := range tree.PrefixScan(util.StringToByte(prefix), count) {
		keys = append(keys, util.ByteToString(k))
	}
	return keys
}
