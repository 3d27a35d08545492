// Package shardmap provides a concurrent map that reduces lock contention by
// striping keys across a fixed set of independently locked shards.
//
// Every key is routed to exactly one shard by hash(key) % shardCount. Reads take
// that shard's read lock, writes take its write lock, and no operation ever holds
// more than one shard lock at a time. The shard count is chosen at construction
// and never changes.
//
//	m := shardmap.MustNew[string, string](32)
//	m.Update("foo", "bar")
//	v, ok := m.Get("foo")
//	old, ok := m.Remove("foo")
//
// Operations on different keys are not atomic with respect to each other.
package shardmap
