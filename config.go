package shardmap

const (
	DefaultShardCount           = 32
	defaultInitialShardCapacity = 32
)

// Config holds the construction parameters of a ShardedMap.
type Config struct {
	ShardCount           int // Number of shards, fixed for the map's lifetime. Must be at least 1.
	InitialShardCapacity int // Size hint for every shard's underlying map.
}

func DefaultConfig() Config {
	return Config{
		ShardCount:           DefaultShardCount,
		InitialShardCapacity: defaultInitialShardCapacity,
	}
}

// Option configures optional behaviour of a ShardedMap.
type Option[K comparable, V any] func(*options[K, V])

type options[K comparable, V any] struct {
	hasher   func(K) uint64
	cloner   func(V) V
	capacity int
}

// WithHasher replaces the default key hash. The function must return the same
// value for equal keys for as long as the map lives.
func WithHasher[K comparable, V any](hasher func(K) uint64) Option[K, V] {
	return func(o *options[K, V]) {
		o.hasher = hasher
	}
}

// WithCloner sets the function used to copy values on their way into and out of
// the map. It is needed when V holds references (slices, maps, pointers) that
// callers must not share with the map's storage.
func WithCloner[K comparable, V any](cloner func(V) V) Option[K, V] {
	return func(o *options[K, V]) {
		o.cloner = cloner
	}
}

// WithInitialCapacity sets the size hint of every shard's underlying map.
func WithInitialCapacity[K comparable, V any](capacity int) Option[K, V] {
	return func(o *options[K, V]) {
		o.capacity = capacity
	}
}
