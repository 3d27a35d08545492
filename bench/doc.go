// Package bench compares ShardedMap against a single-lock map and sync.Map.
package bench
