package shardmap

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidShardCount = errors.New("shard count must be at least 1")
	ErrPoisoned          = errors.New("shard is poisoned")
)

// PoisonError is the panic value raised when an operation locks a shard whose
// previous writer panicked midway through a mutation. The contents of such a
// shard can no longer be trusted.
type PoisonError struct {
	Shard int
}

func (e *PoisonError) Error() string {
	return fmt.Sprintf("shard %d is poisoned: a writer panicked while holding its lock", e.Shard)
}

func (e *PoisonError) Unwrap() error {
	return ErrPoisoned
}
