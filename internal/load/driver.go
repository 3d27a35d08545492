// Package load drives a concurrent workload against a ShardedMap.
//
// Every worker owns a disjoint set of keys and runs update/get/remove cycles on
// them, checking each result as it goes. Because no two workers share a key, the
// final state of every key is known in advance and can be verified once all
// workers have finished.
package load

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"shardmap"
	"shardmap/internal/config"
)

// Value is what the driver stores. It records who wrote it and when, so a
// stale or foreign value is easy to spot.
type Value struct {
	Worker int
	Cycle  int
	Step   int
}

const (
	stepFirst = iota
	stepOverwrite
	stepFinal
)

// Result summarizes a run.
type Result struct {
	Ops        int64
	Mismatches int64
	Duration   time.Duration
	Entries    int
	Stats      []shardmap.ShardStats
}

// OpsPerSecond returns the measured throughput.
func (r Result) OpsPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Ops) / r.Duration.Seconds()
}

type Driver struct {
	cfg    config.Config
	m      *shardmap.ShardedMap[string, Value]
	logger hclog.Logger

	keys       [][]string
	ops        atomic.Int64
	mismatches atomic.Int64
}

// New prepares a driver and generates the keys of every worker.
func New(cfg config.Config, m *shardmap.ShardedMap[string, Value], logger hclog.Logger) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	d := &Driver{
		cfg:    cfg,
		m:      m,
		logger: logger,
		keys:   make([][]string, cfg.Workers),
	}
	for w := 0; w < cfg.Workers; w++ {
		keys, err := GenerateKeys(cfg.KeyKind, w, cfg.KeysPerWorker)
		if err != nil {
			return nil, err
		}
		d.keys[w] = keys
	}
	return d, nil
}

// Run starts all workers, waits for them and verifies the final state of every key.
// It stops early if ctx is cancelled.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < d.cfg.Workers; w++ {
		g.Go(func() error {
			return d.work(ctx, w)
		})
	}
	if err := g.Wait(); err != nil {
		return d.result(time.Since(start)), err
	}
	elapsed := time.Since(start)

	d.verify()
	return d.result(elapsed), nil
}

func (d *Driver) result(elapsed time.Duration) Result {
	return Result{
		Ops:        d.ops.Load(),
		Mismatches: d.mismatches.Load(),
		Duration:   elapsed,
		Entries:    d.m.Len(),
		Stats:      d.m.Stats(),
	}
}

func (d *Driver) work(ctx context.Context, worker int) error {
	var limiter *rate.Limiter
	if d.cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(d.cfg.RateLimit), 1)
	}

	last := d.cfg.Cycles - 1
	for c := 0; c < d.cfg.Cycles; c++ {
		for i, key := range d.keys[worker] {
			if err := ctx.Err(); err != nil {
				return err
			}
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
			}
			d.cycle(worker, c, key)
			if c == last && keepsFinal(i) {
				d.m.Update(key, Value{Worker: worker, Cycle: c, Step: stepFinal})
				d.ops.Add(1)
			}
		}
	}
	d.logger.Debug("worker finished", "worker", worker, "keys", len(d.keys[worker]))
	return nil
}

// cycle runs update, get, overwrite, remove and get on one key.
func (d *Driver) cycle(worker, c int, key string) {
	first := Value{Worker: worker, Cycle: c, Step: stepFirst}
	second := Value{Worker: worker, Cycle: c, Step: stepOverwrite}

	d.m.Update(key, first)
	d.check(key, "get after update", first, true)

	d.m.Update(key, second)
	d.check(key, "get after overwrite", second, true)

	old, ok := d.m.Remove(key)
	if !ok || old != second {
		d.mismatch(key, "remove", second, old, ok)
	}
	d.check(key, "get after remove", Value{}, false)

	d.ops.Add(6)
}

func (d *Driver) check(key, op string, want Value, wantOK bool) {
	got, ok := d.m.Get(key)
	if ok != wantOK || got != want {
		d.mismatch(key, op, want, got, ok)
	}
}

func (d *Driver) mismatch(key, op string, want, got Value, ok bool) {
	d.mismatches.Add(1)
	d.logger.Error("unexpected value", "op", op, "key", key,
		"want", fmt.Sprintf("%+v", want), "got", fmt.Sprintf("%+v", got), "present", ok)
}

// keepsFinal reports whether the key at index i stays in the map after the run.
// Even keys are written once more after their last cycle, odd keys stay removed.
func keepsFinal(i int) bool {
	return i%2 == 0
}

// verify checks every key against the last operation issued on it.
func (d *Driver) verify() {
	last := d.cfg.Cycles - 1
	for w, keys := range d.keys {
		for i, key := range keys {
			if keepsFinal(i) {
				d.check(key, "verify", Value{Worker: w, Cycle: last, Step: stepFinal}, true)
			} else {
				d.check(key, "verify", Value{}, false)
			}
		}
	}
}

// ExpectedEntries returns how many keys a completed run leaves in the map.
func ExpectedEntries(cfg config.Config) int {
	return cfg.Workers * ((cfg.KeysPerWorker + 1) / 2)
}
