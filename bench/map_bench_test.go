package bench

import (
	"math/rand"
	"strconv"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"

	"shardmap"
)

// go test -bench='Map$' -benchtime=5s -count=1 -benchmem ./bench

var mapKeyCount = 1000000

func getKey(n int) string {
	return "bench_test_key_" + strconv.Itoa(n)
}

func newShardedMap(b *testing.B, shardCount int) *shardmap.ShardedMap[string, string] {
	m, err := shardmap.New[string, string](shardCount)
	if err != nil {
		b.Fatal(err)
	}
	return m
}

// write

func BenchmarkWriteMap(b *testing.B) {
	mp := make(map[string]string)
	lock := sync.RWMutex{}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := rand.Int()
		for pb.Next() {
			lock.Lock()
			mp[getKey(i%mapKeyCount)] = "value"
			lock.Unlock()
			i++
		}
	})
}

func BenchmarkWriteSyncMap(b *testing.B) {
	sm := sync.Map{}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := rand.Int()
		for pb.Next() {
			sm.Store(getKey(i%mapKeyCount), "value")
			i++
		}
	})
}

func benchmarkWriteShardedMap(b *testing.B, shardCount int) {
	m := newShardedMap(b, shardCount)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := rand.Int()
		for pb.Next() {
			m.Update(getKey(i%mapKeyCount), "value")
			i++
		}
	})
}

func BenchmarkWrite1ShardMap(b *testing.B)   { benchmarkWriteShardedMap(b, 1) }
func BenchmarkWrite16ShardMap(b *testing.B)  { benchmarkWriteShardedMap(b, 16) }
func BenchmarkWrite32ShardMap(b *testing.B)  { benchmarkWriteShardedMap(b, 32) }
func BenchmarkWrite64ShardMap(b *testing.B)  { benchmarkWriteShardedMap(b, 64) }
func BenchmarkWrite128ShardMap(b *testing.B) { benchmarkWriteShardedMap(b, 128) }

// read

func BenchmarkReadMap(b *testing.B) {
	mp := make(map[string]string)
	for i := 0; i < mapKeyCount; i++ {
		mp[getKey(i)] = "value"
	}
	lock := sync.RWMutex{}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			lock.RLock()
			_ = mp[getKey(rand.Intn(mapKeyCount))]
			lock.RUnlock()
		}
	})
}

func BenchmarkReadSyncMap(b *testing.B) {
	sm := sync.Map{}
	for i := 0; i < mapKeyCount; i++ {
		sm.Store(getKey(i), "value")
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = sm.Load(getKey(rand.Intn(mapKeyCount)))
		}
	})
}

func benchmarkReadShardedMap(b *testing.B, shardCount int) {
	m := newShardedMap(b, shardCount)
	for i := 0; i < mapKeyCount; i++ {
		m.Update(getKey(i), "value")
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = m.Get(getKey(rand.Intn(mapKeyCount)))
		}
	})
}

func BenchmarkRead1ShardMap(b *testing.B)   { benchmarkReadShardedMap(b, 1) }
func BenchmarkRead16ShardMap(b *testing.B)  { benchmarkReadShardedMap(b, 16) }
func BenchmarkRead32ShardMap(b *testing.B)  { benchmarkReadShardedMap(b, 32) }
func BenchmarkRead64ShardMap(b *testing.B)  { benchmarkReadShardedMap(b, 64) }
func BenchmarkRead128ShardMap(b *testing.B) { benchmarkReadShardedMap(b, 128) }

// read or write

func BenchmarkRWMap(b *testing.B) {
	mp := make(map[string]string)
	for i := 0; i < mapKeyCount; i++ {
		mp[getKey(i)] = "value"
	}
	lock := sync.RWMutex{}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			key := getKey(rand.Intn(mapKeyCount))
			switch rand.Intn(2) {
			case 0:
				lock.RLock()
				_ = mp[key]
				lock.RUnlock()
			case 1:
				lock.Lock()
				mp[key] = "value1"
				lock.Unlock()
			}
		}
	})
}

func BenchmarkRWSyncMap(b *testing.B) {
	sm := sync.Map{}
	for i := 0; i < mapKeyCount; i++ {
		sm.Store(getKey(i), "value")
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			key := getKey(rand.Intn(mapKeyCount))
			switch rand.Intn(2) {
			case 0:
				_, _ = sm.Load(key)
			case 1:
				sm.Store(key, "value1")
			}
		}
	})
}

func benchmarkRWShardedMap(b *testing.B, shardCount int) {
	m := newShardedMap(b, shardCount)
	for i := 0; i < mapKeyCount; i++ {
		m.Update(getKey(i), "value")
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			key := getKey(rand.Intn(mapKeyCount))
			switch rand.Intn(2) {
			case 0:
				_, _ = m.Get(key)
			case 1:
				m.Update(key, "value1")
			}
		}
	})
}

func BenchmarkRW1ShardMap(b *testing.B)   { benchmarkRWShardedMap(b, 1) }
func BenchmarkRW16ShardMap(b *testing.B)  { benchmarkRWShardedMap(b, 16) }
func BenchmarkRW32ShardMap(b *testing.B)  { benchmarkRWShardedMap(b, 32) }
func BenchmarkRW64ShardMap(b *testing.B)  { benchmarkRWShardedMap(b, 64) }
func BenchmarkRW128ShardMap(b *testing.B) { benchmarkRWShardedMap(b, 128) }

// int64 keys from snowflake ids go through the maphash hasher

func BenchmarkSnowflakeKeyShardedMap(b *testing.B) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		b.Fatal(err)
	}
	ids := make([]int64, 1<<16)
	for i := range ids {
		ids[i] = node.Generate().Int64()
	}
	m, err := shardmap.New[int64, int](32)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := rand.Int()
		for pb.Next() {
			id := ids[i&(len(ids)-1)]
			m.Update(id, i)
			_, _ = m.Get(id)
			i++
		}
	})
}
