package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shardmap"
)

func TestCollector(t *testing.T) {
	m := shardmap.MustNew[string, int](4)
	m.Update("foo", 1)
	m.Update("bing", 2)
	m.Update("barf", 3)

	c := NewCollector("shardtest", m)

	expected := `
# HELP shardtest_entries Total number of entries across all shards.
# TYPE shardtest_entries gauge
shardtest_entries 3
# HELP shardtest_shards Number of shards.
# TYPE shardtest_shards gauge
shardtest_shards 4
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected), "shardtest_entries", "shardtest_shards")
	assert.NoError(t, err)
	assert.Equal(t, 4, testutil.CollectAndCount(c, "shardtest_shard_entries"))
}

func TestCollector_TracksMapChanges(t *testing.T) {
	m := shardmap.MustNew[int, int](1)
	c := NewCollector("shardtest", m)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	entries := func(n string) string {
		return `
# HELP shardtest_entries Total number of entries across all shards.
# TYPE shardtest_entries gauge
shardtest_entries ` + n + "\n"
	}

	m.Update(1, 1)
	m.Update(2, 2)
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(entries("2")), "shardtest_entries"))

	m.Remove(1)
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(entries("1")), "shardtest_entries"))
}
