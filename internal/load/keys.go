package load

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"

	"shardmap/internal/config"
)

// GenerateKeys returns n distinct keys owned by worker. Keys of different
// workers never collide because every key carries its worker's prefix.
func GenerateKeys(kind string, worker, n int) ([]string, error) {
	keys := make([]string, 0, n)
	prefix := "w" + strconv.Itoa(worker) + ":"

	switch kind {
	case config.KeySeq:
		for i := 0; i < n; i++ {
			keys = append(keys, prefix+strconv.Itoa(i))
		}
	case config.KeyUUID:
		for i := 0; i < n; i++ {
			keys = append(keys, prefix+uuid.NewString())
		}
	case config.KeySnowflake:
		// node ids are 10 bits wide
		node, err := snowflake.NewNode(int64(worker % 1024))
		if err != nil {
			return nil, fmt.Errorf("snowflake node: %w", err)
		}
		for i := 0; i < n; i++ {
			keys = append(keys, prefix+node.Generate().String())
		}
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidKeyKind, kind)
	}
	return keys, nil
}
