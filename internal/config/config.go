// Package config loads the shardload configuration.
//
// Sources are applied with priority Flag > Env > File > Default, the same way
// for every field.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"shardmap"
	"shardmap/util"
)

// EnvPrefix is the prefix of environment variables, e.g. SHARDLOAD_SHARDS=64.
const EnvPrefix = "SHARDLOAD_"

// Key kinds understood by the load driver.
const (
	KeySeq       = "seq"
	KeyUUID      = "uuid"
	KeySnowflake = "snowflake"
)

var (
	ErrInvalidWorkers = errors.New("workers must be at least 1")
	ErrInvalidKeys    = errors.New("keys_per_worker must be at least 1")
	ErrInvalidCycles  = errors.New("cycles must be at least 1")
	ErrInvalidKeyKind = errors.New("unknown key kind")
	ErrInvalidRate    = errors.New("rate_limit must not be negative")
)

type Config struct {
	Shards        int     `koanf:"shards"`
	Workers       int     `koanf:"workers"`
	KeysPerWorker int     `koanf:"keys_per_worker"`
	Cycles        int     `koanf:"cycles"`
	KeyKind       string  `koanf:"key_kind"`
	RateLimit     float64 `koanf:"rate_limit"` // Operations per second per worker, 0 means unlimited.
	MetricsAddr   string  `koanf:"metrics_addr"`
	LogLevel      string  `koanf:"log_level"`
	LogJSON       bool    `koanf:"log_json"`
}

func Default() Config {
	return Config{
		Shards:        shardmap.DefaultShardCount,
		Workers:       8,
		KeysPerWorker: 1000,
		Cycles:        10,
		KeyKind:       KeySeq,
		LogLevel:      "info",
	}
}

// Load builds a Config from the defaults, the YAML file at path (skipped when
// path is empty or the file does not exist), SHARDLOAD_* environment variables
// and flags, each overriding the previous.
func Load(path string, flags map[string]any) (Config, error) {
	k := koanf.New(".")

	if path != "" && util.FileExists(path) {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load file %s: %w", path, err)
		}
	}

	// SHARDLOAD_KEYS_PER_WORKER -> keys_per_worker
	envTransformer := func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformer), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	if len(flags) > 0 {
		if err := k.Load(mapProvider(flags), nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Shards < 1:
		return fmt.Errorf("%w: got %d", shardmap.ErrInvalidShardCount, c.Shards)
	case c.Workers < 1:
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, c.Workers)
	case c.KeysPerWorker < 1:
		return fmt.Errorf("%w: got %d", ErrInvalidKeys, c.KeysPerWorker)
	case c.Cycles < 1:
		return fmt.Errorf("%w: got %d", ErrInvalidCycles, c.Cycles)
	case c.RateLimit < 0:
		return fmt.Errorf("%w: got %v", ErrInvalidRate, c.RateLimit)
	}
	switch c.KeyKind {
	case KeySeq, KeyUUID, KeySnowflake:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKeyKind, c.KeyKind)
	}
}

// MapConfig returns the construction parameters of the map under load.
func (c Config) MapConfig() shardmap.Config {
	cfg := shardmap.DefaultConfig()
	cfg.ShardCount = c.Shards
	return cfg
}
