package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"shardmap"
	"shardmap/internal/config"
	"shardmap/internal/load"
	"shardmap/metrics"
)

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"shards":          "shards",
	"workers":         "workers",
	"keys-per-worker": "keys_per_worker",
	"cycles":          "cycles",
	"key-kind":        "key_kind",
	"rate-limit":      "rate_limit",
	"metrics-addr":    "metrics_addr",
	"log-level":       "log_level",
	"log-json":        "log_json",
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "shardload",
		Usage: "Run a concurrent disjoint-key workload against a sharded map",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
			&cli.IntFlag{Name: "shards", Usage: "number of shards (>= 1)"},
			&cli.IntFlag{Name: "workers", Usage: "number of concurrent workers"},
			&cli.IntFlag{Name: "keys-per-worker", Usage: "keys owned by each worker"},
			&cli.IntFlag{Name: "cycles", Usage: "update/get/remove cycles per key"},
			&cli.StringFlag{Name: "key-kind", Usage: "key generator: seq, uuid or snowflake"},
			&cli.Float64Flag{Name: "rate-limit", Usage: "key cycles per second per worker, 0 for unlimited"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "serve Prometheus metrics on this address, e.g. :9100"},
			&cli.StringFlag{Name: "log-level", Usage: "trace, debug, info, warn or error"},
			&cli.BoolFlag{Name: "log-json", Usage: "log in JSON"},
		},
		Action: run,
	}
}

// setFlags collects only the flags given on the command line, so that unset
// flags do not shadow the file and environment.
func setFlags(c *cli.Context) map[string]any {
	out := make(map[string]any)
	for flag, key := range flagKeys {
		if c.IsSet(flag) {
			out[key] = c.Value(flag)
		}
	}
	return out
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"), setFlags(c))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "shardload",
		Level:      hclog.LevelFromString(cfg.LogLevel),
		JSONFormat: cfg.LogJSON,
		Output:     os.Stderr,
	})

	m, err := shardmap.NewFromConfig[string, load.Value](cfg.MapConfig())
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewCollector("shardload", m))

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		shutdown, err := serveMetrics(cfg.MetricsAddr, reg, logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	driver, err := load.New(cfg, m, logger)
	if err != nil {
		return err
	}

	logger.Info("starting workload",
		"shards", cfg.Shards, "workers", cfg.Workers, "keys_per_worker", cfg.KeysPerWorker,
		"cycles", cfg.Cycles, "key_kind", cfg.KeyKind)

	res, err := driver.Run(ctx)
	if err != nil {
		return fmt.Errorf("workload: %w", err)
	}

	logResult(logger, res)
	if res.Mismatches > 0 {
		return cli.Exit(fmt.Sprintf("%d consistency violations", res.Mismatches), 1)
	}
	if want := load.ExpectedEntries(cfg); res.Entries != want {
		return cli.Exit(fmt.Sprintf("map holds %d entries, expected %d", res.Entries, want), 1)
	}
	return nil
}

func logResult(logger hclog.Logger, res load.Result) {
	minCount, maxCount := -1, 0
	for _, st := range res.Stats {
		if minCount < 0 || st.Count < minCount {
			minCount = st.Count
		}
		if st.Count > maxCount {
			maxCount = st.Count
		}
	}
	logger.Info("workload finished",
		"ops", res.Ops,
		"duration", res.Duration.String(),
		"ops_per_sec", fmt.Sprintf("%.0f", res.OpsPerSecond()),
		"entries", res.Entries,
		"shard_min", minCount,
		"shard_max", maxCount,
		"mismatches", res.Mismatches)
}

func serveMetrics(addr string, reg *prometheus.Registry, logger hclog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
