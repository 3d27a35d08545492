// Command shardload runs a disjoint-key workload against a ShardedMap and
// reports throughput, shard occupancy and any consistency violations.
package main

import (
	"fmt"
	"os"
)

func main() {
	app := newApp()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
