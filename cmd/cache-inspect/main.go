// Command cache-inspect fetches diagnostic data from a running
// also-cache process's debug endpoint and prints it as pretty text or
// JSON, optionally polling on an interval.
//
// The target service is expected to expose:
//   GET /debug/also-cache/snapshot : a JSON object with an "items"
//   value and a "shards" list whose elements have the shape of
//   pkg.ShardSnapshot (one per element of pkg.Cache.Snapshot).
//
// © 2025 also-cache authors. MIT License.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type options struct {
	target   string
	json     bool
	watch    bool
	interval time.Duration
}

func parseFlags() *options {
	o := &options{}
	flag.StringVar(&o.target, "target", "http://localhost:6060", "base URL of the target process")
	flag.BoolVar(&o.json, "json", false, "print raw JSON instead of a pretty summary")
	flag.BoolVar(&o.watch, "watch", false, "poll repeatedly instead of a single fetch")
	flag.DurationVar(&o.interval, "interval", 2*time.Second, "poll interval when -watch is set")
	flag.Parse()
	return o
}

func main() {
	opts := parseFlags()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	if opts.watch {
		ticker := time.NewTicker(opts.interval)
		defer ticker.Stop()
		for {
			if err := dumpOnce(ctx, opts); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
			select {
			case <-ticker.C:
				continue
			case <-ctx.Done():
				return
			}
		}
	}

	if err := dumpOnce(ctx, opts); err != nil {
		fatal(err)
	}
}

func dumpOnce(ctx context.Context, opts *options) error {
	snap, err := fetchSnapshot(ctx, opts.target)
	if err != nil {
		return err
	}
	if opts.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	return prettyPrint(snap)
}

func fetchSnapshot(ctx context.Context, base string) (map[string]any, error) {
	url := base + "/debug/also-cache/snapshot"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", res.Status)
	}
	var data map[string]any
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

func prettyPrint(data map[string]any) error {
	fmt.Printf("items: %v\n", data["items"])
	shards, _ := data["shards"].([]any)
	for i, raw := range shards {
		s, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		fmt.Printf("shard %d:\n", i)
		for _, queue := range []string{"Small", "Main", "Ghost"} {
			q, _ := s[queue].(map[string]any)
			fmt.Printf("  %-5s bytes=%-8v threshold=%-8v count=%v\n", queue, q["Bytes"], q["Threshold"], q["Count"])
		}
	}
	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "cache-inspect:", err)
	os.Exit(1)
}
