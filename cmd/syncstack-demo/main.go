// Command syncstack-demo exercises the synchronized buffer with a handful of
// producer goroutines and a consumer loop, reporting throughput via the
// sampler package. It is the runnable counterpart to the buffer package's
// tests: start it, watch the structured logs, edit the config file to change
// the sampler period on the fly, and send SIGINT to see the drain-on-close
// behavior and the final buffer dump.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/syncstack/syncstack/buffer"
	"github.com/syncstack/syncstack/internal/config"
	"github.com/syncstack/syncstack/sampler"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	slog.Info("syncstack-demo starting",
		"capacity", cfg.Buffer.Capacity,
		"queue_depth", cfg.Buffer.QueueDepth,
		"mode", cfg.Consumer.Mode,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	buf, err := buffer.New(
		buffer.WithCapacity(cfg.Buffer.Capacity),
		buffer.WithQueueDepth(cfg.Buffer.QueueDepth),
	)
	if err != nil {
		slog.Error("failed to build buffer", "err", err)
		os.Exit(1)
	}

	// Three channels covering the three conversion tiers: a numeric pair,
	// an identity pair, and a pair needing an explicit transform.
	readings, err := buffer.Attach[int, float64](buf)
	if err != nil {
		slog.Error("failed to attach readings channel", "err", err)
		os.Exit(1)
	}
	labels, err := buffer.Attach[string, string](buf)
	if err != nil {
		slog.Error("failed to attach labels channel", "err", err)
		os.Exit(1)
	}
	frames, err := buffer.Attach[[]int16, string](buf,
		buffer.WithTransform(func(samples []int16) (string, error) {
			var peak int16
			for _, s := range samples {
				if s > peak {
					peak = s
				}
			}
			return "peak=" + strconv.Itoa(int(peak)), nil
		}),
	)
	if err != nil {
		slog.Error("failed to attach frames channel", "err", err)
		os.Exit(1)
	}

	counter := sampler.New(
		sampler.WithPeriod(cfg.Sampler.Period),
		sampler.WithOnReport(func(r sampler.Report) {
			slog.Info("consumer throughput",
				"rate", fmt.Sprintf("%.1f/s", r.Rate),
				"cpu_percent", fmt.Sprintf("%.1f", r.CPUPercent),
				"resident_mb", r.ResidentMB,
			)
		}),
	)

	// Hot-reload currently retunes the sampler period only. Resizing the
	// buffer would mean rebuilding it and dropping retained entries.
	if *configPath != "" {
		go func() {
			if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
				counter.SetPeriod(updated.Sampler.Period)
			}); err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	var wg sync.WaitGroup

	// Producers: one goroutine per channel, each stamping entries with its
	// own wall-clock nanos so the "at" read mode has real timestamps to hit.
	wg.Add(3)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(cfg.Producer.Interval)
		defer ticker.Stop()
		for i := 0; cfg.Producer.Count == 0 || i < cfg.Producer.Count; i++ {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				readings.Put(i, uint64(t.UnixNano()))
			}
		}
	}()
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(cfg.Producer.Interval)
		defer ticker.Stop()
		for i := 0; cfg.Producer.Count == 0 || i < cfg.Producer.Count; i++ {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				labels.Put("batch-"+strconv.Itoa(i), uint64(t.UnixNano()))
			}
		}
	}()
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(cfg.Producer.Interval)
		defer ticker.Stop()
		for i := 0; cfg.Producer.Count == 0 || i < cfg.Producer.Count; i++ {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				frames.Put([]int16{int16(i), int16(i * 2), int16(i * 3)}, uint64(t.UnixNano()))
			}
		}
	}()

	// Consumer loop: one read per tick in the configured mode, counted by
	// the sampler.
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(cfg.Consumer.Interval)
		defer ticker.Stop()
		tolerance := uint64(cfg.Consumer.Tolerance)
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				var results []buffer.Result
				switch cfg.Consumer.Mode {
				case config.ModeFirst:
					results = buf.ReadFirst()
				case config.ModeAt:
					results = buf.ReadAt(uint64(t.UnixNano()), tolerance)
				default:
					results = buf.ReadLast(tolerance)
				}
				fresh := 0
				for _, r := range results {
					if r.OK {
						fresh++
					}
				}
				counter.Tick()
				slog.Debug("read", "mode", cfg.Consumer.Mode, "fresh", fresh, "channels", len(results))
			}
		}
	}()

	<-ctx.Done()
	slog.Info("syncstack-demo shutting down")
	wg.Wait()

	// Drain pending inserts, then show what the buffer retained and the
	// final throughput gauges.
	buf.Flush()
	buf.Dump(os.Stdout)
	if err := counter.WriteMetrics(os.Stdout); err != nil {
		slog.Error("metrics write failed", "err", err)
	}
	if err := buf.Close(); err != nil {
		slog.Error("close failed", "err", err)
	}
}
