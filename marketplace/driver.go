// Package marketplace loads the marketplace index, drives the
// per-plugin orchestrator across a bounded worker pool, and aggregates
// the results into a final report.
package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/PJuniszewski/juni-tools-marketplace/gitfetch"
	"github.com/PJuniszewski/juni-tools-marketplace/metrics"
	"github.com/PJuniszewski/juni-tools-marketplace/orchestrator"
	"github.com/PJuniszewski/juni-tools-marketplace/plugin"
	"github.com/PJuniszewski/juni-tools-marketplace/schema"
)

// Driver loads the index and runs validation across all its plugins.
type Driver struct {
	Logger        *slog.Logger
	Fetch         orchestrator.Fetcher
	CloneDeadline time.Duration
	Workers       int
	Metrics       *metrics.Registry
}

// New returns a Driver with sensible defaults; zero-value fields on the
// returned Driver can still be overridden before calling Run.
func New(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		Logger:        logger,
		CloneDeadline: 120 * time.Second,
		Metrics:       metrics.New(),
	}
}

// Run loads indexPath, validates it, and validates every plugin entry it
// names. It returns a Report even on partial failure; only a malformed
// index itself is fatal.
func (d *Driver) Run(ctx context.Context, indexPath string) (*Report, error) {
	raw, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, fmt.Errorf("IndexSchema: read index: %w", err)
	}
	if err := schema.ValidateIndexRaw(raw); err != nil {
		return nil, fmt.Errorf("IndexSchema: %w", err)
	}

	var idx plugin.Index
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("IndexSchema: %w", err)
	}
	if err := idx.Validate(); err != nil {
		return nil, fmt.Errorf("IndexSchema: %w", err)
	}

	scope, err := orchestrator.NewRoot(os.TempDir())
	if err != nil {
		return nil, fmt.Errorf("create run root: %w", err)
	}
	defer scope.Close()

	commandsIdx := orchestrator.NewCommandsIndex()

	limit := d.Workers
	if limit <= 0 {
		limit = min(len(idx.Plugins), runtime.NumCPU())
	}
	if limit < 1 {
		limit = 1
	}

	results := make([]*plugin.Result, len(idx.Plugins))
	records := make([]plugin.Record, len(idx.Plugins))

	fetch := d.Fetch
	if fetch == nil {
		fetch = gitfetch.Clone
	}
	timedFetch := func(ctx context.Context, url, dest string, deadline time.Duration) error {
		start := time.Now()
		defer func() { d.Metrics.CloneDuration.Observe(time.Since(start).Seconds()) }()
		return fetch(ctx, url, dest, deadline)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, entry := range idx.Plugins {
		i, entry := i, entry
		g.Go(func() error {
			res, m := orchestrator.Run(gctx, scope, entry, orchestrator.Options{
				Logger:        d.Logger,
				Fetch:         timedFetch,
				CloneDeadline: d.CloneDeadline,
			})
			d.Metrics.PluginsValidated.Inc()
			for _, errMsg := range res.Errors {
				d.Metrics.ObserveFinding(classOf(errMsg))
			}

			results[i] = res
			records[i] = plugin.NewRecord(entry, m, res)
			return nil
		})
	}
	_ = g.Wait() // worker failures are captured per-result, never propagated

	for i, entry := range idx.Plugins {
		for _, cmd := range results[i].CommandList() {
			commandsIdx.Record(cmd, entry.Name)
		}
	}

	report := &Report{
		IndexName:   idx.Name,
		Results:     results,
		Records:     records,
		Collisions:  commandsIdx.Collisions(),
		MetricsText: d.Metrics.Summary(),
	}
	d.Logger.Info("validation run complete", "plugins", len(results), "passed", report.PassedCount(), "failed", report.FailedCount())
	return report, nil
}

func classOf(msg string) string {
	for i, c := range msg {
		if c == ':' {
			return msg[:i]
		}
	}
	return "unknown"
}
