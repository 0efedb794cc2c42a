package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/PJuniszewski/juni-tools-marketplace/config"
	"github.com/PJuniszewski/juni-tools-marketplace/marketplace"
)

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	indexPath := fs.String("index", "", "Path to the marketplace index JSON file (default: configured indexPath)")
	workers := fs.Int("workers", 0, "Max concurrent plugin validations (0 = auto)")
	logFormat := fs.String("log-format", "", "Log format: text or json (default: configured logFormat)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `Usage: pluginguard validate [options]

Validate a marketplace index and every plugin it references.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *indexPath != "" {
		cfg.IndexPath = *indexPath
	}
	if *workers != 0 {
		cfg.Workers = *workers
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}

	logger := newLogger(cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	d := marketplace.New(logger)
	d.Workers = cfg.Workers
	d.CloneDeadline = cfg.CloneTimeout

	report, err := d.Run(ctx, cfg.IndexPath)
	if err != nil {
		return fmt.Errorf("run validation: %w", err)
	}

	fmt.Println(report.Render())

	if report.ExitCode() != 0 {
		return errors.New("validation failed")
	}
	return nil
}

func newLogger(format string) *slog.Logger {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	} else {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}
	return slog.New(handler)
}
