package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/PJuniszewski/juni-tools-marketplace/catalog"
	"github.com/PJuniszewski/juni-tools-marketplace/config"
	"github.com/PJuniszewski/juni-tools-marketplace/marketplace"
)

func runCatalog(args []string) error {
	fs := flag.NewFlagSet("catalog", flag.ContinueOnError)
	indexPath := fs.String("index", "", "Path to the marketplace index JSON file (default: configured indexPath)")
	outPath := fs.String("out", "", "Path to write the catalog markdown to (default: configured catalogPath)")
	check := fs.Bool("check", false, "Check the on-disk catalog for drift instead of writing it; exits 1 on drift")
	logFormat := fs.String("log-format", "", "Log format: text or json (default: configured logFormat)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `Usage: pluginguard catalog [options]

Render the plugin catalog from the marketplace index, or check the
on-disk catalog for drift with --check.

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
	if *outPath != "" {
		cfg.CatalogPath = *outPath
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

	now := time.Now()

	if *check {
		drift, err := catalog.Check(cfg.CatalogPath, report.Records, now)
		if err != nil {
			return fmt.Errorf("check catalog: %w", err)
		}
		if drift {
			fmt.Fprintf(os.Stderr, "catalog at %s is out of date; run 'pluginguard catalog' to regenerate\n", cfg.CatalogPath)
			return errors.New("catalog drift detected")
		}
		fmt.Println("catalog is up to date")
		return nil
	}

	if err := catalog.Write(cfg.CatalogPath, report.Records, now); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	fmt.Printf("wrote catalog to %s\n", cfg.CatalogPath)
	return nil
}
