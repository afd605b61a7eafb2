package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattjoyce/paperjet/internal/config"
	"github.com/mattjoyce/paperjet/internal/events"
	"github.com/mattjoyce/paperjet/internal/journal"
	"github.com/mattjoyce/paperjet/internal/log"
	"github.com/mattjoyce/paperjet/internal/printer"
	"github.com/mattjoyce/paperjet/internal/provider"
	"github.com/mattjoyce/paperjet/internal/receipt"
	"github.com/mattjoyce/paperjet/internal/webhook"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "start":
		os.Exit(runStart(args))
	case "check":
		os.Exit(runCheck(args))
	case "version":
		fmt.Printf("paperjet version %s\n", version)
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`paperjet - print your tickets on a real receipt printer

Usage:
  paperjet <command> [flags]

Commands:
  start     Start the webhook server in foreground
  check     Validate the configuration and exit
  version   Show version information
  help      Show this help message

Flags:
  --config  Path to the YAML config file (default: paperjet.yaml)
`)
}

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", "paperjet.yaml", "path to config file")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	log.Setup(cfg.Server.LogLevel)
	logger := log.WithComponent("main")

	if fp, err := config.Fingerprint(*configPath); err == nil {
		logger.Info("configuration loaded", "path", *configPath, "fingerprint", fp)
	}

	registry, err := provider.NewRegistry(cfg.Providers)
	if err != nil {
		logger.Error("failed to build provider registry", "error", err)
		return 1
	}
	logger.Info("providers enabled", "providers", registry.Names())

	layout := receipt.LayoutFromConfig(cfg)

	transport, err := buildTransport(cfg)
	if err != nil {
		logger.Error("failed to build printer transport", "error", err)
		return 1
	}
	logger.Info("printer transport ready",
		"device", transport.Device(),
		"usb_vendor_id", cfg.Printer.USBVendorID.String(),
		"usb_product_id", cfg.Printer.USBProductID.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var jrnl *journal.Journal
	if cfg.Journal.Path != "" {
		jrnl, err = journal.Open(ctx, cfg.Journal.Path)
		if err != nil {
			logger.Error("failed to open print journal", "error", err)
			return 1
		}
		defer jrnl.Close()
	}

	hub := events.NewHub(32)

	dispatcher := printer.New(transport, printer.Options{
		QueueDepth: cfg.Printer.QueueDepth,
		JobTimeout: cfg.Printer.JobTimeout,
		OnComplete: completionHook(ctx, jrnl, hub, transport.Device()),
	})

	var jobs webhook.JobLister
	if jrnl != nil {
		jobs = jrnl
	}
	server := webhook.New(cfg.Server, registry, layout, dispatcher, jobs, hub, log.WithComponent("webhook"))

	errCh := make(chan error, 2)
	go func() { errCh <- dispatcher.Start(ctx) }()
	go func() { errCh <- server.Start(ctx) }()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return 0
	case err := <-errCh:
		if err != nil && ctx.Err() == nil {
			logger.Error("component failed", "error", err)
			return 1
		}
		return 0
	}
}

func runCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", "paperjet.yaml", "path to config file")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}
	if _, err := provider.NewRegistry(cfg.Providers); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	fp, err := config.Fingerprint(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}
	fmt.Printf("Configuration OK (%s)\nFingerprint: %s\n", *configPath, fp)
	return 0
}

// buildTransport selects the device transport from configuration. The USB
// ESC/POS transport is provided by a separate driver binary behind the same
// raw TCP interface, so "network" covers it as well.
func buildTransport(cfg *config.Config) (printer.Transport, error) {
	switch cfg.Printer.Transport {
	case "console":
		return &printer.ConsoleTransport{Out: os.Stdout}, nil
	case "network":
		return &printer.NetTransport{Address: cfg.Printer.Address}, nil
	default:
		return nil, fmt.Errorf("unknown printer transport %q", cfg.Printer.Transport)
	}
}

// completionHook journals every outcome and feeds the preview stream.
func completionHook(ctx context.Context, jrnl *journal.Journal, hub *events.Hub, device string) func(printer.Result) {
	logger := log.WithComponent("main")
	return func(res printer.Result) {
		status := journal.StatusPrinted
		var lastError *string
		if res.Err != nil {
			status = journal.StatusFailed
			msg := res.Err.Error()
			lastError = &msg
		}

		if jrnl != nil {
			entry := journal.Entry{
				ID:          res.JobID,
				Provider:    res.Provider,
				TicketID:    res.TicketID,
				Status:      status,
				Device:      device,
				LastError:   lastError,
				QueuedAt:    res.QueuedAt,
				CompletedAt: res.CompletedAt,
			}
			if err := jrnl.Record(ctx, entry); err != nil {
				logger.Error("failed to journal print outcome", "job_id", res.JobID, "error", err)
			}
		}

		hub.Publish(events.Preview{
			JobID:    res.JobID,
			Provider: res.Provider,
			TicketID: res.TicketID,
			Status:   string(status),
			Text:     receipt.Preview(res.Job),
			At:       res.CompletedAt,
		})
	}
}
