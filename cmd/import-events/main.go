package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/eventpulse/internal/importer"
	"github.com/okian/eventpulse/pkg/logger"
)

// Default configuration constants.
const (
	defaultTimeout    = 2 * time.Minute
	logFilePermission = 0600
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		timeout = flag.Duration("timeout", defaultTimeout, "Request timeout; an import can take a while")
		logFile = flag.String("log", "", "Also write logs to this file")
		verbose = flag.Bool("verbose", false, "Enable debug logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	if err := setupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Named("import-events")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	remote := importer.NewRemote(*baseURL, *timeout)
	if err := remote.CheckHealth(ctx); err != nil {
		log.Error(ctx, "service not reachable", logger.String("url", *baseURL), logger.Error(err))
		os.Exit(1)
	}

	st, err := remote.Trigger(ctx)
	if err != nil {
		log.Error(ctx, "import failed", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "import complete",
		logger.Int("fetched", st.Fetched),
		logger.Int("inserted", st.Inserted),
		logger.Int("duplicates", st.Duplicates),
		logger.Int("no_location", st.NoLocation),
		logger.Int("failed", st.Failed),
		logger.Int("pages", st.Pages),
		logger.Duration("duration", st.Duration))
}

// setupLogging writes logs to stdout and, when logFile is set, to that file.
func setupLogging(logFile string, verbose bool) error {
	var out io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
	}
	if err := logger.Init(logger.WithFormat("text"), logger.WithOutput(out)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

func showHelp() {
	os.Stdout.WriteString(`EventPulse Import Tool
======================

Triggers a Discovery API import on a running EventPulse service and prints
the outcome.

Usage:
  go run ./cmd/import-events [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -timeout duration
        Request timeout (default 2m0s)
  -log string
        Also write logs to this file
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  # Import into a local service
  go run ./cmd/import-events

  # Import into a remote service and keep a log
  go run ./cmd/import-events -url http://events.internal:9080 -log import.log
`)
}
