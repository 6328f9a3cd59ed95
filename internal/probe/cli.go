package probe

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/attrib/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging initializes the global logger on stdout, teeing to logFile
// when one is given. The returned func releases the file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	var (
		w       io.Writer = os.Stdout
		closeFn           = func() error { return nil }
	)
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w, closeFn = io.MultiWriter(os.Stdout, file), file.Close
	}

	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closeFn, nil
}

// ShowHelp prints usage information for the probe.
func ShowHelp() {
	os.Stdout.WriteString(`Attribution Engine Probe
========================

Probes a running service with synthetic games and checks every response
against the scoring contract.

Usage:
  go run ./cmd/probe [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -games int
        Number of synthetic games to probe (default 200)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -sport string
        Sport profile to request (default: server default)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Write per-game results as JSON to this file
  -log string
        Also write logs to this file
  -verbose
        Log every game
  -help
        Show this help message

Examples:
  # Probe with default settings
  go run ./cmd/probe

  # Probe NFL matchups with more load
  go run ./cmd/probe -games 2000 -workers 32 -sport nfl
`)
}
