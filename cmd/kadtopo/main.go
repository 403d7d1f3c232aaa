// Package main provides the command-line interface for the Kademlia
// connection strategy simulator.
//
// Each run bootstraps a simulated Kademlia population, lets every node pick
// connection targets with a strategy, negotiates connections to a fixed
// point and analyses the resulting topology. One tab-separated row per run
// is written to stdout; logs go to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/opd-ai/kadtopo/simulation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// CLI configuration
type CLIConfig struct {
	nodes           int
	configFile      string
	strategies      string
	bounds          string
	idBits          int
	seed            int64
	workers         int
	legacyTolerance bool
	logLevel        string
	logFormat       string
	metricsAddr     string
	help            bool

	// set records the flags given explicitly on the command line
	set map[string]bool
}

// parseCLIFlags parses args and returns the configuration.
func parseCLIFlags(args []string, output io.Writer) (*CLIConfig, *flag.FlagSet, error) {
	config := &CLIConfig{set: make(map[string]bool)}
	fs := flag.NewFlagSet("kadtopo", flag.ContinueOnError)
	fs.SetOutput(output)

	// Batch configuration
	fs.StringVar(&config.configFile, "config", "", "YAML batch file (settings under a top-level \"batch\" key)")
	fs.StringVar(&config.strategies, "strategy", "", "Comma-separated strategies (default random-closest)")
	fs.StringVar(&config.bounds, "bounds", "", "Comma-separated min:max peer bounds (default 5:10,7:14,9:18)")
	fs.IntVar(&config.idBits, "id-bits", 0, "Width of the ID space in bits (default 512)")
	fs.Int64Var(&config.seed, "seed", simulation.DefaultSeed, "Random seed of every run")
	fs.IntVar(&config.workers, "workers", 1, "Runs executed in parallel")
	fs.BoolVar(&config.legacyTolerance, "legacy-tolerance", false, "Use the neighbour ID as the kademlia-closest tolerance")

	// Logging configuration
	fs.StringVar(&config.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&config.logFormat, "log-format", "text", "Log format (text, json)")

	// Metrics
	fs.StringVar(&config.metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address while running")

	// Help
	fs.BoolVar(&config.help, "help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	fs.Visit(func(f *flag.Flag) { config.set[f.Name] = true })

	if fs.NArg() > 1 {
		return nil, fs, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args()[1:], " "))
	}
	if fs.NArg() == 1 {
		n, err := strconv.Atoi(fs.Arg(0))
		if err != nil {
			return nil, fs, fmt.Errorf("num_nodes must be an integer: %q", fs.Arg(0))
		}
		config.nodes = n
	}
	return config, fs, nil
}

// printUsage prints the usage information.
func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Kademlia Connection Strategy Simulator")
	fmt.Fprintln(w, "======================================")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s [options] <num_nodes>\n", fs.Name())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintf(w, "  # Reference batch over 200 nodes\n")
	fmt.Fprintf(w, "  %s 200\n", fs.Name())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  # Compare two strategies with 4 parallel runs\n")
	fmt.Fprintf(w, "  %s -strategy kademlia,equal-fingers -workers 4 500\n", fs.Name())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  # Batch file with debug logs as JSON\n")
	fmt.Fprintf(w, "  %s -config batch.yaml -log-level debug -log-format json\n", fs.Name())
}

// validateCLIConfig validates the CLI configuration.
func validateCLIConfig(config *CLIConfig) error {
	if config.configFile == "" && config.nodes == 0 {
		return fmt.Errorf("num_nodes is required unless -config is given")
	}

	if config.nodes < 0 {
		return fmt.Errorf("num_nodes cannot be negative")
	}

	if _, err := logrus.ParseLevel(config.logLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	if config.logFormat != "text" && config.logFormat != "json" {
		return fmt.Errorf("invalid log format %q: must be text or json", config.logFormat)
	}

	if config.bounds != "" {
		if _, err := parseBounds(config.bounds); err != nil {
			return err
		}
	}

	return nil
}

// parseBounds parses "min:max,min:max".
func parseBounds(s string) ([]simulation.PeerBounds, error) {
	var bounds []simulation.PeerBounds
	for _, part := range strings.Split(s, ",") {
		lo, hi, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("invalid peer bounds %q: expected min:max", part)
		}
		minPeers, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("invalid min_peers in %q: %w", part, err)
		}
		maxPeers, err := strconv.Atoi(hi)
		if err != nil {
			return nil, fmt.Errorf("invalid max_peers in %q: %w", part, err)
		}
		bounds = append(bounds, simulation.PeerBounds{MinPeers: minPeers, MaxPeers: maxPeers})
	}
	return bounds, nil
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// createBatchConfig loads the batch file, if any, and applies the flags given
// on the command line on top of it.
func createBatchConfig(cliConfig *CLIConfig) (*simulation.BatchConfig, error) {
	batch := simulation.DefaultBatchConfig(cliConfig.nodes)
	if cliConfig.configFile != "" {
		loaded, err := simulation.LoadBatchConfig(cliConfig.configFile)
		if err != nil {
			return nil, err
		}
		batch = loaded
		if cliConfig.nodes > 0 {
			batch.Nodes = cliConfig.nodes
		}
	}

	if cliConfig.set["strategy"] {
		batch.Strategies = splitList(cliConfig.strategies)
	}
	if cliConfig.set["bounds"] {
		bounds, err := parseBounds(cliConfig.bounds)
		if err != nil {
			return nil, err
		}
		batch.Bounds = bounds
	}
	if cliConfig.set["id-bits"] {
		batch.IDBits = cliConfig.idBits
	}
	if cliConfig.set["seed"] {
		batch.Seed = cliConfig.seed
	}
	if cliConfig.set["workers"] {
		batch.Workers = cliConfig.workers
	}
	if cliConfig.set["legacy-tolerance"] {
		batch.LegacyTolerance = cliConfig.legacyTolerance
	}
	return batch, nil
}

// setupLogging directs logs to stderr with the configured level and format.
func setupLogging(cliConfig *CLIConfig) {
	level, err := logrus.ParseLevel(cliConfig.logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(level)
	if cliConfig.logFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// serveMetrics exposes reg on addr until the returned function is called.
func serveMetrics(addr string, reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logrus.WithFields(logrus.Fields{
			"function": "serveMetrics",
			"addr":     addr,
		}).Info("Serving metrics")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithFields(logrus.Fields{
				"function": "serveMetrics",
				"error":    err.Error(),
			}).Error("Metrics server failed")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}

// setupSignalHandling sets up graceful shutdown on interrupt signals.
func setupSignalHandling(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	go func() {
		sig := <-sigChan
		logrus.WithField("signal", sig.String()).Warn("Received signal, cancelling runs")
		cancel()
	}()
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cliConfig, fs, err := parseCLIFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(stdout, fs)
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		printUsage(stderr, fs)
		return 1
	}

	if cliConfig.help {
		printUsage(stdout, fs)
		return 0
	}

	if err := validateCLIConfig(cliConfig); err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n\n", err)
		printUsage(stderr, fs)
		return 1
	}

	setupLogging(cliConfig)

	batch, err := createBatchConfig(cliConfig)
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}
	if err := batch.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n\n", err)
		printUsage(stderr, fs)
		return 1
	}

	var opts []simulation.Option
	if cliConfig.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics, err := simulation.NewMetrics(reg)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to create metrics: %v\n", err)
			return 1
		}
		opts = append(opts, simulation.WithMetrics(metrics))
		stop := serveMetrics(cliConfig.metricsAddr, reg)
		defer stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	results, err := simulation.RunBatch(ctx, batch, opts...)

	// completed runs are still reported when the batch was cancelled
	if werr := simulation.WriteTable(stdout, results); werr != nil {
		fmt.Fprintf(stderr, "Failed to write results: %v\n", werr)
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "Simulation failed: %v\n", err)
		return 1
	}
	return 0
}

// main is the entry point for the simulator.
func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
