package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/thesavant42/renewables-explorer/internal/api"
	"github.com/thesavant42/renewables-explorer/internal/config"
	"github.com/thesavant42/renewables-explorer/internal/ui"
)

var (
	// Global flags
	apiURL    string
	timeout   time.Duration
	limit     int
	verbose   bool
	logFile   string
	exportDir string

	// Resolved in PersistentPreRunE
	cfg config.Config
)

// rootCmd runs the interactive explorer
var rootCmd = &cobra.Command{
	Use:   "explorer",
	Short: "Browse renewable-energy datasets from the analytics API",
	Long: `explorer is a terminal client for the renewable energy analytics API.

Run without arguments to start the interactive explorer: pick a source,
set year/country/text filters, then browse the paginated records next to
a map, line or bar chart chosen from the data's shape.

Settings come from .env, then EXPLORER_* environment variables, then flags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd)
		return err
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", config.DefaultAPIURL, "Base URL of the data API (env "+config.EnvAPIURL+")")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", config.DefaultTimeout, "Per-request timeout, 0 for none")
	rootCmd.PersistentFlags().IntVar(&limit, "limit", 0, "Row limit sent with data requests, 0 for the server default")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", config.DefaultLogFile, "Log file for the interactive explorer")
	rootCmd.Flags().StringVar(&exportDir, "export-dir", ".", "Directory the e key exports to")

	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}

// loadConfig layers changed flags over .env and the environment
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	c, err := config.Load()
	if err != nil {
		return c, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		c.APIURL = apiURL
	}
	if flags.Changed("timeout") {
		c.Timeout = timeout
	}
	if flags.Changed("limit") {
		c.Limit = limit
	}
	if flags.Changed("log-file") {
		c.LogFile = logFile
	}
	c.Verbose = verbose

	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// newLogger creates a logger for w. Verbose mode always logs at debug level.
func newLogger(w io.Writer, prefix string, level log.Level) *log.Logger {
	if cfg.Verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          prefix,
		Level:           level,
	})
}

func newClient(logger *log.Logger) *api.Client {
	return api.NewClient(cfg.APIURL, cfg.Timeout, api.WithLimit(cfg.Limit), api.WithLogger(logger))
}

// runTUI starts the interactive explorer. The screen belongs to the TUI, so
// logs go to the log file.
func runTUI(cmd *cobra.Command, args []string) error {
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	logger := newLogger(f, "explorer", log.InfoLevel)
	logger.Info("Starting explorer", "api", cfg.APIURL, "timeout", cfg.Timeout, "limit", cfg.Limit)

	err = ui.RunApp(newClient(logger), ui.AppOptions{
		Timeout:   cfg.Timeout,
		ExportDir: exportDir,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("Explorer exited", "error", err)
		return fmt.Errorf("interactive mode failed: %w", err)
	}
	return nil
}
