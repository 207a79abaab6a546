package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/thesavant42/renewables-explorer/internal/config"
	"github.com/thesavant42/renewables-explorer/internal/db"
	"github.com/thesavant42/renewables-explorer/internal/server"
)

var (
	serveListen       string
	serveDB           string
	serveCatalog      string
	serveOrigins      []string
	serveDefaultLimit int
)

// serveCmd runs the bundled API over the local dataset store
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analytics API from a local SQLite store",
	Long: `Serves /sources, /sources_with_metadata and /data/{source} from the
datasets loaded with "explorer import".

Example:
  explorer import world_bank world_bank.csv
  explorer serve --listen :8000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", config.DefaultListen, "Address to listen on (env "+config.EnvListen+")")
	serveCmd.Flags().StringVar(&serveDB, "db", config.DefaultDBPath, "SQLite database path (env "+config.EnvDBPath+")")
	serveCmd.Flags().StringVar(&serveCatalog, "catalog", "", "YAML metadata catalog, embedded catalog when empty")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "cors-origin", nil, "Allowed CORS origins (default "+config.DefaultCORSOrigin+")")
	serveCmd.Flags().IntVar(&serveDefaultLimit, "default-limit", config.DefaultServerLimit, "Rows returned when a request sends no limit")
}

func runServe(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.Listen = serveListen
	}
	if flags.Changed("db") {
		cfg.DBPath = serveDB
	}
	if flags.Changed("catalog") {
		cfg.CatalogPath = serveCatalog
	}
	if flags.Changed("cors-origin") {
		cfg.CORSOrigins = serveOrigins
	}

	logger := newLogger(os.Stderr, "server", log.InfoLevel)

	store, err := db.Open(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	catalog, err := server.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	srv := server.New(store, catalog,
		server.WithLogger(logger),
		server.WithCORSOrigins(cfg.CORSOrigins...),
		server.WithDefaultLimit(serveDefaultLimit),
	)

	logger.Info("Serving", "addr", cfg.Listen, "db", cfg.DBPath, "catalog_entries", len(catalog))
	return srv.ListenAndServe(cmd.Context(), cfg.Listen)
}
