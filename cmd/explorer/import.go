package main

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thesavant42/renewables-explorer/internal/db"
	"github.com/thesavant42/renewables-explorer/internal/ui"
)

const (
	maxParallelReads = 4
	userAgent        = "renewables-explorer/1.0"
	requestIDHeader  = "X-Request-ID"
	maxErrorBody     = 512
)

var (
	importDB        string
	importDelimiter string
	importDrop      bool
)

// importCmd loads CSV files into the store served by "explorer serve"
var importCmd = &cobra.Command{
	Use:   "import SOURCE FILE|URL [SOURCE FILE|URL...]",
	Short: "Load CSV files into the local dataset store",
	Long: `Each SOURCE FILE pair replaces the source's table with the CSV contents.
Column types (INTEGER, REAL, TEXT) are inferred; empty cells become NULL.

FILE may be an http(s) URL, which is downloaded first. A .zip file or URL
is unpacked and its largest CSV is imported.

With --drop, the arguments are source names to remove instead.

Example:
  explorer import world_bank wb.csv rte eco2mix.csv
  explorer import --delimiter ';' rte 'https://odre.opendatasoft.com/api/explore/v2.1/catalog/datasets/eco2mix-national-cons-def/exports/csv?delimiter=%3B'
  explorer import --drop rte`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importDB, "db", "", "SQLite database path (env EXPLORER_DB)")
	importCmd.Flags().StringVar(&importDelimiter, "delimiter", ",", `Field delimiter, "tab" or \t for tabs`)
	importCmd.Flags().BoolVar(&importDrop, "drop", false, "Remove the named sources")
}

// importPair is one SOURCE FILE argument pair
type importPair struct {
	source string
	file   string
}

func parseImportArgs(args []string) ([]importPair, error) {
	if len(args)%2 != 0 {
		return nil, errors.New("arguments must be SOURCE FILE pairs")
	}
	pairs := make([]importPair, 0, len(args)/2)
	seen := make(map[string]bool)
	for i := 0; i < len(args); i += 2 {
		source := strings.TrimSpace(args[i])
		if source == "" {
			return nil, fmt.Errorf("empty source name for %s", args[i+1])
		}
		if seen[source] {
			return nil, fmt.Errorf("source %s given twice", source)
		}
		seen[source] = true
		pairs = append(pairs, importPair{source: source, file: args[i+1]})
	}
	return pairs, nil
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

// readTables parses every file or URL concurrently
func readTables(ctx context.Context, hc *http.Client, logger *log.Logger, pairs []importPair, delimiter rune) ([]*db.Table, error) {
	tables := make([]*db.Table, len(pairs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, p := range pairs {
		g.Go(func() error {
			rc, err := openLocation(ctx, hc, logger, p.file)
			if err != nil {
				return err
			}
			defer rc.Close()

			t, err := db.ReadCSV(rc, delimiter)
			if err != nil {
				return fmt.Errorf("%s: %w", p.file, err)
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

func isURL(location string) bool {
	u, err := url.Parse(location)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// isZip looks at the path only, so query strings on URLs are ignored.
func isZip(location string) bool {
	p := location
	if u, err := url.Parse(location); err == nil && isURL(location) {
		p = u.Path
	}
	return strings.EqualFold(path.Ext(p), ".zip")
}

// openLocation returns the CSV stream behind a path or URL, unpacking zips.
func openLocation(ctx context.Context, hc *http.Client, logger *log.Logger, location string) (io.ReadCloser, error) {
	var rc io.ReadCloser
	var err error
	if isURL(location) {
		rc, err = download(ctx, hc, logger, location)
	} else {
		rc, err = os.Open(location)
		if err != nil {
			err = fmt.Errorf("failed to open %s: %w", location, err)
		}
	}
	if err != nil || !isZip(location) {
		return rc, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	return largestCSV(data, location)
}

// downloadClient bounds the wait for response headers only; dataset
// bodies can take longer than the API timeout to stream.
func downloadClient(timeout time.Duration) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.ResponseHeaderTimeout = timeout
	return &http.Client{Transport: tr}
}

func download(ctx context.Context, hc *http.Client, logger *log.Logger, location string) (io.ReadCloser, error) {
	requestID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", location, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(requestIDHeader, requestID)

	logger.Info("GET", "url", location, "request_id", requestID)
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		logger.Error("Download failed", "url", location, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("failed to download %s: %w", location, err)
	}
	logger.Debug("Response", "status", resp.StatusCode, "request_id", requestID, "elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("failed to download %s: status %d: %s", location, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}

// largestCSV opens the biggest .csv entry of a zip archive
func largestCSV(data []byte, location string) (io.ReadCloser, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}

	var best *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(path.Ext(f.Name), ".csv") {
			continue
		}
		if best == nil || f.UncompressedSize64 > best.UncompressedSize64 {
			best = f
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%s: no CSV file in archive", location)
	}
	return best.Open()
}

func runImport(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("db") {
		cfg.DBPath = importDB
	}

	logger := newLogger(os.Stderr, "import", log.WarnLevel)
	store, err := db.Open(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()

	if importDrop {
		for _, source := range args {
			if err := store.DropSource(ctx, source); err != nil {
				return err
			}
			ui.PrintSuccess("Dropped " + source)
		}
		return nil
	}

	pairs, err := parseImportArgs(args)
	if err != nil {
		return err
	}
	delimiter, err := parseDelimiter(importDelimiter)
	if err != nil {
		return err
	}

	var tables []*db.Table
	err = ui.RunWithSpinner(fmt.Sprintf("Reading %d file(s)...", len(pairs)), func() error {
		var readErr error
		tables, readErr = readTables(ctx, downloadClient(cfg.Timeout), logger, pairs, delimiter)
		return readErr
	})
	if err != nil {
		return err
	}

	for i, p := range pairs {
		n, err := store.Import(ctx, p.source, tables[i])
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", p.source, err)
		}
		ui.PrintSuccess(fmt.Sprintf("Imported %d rows into %s (%d columns) from %s", n, p.source, len(tables[i].Columns), p.file))
	}
	return nil
}
