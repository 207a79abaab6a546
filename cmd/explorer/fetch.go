package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/thesavant42/renewables-explorer/internal/models"
	"github.com/thesavant42/renewables-explorer/internal/ui"
)

var (
	fetchFrom    string
	fetchTo      string
	fetchCountry string
	fetchQuery   string
	fetchRows    int
	fetchExport  string
)

// sourcesCmd lists the sources the API serves
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the available data sources",
	Args:  cobra.NoArgs,
	RunE:  runSources,
}

// fetchCmd prints one source's records
var fetchCmd = &cobra.Command{
	Use:   "fetch SOURCE",
	Short: "Fetch a source's records and print them as a table",
	Long: `Fetches records from one source with optional filters and prints them.

Example:
  explorer fetch world_bank --from 2015 --country France --rows 50
  explorer fetch rte --export ./exports`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "Start year ("+models.FilterStartYear+")")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "End year ("+models.FilterEndYear+")")
	fetchCmd.Flags().StringVar(&fetchCountry, "country", "", "Country substring ("+models.FilterCountry+")")
	fetchCmd.Flags().StringVar(&fetchQuery, "query", "", "Free-text search ("+models.FilterQuery+")")
	fetchCmd.Flags().IntVar(&fetchRows, "rows", ui.PageSize, "Rows to print, 0 for all")
	fetchCmd.Flags().StringVar(&fetchExport, "export", "", "Also write markdown and chart files to this directory")
}

func runSources(cmd *cobra.Command, args []string) error {
	client := newClient(newLogger(os.Stderr, "api", log.WarnLevel))

	var catalog models.Catalog
	var fetchErr error
	err := spinner.New().
		Title("Fetching sources from " + client.BaseURL() + "...").
		Action(func() {
			catalog, fetchErr = client.FetchCatalog(cmd.Context())
		}).
		Run()
	if err != nil {
		return fmt.Errorf("spinner error: %w", err)
	}
	if fetchErr != nil {
		return fmt.Errorf("failed to list sources: %w", fetchErr)
	}

	ui.PrintSources(catalog)
	return nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	source := args[0]
	filters := models.Filters{
		StartYear: fetchFrom,
		EndYear:   fetchTo,
		Country:   fetchCountry,
		Query:     fetchQuery,
	}
	client := newClient(newLogger(os.Stderr, "api", log.WarnLevel))

	var resp *models.DataResponse
	var fetchErr error
	err := spinner.New().
		Title(fmt.Sprintf("Fetching %s (%s)...", source, filters.Summary())).
		Action(func() {
			resp, fetchErr = client.FetchData(cmd.Context(), source, filters)
		}).
		Run()
	if err != nil {
		return fmt.Errorf("spinner error: %w", err)
	}
	if fetchErr != nil {
		return fmt.Errorf("failed to fetch %s: %w", source, fetchErr)
	}

	ui.PrintRecords(source, resp.Data, fetchRows)

	if fetchExport == "" {
		return nil
	}
	paths, err := ui.ExportRecords(fetchExport, source, filters, resp.Data)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	ui.PrintSuccess("Exported " + strings.Join(paths, ", "))
	return nil
}
