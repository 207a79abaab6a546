package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/thesavant42/renewables-explorer/internal/models"
	"github.com/thesavant42/renewables-explorer/internal/viz"
)

// exportBaseName builds "<source>-<timestamp>" with path separators removed
func exportBaseName(source models.Source, now time.Time) string {
	safe := strings.NewReplacer("/", "-", "\\", "-", " ", "_").Replace(source)
	if safe == "" {
		safe = "records"
	}
	return fmt.Sprintf("%s-%s", safe, now.Format("2006-01-02-150405"))
}

// RecordsMarkdown renders records as a markdown document with a summary
// and one table row per record.
func RecordsMarkdown(source models.Source, filters models.Filters, records models.Records, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", source))
	sb.WriteString(fmt.Sprintf("**Records:** %d\n", len(records)))
	sb.WriteString(fmt.Sprintf("**Filters:** %s\n", filters.Summary()))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n\n", now.Format("2006-01-02 15:04:05")))

	columns := records.Columns()
	if len(columns) == 0 {
		sb.WriteString("_No data._\n")
		return sb.String()
	}

	sb.WriteString("| " + strings.Join(escapeCells(columns), " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat("---|", len(columns)) + "\n")

	for _, r := range records {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = r.String(col)
		}
		sb.WriteString("| " + strings.Join(escapeCells(cells), " | ") + " |\n")
	}

	return sb.String()
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, "|", `\|`)
		out[i] = strings.ReplaceAll(c, "\n", " ")
	}
	return out
}

// ExportRecords writes the records to dir as markdown and, when the records
// chart as a line or bar, as a PNG. It returns the paths written.
func ExportRecords(dir string, source models.Source, filters models.Filters, records models.Records) ([]string, error) {
	if len(records) == 0 {
		return nil, errors.New("nothing to export")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	now := time.Now()
	base := filepath.Join(dir, exportBaseName(source, now))

	mdPath := base + ".md"
	if err := os.WriteFile(mdPath, []byte(RecordsMarkdown(source, filters, records, now)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write markdown file: %w", err)
	}
	paths := []string{mdPath}

	plan := viz.Detect(records)
	if plan.Mode != viz.ModeLine && plan.Mode != viz.ModeBar {
		return paths, nil
	}

	pngPath := base + ".png"
	f, err := os.Create(pngPath)
	if err != nil {
		return paths, fmt.Errorf("failed to create image file: %w", err)
	}

	err = viz.WritePNG(f, records, plan, fmt.Sprintf("%s: %s", source, viz.Title(plan, len(records))))
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to write image file: %w", closeErr)
	}
	if err != nil {
		os.Remove(pngPath)
		if errors.Is(err, viz.ErrNotChartable) {
			return paths, nil
		}
		return paths, err
	}
	return append(paths, pngPath), nil
}
