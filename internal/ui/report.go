package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/thesavant42/renewables-explorer/internal/models"
)

var (
	// Report palette
	purple = lipgloss.Color("99")  // for borders
	pink   = lipgloss.Color("205") // for header text
	cyan   = lipgloss.Color("86")
	white  = lipgloss.Color("255")
	green  = lipgloss.Color("82")

	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(pink)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(cyan)

	headerStyle = lipgloss.NewStyle().
			Foreground(pink).
			Bold(true)

	rowStyle = lipgloss.NewStyle().
			Foreground(white)

	reportBorderStyle = lipgloss.NewStyle().
				Foreground(purple)
)

const maxReportCellWidth = 24

// PrintSources lists the sources with their description, one per line
func PrintSources(catalog models.Catalog) {
	FprintSources(os.Stdout, catalog)
}

// FprintSources writes the source listing to w
func FprintSources(w io.Writer, catalog models.Catalog) {
	if len(catalog.Sources) == 0 {
		fmt.Fprintln(w, subtitleStyle.Render("No sources available"))
		return
	}

	fmt.Fprintln(w, reportTitleStyle.Render(fmt.Sprintf("%d sources", len(catalog.Sources))))
	width := 0
	for _, s := range catalog.Sources {
		width = max(width, len(s))
	}
	for _, s := range catalog.Sources {
		line := fmt.Sprintf("  %-*s", width, s)
		if desc := catalog.Describe(s); desc != "" {
			line += "  " + subtitleStyle.Render(truncateToWidth(desc, 80))
		}
		fmt.Fprintln(w, line)
	}
}

// PrintRecords prints records as a bordered table, at most maxRows rows.
//
// This is a CLI report (non-interactive), so the table structure is built with
// string formatting. Lipgloss is used only for colors.
func PrintRecords(source models.Source, records models.Records, maxRows int) {
	FprintRecords(os.Stdout, source, records, maxRows)
}

// FprintRecords writes the record table to w
func FprintRecords(w io.Writer, source models.Source, records models.Records, maxRows int) {
	fmt.Fprintln(w, reportTitleStyle.Render(fmt.Sprintf("%s: %d records", source, len(records))))

	columns := records.Columns()
	if len(columns) == 0 {
		fmt.Fprintln(w, subtitleStyle.Render("No data"))
		return
	}

	shown := records
	if maxRows > 0 && len(shown) > maxRows {
		shown = shown[:maxRows]
	}

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = min(StringWidth(col), maxReportCellWidth)
		for _, r := range shown {
			widths[i] = max(widths[i], min(StringWidth(r.String(col)), maxReportCellWidth))
		}
	}

	totalWidth := 1
	for _, cw := range widths {
		totalWidth += cw + 3
	}
	separator := strings.Repeat("─", totalWidth-2)

	fmt.Fprintln(w, reportBorderStyle.Render("┌"+separator+"┐"))
	fmt.Fprintln(w, headerStyle.Render(formatReportRow(columns, widths)))
	fmt.Fprintln(w, reportBorderStyle.Render("├"+separator+"┤"))

	for _, r := range shown {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = strings.ReplaceAll(r.String(col), "\n", " ")
		}
		fmt.Fprintln(w, rowStyle.Render(formatReportRow(cells, widths)))
	}

	fmt.Fprintln(w, reportBorderStyle.Render("└"+separator+"┘"))

	if hidden := len(records) - len(shown); hidden > 0 {
		fmt.Fprintln(w, subtitleStyle.Render(fmt.Sprintf("… %d more rows", hidden)))
	}
}

func formatReportRow(cells []string, widths []int) string {
	var b strings.Builder
	b.WriteString("│")
	for i, c := range cells {
		if StringWidth(c) > widths[i] {
			c = truncateToWidth(c, widths[i]-1) + "…"
		}
		b.WriteString(" ")
		b.WriteString(c)
		b.WriteString(strings.Repeat(" ", widths[i]-StringWidth(c)))
		b.WriteString(" │")
	}
	return b.String()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	successStyle := lipgloss.NewStyle().
		Foreground(green).
		Bold(true)
	fmt.Println(successStyle.Render(message))
}

// PrintError prints an error message
func PrintError(message string) {
	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)
	fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+message))
}
