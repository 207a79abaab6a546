package ui

// columns.go provides generic column width calculation for bubbles/table.
// Use ColumnSpec and CalculateColumns() instead of duplicating percentage-based math.

import (
	"github.com/charmbracelet/bubbles/table"

	"github.com/thesavant42/renewables-explorer/internal/models"
)

// =============================================================================
// Column Specification Types
// =============================================================================

// ColumnSpec defines a table column with flexible or fixed width.
// Use FlexRatio for columns that should expand/contract with terminal width.
// Use FixedWidth for columns that should maintain constant width.
type ColumnSpec struct {
	Title      string
	MinWidth   int // Minimum width (0 = no minimum)
	FixedWidth int // If > 0, use this exact width (ignores FlexRatio)
	FlexRatio  int // Relative ratio for flexible columns (0 = fixed-only)
}

// =============================================================================
// Column Calculation
// =============================================================================

// CalculateColumns computes column widths from specs.
// Flexible columns split remaining space by ratio after fixed columns are allocated.
//
// Example:
//
//	columns := CalculateColumns([]ColumnSpec{
//	    {Title: "pays", FlexRatio: 30, MinWidth: 8},
//	    {Title: "nom_politique", FlexRatio: 40, MinWidth: 12},
//	    {Title: "annee", FixedWidth: 6},
//	}, layout.TableWidth)
func CalculateColumns(specs []ColumnSpec, totalWidth int) []table.Column {
	if totalWidth < 20 {
		totalWidth = 20
	}

	// bubbles/table pads every cell by one on each side
	totalWidth -= 2 * len(specs)

	fixedTotal := 0
	flexTotal := 0
	for _, s := range specs {
		if s.FixedWidth > 0 {
			fixedTotal += s.FixedWidth
		} else {
			flexTotal += s.FlexRatio
		}
	}

	remaining := totalWidth - fixedTotal
	if remaining < 0 {
		remaining = 0
	}

	columns := make([]table.Column, len(specs))
	for i, s := range specs {
		var width int
		if s.FixedWidth > 0 {
			width = s.FixedWidth
		} else if flexTotal > 0 {
			width = remaining * s.FlexRatio / flexTotal
		}

		if s.MinWidth > 0 && width < s.MinWidth {
			width = s.MinWidth
		}

		columns[i] = table.Column{Title: s.Title, Width: width}
	}

	return columns
}

// =============================================================================
// Pre-defined Column Layouts
// =============================================================================

// RecordColumns returns one flexible column per record key, in key order.
// Columns are weighted by the longer of the header and the widest sampled value.
func RecordColumns(records models.Records) []ColumnSpec {
	keys := records.Columns()
	specs := make([]ColumnSpec, len(keys))
	for i, k := range keys {
		widest := StringWidth(k)
		for j, r := range records {
			if j >= PageSize {
				break
			}
			widest = max(widest, StringWidth(r.String(k)))
		}
		specs[i] = ColumnSpec{
			Title:     k,
			FlexRatio: clamp(widest, 4, 40),
			MinWidth:  clamp(StringWidth(k), 4, 12),
		}
	}
	return specs
}
