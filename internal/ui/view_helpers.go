package ui

// view_helpers.go provides common View() rendering helpers.
// Use these to build consistent boxed layouts across the explorer panes.

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
)

// =============================================================================
// Table Rendering with Full-Width Selection
// =============================================================================

// RenderTableWithSelection renders a bubbles table with full-width selection highlight.
// The table's Selected style should be neutral (see ApplyTableStyles); this
// function applies the visible selection styling. When focused is false the
// cursor row is drawn like any other row.
//
// bubbles/table View() output:
// - Line 0: Header row
// - Line 1+: Data rows (only visible rows due to viewport scrolling)
// A divider is added after the header.
func RenderTableWithSelection(t table.Model, width int, focused bool) string {
	lines := strings.Split(t.View(), "\n")
	result := make([]string, 0, len(lines)+1)

	cursor := t.Cursor()
	height := t.Height()
	totalRows := len(t.Rows())

	// Match the table's internal viewport scrolling
	start := 0
	if totalRows > height {
		if cursor >= height {
			start = cursor - height + 1
		}
		if maxStart := totalRows - height; start > maxStart {
			start = maxStart
		}
	}
	visibleCursorIndex := cursor - start

	for i, line := range lines {
		if i == 0 {
			result = append(result, NormalStyle.Render(line))
			result = append(result, FullWidthDivider(width))
			continue
		}

		if focused && i-1 == visibleCursorIndex {
			result = append(result, RenderSelectedWidth(line, width))
			continue
		}

		result = append(result, NormalStyle.Render(line))
	}

	return strings.Join(result, "\n")
}

// =============================================================================
// View Header - Title + Divider Pattern
// =============================================================================

// ViewHeader renders title + full-width divider.
//
// Example:
//
//	content := ViewHeader("Sources", width)
//	content += m.selector.View()
func ViewHeader(title string, innerWidth int) string {
	var b strings.Builder
	b.WriteString(RenderTitle(title))
	b.WriteString("\n")
	b.WriteString(FullWidthDivider(innerWidth))
	b.WriteString("\n")
	return b.String()
}

// ViewHeaderWithSubtitle renders title + subtitle + divider.
func ViewHeaderWithSubtitle(title, subtitle string, innerWidth int) string {
	var b strings.Builder
	b.WriteString(RenderTitle(title))
	b.WriteString("\n")
	if subtitle != "" {
		b.WriteString(RenderDim(truncateToWidth(subtitle, innerWidth)))
		b.WriteString("\n")
	}
	b.WriteString(FullWidthDivider(innerWidth))
	b.WriteString("\n")
	return b.String()
}

// =============================================================================
// Text Centering
// =============================================================================

// CenterText centers text within given width.
// Uses StringWidth() for accurate ANSI-aware width calculation.
func CenterText(text string, width int) string {
	textW := StringWidth(text)
	if textW >= width {
		return text
	}
	padding := (width - textW) / 2
	return strings.Repeat(" ", padding) + text
}

// SpreadText places left and right at the edges of width.
func SpreadText(left, right string, width int) string {
	gap := width - StringWidth(left) - StringWidth(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// =============================================================================
// Dividers and Boxes
// =============================================================================

// FullWidthDivider returns a horizontal divider spanning the inner width.
func FullWidthDivider(innerWidth int) string {
	if innerWidth < 0 {
		innerWidth = 0
	}
	return strings.Repeat("─", innerWidth)
}

// Box renders content in a bordered box whose outer width is width. The
// border is highlighted when focused.
func Box(content string, width int, focused bool) string {
	style := BorderStyle
	if !focused {
		style = style.BorderForeground(ColorTextDim)
	}
	return style.Width(width - 2).Render(content)
}

// =============================================================================
// List Item Rendering
// =============================================================================

// RenderListItem renders a list item with bullet and optional selection highlight.
func RenderListItem(text string, selected bool, width int) string {
	prefix := "• "
	if selected {
		return RenderSelectedWidth(prefix+text, width)
	}
	return RenderNormal(truncateToWidth(prefix+text, width))
}
