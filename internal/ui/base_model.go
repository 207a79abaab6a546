package ui

// base_model.go provides common TUI helpers for Bubble Tea models.

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// Table Initialization Helpers
// =============================================================================

// InitTable creates and configures a table with proper styling and dimensions.
// Use this instead of calling table.New() directly to ensure consistent setup.
//
// Example:
//
//	columns := CalculateColumns(RecordColumns(records), layout.TableWidth)
//	m.table = InitTable(columns, rows, layout.TableHeight)
func InitTable(columns []table.Column, rows []table.Row, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	ApplyTableStyles(&t)
	t.GotoTop()

	return t
}

// =============================================================================
// Standard Init/Update Helpers
// =============================================================================

// StandardInit returns the standard Init command: ask for the window size.
func StandardInit() tea.Cmd {
	return tea.WindowSize()
}

// =============================================================================
// Key Handling Helpers
// =============================================================================

// HandleQuitKeys returns true and Quit cmd for q/ctrl+c.
// Esc is left alone because it leaves the filter form.
func HandleQuitKeys(key string) (bool, tea.Cmd) {
	switch key {
	case "q", "ctrl+c":
		return true, tea.Quit
	}
	return false, nil
}

// HandleNavigationKeys handles standard up/down/j/k navigation.
// Returns new cursor position (clamped to valid range).
func HandleNavigationKeys(key string, cursor, maxItems int) int {
	switch key {
	case "up", "k":
		if cursor > 0 {
			return cursor - 1
		}
	case "down", "j":
		if cursor < maxItems-1 {
			return cursor + 1
		}
	case "home", "g":
		return 0
	case "end", "G":
		if maxItems > 0 {
			return maxItems - 1
		}
	}
	return cursor
}
