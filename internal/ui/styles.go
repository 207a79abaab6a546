package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/thesavant42/renewables-explorer/internal/viz"
)

// Layout constants - single source of truth for all viewport dimensions
const (
	MinViewportWidth = 80
	MaxViewportWidth = 160
	DefaultWidth     = 110 // Used when terminal size is unknown
	DefaultHeight    = 40
	PageSize         = 20 // rows per table page
	SidebarWidth     = 28
)

// Layout holds computed dimensions for the current terminal size
type Layout struct {
	ViewportWidth  int // clamped terminal width
	ViewportHeight int
	InnerWidth     int // ViewportWidth - 2 (EXACT width for content inside borders)
	TableWidth     int // InnerWidth minus cell padding
	TableHeight    int // visible data rows
	ChartHeight    int
}

// NewLayout creates a Layout from the terminal size, clamping to min/max.
// Zero dimensions fall back to the defaults.
func NewLayout(terminalWidth, terminalHeight int) Layout {
	if terminalWidth <= 0 {
		terminalWidth = DefaultWidth
	}
	if terminalHeight <= 0 {
		terminalHeight = DefaultHeight
	}
	width := clamp(terminalWidth, MinViewportWidth, MaxViewportWidth)
	chart := clamp(terminalHeight/3, 8, 16)
	return Layout{
		ViewportWidth:  width,
		ViewportHeight: terminalHeight,
		InnerWidth:     width - 2,
		TableWidth:     width - 4,
		TableHeight:    clamp(terminalHeight-chart-18, 5, PageSize),
		ChartHeight:    chart,
	}
}

// DefaultLayout returns a layout using the default size
func DefaultLayout() Layout {
	return NewLayout(DefaultWidth, DefaultHeight)
}

// clamp restricts a value to the given range
func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Palette is a set of colors the whole UI is drawn with
type Palette struct {
	Name      string
	Border    lipgloss.Color
	Highlight lipgloss.Color
	Text      lipgloss.Color
	Accent    lipgloss.Color
	AccentDim lipgloss.Color
	TextDim   lipgloss.Color
	Error     lipgloss.Color
}

var (
	DarkPalette = Palette{
		Name:      "dark",
		Border:    lipgloss.Color("35"),  // green
		Highlight: lipgloss.Color("22"),  // dark green background
		Text:      lipgloss.Color("15"),  // bright white
		Accent:    lipgloss.Color("226"), // bright yellow
		AccentDim: lipgloss.Color("220"), // yellow (progress)
		TextDim:   lipgloss.Color("241"), // gray
		Error:     lipgloss.Color("196"), // red
	}

	LightPalette = Palette{
		Name:      "light",
		Border:    lipgloss.Color("25"),  // blue
		Highlight: lipgloss.Color("153"), // pale blue background
		Text:      lipgloss.Color("0"),   // black
		Accent:    lipgloss.Color("130"), // brown-orange
		AccentDim: lipgloss.Color("136"),
		TextDim:   lipgloss.Color("244"),
		Error:     lipgloss.Color("160"),
	}
)

// Color palette - set by ApplyPalette
var (
	ColorBorder    lipgloss.Color
	ColorHighlight lipgloss.Color
	ColorText      lipgloss.Color
	ColorAccent    lipgloss.Color
	ColorAccentDim lipgloss.Color
	ColorTextDim   lipgloss.Color
	ColorError     lipgloss.Color
)

// Common styles - rebuilt by ApplyPalette
var (
	// Border style for boxes.
	// STYLE GUIDE: Always use .Width(InnerWidth) with NO .Padding()
	// so a box is exactly ViewportWidth wide.
	BorderStyle   lipgloss.Style
	TitleStyle    lipgloss.Style
	SelectedStyle lipgloss.Style
	NormalStyle   lipgloss.Style
	DimStyle      lipgloss.Style
	HintStyle     lipgloss.Style
	AccentStyle   lipgloss.Style
	ProgressStyle lipgloss.Style
	ErrorStyle    lipgloss.Style
	StatsStyle    lipgloss.Style
)

var currentPalette Palette

func init() {
	ApplyPalette(DarkPalette)
}

// ApplyPalette switches every shared color and style to p.
func ApplyPalette(p Palette) {
	currentPalette = p

	ColorBorder = p.Border
	ColorHighlight = p.Highlight
	ColorText = p.Text
	ColorAccent = p.Accent
	ColorAccentDim = p.AccentDim
	ColorTextDim = p.TextDim
	ColorError = p.Error

	BorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorText)

	SelectedStyle = lipgloss.NewStyle().
		Foreground(ColorText).
		Background(ColorHighlight).
		Bold(true)

	NormalStyle = lipgloss.NewStyle().
		Foreground(ColorText)

	DimStyle = lipgloss.NewStyle().
		Foreground(ColorTextDim)

	HintStyle = lipgloss.NewStyle().
		Foreground(ColorText).
		Italic(true)

	AccentStyle = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)

	ProgressStyle = lipgloss.NewStyle().
		Foreground(ColorAccentDim)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError).
		Bold(true)

	StatsStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorText)
}

// CurrentPalette returns the palette in use
func CurrentPalette() Palette {
	return currentPalette
}

// TogglePalette flips between the dark and light palettes and returns the new one
func TogglePalette() Palette {
	if currentPalette.Name == DarkPalette.Name {
		ApplyPalette(LightPalette)
	} else {
		ApplyPalette(DarkPalette)
	}
	return currentPalette
}

// =============================================================================
// Render helpers
// =============================================================================

func RenderTitle(s string) string  { return TitleStyle.Render(s) }
func RenderNormal(s string) string { return NormalStyle.Render(s) }
func RenderDim(s string) string    { return DimStyle.Render(s) }
func RenderAccent(s string) string { return AccentStyle.Render(s) }
func RenderError(s string) string  { return ErrorStyle.Render(s) }

// RenderSelectedWidth renders s highlighted and padded to width
func RenderSelectedWidth(s string, width int) string {
	clean := stripEscapeCodes(s)
	if w := StringWidth(clean); w < width {
		clean += strings.Repeat(" ", width-w)
	} else if w > width {
		clean = truncateToWidth(clean, width)
	}
	return SelectedStyle.Render(clean)
}

// StringWidth returns the display width of s, ignoring escape codes
func StringWidth(s string) int {
	return ansi.StringWidth(s)
}

func truncateToWidth(s string, width int) string {
	return ansi.Truncate(s, width, "")
}

func stripEscapeCodes(s string) string {
	return ansi.Strip(s)
}

// PadContentToHeight pads content with blank lines up to height lines
func PadContentToHeight(content string, height int) string {
	lines := strings.Count(content, "\n") + 1
	if lines >= height {
		return content
	}
	return content + strings.Repeat("\n", height-lines)
}

// BuildTwoBoxView renders content in the main bordered box with a one-row
// help box underneath.
func BuildTwoBoxView(content, helpText string, layout Layout) string {
	main := BorderStyle.
		Width(layout.InnerWidth).
		Render(PadContentToHeight(content, layout.ViewportHeight-5))

	help := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorText).
		Width(layout.InnerWidth).
		Render(CenterText(HintStyle.Render(helpText), layout.InnerWidth))

	return main + "\n" + help
}

// ApplyTableStyles sets the standard table styles. The selected row style is
// neutral; RenderTableWithSelection draws the visible highlight.
func ApplyTableStyles(t *table.Model) {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(false).
		Bold(true).
		Foreground(ColorText)
	s.Cell = s.Cell.Foreground(ColorText)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)
}

// NewAppSpinner creates the spinner used for loading states
func NewAppSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorAccent)),
	)
}

// VizStyles maps the palette onto chart styles
func VizStyles() viz.Styles {
	return viz.Styles{
		Axis:      DimStyle,
		Label:     NormalStyle,
		Point:     AccentStyle,
		Bar:       lipgloss.NewStyle().Foreground(ColorBorder),
		Marker:    AccentStyle,
		Highlight: SelectedStyle,
		Grid:      DimStyle,
	}
}

// NewAppTheme creates a huh theme matching the active palette
func NewAppTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().
		Foreground(ColorText).
		Bold(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(ColorTextDim)

	t.Focused.Description = lipgloss.NewStyle().
		Foreground(ColorTextDim)
	t.Blurred.Description = t.Focused.Description

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(ColorBorder).
		Foreground(ColorText)
	t.Blurred.Base = t.Focused.Base.
		BorderStyle(lipgloss.HiddenBorder())

	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(ColorError)
	t.Focused.ErrorMessage = t.Focused.ErrorIndicator

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(ColorBorder)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(ColorTextDim)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(ColorBorder)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(ColorText)
	t.Blurred.TextInput = t.Focused.TextInput
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(ColorTextDim)

	return t
}
