package viz

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/thesavant42/renewables-explorer/internal/models"
)

// Styles colours the terminal renderings.
type Styles struct {
	Axis      lipgloss.Style
	Label     lipgloss.Style
	Point     lipgloss.Style
	Bar       lipgloss.Style
	Marker    lipgloss.Style
	Highlight lipgloss.Style
	Grid      lipgloss.Style
}

// DefaultStyles returns plain styles suitable for tests and pipes.
func DefaultStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Axis:      plain,
		Label:     plain,
		Point:     plain,
		Bar:       plain,
		Marker:    plain,
		Highlight: plain.Bold(true),
		Grid:      plain,
	}
}

// Options controls a terminal rendering.
type Options struct {
	Width    int
	Height   int
	MaxBars  int
	Selected int // record index highlighted on the map, -1 for none
	Styles   Styles
}

const (
	minWidth       = 30
	minHeight      = 6
	defaultMaxBars = 15
	maxLabelWidth  = 18
)

// Render draws records according to plan. It returns "" for ModeNone and for
// empty collections.
func Render(records models.Records, plan Plan, opts Options) string {
	if len(records) == 0 {
		return ""
	}
	opts = normalize(opts)
	switch plan.Mode {
	case ModeMap:
		return RenderMap(records, opts)
	case ModeLine:
		return RenderLine(records, plan, opts)
	case ModeBar:
		return RenderBar(records, plan, opts)
	}
	return ""
}

func normalize(opts Options) Options {
	if opts.Width < minWidth {
		opts.Width = minWidth
	}
	if opts.Height < minHeight {
		opts.Height = minHeight
	}
	if opts.MaxBars <= 0 {
		opts.MaxBars = defaultMaxBars
	}
	return opts
}

// Title describes what a plan plots.
func Title(plan Plan, count int) string {
	switch plan.Mode {
	case ModeMap:
		return fmt.Sprintf("Map of %d records", count)
	case ModeLine:
		return fmt.Sprintf("%s over %s", plan.NumericCol, plan.DateCol)
	case ModeBar:
		return fmt.Sprintf("%s by %s", plan.NumericCol, plan.CategoryCol)
	}
	return ""
}

// Popup lists every "key: value" pair of a record, one per line.
func Popup(r models.Record) string {
	keys := r.Keys()
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + ": " + r.String(k)
	}
	return strings.Join(lines, "\n")
}

type point struct {
	label string
	value float64
}

func linePoints(records models.Records, plan Plan) []point {
	var pts []point
	for _, r := range records {
		y, ok := r.Number(plan.NumericCol)
		if !ok || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		pts = append(pts, point{label: r.String(plan.DateCol), value: y})
	}
	return pts
}

// RenderLine plots the numeric column against the date column in data order.
// Long series are sampled down to the available width.
func RenderLine(records models.Records, plan Plan, opts Options) string {
	opts = normalize(opts)
	pts := linePoints(records, plan)
	if len(pts) == 0 {
		return ""
	}

	lo, hi := bounds(pts)
	top, mid, bottom := formatNumber(hi), formatNumber((lo+hi)/2), formatNumber(lo)
	labelW := max(len(top), len(mid), len(bottom))

	plotW := opts.Width - labelW - 2
	plotH := opts.Height - 2
	if plotW < 2 {
		plotW = 2
	}

	grid := make([][]bool, plotH)
	for i := range grid {
		grid[i] = make([]bool, plotW)
	}

	n := len(pts)
	place := func(col int, p point) {
		row := 0
		if hi > lo {
			row = int(math.Round((hi - p.value) / (hi - lo) * float64(plotH-1)))
		}
		grid[row][col] = true
	}

	if n > plotW {
		for col := 0; col < plotW; col++ {
			place(col, pts[col*(n-1)/(plotW-1)])
		}
	} else {
		for i, p := range pts {
			col := 0
			if n > 1 {
				col = i * (plotW - 1) / (n - 1)
			}
			place(col, p)
		}
	}

	var b strings.Builder
	for row := 0; row < plotH; row++ {
		label := ""
		switch row {
		case 0:
			label = top
		case plotH / 2:
			label = mid
		case plotH - 1:
			label = bottom
		}
		b.WriteString(opts.Styles.Label.Render(fmt.Sprintf("%*s", labelW, label)))
		b.WriteString(opts.Styles.Axis.Render(" │"))
		for col := 0; col < plotW; col++ {
			if grid[row][col] {
				b.WriteString(opts.Styles.Point.Render("•"))
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat(" ", labelW))
	b.WriteString(opts.Styles.Axis.Render(" └" + strings.Repeat("─", plotW)))
	b.WriteString("\n")

	first, last := pts[0].label, pts[n-1].label
	axis := strings.Repeat(" ", labelW+2) + first
	if n > 1 {
		gap := labelW + 2 + plotW - ansi.StringWidth(axis) - ansi.StringWidth(last)
		if gap < 1 {
			gap = 1
		}
		axis += strings.Repeat(" ", gap) + last
	}
	b.WriteString(opts.Styles.Label.Render(axis))

	return b.String()
}

// RenderBar draws one horizontal bar per record, labelled by the category
// column, up to opts.MaxBars bars.
func RenderBar(records models.Records, plan Plan, opts Options) string {
	opts = normalize(opts)

	type bar struct {
		label string
		value float64
	}
	var bars []bar
	for _, r := range records {
		v, ok := r.Number(plan.NumericCol)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		bars = append(bars, bar{label: r.String(plan.CategoryCol), value: v})
	}
	if len(bars) == 0 {
		return ""
	}

	hidden := 0
	if len(bars) > opts.MaxBars {
		hidden = len(bars) - opts.MaxBars
		bars = bars[:opts.MaxBars]
	}

	labelW, valueW := 0, 0
	maxAbs := 0.0
	for _, br := range bars {
		labelW = max(labelW, min(ansi.StringWidth(br.label), maxLabelWidth))
		valueW = max(valueW, len(formatNumber(br.value)))
		maxAbs = math.Max(maxAbs, math.Abs(br.value))
	}
	barW := opts.Width - labelW - valueW - 3
	if barW < 1 {
		barW = 1
	}

	var b strings.Builder
	for i, br := range bars {
		if i > 0 {
			b.WriteString("\n")
		}
		label := ansi.Truncate(br.label, labelW, "…")
		b.WriteString(opts.Styles.Label.Render(label + strings.Repeat(" ", labelW-ansi.StringWidth(label))))
		b.WriteString(opts.Styles.Axis.Render(" │"))

		length := 0
		if maxAbs > 0 {
			length = int(math.Round(math.Abs(br.value) / maxAbs * float64(barW)))
		}
		glyph := "█"
		if br.value < 0 {
			glyph = "░"
		}
		b.WriteString(opts.Styles.Bar.Render(strings.Repeat(glyph, length)))
		b.WriteString(" ")
		b.WriteString(opts.Styles.Label.Render(formatNumber(br.value)))
	}
	if hidden > 0 {
		b.WriteString("\n")
		b.WriteString(opts.Styles.Label.Render(fmt.Sprintf("… %d more records", hidden)))
	}
	return b.String()
}

// Coordinates reads latitude/longitude from a record. Numeric strings are
// accepted; anything else is reported as missing.
func Coordinates(r models.Record) (lat, lon float64, ok bool) {
	lat, okLat := coordinate(r, LatitudeKey)
	lon, okLon := coordinate(r, LongitudeKey)
	if !okLat || !okLon || !finite(lat) || !finite(lon) ||
		lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func coordinate(r models.Record, key string) (float64, bool) {
	v, _ := r.Get(key)
	if n, ok := models.AsNumber(v); ok {
		return n, true
	}
	if s, ok := v.(string); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return n, err == nil
	}
	return 0, false
}

// RenderMap projects one marker per record onto an equirectangular grid. The
// record at opts.Selected is drawn highlighted.
func RenderMap(records models.Records, opts Options) string {
	opts = normalize(opts)
	w, h := opts.Width, opts.Height-1

	type cell struct {
		marker   bool
		selected bool
	}
	grid := make([][]cell, h)
	for i := range grid {
		grid[i] = make([]cell, w)
	}

	placed, skipped := 0, 0
	for i, r := range records {
		lat, lon, ok := Coordinates(r)
		if !ok {
			skipped++
			continue
		}
		x := int(math.Round((lon + 180) / 360 * float64(w-1)))
		y := int(math.Round((90 - lat) / 180 * float64(h-1)))
		grid[y][x].marker = true
		if i == opts.Selected {
			grid[y][x].selected = true
		}
		placed++
	}

	equator := (h - 1) / 2
	meridian := (w - 1) / 2

	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := grid[y][x]
			switch {
			case c.selected:
				b.WriteString(opts.Styles.Highlight.Render("◉"))
			case c.marker:
				b.WriteString(opts.Styles.Marker.Render("●"))
			case y == equator && x == meridian:
				b.WriteString(opts.Styles.Grid.Render("┼"))
			case y == equator:
				b.WriteString(opts.Styles.Grid.Render("─"))
			case x == meridian:
				b.WriteString(opts.Styles.Grid.Render("│"))
			default:
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}

	footer := fmt.Sprintf("%d markers", placed)
	if skipped > 0 {
		footer += fmt.Sprintf(" (%d without coordinates)", skipped)
	}
	b.WriteString(opts.Styles.Label.Render(footer))
	return b.String()
}

func bounds(pts []point) (lo, hi float64) {
	lo, hi = pts[0].value, pts[0].value
	for _, p := range pts[1:] {
		lo = math.Min(lo, p.value)
		hi = math.Max(hi, p.value)
	}
	return lo, hi
}

func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if len(s) > 10 {
		s = strconv.FormatFloat(v, 'g', 6, 64)
	}
	return s
}
