package ui

// visualizer.go provides the chart pane.

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/thesavant42/renewables-explorer/internal/models"
	"github.com/thesavant42/renewables-explorer/internal/viz"
)

const (
	maxTerminalBars = 20
	popupWidth      = 36
)

// Visualizer picks a chart for the current records and renders it. It
// renders nothing when no chart applies.
type Visualizer struct {
	records models.Records
	plan    viz.Plan
}

// SetRecords replaces the records and recomputes the plan.
func (v *Visualizer) SetRecords(records models.Records) {
	v.records = records
	v.plan = viz.Detect(records)
}

// Plan returns the detected plan.
func (v Visualizer) Plan() viz.Plan {
	return v.plan
}

// Mode returns the detected mode.
func (v Visualizer) Mode() viz.Mode {
	return v.plan.Mode
}

// View renders the chart into width x height. For maps, the record at
// selected is highlighted and its fields shown beside the map.
func (v Visualizer) View(width, height, selected int) string {
	if v.plan.Mode == viz.ModeNone || len(v.records) == 0 {
		return ""
	}

	header := ViewHeader(viz.Title(v.plan, len(v.records)), width)
	opts := viz.Options{
		Width:    width,
		Height:   height,
		MaxBars:  min(maxTerminalBars, height),
		Selected: selected,
		Styles:   VizStyles(),
	}

	if v.plan.Mode != viz.ModeMap {
		return header + viz.Render(v.records, v.plan, opts)
	}

	if selected < 0 || selected >= len(v.records) {
		return header + viz.Render(v.records, v.plan, opts)
	}

	opts.Width = width - popupWidth - 1
	chart := viz.Render(v.records, v.plan, opts)
	popup := renderPopup(v.records[selected], popupWidth, height)
	return header + lipgloss.JoinHorizontal(lipgloss.Top, chart, " ", popup)
}

func renderPopup(r models.Record, width, height int) string {
	lines := strings.Split(viz.Popup(r), "\n")
	if len(lines) > height {
		lines = append(lines[:height-1], "…")
	}
	for i, l := range lines {
		lines[i] = RenderNormal(truncateToWidth(l, width-2))
	}
	return BorderStyle.Width(width - 2).Render(strings.Join(lines, "\n"))
}
