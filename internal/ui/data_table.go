package ui

// data_table.go provides the paginated record table.

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/table"

	"github.com/thesavant42/renewables-explorer/internal/models"
)

// DataTable shows records PageSize rows at a time. It renders nothing when
// there are no records.
type DataTable struct {
	records   models.Records
	columns   []string
	paginator paginator.Model
	table     table.Model
	layout    Layout
}

// NewDataTable creates an empty table.
func NewDataTable(layout Layout) DataTable {
	p := paginator.New()
	p.Type = paginator.Arabic
	p.ArabicFormat = "Page %d of %d"
	p.PerPage = PageSize
	p.SetTotalPages(0)

	d := DataTable{paginator: p, layout: layout}
	d.table = InitTable(nil, nil, layout.TableHeight)
	return d
}

// SetRecords replaces the records and returns to the first page.
func (d *DataTable) SetRecords(records models.Records) {
	d.records = records
	d.columns = records.Columns()
	d.paginator.SetTotalPages(len(records))
	d.paginator.Page = 0
	d.rebuild()
}

// SetLayout resizes the table.
func (d *DataTable) SetLayout(layout Layout) {
	d.layout = layout
	d.rebuild()
}

// Records returns the records shown.
func (d DataTable) Records() models.Records {
	return d.records
}

// Page returns the zero-based page index.
func (d DataTable) Page() int {
	return d.paginator.Page
}

// TotalPages returns the number of pages, 0 when empty.
func (d DataTable) TotalPages() int {
	if len(d.records) == 0 {
		return 0
	}
	return d.paginator.TotalPages
}

// CanPrev reports whether a previous page exists.
func (d DataTable) CanPrev() bool {
	return d.paginator.Page > 0
}

// CanNext reports whether a next page exists.
func (d DataTable) CanNext() bool {
	return d.paginator.Page < d.TotalPages()-1
}

// NextPage moves forward one page if possible.
func (d *DataTable) NextPage() bool {
	if !d.CanNext() {
		return false
	}
	d.paginator.NextPage()
	d.rebuild()
	return true
}

// PrevPage moves back one page if possible.
func (d *DataTable) PrevPage() bool {
	if !d.CanPrev() {
		return false
	}
	d.paginator.PrevPage()
	d.rebuild()
	return true
}

// PageRecords returns the records on the current page.
func (d DataTable) PageRecords() models.Records {
	if len(d.records) == 0 {
		return nil
	}
	start, end := d.paginator.GetSliceBounds(len(d.records))
	return d.records[start:end]
}

// SelectedIndex returns the index into Records of the row under the cursor,
// or -1 when empty.
func (d DataTable) SelectedIndex() int {
	if len(d.records) == 0 {
		return -1
	}
	start, end := d.paginator.GetSliceBounds(len(d.records))
	idx := start + d.table.Cursor()
	if idx >= end {
		return end - 1
	}
	return idx
}

// HandleKey handles paging (left/right, h/l, pgup/pgdown) and row movement.
func (d *DataTable) HandleKey(key string) {
	switch key {
	case "right", "l", "pgdown", "n":
		d.NextPage()
	case "left", "h", "pgup", "p":
		d.PrevPage()
	case "up", "k":
		d.table.MoveUp(1)
	case "down", "j":
		d.table.MoveDown(1)
	case "home", "g":
		d.table.GotoTop()
	case "end", "G":
		d.table.GotoBottom()
	}
}

func (d *DataTable) rebuild() {
	page := d.PageRecords()

	specs := RecordColumns(d.records)
	columns := CalculateColumns(specs, d.layout.TableWidth)

	rows := make([]table.Row, len(page))
	for i, r := range page {
		row := make(table.Row, len(d.columns))
		for j, col := range d.columns {
			row[j] = strings.ReplaceAll(r.String(col), "\n", " ")
		}
		rows[i] = row
	}

	d.table = InitTable(columns, rows, min(d.layout.TableHeight, max(len(rows), 1)))
}

// View renders the header row, the page rows and the page indicator.
func (d DataTable) View(width int, focused bool) string {
	if len(d.records) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(RenderTableWithSelection(d.table, width, focused))
	b.WriteString("\n")

	prev := RenderDim("‹ prev")
	if d.CanPrev() {
		prev = RenderAccent("‹ prev")
	}
	next := RenderDim("next ›")
	if d.CanNext() {
		next = RenderAccent("next ›")
	}
	nav := prev + "  " + RenderNormal(d.paginator.View()) + "  " + next
	count := StatsStyle.Render(fmt.Sprintf("%d records", len(d.records)))
	b.WriteString(SpreadText(nav, count, width))

	return b.String()
}
