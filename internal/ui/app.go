package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/thesavant42/renewables-explorer/internal/models"
)

const (
	appTitle       = "Renewable Energy Explorer"
	statusDuration = 5 * time.Second
	errorDuration  = 10 * time.Second
)

// Backend is the data API the explorer reads from.
type Backend interface {
	FetchCatalog(ctx context.Context) (models.Catalog, error)
	FetchData(ctx context.Context, source models.Source, filters models.Filters) (*models.DataResponse, error)
}

// AppOptions configures the explorer.
type AppOptions struct {
	Timeout   time.Duration // per request; 0 means no limit
	ExportDir string
	Logger    *log.Logger
}

type pane int

const (
	paneSources pane = iota
	paneFilters
	paneTable
	paneCount
)

func (p pane) String() string {
	switch p {
	case paneSources:
		return "sources"
	case paneFilters:
		return "filters"
	case paneTable:
		return "table"
	}
	return ""
}

// App is the root model. It owns the source list, the selected source, the
// shared filters and the current records, and coordinates the panes.
type App struct {
	PageState

	backend   Backend
	logger    *log.Logger
	timeout   time.Duration
	exportDir string

	catalog    models.Catalog
	selector   SourceSelector
	filters    *models.Filters
	panel      FilterPanel
	table      DataTable
	visualizer Visualizer
	spinner    spinner.Model

	focus      pane
	seq        int // last issued data request
	loading    bool
	recordsSrc models.Source
	recordsFlt models.Filters
}

// NewApp creates the explorer over backend.
func NewApp(backend Backend, opts AppOptions) App {
	layout := DefaultLayout()
	filters := &models.Filters{}
	return App{
		PageState: NewPageState(layout),
		backend:   backend,
		logger:    opts.Logger,
		timeout:   opts.Timeout,
		exportDir: opts.ExportDir,
		selector:  NewSourceSelector(nil),
		filters:   filters,
		panel:     NewFilterPanel(filters, layout.InnerWidth-SidebarWidth-4),
		table:     NewDataTable(layout),
		spinner:   NewAppSpinner(),
		loading:   true,
	}
}

// RunApp starts the explorer in the alternate screen and blocks until it exits.
func RunApp(backend Backend, opts AppOptions) error {
	p := tea.NewProgram(NewApp(backend, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (m App) Init() tea.Cmd {
	return tea.Batch(
		StandardInit(),
		m.loadCatalog(),
		m.spinner.Tick,
		m.panel.Init(),
	)
}

// =============================================================================
// Accessors
// =============================================================================

// Catalog returns the loaded source catalog.
func (m App) Catalog() models.Catalog { return m.catalog }

// Sources returns the selectable sources.
func (m App) Sources() []models.Source { return m.selector.Options() }

// Selected returns the chosen source, or "".
func (m App) Selected() models.Source { return m.selector.Selected() }

// Filters returns the current filter values.
func (m App) Filters() models.Filters { return m.panel.Filters() }

// Records returns the records on display.
func (m App) Records() models.Records { return m.table.Records() }

// Table returns the table pane.
func (m App) Table() DataTable { return m.table }

// Loading reports whether a request is in flight.
func (m App) Loading() bool { return m.loading }

// Select chooses a source as if picked in the selector.
func (m App) Select(source models.Source) (App, bool) {
	ok := m.selector.Select(source)
	return m, ok
}

// =============================================================================
// Commands
// =============================================================================

func (m App) requestContext() (context.Context, context.CancelFunc) {
	if m.timeout > 0 {
		return context.WithTimeout(context.Background(), m.timeout)
	}
	return context.WithCancel(context.Background())
}

func (m App) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		catalog, err := m.backend.FetchCatalog(ctx)
		return catalogLoadedMsg{catalog: catalog, err: err}
	}
}

func (m App) fetch(seq int, source models.Source, filters models.Filters) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		resp, err := m.backend.FetchData(ctx, source, filters)
		return dataLoadedMsg{seq: seq, source: source, filters: filters, resp: resp, err: err}
	}
}

// Apply fetches the selected source with the current filters. Without a
// selected source, or with a non-numeric year, it does nothing and returns a
// nil command.
func (m App) Apply() (App, tea.Cmd) {
	source := m.selector.Selected()
	if source == "" {
		m.SetStatus("Select a source first", statusDuration)
		return m, nil
	}

	filters := m.panel.Filters()
	if err := validateFilters(filters); err != nil {
		m.SetError(err.Error(), errorDuration)
		return m, nil
	}

	m.seq++
	m.loading = true
	m.logInfo("Fetching data", "source", source, "filters", filters.Summary(), "seq", m.seq)

	return m, tea.Batch(m.fetch(m.seq, source, filters), m.spinner.Tick)
}

func (m App) export() tea.Cmd {
	records := m.table.Records()
	source := m.recordsSrc
	filters := m.recordsFlt
	dir := m.exportDir
	return func() tea.Msg {
		paths, err := ExportRecords(dir, source, filters, records)
		return exportDoneMsg{paths: paths, err: err}
	}
}

// =============================================================================
// Update
// =============================================================================

// Update implements tea.Model
func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.ClearExpiredStatus()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if m.UpdateLayout(msg.Width, msg.Height) {
			m.table.SetLayout(m.Layout)
			m.panel.SetWidth(m.Layout.InnerWidth - SidebarWidth - 4)
		}
		return m, nil

	case catalogLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.logError("Failed to load sources", "error", msg.err)
			m.SetError("Could not load sources: "+msg.err.Error(), errorDuration)
			m.catalog = models.Catalog{}
			m.selector.SetOptions(nil)
			return m, nil
		}
		m.catalog = msg.catalog
		m.selector.SetOptions(msg.catalog.Sources)
		m.logInfo("Sources loaded", "count", len(msg.catalog.Sources), "with_metadata", len(msg.catalog.Metadata))
		return m, nil

	case dataLoadedMsg:
		return m.handleData(msg), nil

	case filterSubmitMsg:
		var cmd tea.Cmd
		m, cmd = m.Apply()
		m.focus = paneTable
		return m, tea.Batch(cmd, m.panel.Reset())

	case filterCancelMsg:
		m.focus = paneSources
		return m, m.panel.Reset()

	case exportDoneMsg:
		if msg.err != nil {
			m.logError("Export failed", "error", msg.err)
			m.SetError("Export failed: "+msg.err.Error(), errorDuration)
			return m, nil
		}
		m.logInfo("Exported", "files", msg.paths)
		m.SetStatus("Exported "+strings.Join(msg.paths, ", "), statusDuration)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, m.panel.Update(msg)
}

// handleData applies a fetch result. Responses for anything but the latest
// request are dropped; failures keep the previous records.
func (m App) handleData(msg dataLoadedMsg) App {
	if msg.seq != m.seq {
		m.logDebug("Dropping stale response", "seq", msg.seq, "latest", m.seq)
		return m
	}
	m.loading = false

	if msg.err != nil {
		m.logError("Failed to fetch data", "source", msg.source, "error", msg.err)
		m.SetError("Fetch failed: "+msg.err.Error(), errorDuration)
		return m
	}

	var records models.Records
	if msg.resp != nil {
		records = msg.resp.Data
	}
	if records == nil {
		records = models.Records{}
	}
	m.recordsSrc = msg.source
	m.recordsFlt = msg.filters
	m.table.SetRecords(records)
	m.visualizer.SetRecords(records)
	m.SetStatus(fmt.Sprintf("Loaded %d records from %s", len(records), msg.source), statusDuration)
	m.logInfo("Data loaded", "source", msg.source, "count", len(records), "mode", m.visualizer.Mode())
	return m
}

func (m App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.Quitting = true
		return m, tea.Quit
	}

	if m.focus == paneFilters {
		if key == "esc" {
			m.focus = paneTable
			return m, nil
		}
		return m, m.panel.Update(msg)
	}

	if quit, cmd := HandleQuitKeys(key); quit {
		m.Quitting = true
		return m, cmd
	}

	switch key {
	case "tab":
		m.focus = (m.focus + 1) % paneCount
		return m, nil
	case "shift+tab":
		m.focus = (m.focus + paneCount - 1) % paneCount
		return m, nil
	case "f", "/":
		m.focus = paneFilters
		return m, nil
	case "a":
		next, cmd := m.Apply()
		return next, cmd
	case "c":
		m.SetStatus("Filters cleared", statusDuration)
		return m, m.panel.Clear()
	case "t":
		p := TogglePalette()
		m.SetStatus("Theme: "+p.Name, statusDuration)
		return m, m.panel.Reset()
	case "e":
		if len(m.table.Records()) == 0 {
			m.SetStatus("Nothing to export", statusDuration)
			return m, nil
		}
		return m, m.export()
	}

	switch m.focus {
	case paneSources:
		if m.selector.HandleKey(key) {
			m.SetStatus("Source: "+m.selector.Selected()+" (press a to apply)", statusDuration)
		}
	case paneTable:
		m.table.HandleKey(key)
	}
	return m, nil
}

// =============================================================================
// View
// =============================================================================

// View implements tea.Model
func (m App) View() string {
	if m.Quitting {
		return ""
	}

	width := m.Layout.InnerWidth
	var b strings.Builder

	right := RenderDim(CurrentPalette().Name + " theme")
	if m.loading {
		right = m.spinner.View() + " " + ProgressStyle.Render("loading…") + "  " + right
	}
	b.WriteString(SpreadText(RenderTitle(appTitle), right, width))
	b.WriteString("\n")
	b.WriteString(FullWidthDivider(width))
	b.WriteString("\n")

	sourcesView := ViewHeader("Sources", SidebarWidth-2) + m.selector.View(SidebarWidth-2, m.focus == paneSources)
	filterWidth := width - SidebarWidth
	filtersView := ViewHeader("Filters", filterWidth-2) + m.panel.View()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		Box(sourcesView, SidebarWidth, m.focus == paneSources),
		Box(filtersView, filterWidth, m.focus == paneFilters),
	))
	b.WriteString("\n")

	if source := m.selector.Selected(); source != "" {
		line := "Source: " + source
		if desc := m.catalog.Describe(source); desc != "" {
			line += " - " + desc
		}
		b.WriteString(RenderDim(truncateToWidth(line, width)))
		b.WriteString("\n")
	}

	records := m.table.Records()
	if chart := m.visualizer.View(width, m.Layout.ChartHeight, m.table.SelectedIndex()); chart != "" {
		b.WriteString("\n")
		b.WriteString(chart)
		b.WriteString("\n")
	}

	if tableView := m.table.View(width, m.focus == paneTable); tableView != "" {
		b.WriteString("\n")
		b.WriteString(ViewHeaderWithSubtitle("Data", m.recordsFlt.Summary(), width))
		b.WriteString(tableView)
	} else if records != nil {
		b.WriteString("\n")
		b.WriteString(RenderDim("No records match these filters."))
	} else {
		b.WriteString("\n")
		b.WriteString(RenderDim("Choose a source, set filters, then press a to apply."))
	}

	return BuildTwoBoxView(b.String(), m.helpText(), m.Layout)
}

func (m App) helpText() string {
	if m.HasStatus() {
		if m.StatusIsErr {
			return RenderError(m.StatusMsg)
		}
		return RenderAccent(m.StatusMsg)
	}
	switch m.focus {
	case paneFilters:
		return "enter: next/apply | esc: leave filters | ctrl+c: quit"
	case paneTable:
		return "↑/↓: row | ←/→: page | tab: pane | a: apply | e: export | t: theme | q: quit"
	}
	return "↑/↓: move | enter: select | tab: pane | f: filters | a: apply | c: clear | t: theme | q: quit"
}

// =============================================================================
// Logging
// =============================================================================

func (m App) logInfo(msg string, kv ...any) {
	if m.logger != nil {
		m.logger.Info(msg, kv...)
	}
}

func (m App) logDebug(msg string, kv ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, kv...)
	}
}

func (m App) logError(msg string, kv ...any) {
	if m.logger != nil {
		m.logger.Error(msg, kv...)
	}
}
