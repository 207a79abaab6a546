package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/thesavant42/renewables-explorer/internal/models"
)

// fakeBackend records calls and serves canned responses
type fakeBackend struct {
	mu         sync.Mutex
	catalog    models.Catalog
	catalogErr error
	data       map[models.Source]models.Records
	dataErr    error
	calls      []models.Filters
}

func (f *fakeBackend) FetchCatalog(ctx context.Context) (models.Catalog, error) {
	return f.catalog, f.catalogErr
}

func (f *fakeBackend) FetchData(ctx context.Context, source models.Source, filters models.Filters) (*models.DataResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, filters)
	f.mu.Unlock()
	if f.dataErr != nil {
		return nil, f.dataErr
	}
	records := f.data[source]
	return &models.DataResponse{Source: source, Count: len(records), Data: records}, nil
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		catalog: models.Catalog{
			Sources: []models.Source{"rte", "world_bank"},
			Metadata: map[models.Source]models.SourceMetadata{
				"rte": {Name: "RTE eCO2mix", Description: "French electricity mix"},
			},
		},
		data: map[models.Source]models.Records{
			"rte":        makeRecords(3),
			"world_bank": makeRecords(45),
		},
	}
}

func makeRecords(n int) models.Records {
	records := make(models.Records, n)
	for i := range records {
		records[i] = models.NewRecord("pays", fmt.Sprintf("Country %02d", i), "valeur", float64(i))
	}
	return records
}

// update feeds msg through the model and unwraps the result
func update(t *testing.T, m App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	app, ok := next.(App)
	if !ok {
		t.Fatalf("Update returned %T, want App", next)
	}
	return app, cmd
}

// runCmd executes cmd and flattens batches into the messages they produce.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, runCmd(c)...)
	}
	return out
}

func dataMessages(msgs []tea.Msg) []dataLoadedMsg {
	var out []dataLoadedMsg
	for _, msg := range msgs {
		if d, ok := msg.(dataLoadedMsg); ok {
			out = append(out, d)
		}
	}
	return out
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func loadedApp(t *testing.T, backend *fakeBackend) App {
	t.Helper()
	m := NewApp(backend, AppOptions{ExportDir: t.TempDir()})
	catalog, err := backend.FetchCatalog(context.Background())
	m, _ = update(t, m, catalogLoadedMsg{catalog: catalog, err: err})
	return m
}

// =============================================================================
// App
// =============================================================================

func TestAppCatalogLoaded(t *testing.T) {
	m := loadedApp(t, newFakeBackend())

	if got := m.Sources(); len(got) != 2 || got[0] != "rte" {
		t.Errorf("Sources() = %v, want [rte world_bank]", got)
	}
	if m.Loading() {
		t.Error("Loading() = true after catalog arrived")
	}
	if got := m.Catalog().Describe("rte"); got != "RTE eCO2mix - French electricity mix" {
		t.Errorf("Describe(rte) = %q", got)
	}
}

func TestAppCatalogFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.catalogErr = errors.New("connection refused")
	m := loadedApp(t, backend)

	if got := m.Sources(); len(got) != 0 {
		t.Errorf("Sources() = %v, want none", got)
	}
	if !m.StatusIsErr || !strings.Contains(m.StatusMsg, "connection refused") {
		t.Errorf("status = %q (err=%v), want the failure reported", m.StatusMsg, m.StatusIsErr)
	}
	if view := m.View(); !strings.Contains(view, noSourcesPlaceholder) {
		t.Errorf("View() does not show the empty source list:\n%s", view)
	}
}

func TestAppApplyWithoutSource(t *testing.T) {
	backend := newFakeBackend()
	m := loadedApp(t, backend)

	m, cmd := m.Apply()
	if cmd != nil {
		t.Fatal("Apply() without a source returned a command")
	}
	if m.Records() != nil {
		t.Errorf("Records() = %v, want untouched", m.Records())
	}

	m, cmd = update(t, m, keyMsg("a"))
	if cmd != nil {
		t.Error("pressing a without a source returned a command")
	}
	if backend.callCount() != 0 {
		t.Errorf("backend called %d times", backend.callCount())
	}
}

func TestAppApplyFetchesWithFilters(t *testing.T) {
	backend := newFakeBackend()
	m := loadedApp(t, backend)

	m, ok := m.Select("world_bank")
	if !ok {
		t.Fatal("Select(world_bank) = false")
	}
	*m.filters = models.Filters{StartYear: " 2015 ", Country: "France"}

	m, cmd := m.Apply()
	if cmd == nil {
		t.Fatal("Apply() returned nil command")
	}
	if !m.Loading() {
		t.Error("Loading() = false while fetching")
	}

	msgs := dataMessages(runCmd(cmd))
	if len(msgs) != 1 {
		t.Fatalf("got %d data messages, want 1", len(msgs))
	}
	m, _ = update(t, m, msgs[0])

	if got := len(m.Records()); got != 45 {
		t.Errorf("len(Records()) = %d, want 45", got)
	}
	if m.Loading() {
		t.Error("Loading() = true after data arrived")
	}
	want := models.Filters{StartYear: "2015", Country: "France"}
	if backend.calls[0] != want {
		t.Errorf("backend got filters %+v, want %+v", backend.calls[0], want)
	}
}

func TestAppStaleResponseDropped(t *testing.T) {
	m := loadedApp(t, newFakeBackend())
	m, _ = m.Select("rte")

	m, _ = m.Apply()
	first := m.seq
	m, _ = m.Apply()
	second := m.seq

	newer := makeRecords(2)
	older := makeRecords(7)

	m, _ = update(t, m, dataLoadedMsg{seq: second, source: "rte", resp: &models.DataResponse{Data: newer}})
	m, _ = update(t, m, dataLoadedMsg{seq: first, source: "rte", resp: &models.DataResponse{Data: older}})

	if got := len(m.Records()); got != 2 {
		t.Errorf("len(Records()) = %d, want 2 from the latest request", got)
	}
}

func TestAppFetchErrorKeepsRecords(t *testing.T) {
	m := loadedApp(t, newFakeBackend())
	m, _ = m.Select("rte")

	m, _ = m.Apply()
	m, _ = update(t, m, dataLoadedMsg{seq: m.seq, source: "rte", resp: &models.DataResponse{Data: makeRecords(3)}})

	m, _ = m.Apply()
	m, _ = update(t, m, dataLoadedMsg{seq: m.seq, source: "rte", err: errors.New("HTTP 500")})

	if got := len(m.Records()); got != 3 {
		t.Errorf("len(Records()) = %d, want previous 3 kept", got)
	}
	if !m.StatusIsErr {
		t.Error("fetch failure not reported")
	}
	if m.Loading() {
		t.Error("Loading() = true after failure")
	}
}

func TestAppReplaceResetsPage(t *testing.T) {
	m := loadedApp(t, newFakeBackend())
	m, _ = m.Select("world_bank")

	m, _ = m.Apply()
	m, _ = update(t, m, dataLoadedMsg{seq: m.seq, source: "world_bank", resp: &models.DataResponse{Data: makeRecords(45)}})
	m.table.NextPage()
	if m.Table().Page() != 1 {
		t.Fatalf("Page() = %d, want 1", m.Table().Page())
	}

	m, _ = m.Apply()
	m, _ = update(t, m, dataLoadedMsg{seq: m.seq, source: "world_bank", resp: &models.DataResponse{Data: makeRecords(30)}})
	if m.Table().Page() != 0 {
		t.Errorf("Page() = %d after new records, want 0", m.Table().Page())
	}
}

func TestAppApplyRejectsNonNumericYears(t *testing.T) {
	t.Run("typed into the form then left with esc", func(t *testing.T) {
		backend := newFakeBackend()
		m := loadedApp(t, backend)
		m, _ = m.Select("rte")
		m.panel.Init()

		m, _ = update(t, m, keyMsg("f"))
		for _, k := range []string{"2", "0", "x", "y"} {
			m, _ = update(t, m, keyMsg(k))
		}
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		if m.focus != paneTable {
			t.Fatalf("focus after esc = %v, want table", m.focus)
		}

		m, cmd := update(t, m, keyMsg("a"))
		if cmd != nil {
			t.Errorf("apply with start year %q returned a command", m.filters.StartYear)
		}
		if backend.callCount() != 0 {
			t.Errorf("backend called with %+v", backend.calls)
		}
		if !m.StatusIsErr {
			t.Error("invalid year not reported")
		}
	})

	tests := []struct {
		name    string
		filters models.Filters
		wantCmd bool
	}{
		{"digits", models.Filters{StartYear: "2015", EndYear: "2020"}, true},
		{"blank", models.Filters{}, true},
		{"letters in end year", models.Filters{EndYear: "19a0"}, false},
		{"negative start year", models.Filters{StartYear: "-5"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loadedApp(t, newFakeBackend())
			m, _ = m.Select("rte")
			*m.filters = tt.filters

			m, cmd := m.Apply()
			if (cmd != nil) != tt.wantCmd {
				t.Errorf("Apply() command = %v, want %v", cmd != nil, tt.wantCmd)
			}
			if m.StatusIsErr == tt.wantCmd {
				t.Errorf("StatusIsErr = %v", m.StatusIsErr)
			}
		})
	}
}

func TestAppKeys(t *testing.T) {
	m := loadedApp(t, newFakeBackend())

	if m.focus != paneSources {
		t.Fatalf("initial focus = %v", m.focus)
	}

	// enter commits the source under the cursor
	m, _ = update(t, m, keyMsg("enter"))
	if m.Selected() != "rte" {
		t.Errorf("Selected() = %q, want rte", m.Selected())
	}

	m, _ = update(t, m, keyMsg("tab"))
	if m.focus != paneFilters {
		t.Errorf("focus after tab = %v, want filters", m.focus)
	}

	// q types into the form instead of quitting
	m, _ = update(t, m, keyMsg("q"))
	if m.Quitting {
		t.Error("q quit while the filter form had focus")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.focus != paneTable {
		t.Errorf("focus after esc = %v, want table", m.focus)
	}

	m, cmd := update(t, m, keyMsg("q"))
	if !m.Quitting || cmd == nil {
		t.Error("q did not quit from the table pane")
	}
}

func TestAppThemeToggle(t *testing.T) {
	start := CurrentPalette().Name
	t.Cleanup(func() { ApplyPalette(DarkPalette) })

	m := loadedApp(t, newFakeBackend())
	m, _ = update(t, m, keyMsg("t"))

	if CurrentPalette().Name == start {
		t.Errorf("palette still %q after toggle", start)
	}
	if !strings.Contains(m.StatusMsg, CurrentPalette().Name) {
		t.Errorf("status = %q", m.StatusMsg)
	}
}

func TestAppView(t *testing.T) {
	m := loadedApp(t, newFakeBackend())
	m, _ = m.Select("rte")
	m, _ = m.Apply()
	m, _ = update(t, m, dataLoadedMsg{seq: m.seq, source: "rte", resp: &models.DataResponse{Data: makeRecords(3)}})

	view := m.View()
	for _, want := range []string{appTitle, "French electricity mix", "Country 01", "3 records"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

// =============================================================================
// Data table
// =============================================================================

func TestDataTablePagination(t *testing.T) {
	d := NewDataTable(DefaultLayout())
	d.SetRecords(makeRecords(45))

	if got := d.TotalPages(); got != 3 {
		t.Fatalf("TotalPages() = %d, want 3", got)
	}

	wantSizes := []int{20, 20, 5}
	for page, want := range wantSizes {
		if d.Page() != page {
			t.Fatalf("Page() = %d, want %d", d.Page(), page)
		}
		if got := len(d.PageRecords()); got != want {
			t.Errorf("page %d has %d records, want %d", page, got, want)
		}
		if page < len(wantSizes)-1 && !d.NextPage() {
			t.Fatalf("NextPage() from page %d = false", page)
		}
	}

	if d.CanNext() {
		t.Error("CanNext() = true on the last page")
	}
	if d.NextPage() {
		t.Error("NextPage() moved past the last page")
	}
	if first := d.PageRecords()[0].String("pays"); first != "Country 40" {
		t.Errorf("last page starts with %q, want Country 40", first)
	}
	if got := d.SelectedIndex(); got != 40 {
		t.Errorf("SelectedIndex() = %d, want 40", got)
	}

	d.HandleKey("left")
	if d.Page() != 1 || !d.CanPrev() {
		t.Errorf("after left: Page() = %d, CanPrev() = %v", d.Page(), d.CanPrev())
	}
}

func TestDataTableEmpty(t *testing.T) {
	d := NewDataTable(DefaultLayout())
	d.SetRecords(models.Records{})

	if got := d.View(100, true); got != "" {
		t.Errorf("View() = %q, want empty", got)
	}
	if d.TotalPages() != 0 || d.CanNext() || d.CanPrev() {
		t.Error("empty table reports pages")
	}
	if d.SelectedIndex() != -1 {
		t.Errorf("SelectedIndex() = %d, want -1", d.SelectedIndex())
	}
}

// =============================================================================
// Selector
// =============================================================================

func TestSourceSelector(t *testing.T) {
	s := NewSourceSelector([]models.Source{"rte", "world_bank", "stock_prices"})

	if s.Selected() != "" {
		t.Fatalf("Selected() = %q before any choice", s.Selected())
	}
	if s.HandleKey("down") {
		t.Error("moving the cursor reported a selection change")
	}
	if !s.HandleKey("enter") || s.Selected() != "world_bank" {
		t.Errorf("Selected() = %q, want world_bank", s.Selected())
	}
	if s.HandleKey("enter") {
		t.Error("re-selecting the same source reported a change")
	}

	s.SetOptions([]models.Source{"rte"})
	if s.Selected() != "" {
		t.Errorf("Selected() = %q after its source vanished", s.Selected())
	}
	if s.Select("missing") {
		t.Error("Select(missing) = true")
	}

	empty := NewSourceSelector(nil)
	if empty.HandleKey("enter") {
		t.Error("empty selector reported a selection")
	}
	if !strings.Contains(empty.View(20, true), noSourcesPlaceholder) {
		t.Error("empty selector does not show the placeholder")
	}
}

func TestValidateYear(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"", false},
		{"2015", false},
		{" 2015 ", false},
		{"20a5", true},
		{"-1", true},
		{"20.5", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := validateYear(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateYear(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
