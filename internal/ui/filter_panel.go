package ui

// filter_panel.go provides the filter form: start year, end year, country and
// free-text query, bound to a shared models.Filters.

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/thesavant42/renewables-explorer/internal/models"
)

// sanitizeInput removes null bytes and other invisible control characters from input
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 || (r < 32 && r != '\t' && r != '\n' && r != '\r') {
			return -1
		}
		return r
	}, s)
}

// validateYear accepts an empty value or digits only
func validateYear(s string) error {
	s = strings.TrimSpace(s)
	for _, r := range s {
		if r < '0' || r > '9' {
			return errors.New("digits only")
		}
	}
	return nil
}

// validateFilters checks the year fields. The form only validates a field
// when leaving it, so values typed before esc still need checking.
func validateFilters(f models.Filters) error {
	if err := validateYear(f.StartYear); err != nil {
		return fmt.Errorf("start year: %w", err)
	}
	if err := validateYear(f.EndYear); err != nil {
		return fmt.Errorf("end year: %w", err)
	}
	return nil
}

// FilterPanel wraps a huh form whose inputs write straight into filters.
// Submitting the form emits filterSubmitMsg.
type FilterPanel struct {
	filters *models.Filters
	form    *huh.Form
	width   int
}

// NewFilterPanel creates a panel editing filters in place.
func NewFilterPanel(filters *models.Filters, width int) FilterPanel {
	p := FilterPanel{filters: filters, width: width}
	p.build()
	return p
}

func (p *FilterPanel) build() {
	f := p.filters
	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key(models.FilterStartYear).
				Title("Start year").
				Placeholder("e.g. 2015").
				CharLimit(4).
				Inline(true).
				Validate(validateYear).
				Value(&f.StartYear),
			huh.NewInput().
				Key(models.FilterEndYear).
				Title("End year  ").
				Placeholder("e.g. 2022").
				CharLimit(4).
				Inline(true).
				Validate(validateYear).
				Value(&f.EndYear),
			huh.NewInput().
				Key(models.FilterCountry).
				Title("Country   ").
				Placeholder("e.g. France").
				CharLimit(64).
				Inline(true).
				Value(&f.Country),
			huh.NewInput().
				Key(models.FilterQuery).
				Title("Search    ").
				Placeholder("free text").
				CharLimit(128).
				Inline(true).
				Value(&f.Query),
		),
	).
		WithTheme(NewAppTheme()).
		WithShowHelp(false).
		WithWidth(p.width)

	p.form.SubmitCmd = func() tea.Msg { return filterSubmitMsg{} }
	p.form.CancelCmd = func() tea.Msg { return filterCancelMsg{} }
}

// Init starts the form.
func (p FilterPanel) Init() tea.Cmd {
	return p.form.Init()
}

// Update forwards msg to the form.
func (p *FilterPanel) Update(msg tea.Msg) tea.Cmd {
	model, cmd := p.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		p.form = f
	}
	return cmd
}

// Reset rebuilds the form after a submit so it can be edited again. Values
// survive because they live in the shared filters.
func (p *FilterPanel) Reset() tea.Cmd {
	p.build()
	return p.form.Init()
}

// Clear empties every filter.
func (p *FilterPanel) Clear() tea.Cmd {
	*p.filters = models.Filters{}
	return p.Reset()
}

// SetWidth resizes the form.
func (p *FilterPanel) SetWidth(width int) {
	p.width = width
	p.form = p.form.WithWidth(width)
}

// Filters returns a sanitized copy of the current values.
func (p FilterPanel) Filters() models.Filters {
	f := *p.filters
	for _, key := range models.FilterKeys {
		f.Set(key, strings.TrimSpace(sanitizeInput(f.Get(key))))
	}
	return f
}

// View renders the form.
func (p FilterPanel) View() string {
	return p.form.View()
}
