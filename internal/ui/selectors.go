package ui

// selectors.go provides the source selector pane.

import (
	"fmt"
	"strings"

	"github.com/thesavant42/renewables-explorer/internal/models"
)

const noSourcesPlaceholder = "No sources available"

// SourceSelector is a single-choice list of source names. The cursor moves
// freely; Enter commits the choice.
type SourceSelector struct {
	options  []models.Source
	cursor   int
	selected models.Source
}

// NewSourceSelector creates a selector over options.
func NewSourceSelector(options []models.Source) SourceSelector {
	s := SourceSelector{}
	s.SetOptions(options)
	return s
}

// SetOptions replaces the option list. A selection that no longer exists is
// cleared.
func (s *SourceSelector) SetOptions(options []models.Source) {
	s.options = append([]models.Source(nil), options...)
	s.cursor = clamp(s.cursor, 0, max(len(s.options)-1, 0))

	found := false
	for _, o := range s.options {
		if o == s.selected {
			found = true
			break
		}
	}
	if !found {
		s.selected = ""
	}
}

// Options returns the current option list.
func (s SourceSelector) Options() []models.Source {
	return s.options
}

// Selected returns the committed source, or "" when none is chosen.
func (s SourceSelector) Selected() models.Source {
	return s.selected
}

// Select commits a source by name. Unknown names are ignored.
func (s *SourceSelector) Select(source models.Source) bool {
	for i, o := range s.options {
		if o == source {
			s.cursor = i
			s.selected = o
			return true
		}
	}
	return false
}

// HandleKey moves the cursor or commits the choice on enter/space.
// It reports whether the selection changed.
func (s *SourceSelector) HandleKey(key string) bool {
	if len(s.options) == 0 {
		return false
	}
	switch key {
	case "enter", " ":
		if s.selected == s.options[s.cursor] {
			return false
		}
		s.selected = s.options[s.cursor]
		return true
	}
	s.cursor = HandleNavigationKeys(key, s.cursor, len(s.options))
	return false
}

// View renders the list with the cursor highlighted when focused and a
// marker on the committed choice.
func (s SourceSelector) View(width int, focused bool) string {
	if len(s.options) == 0 {
		return RenderDim(noSourcesPlaceholder)
	}

	lines := make([]string, len(s.options))
	for i, o := range s.options {
		label := o
		if o == s.selected {
			label = fmt.Sprintf("%s ✓", o)
		}
		lines[i] = RenderListItem(label, focused && i == s.cursor, width)
	}
	return strings.Join(lines, "\n")
}
