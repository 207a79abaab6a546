package ui

import (
	"github.com/thesavant42/renewables-explorer/internal/models"
)

// Message types for async operations

// catalogLoadedMsg carries the result of the startup source listing
type catalogLoadedMsg struct {
	catalog models.Catalog
	err     error
}

// dataLoadedMsg carries the result of one apply. seq identifies the request
// so superseded responses can be dropped.
type dataLoadedMsg struct {
	seq     int
	source  models.Source
	filters models.Filters
	resp    *models.DataResponse
	err     error
}

// filterSubmitMsg is sent when the filter form is submitted
type filterSubmitMsg struct{}

// filterCancelMsg is sent when the filter form is aborted
type filterCancelMsg struct{}

// exportDoneMsg reports the files written by an export
type exportDoneMsg struct {
	paths []string
	err   error
}
