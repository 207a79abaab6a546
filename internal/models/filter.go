package models

import (
	"net/url"
	"strings"
)

// Wire names of the recognised filter keys.
const (
	FilterStartYear = "annee_debut"
	FilterEndYear   = "annee_fin"
	FilterCountry   = "pays"
	FilterQuery     = "q"
)

// FilterKeys lists the filter keys in form order.
var FilterKeys = []string{FilterStartYear, FilterEndYear, FilterCountry, FilterQuery}

// Filters holds the user's constraints for a data fetch. Every field is
// optional. No check is made that StartYear <= EndYear.
type Filters struct {
	StartYear string
	EndYear   string
	Country   string
	Query     string
}

// Get returns the value stored under a wire key.
func (f Filters) Get(key string) string {
	switch key {
	case FilterStartYear:
		return f.StartYear
	case FilterEndYear:
		return f.EndYear
	case FilterCountry:
		return f.Country
	case FilterQuery:
		return f.Query
	}
	return ""
}

// Set writes a value under a wire key. Unknown keys are ignored.
func (f *Filters) Set(key, value string) {
	switch key {
	case FilterStartYear:
		f.StartYear = value
	case FilterEndYear:
		f.EndYear = value
	case FilterCountry:
		f.Country = value
	case FilterQuery:
		f.Query = value
	}
}

// Values builds the outgoing query parameters. Absent and blank fields are
// omitted entirely rather than sent as empty strings.
func (f Filters) Values() url.Values {
	v := url.Values{}
	for _, key := range FilterKeys {
		value := strings.TrimSpace(f.Get(key))
		if value == "" {
			continue
		}
		v.Set(key, value)
	}
	return v
}

// Summary renders the active filters as "key=value" pairs for status lines.
func (f Filters) Summary() string {
	var parts []string
	for _, key := range FilterKeys {
		if value := strings.TrimSpace(f.Get(key)); value != "" {
			parts = append(parts, key+"="+value)
		}
	}
	if len(parts) == 0 {
		return "no filters"
	}
	return strings.Join(parts, " ")
}
