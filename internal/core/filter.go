package core

import (
	"errors"
	"fmt"
)

// Filter restricts which records are aggregated.
type Filter string

const (
	FilterAll          Filter = "All"
	FilterHospitalized Filter = Filter(Hospitalized)
	FilterRecovered    Filter = Filter(Recovered)
	FilterDeceased     Filter = Filter(Deceased)
)

// ErrInvalidFilter is returned for a filter value outside Filters().
var ErrInvalidFilter = errors.New("invalid filter")

// Filters returns the selectable filters in dropdown order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterHospitalized, FilterRecovered, FilterDeceased}
}

// ParseFilter matches s exactly (case-sensitive) against Filters().
func ParseFilter(s string) (Filter, error) {
	for _, f := range Filters() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
}

// Label is the text shown in the dropdown.
func (f Filter) Label() string {
	return string(f)
}

// Match reports whether r belongs to the subset selected by f.
func (f Filter) Match(r Record) bool {
	if f == FilterAll {
		return true
	}
	return string(r.Status) == string(f)
}
