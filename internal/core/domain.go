package core

import (
	"errors"
	"strings"
)

const (
	Hospitalized Status = "Hospitalized"
	Recovered    Status = "Recovered"
	Deceased     Status = "Deceased"
)

type (
	// Status is the current_status of a patient. Values outside the known
	// set are kept verbatim and only ever counted in the total.
	Status string

	Record struct {
		Status Status // current_status
		State  string // detected_state

		ID               string
		GovernmentID     string
		DiagnosedDate    string
		Age              string
		Gender           string
		City             string
		District         string
		Nationality      string
		StatusChangeDate string
		Notes            string

		// Extra holds any column not mapped to a field above.
		Extra map[string]string
	}
)

var (
	ErrEmptyStatus = errors.New("empty current_status")
	ErrEmptyState  = errors.New("empty detected_state")
)


func (r Record) Validate() error {
	if strings.TrimSpace(string(r.Status)) == "" {
		return ErrEmptyStatus
	}
	if strings.TrimSpace(r.State) == "" {
		return ErrEmptyState
	}
	return nil
}

// Table is an immutable, ordered set of records. The zero value is an
// empty table.
type Table struct {
	records []Record
}

// NewTable copies records into a new Table.
func NewTable(records []Record) *Table {
	cp := make([]Record, len(records))
	copy(cp, records)
	return &Table{records: cp}
}

// Len returns the number of rows. A nil table has zero rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// At returns the i-th record.
func (t *Table) At(i int) Record {
	return t.records[i]
}

// Each calls fn for every record in load order.
func (t *Table) Each(fn func(Record)) {
	if t == nil {
		return
	}
	for _, r := range t.records {
		fn(r)
	}
}
