// Package dataset turns tabular patient data into a validated core.Table.
//
// Every source (CSV file, Google Sheets range, SQLite snapshot) funnels its
// header and rows through FromValues so validation is identical regardless
// of where the data came from.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"covidboard/internal/core"
)

// Column names of the patient data set.
const (
	ColID               = "id"
	ColGovernmentID     = "government_id"
	ColDiagnosedDate    = "diagnosed_date"
	ColAge              = "age"
	ColGender           = "gender"
	ColCity             = "detected_city"
	ColDistrict         = "detected_district"
	ColState            = "detected_state"
	ColNationality      = "nationality"
	ColStatus           = "current_status"
	ColStatusChangeDate = "status_change_date"
	ColNotes            = "notes"
)

var (
	ErrMissingColumn   = errors.New("missing required column")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrInvalidRow      = errors.New("invalid row")
	ErrEmptyInput      = errors.New("empty input: no header row")
)

// RowError reports a row that failed validation. Line is 1-based and counts
// the header as line 1.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("line %d, column %s: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() []error {
	return []error{ErrInvalidRow, e.Err}
}

// LoadFile reads a CSV file into a Table.
func LoadFile(path string) (*core.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return t, nil
}

// ReadCSV parses a header row followed by records.
func ReadCSV(r io.Reader) (*core.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	// Field count is enforced against the header from here on.
	cr.FieldsPerRecord = len(header)

	var (
		rows  [][]string
		lines []int
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &RowError{Line: perr.Line, Err: perr.Err}
			}
			return nil, err
		}
		// Quoted fields may span lines, so record where each row starts.
		line, _ := cr.FieldPos(0)
		rows = append(rows, rec)
		lines = append(lines, line)
	}
	return fromValues(header, rows, lines)
}

// FromValues builds a Table from a header and data rows. Every row must have
// exactly len(header) cells and a header name may appear only once. Row i
// is reported as line i+2.
func FromValues(header []string, rows [][]string) (*core.Table, error) {
	return fromValues(header, rows, nil)
}

// fromValues is FromValues with the source line of each row; nil lines
// means one row per line after the header.
func fromValues(header []string, rows [][]string, lines []int) (*core.Table, error) {
	cols := normalizeHeader(header)
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		if c == "" {
			continue
		}
		if _, dup := idx[c]; dup {
			return nil, &RowError{Line: 1, Column: c, Err: ErrDuplicateColumn}
		}
		idx[c] = i
	}
	for _, req := range []string{ColStatus, ColState} {
		if _, ok := idx[req]; !ok {
			return nil, fmt.Errorf("%w: %s (got %v)", ErrMissingColumn, req, cols)
		}
	}

	records := make([]core.Record, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		if i < len(lines) {
			line = lines[i]
		}
		if len(row) != len(cols) {
			return nil, &RowError{
				Line: line,
				Err:  fmt.Errorf("expected %d fields, got %d", len(cols), len(row)),
			}
		}
		rec := toRecord(cols, row)
		if err := rec.Validate(); err != nil {
			col := ColStatus
			if errors.Is(err, core.ErrEmptyState) {
				col = ColState
			}
			return nil, &RowError{Line: line, Column: col, Err: err}
		}
		records = append(records, rec)
	}
	return core.NewTable(records), nil
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func toRecord(cols, row []string) core.Record {
	var rec core.Record
	for i, col := range cols {
		v := strings.TrimSpace(row[i])
		switch col {
		case ColStatus:
			rec.Status = core.Status(v)
		case ColState:
			rec.State = v
		case ColID:
			rec.ID = v
		case ColGovernmentID:
			rec.GovernmentID = v
		case ColDiagnosedDate:
			rec.DiagnosedDate = v
		case ColAge:
			rec.Age = v
		case ColGender:
			rec.Gender = v
		case ColCity:
			rec.City = v
		case ColDistrict:
			rec.District = v
		case ColNationality:
			rec.Nationality = v
		case ColStatusChangeDate:
			rec.StatusChangeDate = v
		case ColNotes:
			rec.Notes = v
		default:
			if col == "" || v == "" {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[col] = v
		}
	}
	return rec
}
