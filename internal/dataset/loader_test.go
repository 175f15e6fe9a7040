package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"covidboard/internal/core"
)

const sampleCSV = `id,government_id,diagnosed_date,age,gender,detected_city,detected_district,detected_state,nationality,current_status,status_change_date,notes
0,KL-TS-P1,30/01/2020,20,F,Thrissur,Thrissur,Kerala,India,Recovered,14/02/2020,Travelled from Wuhan
1,KL-AL-P1,02/02/2020,,,Alappuzha,Alappuzha,Kerala,India,Recovered,14/02/2020,Travelled from Wuhan
2,DL-P1,02/03/2020,45,M,East Delhi,East Delhi,Delhi,India,Hospitalized,15/03/2020,"Travelled from Austria, Italy"
3,MH-P1,09/03/2020,,,Pune,Pune,Maharashtra,India,Deceased,20/03/2020,
`

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.Len() != 4 {
		t.Fatalf("rows=%d want 4", tbl.Len())
	}
	r := tbl.At(2)
	if r.Status != core.Hospitalized || r.State != "Delhi" || r.Notes != "Travelled from Austria, Italy" {
		t.Fatalf("unexpected record: %+v", r)
	}
	if r.Gender != "M" || r.Age != "45" || r.City != "East Delhi" {
		t.Fatalf("passthrough fields not mapped: %+v", r)
	}
	s := core.Summarize(tbl)
	if s != (core.Summary{Total: 4, Active: 1, Recovered: 2, Deaths: 1}) {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestReadCSVMinimalColumnsAndExtra(t *testing.T) {
	in := "\ufeffcurrent_status, detected_state ,source\nRecovered,KL,press\nDeceased,MH,\n"
	tbl, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows=%d", tbl.Len())
	}
	if got := tbl.At(0).Extra["source"]; got != "press" {
		t.Fatalf("extra source=%q", got)
	}
	if tbl.At(1).Extra != nil {
		t.Fatalf("empty extra values should not allocate: %v", tbl.At(1).Extra)
	}
}

func TestReadCSVHeaderOnly(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("current_status,detected_state\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.Len() != 0 {
		t.Fatalf("rows=%d want 0", tbl.Len())
	}
}

func TestReadCSVErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		is   error
		line int
	}{
		{"empty", "", ErrEmptyInput, 0},
		{"missing status column", "id,detected_state\n1,KL\n", ErrMissingColumn, 0},
		{"missing state column", "current_status\nRecovered\n", ErrMissingColumn, 0},
		{"field count", "current_status,detected_state\nRecovered,KL\nDeceased\n", ErrInvalidRow, 3},
		{"empty status", "current_status,detected_state\nRecovered,KL\n,MH\n", core.ErrEmptyStatus, 3},
		{"empty state", "current_status,detected_state\nRecovered, \n", core.ErrEmptyState, 2},
		{"duplicate column", "current_status,detected_state,current_status\nRecovered,KL,Deceased\n", ErrDuplicateColumn, 1},
		{"multi-line notes shift later lines", "current_status,detected_state,notes\nRecovered,KL,\"first\nsecond\"\n,MH,x\n", core.ErrEmptyStatus, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tc.in))
			if !errors.Is(err, tc.is) {
				t.Fatalf("got %v, want %v", err, tc.is)
			}
			if tc.line == 0 {
				return
			}
			var rerr *RowError
			if !errors.As(err, &rerr) {
				t.Fatalf("expected *RowError, got %T", err)
			}
			if rerr.Line != tc.line {
				t.Fatalf("line=%d want %d", rerr.Line, tc.line)
			}
			if !errors.Is(err, ErrInvalidRow) {
				t.Fatalf("row errors must wrap ErrInvalidRow: %v", err)
			}
		})
	}
}

func TestFromValuesDuplicateColumn(t *testing.T) {
	header := []string{"current_status", "detected_state", " detected_state "}
	_, err := FromValues(header, [][]string{{"Recovered", "KL", "MH"}})
	var rerr *RowError
	if !errors.As(err, &rerr) || !errors.Is(err, ErrDuplicateColumn) {
		t.Fatalf("expected duplicate column error, got %v", err)
	}
	if rerr.Line != 1 || rerr.Column != ColState {
		t.Fatalf("line=%d column=%q want 1 %q", rerr.Line, rerr.Column, ColState)
	}
}

func TestReadCSVMultiLineField(t *testing.T) {
	in := "current_status,detected_state,notes\nRecovered,KL,\"line one\nline two\"\nDeceased,MH,\n"
	tbl, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.Len() != 2 || tbl.At(0).Notes != "line one\nline two" {
		t.Fatalf("unexpected table: len=%d notes=%q", tbl.Len(), tbl.At(0).Notes)
	}
}

func TestFromValuesFieldCount(t *testing.T) {
	_, err := FromValues([]string{"current_status", "detected_state"}, [][]string{{"Recovered"}})
	var rerr *RowError
	if !errors.As(err, &rerr) || rerr.Line != 2 {
		t.Fatalf("expected row error on line 2, got %v", err)
	}
}

func TestLoadFileAndSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "IndividualDetails.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tbl, err := FileSource{Path: path}.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 4 {
		t.Fatalf("rows=%d", tbl.Len())
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestFileSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (FileSource{Path: "unused"}).Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
