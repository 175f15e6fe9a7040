package sheets

import (
	"fmt"
	"strings"

	"covidboard/internal/dataset"
)

// valuesToRows converts a values matrix (as returned by the Sheets API) into
// a header and fixed-width string rows. The API drops trailing empty cells,
// so short rows are padded; fully blank rows are skipped.
func valuesToRows(values [][]interface{}) ([]string, [][]string, error) {
	if len(values) == 0 {
		return nil, nil, dataset.ErrEmptyInput
	}
	header := toStrings(values[0])
	for len(header) > 0 && strings.TrimSpace(header[len(header)-1]) == "" {
		header = header[:len(header)-1]
	}
	width := len(header)

	rows := make([][]string, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if blank(row) {
			continue
		}
		if len(row) > width {
			if !blank(row[width:]) {
				return nil, nil, fmt.Errorf("row %d: %d cells beyond header width %d", i+1, len(row), width)
			}
			row = row[:width]
		}
		for len(row) < width {
			row = append(row, "")
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
