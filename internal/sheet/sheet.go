// Package sheet reads tabular data out of spreadsheet workbooks.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrNoSheet = errors.New("workbook has no worksheet")

// Sheet is a header row plus string cells. Header names are lower-cased and
// trimmed.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ReadXLSX loads the first worksheet of an .xlsx workbook. The first
// non-empty row is taken as the header.
func ReadXLSX(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, ErrNoSheet
	}

	rows, err := f.GetRows(names[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", names[0], err)
	}

	s := &Sheet{Name: names[0]}
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		s.Header = make([]string, len(row))
		for c, h := range row {
			s.Header[c] = strings.ToLower(strings.TrimSpace(h))
		}
		for _, data := range rows[i+1:] {
			if !isBlank(data) {
				s.Rows = append(s.Rows, data)
			}
		}
		break
	}
	return s, nil
}

// Column returns the index of a header, or -1.
func (s *Sheet) Column(name string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, h := range s.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed cell at (row, col); short rows read as empty.
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(s.Rows[row][col])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
