package gradesheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX parses the first worksheet of an Excel gradesheet using the same
// rules as Parse: blank rows dropped, first row is the header row.
func ParseXLSX(course string, r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook %s: %v", ErrFileAccess, course, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fromRecords(course, nil), nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %s: %v", ErrFileAccess, sheets[0], err)
	}

	var records [][]string
	for _, cells := range rows {
		blank := true
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
			if cells[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		records = append(records, cells)
	}

	return fromRecords(course, records), nil
}
