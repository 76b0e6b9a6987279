package gradesheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrFileAccess = errors.New("gradesheet file not accessible")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row maps a column header to the cell value of one student
type Row map[string]string

// Sheet is one parsed gradesheet. Course is derived from the file name.
type Sheet struct {
	Course  string
	Path    string
	Headers []string
	Rows    []Row
}

// CourseName returns the course identifier for a gradesheet path: the base
// name without its extension.
func CourseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseFile reads and parses the gradesheet at path. The format is chosen by
// extension; anything other than .xlsx is treated as delimited text.
func ParseFile(path string) (*Sheet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFileAccess, path, err)
	}

	var sheet *Sheet
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		sheet, err = ParseXLSX(CourseName(path), bytes.NewReader(content))
		if err != nil {
			return nil, err
		}
	} else {
		sheet = Parse(CourseName(path), content)
	}
	sheet.Path = path

	return sheet, nil
}

// Parse parses comma-delimited gradesheet content. Blank lines are dropped,
// the first remaining line is the header row and each following line is
// mapped positionally onto it; short rows are padded with empty strings and
// surplus cells are ignored. Empty content yields an empty sheet.
func Parse(course string, content []byte) *Sheet {
	content = bytes.TrimPrefix(content, utf8BOM)
	text := strings.ToValidUTF8(string(content), "\uFFFD")

	var records [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, splitLine(line))
	}

	return fromRecords(course, records)
}

// splitLine splits one line on commas and trims every cell. A cell quoted
// and closed on the same line may contain commas; any other line, including
// one with an unbalanced quote, splits exactly as a plain comma split.
func splitLine(line string) []string {
	if !strings.Contains(line, `"`) {
		return trimCells(strings.Split(line, ","))
	}

	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1

	fields, err := r.Read()
	if err != nil {
		fields = strings.Split(line, ",")
	}
	return trimCells(fields)
}

func trimCells(fields []string) []string {
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func fromRecords(course string, records [][]string) *Sheet {
	sheet := &Sheet{
		Course:  course,
		Headers: []string{},
		Rows:    []Row{},
	}
	if len(records) == 0 {
		return sheet
	}

	sheet.Headers = records[0]
	for _, values := range records[1:] {
		row := make(Row, len(sheet.Headers))
		for i, header := range sheet.Headers {
			if i < len(values) {
				row[header] = values[i]
			} else {
				row[header] = ""
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	return sheet
}
