package gradesheet

import (
	"errors"
	"fmt"
	"strings"
)

// NotGraded replaces empty assessment cells when projecting marks
const NotGraded = "Not Graded"

var ErrMissingHeader = errors.New("gradesheet missing required header")

// Schema is the closed set of reserved headers every gradesheet carries.
// Any other header is an assessment column.
type Schema struct {
	SerialHeader string
	RollNoHeader string
	NameHeader   string
}

// DefaultSchema matches the header row exported by the grading spreadsheets
func DefaultSchema() Schema {
	return Schema{
		SerialHeader: "Sr No.",
		RollNoHeader: "Roll No.",
		NameHeader:   "Name",
	}
}

// IsReserved reports whether header is one of the identity columns
func (s Schema) IsReserved(header string) bool {
	return header == s.SerialHeader || header == s.RollNoHeader || header == s.NameHeader
}

// Check verifies that the roll number and name columns are present.
func (s Schema) Check(headers []string) error {
	var missing []string
	for _, required := range []string{s.RollNoHeader, s.NameHeader} {
		found := false
		for _, h := range headers {
			if h == required {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, fmt.Sprintf("%q", required))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingHeader, strings.Join(missing, ", "))
	}
	return nil
}

// RollNo returns the row's roll number cell as written in the file
func (s Schema) RollNo(row Row) string {
	return row[s.RollNoHeader]
}

// Name returns the row's student name cell
func (s Schema) Name(row Row) string {
	return row[s.NameHeader]
}

// Marks projects the assessment columns of row, substituting NotGraded for empty cells.
func (s Schema) Marks(headers []string, row Row) map[string]string {
	marks := make(map[string]string)
	for _, h := range headers {
		if s.IsReserved(h) {
			continue
		}
		if v := row[h]; v != "" {
			marks[h] = v
		} else {
			marks[h] = NotGraded
		}
	}
	return marks
}

// FindRow returns the first row whose roll number column equals rollNo exactly.
// The file's own roll number column is not normalized.
func (s Schema) FindRow(sheet *Sheet, rollNo string) (Row, bool) {
	for _, row := range sheet.Rows {
		if s.RollNo(row) == rollNo {
			return row, true
		}
	}
	return nil, false
}
