package gradesheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantHeaders []string
		wantRows    []Row
	}{
		{
			name:        "basic",
			content:     "Sr No.,Roll No.,Name,Quiz 1\n1,22F-3277,Ali,8\n",
			wantHeaders: []string{"Sr No.", "Roll No.", "Name", "Quiz 1"},
			wantRows: []Row{
				{"Sr No.": "1", "Roll No.": "22F-3277", "Name": "Ali", "Quiz 1": "8"},
			},
		},
		{
			name:        "short row padded",
			content:     "Roll No.,Name,Quiz 1,Quiz 2\n22F-3277,Ali\n",
			wantHeaders: []string{"Roll No.", "Name", "Quiz 1", "Quiz 2"},
			wantRows: []Row{
				{"Roll No.": "22F-3277", "Name": "Ali", "Quiz 1": "", "Quiz 2": ""},
			},
		},
		{
			name:        "surplus cells ignored",
			content:     "Roll No.,Name\n22F-3277,Ali,extra,more\n",
			wantHeaders: []string{"Roll No.", "Name"},
			wantRows: []Row{
				{"Roll No.": "22F-3277", "Name": "Ali"},
			},
		},
		{
			name:        "blank lines and CRLF",
			content:     "\r\nRoll No.,Name\r\n\r\n22F-3277,Ali\r\n   \r\n22F-0001,Sara\r\n",
			wantHeaders: []string{"Roll No.", "Name"},
			wantRows: []Row{
				{"Roll No.": "22F-3277", "Name": "Ali"},
				{"Roll No.": "22F-0001", "Name": "Sara"},
			},
		},
		{
			name:        "cells trimmed",
			content:     " Roll No. , Name \n 22F-3277 ,  Ali  \n",
			wantHeaders: []string{"Roll No.", "Name"},
			wantRows: []Row{
				{"Roll No.": "22F-3277", "Name": "Ali"},
			},
		},
		{
			name:        "byte order mark stripped",
			content:     "\ufeffRoll No.,Name\n22F-3277,Ali\n",
			wantHeaders: []string{"Roll No.", "Name"},
			wantRows: []Row{
				{"Roll No.": "22F-3277", "Name": "Ali"},
			},
		},
		{
			name:        "quoted comma kept in one cell",
			content:     "Roll No.,Name,Remarks\n22F-3277,\"Khan, Ali\",ok\n",
			wantHeaders: []string{"Roll No.", "Name", "Remarks"},
			wantRows: []Row{
				{"Roll No.": "22F-3277", "Name": "Khan, Ali", "Remarks": "ok"},
			},
		},
		{
			name:        "unbalanced quote splits plainly",
			content:     "Roll No.,Name,Quiz 1,Mid\n22F-0001,\"Ali,9,40\n",
			wantHeaders: []string{"Roll No.", "Name", "Quiz 1", "Mid"},
			wantRows: []Row{
				{"Roll No.": "22F-0001", "Name": "\"Ali", "Quiz 1": "9", "Mid": "40"},
			},
		},
		{
			name:        "stray quote inside a cell",
			content:     "Roll No.,Name,Quiz 1\n22F-0001,Ali \"Jr\",7\n",
			wantHeaders: []string{"Roll No.", "Name", "Quiz 1"},
			wantRows: []Row{
				{"Roll No.": "22F-0001", "Name": "Ali \"Jr\"", "Quiz 1": "7"},
			},
		},
		{
			name:        "empty content",
			content:     "",
			wantHeaders: []string{},
			wantRows:    []Row{},
		},
		{
			name:        "header only",
			content:     "Roll No.,Name\n",
			wantHeaders: []string{"Roll No.", "Name"},
			wantRows:    []Row{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := Parse("Algorithms", []byte(tt.content))
			require.NotNil(t, sheet)
			assert.Equal(t, "Algorithms", sheet.Course)
			assert.Equal(t, tt.wantHeaders, sheet.Headers)
			assert.Equal(t, tt.wantRows, sheet.Rows)
		})
	}
}

func TestCourseName(t *testing.T) {
	assert.Equal(t, "Data Structures", CourseName("/data/grades/Data Structures.csv"))
	assert.Equal(t, "OOP", CourseName("OOP.xlsx"))
	assert.Equal(t, "notes", CourseName("notes"))
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, ErrFileAccess)
}

func TestParseFile_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Calculus.csv")
	require.NoError(t, os.WriteFile(path, []byte("Roll No.,Name,Mid\n22F-3277,Ali,30\n"), 0o644))

	sheet, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Calculus", sheet.Course)
	assert.Equal(t, path, sheet.Path)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "30", sheet.Rows[0]["Mid"])
}

func TestParseFile_XLSXMatchesCSV(t *testing.T) {
	dir := t.TempDir()
	records := [][]string{
		{"Sr No.", "Roll No.", "Name", "Quiz 1"},
		{"1", "22F-3277", "Ali", "8"},
		{"2", "22F-0001", "Sara", ""},
	}

	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
		}
		require.NoError(t, f.SetSheetRow(sheetName, cell, &row))
	}
	xlsxPath := filepath.Join(dir, "Physics.xlsx")
	require.NoError(t, f.SaveAs(xlsxPath))
	require.NoError(t, f.Close())

	csvPath := filepath.Join(dir, "Physics.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Sr No.,Roll No.,Name,Quiz 1\n1,22F-3277,Ali,8\n2,22F-0001,Sara,\n"), 0o644))

	fromXLSX, err := ParseFile(xlsxPath)
	require.NoError(t, err)
	fromCSV, err := ParseFile(csvPath)
	require.NoError(t, err)

	assert.Equal(t, fromCSV.Course, fromXLSX.Course)
	assert.Equal(t, fromCSV.Headers, fromXLSX.Headers)
	assert.Equal(t, fromCSV.Rows, fromXLSX.Rows)
}
