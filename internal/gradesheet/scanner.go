package gradesheet

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/SAP-F-2025/student-portal/internal/metrics"
)

// Scanner enumerates gradesheet files in a single configured directory.
type Scanner struct {
	dir        string
	extensions []string
	schema     Schema
	logger     *slog.Logger
}

// NewScanner creates a scanner over dir. Extensions default to ".csv".
func NewScanner(dir string, extensions []string, schema Schema, logger *slog.Logger) *Scanner {
	if len(extensions) == 0 {
		extensions = []string{".csv"}
	}
	exts := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scanner{
		dir:        dir,
		extensions: exts,
		schema:     schema,
		logger:     logger,
	}
}

// Dir returns the scanned directory
func (s *Scanner) Dir() string {
	return s.dir
}

// Schema returns the header schema used to check loaded sheets
func (s *Scanner) Schema() Schema {
	return s.schema
}

// List returns the paths of matching files in name order. A missing
// directory yields an empty list.
func (s *Scanner) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Gradesheet directory not found", "dir", s.dir)
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: read directory %s: %v", ErrFileAccess, s.dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !s.matches(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(s.dir, entry.Name()))
	}

	return files, nil
}

func (s *Scanner) matches(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range s.extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// LoadAll parses every listed gradesheet in List order. Unreadable files
// abort with ErrFileAccess; sheets failing the header check are logged and
// skipped since none of their rows could match a roll number.
func (s *Scanner) LoadAll() ([]*Sheet, error) {
	files, err := s.List()
	if err != nil {
		return nil, err
	}

	sheets := make([]*Sheet, 0, len(files))
	for _, path := range files {
		sheet, err := ParseFile(path)
		if err != nil {
			metrics.GradesheetParseErrors.Inc()
			return nil, err
		}

		if len(sheet.Headers) > 0 {
			if err := s.schema.Check(sheet.Headers); err != nil {
				metrics.GradesheetParseErrors.Inc()
				s.logger.Warn("Skipping gradesheet with unexpected headers",
					"file", path,
					"error", err)
				continue
			}
		}

		sheets = append(sheets, sheet)
	}

	return sheets, nil
}
