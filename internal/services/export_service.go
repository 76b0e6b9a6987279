package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/repositories"
)

type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"

	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	exportSheet = "Sheet1"
)

var (
	CredentialsHeader = []string{"Roll No", "Name", "Email", "Password", "Courses"}
	AllUsersHeader    = []string{"Roll No", "Name", "Email", "Initial Password", "Courses", "Created At"}
)

// ParseExportFormat accepts csv (the default when empty) or xlsx
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q", ErrValidationFailed, s)
	}
}

// ExportFile is a rendered download
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// ExportCredentials renders credentials returned by a registration run
func (s *exportService) ExportCredentials(ctx context.Context, creds []models.ProvisionedCredential, format ExportFormat) (*ExportFile, error) {
	if len(creds) == 0 {
		return nil, fmt.Errorf("%w: no credentials to export", ErrValidationFailed)
	}

	rows := make([][]string, 0, len(creds))
	for _, c := range creds {
		rows = append(rows, []string{c.RollNo, c.Name, c.Email, c.Password, strings.Join(c.Courses, ", ")})
	}

	return s.render("student-credentials", CredentialsHeader, rows, format)
}

// ExportAllUsers renders every registered student with their initial password
func (s *exportService) ExportAllUsers(ctx context.Context, format ExportFormat) (*ExportFile, error) {
	students, err := s.repo.Student().List(ctx)
	if err != nil {
		return nil, storeError("list students", err)
	}

	rows := make([][]string, 0, len(students))
	for _, st := range students {
		createdAt := ""
		if !st.CreatedAt.IsZero() {
			createdAt = st.CreatedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{
			st.RollNo,
			st.Name,
			st.Email,
			st.InitialPassword,
			strings.Join(st.Courses, ", "),
			createdAt,
		})
	}

	s.logger.InfoContext(ctx, "Exporting all users", "count", len(rows), "format", format)
	return s.render("all-users", AllUsersHeader, rows, format)
}

func (s *exportService) render(base string, header []string, rows [][]string, format ExportFormat) (*ExportFile, error) {
	if format == "" {
		format = FormatCSV
	}
	filename := fmt.Sprintf("%s-%s.%s", base, s.now().Format("2006-01-02"), format)

	switch format {
	case FormatCSV:
		data, err := renderCSV(header, rows)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Filename: filename, ContentType: ContentTypeCSV, Data: data}, nil
	case FormatXLSX:
		data, err := renderXLSX(header, rows)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Filename: filename, ContentType: ContentTypeXLSX, Data: data}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", ErrValidationFailed, format)
	}
}

func renderCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv rows: %w", err)
	}
	return buf.Bytes(), nil
}

func renderXLSX(header []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write xlsx header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write xlsx row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
