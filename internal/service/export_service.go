package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/apiwada-admin-api/internal/models"
	appErrors "github.com/noah-isme/apiwada-admin-api/pkg/errors"
	"github.com/noah-isme/apiwada-admin-api/pkg/export"
	"github.com/noah-isme/apiwada-admin-api/pkg/storage"
)

// RosterHeaders is the column order of every student export.
var RosterHeaders = []string{"Index", "Name", "Exam Year", "School", "Birthday", "Contact", "Role", "Active Courses", "Marks Count"}

type rosterSource interface {
	ListStudents(ctx context.Context) ([]models.User, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type tableRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix    string
	RetentionTTL time.Duration
}

// ExportService renders the student roster and hands out signed download links.
type ExportService struct {
	students rosterSource
	storage  fileStorage
	signer   *storage.SignedURLSigner
	csv      tableRenderer
	xlsx     tableRenderer
	pdf      pdfRenderer
	audit    auditRecorder
	logger   *zap.Logger
	cfg      ExportConfig
	now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(students rosterSource, files fileStorage, signer *storage.SignedURLSigner, audit auditRecorder, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RetentionTTL <= 0 {
		cfg.RetentionTTL = 24 * time.Hour
	}
	return &ExportService{
		students: students,
		storage:  files,
		signer:   signer,
		csv:      export.NewCSVExporter(),
		xlsx:     export.NewXLSXExporter(),
		pdf:      export.NewPDFExporter(),
		audit:    audit,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Filename returns the download name for a roster rendered at t.
func Filename(t time.Time, format models.ExportFormat) string {
	return fmt.Sprintf("apiwada_students_%s.%s", t.Format("2006-01-02"), format)
}

// BuildDataset lays out one row per student.
func BuildDataset(students []models.User) export.Dataset {
	rows := lo.Map(students, func(u models.User, _ int) []string {
		return []string{
			u.IndexNumber,
			u.Name,
			u.ExamYear,
			u.School,
			u.Birthday,
			u.Contact,
			string(u.Role),
			strings.Join(u.ActiveCourses, "; "),
			strconv.Itoa(len(u.Marks)),
		}
	})
	return export.Dataset{Headers: RosterHeaders, Rows: rows}
}

// ExportStudents renders the roster in format and stores it behind a signed link.
func (s *ExportService) ExportStudents(ctx context.Context, actor *models.JWTClaims, format models.ExportFormat) (*models.ExportResult, error) {
	students, err := s.students.ListStudents(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list students")
	}
	dataset := BuildDataset(students)

	var payload []byte
	switch format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatXLSX:
		payload, err = s.xlsx.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Apiwada Student Roster")
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, internalError(err, "failed to render export")
	}

	if removed, err := s.storage.CleanupOlderThan(s.cfg.RetentionTTL); err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
	} else if len(removed) > 0 {
		s.logger.Debug("expired exports removed", zap.Int("count", len(removed)))
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	filename := Filename(s.now().UTC(), format)
	relPath, err := s.storage.Save(id+"/"+filename, payload)
	if err != nil {
		return nil, internalError(err, "failed to store export")
	}

	token, expiresAt, err := s.signer.Sign(id, relPath)
	if err != nil {
		return nil, internalError(err, "failed to sign export link")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		Actor:      actorIndex(actor),
		Action:     models.AuditActionExport,
		Resource:   "students",
		ResourceID: filename,
	})
	s.logger.Info("student roster exported", zap.String("format", string(format)), zap.Int("rows", len(dataset.Rows)))

	return &models.ExportResult{
		Filename:  filename,
		Format:    format,
		Rows:      len(dataset.Rows),
		URL:       fmt.Sprintf("%s/export/%s", prefix, token),
		ExpiresAt: expiresAt,
	}, nil
}

// Open resolves a download token to the stored file. The caller closes the file.
func (s *ExportService) Open(token string) (*os.File, string, error) {
	signed, err := s.signer.Verify(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, "", appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	file, err := s.storage.Open(signed.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, "", internalError(err, "failed to open export")
	}
	name := signed.Path
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return file, name, nil
}
