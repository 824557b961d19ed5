package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/apiwada-admin-api/internal/dto"
	"github.com/noah-isme/apiwada-admin-api/internal/models"
	appErrors "github.com/noah-isme/apiwada-admin-api/pkg/errors"
	"github.com/noah-isme/apiwada-admin-api/pkg/storage"
)

func newExportService(t *testing.T, f *fixture) *ExportService {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("export-secret", time.Minute)
	svc := NewExportService(f.users, files, signer, f.audit, ExportConfig{APIPrefix: "/api/v1/"}, nil)
	svc.now = func() time.Time { return time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestBuildDataset(t *testing.T) {
	dataset := BuildDataset([]models.User{{
		IndexNumber:   "1000",
		Name:          "Kasun",
		ExamYear:      "2026",
		School:        `O"Brien High`,
		Contact:       "0771234567",
		Role:          models.RoleStudent,
		ActiveCourses: []string{"course-a", "course-b"},
		Marks:         []models.Mark{{Label: "Exam 1", Score: 50}},
	}})

	assert.Equal(t, RosterHeaders, dataset.Headers)
	require.Len(t, dataset.Rows, 1)
	assert.Equal(t, []string{"1000", "Kasun", "2026", `O"Brien High`, "", "0771234567", "student", "course-a; course-b", "1"}, dataset.Rows[0])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "apiwada_students_2026-01-05.csv", Filename(time.Date(2026, 1, 5, 23, 0, 0, 0, time.UTC), models.ExportFormatCSV))
}

func TestExportServiceCSVRoundTrip(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.RegisterAdmin(context.Background(), models.Profile{Name: "Admin", Contact: "admin"}, models.AllCapabilities)
	require.NoError(t, err)
	students := NewStudentService(f.users, f.audit, f.validate, nil)
	_, err = students.Register(context.Background(), dto.RegisterRequest{Name: "Kasun", Contact: "0771234567", Password: "password1", School: `O"Brien High`, ExamYear: "2026"})
	require.NoError(t, err)
	svc := newExportService(t, f)

	result, err := svc.ExportStudents(context.Background(), adminClaims(models.CapabilityManageStudents), models.ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "apiwada_students_2026-10-14.csv", result.Filename)
	assert.Equal(t, 1, result.Rows)
	require.True(t, strings.HasPrefix(result.URL, "/api/v1/export/"))

	file, name, err := svc.Open(strings.TrimPrefix(result.URL, "/api/v1/export/"))
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, result.Filename, name)

	body, err := io.ReadAll(file)
	require.NoError(t, err)
	lines := strings.Split(string(body), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(RosterHeaders, ","), lines[0])
	assert.Contains(t, lines[1], `"O""Brien High"`)
	assert.Contains(t, f.audit.actions(), models.AuditActionExport)
}

func TestExportServiceEmptyRosterIsHeaderOnly(t *testing.T) {
	f := newFixture(t)
	svc := newExportService(t, f)

	result, err := svc.ExportStudents(context.Background(), nil, models.ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Rows)

	file, _, err := svc.Open(strings.TrimPrefix(result.URL, "/api/v1/export/"))
	require.NoError(t, err)
	defer file.Close()
	body, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(RosterHeaders, ","), string(body))
}

func TestExportServiceOtherFormats(t *testing.T) {
	f := newFixture(t)
	svc := newExportService(t, f)

	for _, format := range []models.ExportFormat{models.ExportFormatPDF, models.ExportFormatXLSX} {
		result, err := svc.ExportStudents(context.Background(), nil, format)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(result.Filename, "."+string(format)))
	}

	_, err := svc.ExportStudents(context.Background(), nil, models.ExportFormat("docx"))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportServiceOpenRejectsBadTokens(t *testing.T) {
	svc := newExportService(t, newFixture(t))

	_, _, err := svc.Open("not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
