package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/apiwada-admin-api/internal/dto"
	"github.com/noah-isme/apiwada-admin-api/internal/models"
	"github.com/noah-isme/apiwada-admin-api/pkg/response"
)

type exportService interface {
	ExportStudents(ctx context.Context, actor *models.JWTClaims, format models.ExportFormat) (*models.ExportResult, error)
	Open(token string) (*os.File, string, error)
}

var exportContentTypes = map[string]string{
	".csv":  "text/csv; charset=utf-8",
	".pdf":  "application/pdf",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ExportHandler renders student rosters and serves signed downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// ExportStudents godoc
// @Summary Export the student roster
// @Description Renders one row per student and returns a signed, expiring download link
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ExportRequest false "Format, csv by default"
// @Success 201 {object} response.Envelope
// @Router /students/export [post]
func (h *ExportHandler) ExportStudents(c *gin.Context) {
	var req dto.ExportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, bindError(err, "invalid export payload"))
			return
		}
	}
	format := models.ExportFormat(req.Format)
	if format == "" {
		format = models.ExportFormatCSV
	}

	result, err := h.service.ExportStudents(c.Request.Context(), claimsFromContext(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download an export
// @Tags Students
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /export/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, name, err := h.service.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}
	contentType, ok := exportContentTypes[filepath.Ext(name)]
	if !ok {
		contentType = "application/octet-stream"
	}

	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", name),
		"Cache-Control":       "no-store",
	})
}
