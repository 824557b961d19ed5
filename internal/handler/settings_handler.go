package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/apiwada-admin-api/internal/dto"
	"github.com/noah-isme/apiwada-admin-api/internal/models"
	"github.com/noah-isme/apiwada-admin-api/internal/service"
	appErrors "github.com/noah-isme/apiwada-admin-api/pkg/errors"
	"github.com/noah-isme/apiwada-admin-api/pkg/response"
)

type settingsService interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
	Save(ctx context.Context, actor *models.JWTClaims, settings *models.SiteSettings) (*models.SiteSettings, error)
	AddTopStar(ctx context.Context, actor *models.JWTClaims, year string) (*models.SiteSettings, error)
	UpdateTopStar(ctx context.Context, actor *models.JWTClaims, year string, position int, req dto.UpdateTopStarRequest) (*models.SiteSettings, error)
	RemoveTopStar(ctx context.Context, actor *models.JWTClaims, year string, position int) (*models.SiteSettings, error)
}

type assetService interface {
	Upload(ctx context.Context, actor *models.JWTClaims, kind service.AssetKind, size int64, r io.Reader) (*dto.AssetUploadResponse, error)
}

// SettingsHandler exposes the site settings and branding assets.
type SettingsHandler struct {
	settings settingsService
	assets   assetService
	maxBytes int64
}

// NewSettingsHandler constructs SettingsHandler. maxBytes bounds the multipart body of asset uploads.
func NewSettingsHandler(settings settingsService, assets assetService, maxBytes int64) *SettingsHandler {
	return &SettingsHandler{settings: settings, assets: assets, maxBytes: maxBytes}
}

// Get godoc
// @Summary Public site settings
// @Tags Site
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /site/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Save godoc
// @Summary Save site settings
// @Description Overwrites the settings document. Logo and background are kept unless the caller holds manageBranding.
// @Tags Site
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.SiteSettings true "Settings"
// @Success 200 {object} response.Envelope
// @Router /site/settings [put]
func (h *SettingsHandler) Save(c *gin.Context) {
	var req models.SiteSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid settings payload"))
		return
	}
	settings, err := h.settings.Save(c.Request.Context(), claimsFromContext(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// AddTopStar godoc
// @Summary Append a golden-list entry
// @Description A year already holding five entries is left unchanged
// @Tags Site
// @Produce json
// @Security BearerAuth
// @Param year path string true "Exam year"
// @Success 200 {object} response.Envelope
// @Router /site/settings/top-stars/{year} [post]
func (h *SettingsHandler) AddTopStar(c *gin.Context) {
	settings, err := h.settings.AddTopStar(c.Request.Context(), claimsFromContext(c), c.Param("year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// UpdateTopStar godoc
// @Summary Edit a golden-list entry
// @Tags Site
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param year path string true "Exam year"
// @Param position path int true "Zero-based position"
// @Param payload body dto.UpdateTopStarRequest true "Entry"
// @Success 200 {object} response.Envelope
// @Router /site/settings/top-stars/{year}/{position} [put]
func (h *SettingsHandler) UpdateTopStar(c *gin.Context) {
	position, err := positionParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateTopStarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid top star payload"))
		return
	}
	settings, err := h.settings.UpdateTopStar(c.Request.Context(), claimsFromContext(c), c.Param("year"), position, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// RemoveTopStar godoc
// @Summary Remove a golden-list entry
// @Tags Site
// @Produce json
// @Security BearerAuth
// @Param year path string true "Exam year"
// @Param position path int true "Zero-based position"
// @Success 200 {object} response.Envelope
// @Router /site/settings/top-stars/{year}/{position} [delete]
func (h *SettingsHandler) RemoveTopStar(c *gin.Context) {
	position, err := positionParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	settings, err := h.settings.RemoveTopStar(c.Request.Context(), claimsFromContext(c), c.Param("year"), position)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// UploadAsset godoc
// @Summary Upload a branding image
// @Description kind is logo, background or tutor. Files above the upload ceiling are rejected with 413.
// @Tags Site
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Asset kind"
// @Param file formData file true "Image"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /site/assets/{kind} [post]
func (h *SettingsHandler) UploadAsset(c *gin.Context) {
	if h.maxBytes > 0 {
		if c.Request.ContentLength > h.maxBytes+multipartOverhead {
			response.Error(c, appErrors.ErrOversizeUpload)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.ErrOversizeUpload)
			return
		}
		response.Error(c, bindError(err, "file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, bindError(err, "unable to read file"))
		return
	}
	defer file.Close()

	result, err := h.assets.Upload(c.Request.Context(), claimsFromContext(c), service.AssetKind(c.Param("kind")), fileHeader.Size, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// multipartOverhead allows for boundaries and part headers around the file itself.
const multipartOverhead = 16 * 1024
