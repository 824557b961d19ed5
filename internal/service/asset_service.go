package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/apiwada-admin-api/internal/dto"
	"github.com/noah-isme/apiwada-admin-api/internal/models"
	appErrors "github.com/noah-isme/apiwada-admin-api/pkg/errors"
)

type assetTarget interface {
	ApplyAsset(ctx context.Context, actor *models.JWTClaims, kind AssetKind, dataURL string) (string, error)
}

// AssetConfig bounds accepted uploads.
type AssetConfig struct {
	MaxBytes     int64
	AllowedMIMEs []string
}

// AssetService validates branding images and stores them in the site settings as data URLs.
type AssetService struct {
	settings assetTarget
	cfg      AssetConfig
	logger   *zap.Logger
}

// NewAssetService constructs an AssetService.
func NewAssetService(settings assetTarget, cfg AssetConfig, logger *zap.Logger) *AssetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}
	}
	return &AssetService{settings: settings, cfg: cfg, logger: logger}
}

// RequiredCapability returns the capability an actor needs to upload kind.
func RequiredCapability(kind AssetKind) (models.Capability, bool) {
	switch kind {
	case AssetKindLogo, AssetKindBackground:
		return models.CapabilityManageBranding, true
	case AssetKindTutor:
		return models.CapabilityManageSite, true
	default:
		return "", false
	}
}

// Upload reads at most the configured ceiling from r. Declared or actual sizes above it are rejected before the
// settings are touched.
func (s *AssetService) Upload(ctx context.Context, actor *models.JWTClaims, kind AssetKind, size int64, r io.Reader) (*dto.AssetUploadResponse, error) {
	capability, ok := RequiredCapability(kind)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown asset kind %q", kind))
	}
	if actor == nil || !actor.HasCapability(capability) {
		return nil, appErrors.ErrForbidden
	}
	if size > s.cfg.MaxBytes {
		return nil, s.oversize()
	}

	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxBytes+1))
	if err != nil {
		return nil, internalError(err, "failed to read upload")
	}
	if int64(len(data)) > s.cfg.MaxBytes {
		return nil, s.oversize()
	}
	if len(data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty upload")
	}

	mime := http.DetectContentType(data)
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	if !lo.Contains(s.cfg.AllowedMIMEs, mime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported image type %s", mime))
	}

	var buf bytes.Buffer
	buf.WriteString("data:")
	buf.WriteString(mime)
	buf.WriteString(";base64,")
	buf.WriteString(base64.StdEncoding.EncodeToString(data))

	field, err := s.settings.ApplyAsset(ctx, actor, kind, buf.String())
	if err != nil {
		return nil, err
	}

	s.logger.Info("asset uploaded", zap.String("kind", string(kind)), zap.Int("bytes", len(data)), zap.String("mime", mime))
	return &dto.AssetUploadResponse{Kind: string(kind), Field: field, Bytes: int64(len(data)), MIME: mime}, nil
}

func (s *AssetService) oversize() error {
	return appErrors.Clone(appErrors.ErrOversizeUpload, fmt.Sprintf("upload exceeds %d bytes", s.cfg.MaxBytes))
}
