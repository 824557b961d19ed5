package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/apiwada-admin-api/internal/dto"
	"github.com/noah-isme/apiwada-admin-api/internal/models"
	appErrors "github.com/noah-isme/apiwada-admin-api/pkg/errors"
)

const settingsCacheKey = "settings:site"

type settingsRepository interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
	Save(ctx context.Context, settings *models.SiteSettings) error
}

type settingsCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, prefix string) error
}

// AssetKind names an uploadable branding image.
type AssetKind string

const (
	AssetKindLogo       AssetKind = "logo"
	AssetKindBackground AssetKind = "background"
	AssetKindTutor      AssetKind = "tutor"
)

// SettingsService manages the public site settings singleton.
type SettingsService struct {
	repo   settingsRepository
	cache  settingsCache
	audit  auditRecorder
	logger *zap.Logger
}

// NewSettingsService constructs a SettingsService. cache may be nil.
func NewSettingsService(repo settingsRepository, cache settingsCache, audit auditRecorder, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, cache: cache, audit: audit, logger: logger}
}

// Get returns the stored settings, or the defaults when nothing was saved yet.
func (s *SettingsService) Get(ctx context.Context) (*models.SiteSettings, error) {
	if s.cache != nil {
		var cached models.SiteSettings
		if hit, err := s.cache.Get(ctx, settingsCacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load settings")
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, settingsCacheKey, settings, 0)
	}
	return settings, nil
}

// Save overwrites the settings document. Logo and background fields are only written by actors holding
// manageBranding; for everyone else the stored values are kept.
func (s *SettingsService) Save(ctx context.Context, actor *models.JWTClaims, settings *models.SiteSettings) (*models.SiteSettings, error) {
	if settings == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "settings payload required")
	}
	if err := validateTopStars(settings.TopStars); err != nil {
		return nil, err
	}

	if actor == nil || !actor.HasCapability(models.CapabilityManageBranding) {
		current, err := s.repo.Get(ctx)
		if err != nil {
			return nil, internalError(err, "failed to load settings")
		}
		settings.LogoURL = current.LogoURL
		settings.BackgroundImages = current.BackgroundImages
	}

	return s.persist(ctx, actor, settings, models.AuditActionSettingsSave)
}

// AddTopStar appends a blank entry to year. A full list is returned unchanged.
func (s *SettingsService) AddTopStar(ctx context.Context, actor *models.JWTClaims, year string) (*models.SiteSettings, error) {
	if year == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year required")
	}
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load settings")
	}
	if !settings.AddTopStar(year) {
		s.logger.Debug("top star list full", zap.String("year", year))
		return settings, nil
	}
	return s.persist(ctx, actor, settings, models.AuditActionSettingsSave)
}

// UpdateTopStar edits the entry at position of year.
func (s *SettingsService) UpdateTopStar(ctx context.Context, actor *models.JWTClaims, year string, position int, req dto.UpdateTopStarRequest) (*models.SiteSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load settings")
	}
	group := settings.StarsFor(year)
	if group == nil || position < 0 || position >= len(group.Students) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "top star not found")
	}
	entry := &group.Students[position]
	entry.Name = req.Name
	entry.Index = req.Index
	entry.Score = req.Score
	return s.persist(ctx, actor, settings, models.AuditActionSettingsSave)
}

// RemoveTopStar deletes the entry at position of year.
func (s *SettingsService) RemoveTopStar(ctx context.Context, actor *models.JWTClaims, year string, position int) (*models.SiteSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load settings")
	}
	if !settings.RemoveTopStar(year, position) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "top star not found")
	}
	return s.persist(ctx, actor, settings, models.AuditActionSettingsSave)
}

// ApplyAsset stores an encoded image into the settings field matching kind.
func (s *SettingsService) ApplyAsset(ctx context.Context, actor *models.JWTClaims, kind AssetKind, dataURL string) (string, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return "", internalError(err, "failed to load settings")
	}

	var field string
	switch kind {
	case AssetKindLogo:
		settings.LogoURL = dataURL
		field = "logoUrl"
	case AssetKindBackground:
		settings.BackgroundImages = []string{dataURL}
		field = "backgroundImages"
	case AssetKindTutor:
		settings.HeroTutorImage = dataURL
		field = "heroTutorImage"
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown asset kind %q", kind))
	}

	if _, err := s.persist(ctx, actor, settings, models.AuditActionAssetUpload); err != nil {
		return "", err
	}
	return field, nil
}

func (s *SettingsService) persist(ctx context.Context, actor *models.JWTClaims, settings *models.SiteSettings, action string) (*models.SiteSettings, error) {
	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, internalError(err, "failed to save settings")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, settingsCacheKey); err != nil {
			s.logger.Warn("settings cache invalidation failed", zap.Error(err))
		}
	}
	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		Actor:      actorIndex(actor),
		Action:     action,
		Resource:   "site",
		ResourceID: "settings",
	})
	return settings, nil
}

func validateTopStars(groups []models.ExamYearStars) error {
	seen := make(map[string]struct{}, len(groups))
	for _, group := range groups {
		if group.Year == "" {
			return appErrors.Clone(appErrors.ErrValidation, "top star year required")
		}
		if _, dup := seen[group.Year]; dup {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate top star year %s", group.Year))
		}
		seen[group.Year] = struct{}{}
		if len(group.Students) > models.MaxTopStarsPerYear {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d top stars per year", models.MaxTopStarsPerYear))
		}
	}
	return nil
}
