package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/apiwada-admin-api/internal/models"
	"github.com/noah-isme/apiwada-admin-api/pkg/docstore"
)

const (
	// CollectionSite holds the site settings singleton.
	CollectionSite = "site"
	settingsKey    = "settings"
)

// SettingsRepository persists the site settings singleton.
type SettingsRepository struct {
	store docstore.Store
}

// NewSettingsRepository constructs the repository.
func NewSettingsRepository(store docstore.Store) *SettingsRepository {
	return &SettingsRepository{store: store}
}

// Get returns the stored settings, or the built-in defaults when nothing has been saved yet.
func (r *SettingsRepository) Get(ctx context.Context) (*models.SiteSettings, error) {
	var settings models.SiteSettings
	if err := r.store.Get(ctx, CollectionSite, settingsKey, &settings); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			defaults := models.DefaultSettings()
			return &defaults, nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &settings, nil
}

// Save overwrites the singleton. Concurrent saves race and the last one wins.
func (r *SettingsRepository) Save(ctx context.Context, settings *models.SiteSettings) error {
	if err := r.store.Put(ctx, CollectionSite, settingsKey, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
