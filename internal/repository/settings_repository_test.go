package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/apiwada-admin-api/internal/models"
	"github.com/noah-isme/apiwada-admin-api/pkg/docstore"
)

func TestSettingsGetReturnsDefaults(t *testing.T) {
	repo := NewSettingsRepository(docstore.NewMemoryStore())

	settings, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), *settings)
	assert.Len(t, settings.TopStars, 4)
}

func TestSettingsSaveThenGet(t *testing.T) {
	repo := NewSettingsRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	settings, err := repo.Get(ctx)
	require.NoError(t, err)
	settings.HeroTitle = "X"
	require.NoError(t, repo.Save(ctx, settings))

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "X", stored.HeroTitle)
}
