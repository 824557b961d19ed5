package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/apiwada-admin-api/internal/models"
	"github.com/noah-isme/apiwada-admin-api/pkg/docstore"
)

func TestCreateAuditLogAssignsIdentity(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewAuditRepository(store)

	log := &models.AuditLog{Actor: "1000", Action: models.AuditActionLogin, Resource: "auth"}
	require.NoError(t, repo.CreateAuditLog(context.Background(), log))
	assert.NotEmpty(t, log.ID)
	assert.False(t, log.CreatedAt.IsZero())

	var stored models.AuditLog
	require.NoError(t, store.Get(context.Background(), CollectionAuditLogs, log.ID, &stored))
	assert.Equal(t, models.AuditActionLogin, stored.Action)
}
