package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/apiwada-admin-api/internal/models"
	"github.com/noah-isme/apiwada-admin-api/pkg/docstore"
)

// CollectionAuditLogs stores the console audit trail.
const CollectionAuditLogs = "audit_logs"

// AuditRepository appends audit records.
type AuditRepository struct {
	store docstore.Store
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(store docstore.Store) *AuditRepository {
	return &AuditRepository{store: store}
}

// CreateAuditLog stores log, assigning an id and timestamp when missing.
func (r *AuditRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	if err := r.store.Put(ctx, CollectionAuditLogs, log.ID, log); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
