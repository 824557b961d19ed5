package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/apiwada-admin-api/internal/models"
	"github.com/noah-isme/apiwada-admin-api/pkg/docstore"
	appErrors "github.com/noah-isme/apiwada-admin-api/pkg/errors"
)

func isNotFound(err error) bool {
	return errors.Is(err, docstore.ErrNotFound)
}

func internalError(err error, message string) error {
	if appErr := new(appErrors.Error); errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func actorIndex(actor *models.JWTClaims) string {
	if actor == nil {
		return ""
	}
	return actor.IndexNumber
}

// recordAudit never fails the calling operation.
func recordAudit(ctx context.Context, audit auditRecorder, logger *zap.Logger, log *models.AuditLog) {
	if audit == nil {
		return
	}
	if err := audit.CreateAuditLog(ctx, log); err != nil {
		logger.Warn("failed to record audit log", zap.String("action", log.Action), zap.Error(err))
	}
}
