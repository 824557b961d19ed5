package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/apiwada-admin-api/internal/models"
	"github.com/noah-isme/apiwada-admin-api/internal/repository"
	"github.com/noah-isme/apiwada-admin-api/pkg/config"
	"github.com/noah-isme/apiwada-admin-api/pkg/docstore"
)

type fixture struct {
	store    *docstore.MemoryStore
	users    *repository.UserRepository
	sessions *repository.MemorySessionRepository
	audit    *auditSpy
	validate *validator.Validate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := docstore.NewMemoryStore()
	sessions := repository.NewMemorySessionRepository(time.Hour)
	allocator := repository.NewIndexAllocator(store, config.AllocatorConfig{Origin: 1000, MaxRetries: 5}, nil, nil)
	return &fixture{
		store:    store,
		users:    repository.NewUserRepository(store, allocator, sessions),
		sessions: sessions,
		audit:    &auditSpy{},
		validate: validator.New(),
	}
}

type auditSpy struct {
	mu   sync.Mutex
	logs []models.AuditLog
	err  error
}

func (a *auditSpy) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.logs = append(a.logs, *log)
	return nil
}

func (a *auditSpy) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.logs))
	for _, l := range a.logs {
		out = append(out, l.Action)
	}
	return out
}

func adminClaims(caps ...models.Capability) *models.JWTClaims {
	return &models.JWTClaims{IndexNumber: "1000", Role: models.RoleAdmin, Capabilities: caps}
}
