package repository

import (
	"testing"

	"github.com/noah-isme/apiwada-admin-api/pkg/config"
	"github.com/noah-isme/apiwada-admin-api/pkg/docstore"
)

func newUserRepo(t *testing.T, sessions sessionRefresher) (*UserRepository, *docstore.MemoryStore) {
	t.Helper()
	store := docstore.NewMemoryStore()
	allocator := NewIndexAllocator(store, config.AllocatorConfig{Origin: 1000, MaxRetries: 5}, nil, nil)
	return NewUserRepository(store, allocator, sessions), store
}
