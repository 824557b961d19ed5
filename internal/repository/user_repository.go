package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/noah-isme/apiwada-admin-api/internal/models"
	"github.com/noah-isme/apiwada-admin-api/pkg/docstore"
)

// CollectionUsers stores one document per user keyed by index number.
const CollectionUsers = "users"

type indexAllocator interface {
	Allocate(ctx context.Context) (int64, error)
}

type sessionRefresher interface {
	RefreshUser(ctx context.Context, user *models.User) error
}

// UserRepository persists user documents.
type UserRepository struct {
	store     docstore.Store
	allocator indexAllocator
	sessions  sessionRefresher
}

// NewUserRepository constructs the repository. sessions may be nil when no session store is wired.
func NewUserRepository(store docstore.Store, allocator indexAllocator, sessions sessionRefresher) *UserRepository {
	return &UserRepository{store: store, allocator: allocator, sessions: sessions}
}

// Register allocates an index number and stores a fresh student record for profile.
func (r *UserRepository) Register(ctx context.Context, profile models.Profile) (*models.User, error) {
	return r.create(ctx, profile, models.RoleStudent, nil)
}

// RegisterAdmin stores a console operator with the given capabilities.
func (r *UserRepository) RegisterAdmin(ctx context.Context, profile models.Profile, capabilities []models.Capability) (*models.User, error) {
	return r.create(ctx, profile, models.RoleAdmin, capabilities)
}

func (r *UserRepository) create(ctx context.Context, profile models.Profile, role models.Role, capabilities []models.Capability) (*models.User, error) {
	index, err := r.allocator.Allocate(ctx)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		IndexNumber:   strconv.FormatInt(index, 10),
		Name:          profile.Name,
		Contact:       models.NormalizeContact(profile.Contact),
		PasswordHash:  profile.PasswordHash,
		School:        profile.School,
		Birthday:      profile.Birthday,
		ExamYear:      profile.ExamYear,
		Role:          role,
		Capabilities:  capabilities,
		ActiveCourses: []string{},
		Marks:         []models.Mark{},
		WatchTime:     map[string]int{},
	}
	if err := r.store.Put(ctx, CollectionUsers, user.IndexNumber, user); err != nil {
		return nil, fmt.Errorf("insert user %s: %w", user.IndexNumber, err)
	}
	return user, nil
}

// FindByContact returns the first user registered with contact or docstore.ErrNotFound.
func (r *UserRepository) FindByContact(ctx context.Context, contact string) (*models.User, error) {
	var user models.User
	if err := r.store.FindOne(ctx, CollectionUsers, "contact", models.NormalizeContact(contact), &user); err != nil {
		return nil, err
	}
	normalize(&user)
	return &user, nil
}

// FindByIndex returns the user at index or docstore.ErrNotFound.
func (r *UserRepository) FindByIndex(ctx context.Context, index string) (*models.User, error) {
	var user models.User
	if err := r.store.Get(ctx, CollectionUsers, index, &user); err != nil {
		return nil, err
	}
	normalize(&user)
	return &user, nil
}

// List returns every user ordered by index number.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	docs, err := r.store.List(ctx, CollectionUsers)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users, err := docstore.DecodeAll[models.User](docs)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		normalize(&users[i])
	}
	sortByIndex(users)
	return users, nil
}

// ListStudents returns users with the student role ordered by index number.
func (r *UserRepository) ListStudents(ctx context.Context) ([]models.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	students := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.Role == models.RoleStudent {
			students = append(students, u)
		}
	}
	return students, nil
}

// Update overwrites the whole record and refreshes any live session snapshot of the same user.
// Concurrent updates to one user race and the last write wins.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.store.Put(ctx, CollectionUsers, user.IndexNumber, user); err != nil {
		return fmt.Errorf("update user %s: %w", user.IndexNumber, err)
	}
	if r.sessions != nil {
		if err := r.sessions.RefreshUser(ctx, user); err != nil {
			return fmt.Errorf("refresh sessions of %s: %w", user.IndexNumber, err)
		}
	}
	return nil
}

func normalize(u *models.User) {
	if u.ActiveCourses == nil {
		u.ActiveCourses = []string{}
	}
	if u.Marks == nil {
		u.Marks = []models.Mark{}
	}
	if u.WatchTime == nil {
		u.WatchTime = map[string]int{}
	}
}

// sortByIndex orders numerically so that 10000 follows 9999.
func sortByIndex(users []models.User) {
	sort.SliceStable(users, func(i, j int) bool {
		a, b := users[i].IndexNumber, users[j].IndexNumber
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
}
