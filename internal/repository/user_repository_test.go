package repository

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/apiwada-admin-api/internal/models"
	"github.com/noah-isme/apiwada-admin-api/pkg/docstore"
)

func TestRegisterCreatesEmptyStudent(t *testing.T) {
	repo, _ := newUserRepo(t, nil)

	user, err := repo.Register(context.Background(), models.Profile{Name: "Kasun", Contact: "0771234567", PasswordHash: "hash", ExamYear: "2026"})
	require.NoError(t, err)

	assert.Equal(t, "1000", user.IndexNumber)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Empty(t, user.ActiveCourses)
	assert.NotNil(t, user.ActiveCourses)
	assert.Empty(t, user.Marks)
	assert.Empty(t, user.WatchTime)
}

func TestConcurrentRegistrationsNeverCollide(t *testing.T) {
	repo, _ := newUserRepo(t, nil)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		indexes []string
	)
	for _, name := range []string{"A", "B", "C"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			u, err := repo.Register(context.Background(), models.Profile{Name: name, Contact: name})
			if assert.NoError(t, err) {
				mu.Lock()
				indexes = append(indexes, u.IndexNumber)
				mu.Unlock()
			}
		}(name)
	}
	wg.Wait()

	sort.Strings(indexes)
	assert.Equal(t, []string{"1000", "1001", "1002"}, indexes)

	users, err := repo.ListStudents(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestUpdateFindByIndexRoundTrip(t *testing.T) {
	repo, _ := newUserRepo(t, nil)
	ctx := context.Background()

	user, err := repo.Register(ctx, models.Profile{Name: "Nimali", Contact: "0711111111", School: "Royal College"})
	require.NoError(t, err)

	user.ActiveCourses = []string{"course-a", "course-b"}
	user.Marks = []models.Mark{{Label: "Exam 1", Score: 78, Date: "2026-01-10T00:00:00Z"}}
	user.WatchTime = map[string]int{"course-a": 45}
	require.NoError(t, repo.Update(ctx, user))

	found, err := repo.FindByIndex(ctx, user.IndexNumber)
	require.NoError(t, err)
	assert.Equal(t, user, found)
}

func TestFindMissingUserIsNotFound(t *testing.T) {
	repo, _ := newUserRepo(t, nil)

	_, err := repo.FindByIndex(context.Background(), "4242")
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	_, err = repo.FindByContact(context.Background(), "nobody")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestFindByContact(t *testing.T) {
	repo, _ := newUserRepo(t, nil)
	ctx := context.Background()
	_, err := repo.Register(ctx, models.Profile{Name: "A", Contact: "0770000001"})
	require.NoError(t, err)
	b, err := repo.Register(ctx, models.Profile{Name: "B", Contact: "0770000002"})
	require.NoError(t, err)

	found, err := repo.FindByContact(ctx, "0770000002")
	require.NoError(t, err)
	assert.Equal(t, b.IndexNumber, found.IndexNumber)
}

func TestListStudentsSkipsAdminsAndSortsNumerically(t *testing.T) {
	repo, store := newUserRepo(t, nil)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, CollectionUsers, "10000", models.User{IndexNumber: "10000", Role: models.RoleStudent}))
	require.NoError(t, store.Put(ctx, CollectionUsers, "9999", models.User{IndexNumber: "9999", Role: models.RoleStudent}))
	_, err := repo.RegisterAdmin(ctx, models.Profile{Name: "Admin", Contact: "admin"}, models.AllCapabilities)
	require.NoError(t, err)

	students, err := repo.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "9999", students[0].IndexNumber)
	assert.Equal(t, "10000", students[1].IndexNumber)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateLastWriterWins(t *testing.T) {
	repo, _ := newUserRepo(t, nil)
	ctx := context.Background()
	user, err := repo.Register(ctx, models.Profile{Name: "Original"})
	require.NoError(t, err)

	first, err := repo.FindByIndex(ctx, user.IndexNumber)
	require.NoError(t, err)
	second, err := repo.FindByIndex(ctx, user.IndexNumber)
	require.NoError(t, err)

	first.Name = "Renamed"
	second.ActiveCourses = []string{"physics"}
	require.NoError(t, repo.Update(ctx, first))
	require.NoError(t, repo.Update(ctx, second))

	stored, err := repo.FindByIndex(ctx, user.IndexNumber)
	require.NoError(t, err)
	assert.Equal(t, "Original", stored.Name, "the earlier rename is silently lost")
	assert.Equal(t, []string{"physics"}, stored.ActiveCourses)
}

func TestUpdateRefreshesLiveSessions(t *testing.T) {
	sessions := NewMemorySessionRepository(0)
	repo, _ := newUserRepo(t, sessions)
	ctx := context.Background()

	user, err := repo.Register(ctx, models.Profile{Name: "Before"})
	require.NoError(t, err)
	session, err := sessions.Create(ctx, user)
	require.NoError(t, err)

	user.Name = "After"
	require.NoError(t, repo.Update(ctx, user))

	loaded, err := sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", loaded.User.Name)
}
