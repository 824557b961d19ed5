package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/apiwada-admin-api/internal/dto"
	"github.com/noah-isme/apiwada-admin-api/internal/models"
	"github.com/noah-isme/apiwada-admin-api/internal/repository"
	appErrors "github.com/noah-isme/apiwada-admin-api/pkg/errors"
)

func newCourseService(f *fixture) *CourseService {
	return NewCourseService(repository.NewCourseRepository(f.store), f.audit, f.validate, nil)
}

func TestCourseServiceCreateAppliesDefaults(t *testing.T) {
	f := newFixture(t)
	svc := newCourseService(f)
	svc.now = func() time.Time { return time.UnixMilli(1767225600000) }

	course, err := svc.Create(context.Background(), adminClaims(models.CapabilityManageSite), dto.CreateCourseRequest{})
	require.NoError(t, err)
	assert.Regexp(t, `^course-1767225600000-[0-9a-f]{8}$`, course.ID)
	assert.Equal(t, DefaultCourseTitle, course.Title)
	assert.Equal(t, DefaultCourseDescription, course.Description)
	assert.Equal(t, DefaultCoursePrice, course.Price)
	assert.Equal(t, DefaultCourseDuration, course.DurationMinutes)
	assert.Equal(t, DefaultCourseThumbnail, course.Thumbnail)
	assert.Equal(t, []models.CourseVideo{{Title: DefaultLessonTitle}}, course.Videos)

	free, err := svc.Create(context.Background(), nil, dto.CreateCourseRequest{Title: "Waves", Price: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, "Waves", free.Title)
	assert.Equal(t, 0, free.Price)

	courses, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, courses, 2)
}

func TestCourseServiceSaveReplacesCatalog(t *testing.T) {
	f := newFixture(t)
	svc := newCourseService(f)
	ctx := context.Background()

	_, err := svc.Create(ctx, nil, dto.CreateCourseRequest{})
	require.NoError(t, err)

	saved, err := svc.Save(ctx, adminClaims(), dto.SaveCoursesRequest{Courses: []models.Course{
		{ID: "course-b", Title: "Electricity", Price: 4000, Videos: []models.CourseVideo{{ID: "v1", Title: "Ohm"}}},
		{ID: "course-a", Title: "Mechanics", Price: 3500},
	}})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "course-a", saved[0].ID)
	assert.Equal(t, "course-b", saved[1].ID)
	assert.Contains(t, f.audit.actions(), models.AuditActionCoursesSave)
}

func TestCourseServiceSaveValidation(t *testing.T) {
	svc := newCourseService(newFixture(t))
	ctx := context.Background()

	_, err := svc.Save(ctx, nil, dto.SaveCoursesRequest{Courses: []models.Course{
		{ID: "course-a", Title: "Mechanics", Videos: []models.CourseVideo{{ID: "v1"}}},
	}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Save(ctx, nil, dto.SaveCoursesRequest{Courses: []models.Course{
		{ID: "course-a", Title: "Mechanics"},
		{ID: "course-a", Title: "Again"},
	}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Save(ctx, nil, dto.SaveCoursesRequest{Courses: []models.Course{{ID: "course-a", Title: "Neg", Price: -1}}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestCourseServiceSaveEmptyCatalog(t *testing.T) {
	svc := newCourseService(newFixture(t))
	ctx := context.Background()
	_, err := svc.Create(ctx, nil, dto.CreateCourseRequest{})
	require.NoError(t, err)

	saved, err := svc.Save(ctx, nil, dto.SaveCoursesRequest{})
	require.NoError(t, err)
	assert.Empty(t, saved)
}
