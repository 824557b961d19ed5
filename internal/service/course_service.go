package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/apiwada-admin-api/internal/dto"
	"github.com/noah-isme/apiwada-admin-api/internal/models"
	appErrors "github.com/noah-isme/apiwada-admin-api/pkg/errors"
)

// Defaults applied to a freshly drafted course.
const (
	DefaultCourseTitle       = "New Module"
	DefaultCourseDescription = "Module description..."
	DefaultCoursePrice       = 3500
	DefaultCourseDuration    = 120
	DefaultCourseThumbnail   = "https://images.unsplash.com/photo-1635070041078-e363dbe005cb?auto=format&fit=crop&q=80&w=800"
	DefaultLessonTitle       = "Lesson 1"
)

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	Save(ctx context.Context, courses []models.Course) error
	Upsert(ctx context.Context, course *models.Course) error
}

// CourseService manages the course catalog.
type CourseService struct {
	repo      courseRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{repo: repo, audit: audit, validator: validate, logger: logger, now: time.Now}
}

// List returns the catalog in id order.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list courses")
	}
	return courses, nil
}

// Save replaces the catalog. Every video needs a title and course ids must be unique.
func (s *CourseService) Save(ctx context.Context, actor *models.JWTClaims, req dto.SaveCoursesRequest) ([]models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course catalog")
	}
	seen := make(map[string]struct{}, len(req.Courses))
	for _, course := range req.Courses {
		if _, dup := seen[course.ID]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate course id %s", course.ID))
		}
		seen[course.ID] = struct{}{}
	}

	courses := req.Courses
	if courses == nil {
		courses = []models.Course{}
	}
	if err := s.repo.Save(ctx, courses); err != nil {
		return nil, internalError(err, "failed to save courses")
	}

	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		Actor:    actorIndex(actor),
		Action:   models.AuditActionCoursesSave,
		Resource: "courses",
	})
	return s.List(ctx)
}

// Create drafts a course, filling omitted fields with the catalog defaults.
func (s *CourseService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}

	course := &models.Course{
		ID:              s.newCourseID(),
		Title:           firstNonEmpty(req.Title, DefaultCourseTitle),
		Description:     firstNonEmpty(req.Description, DefaultCourseDescription),
		Price:           DefaultCoursePrice,
		Thumbnail:       firstNonEmpty(req.Thumbnail, DefaultCourseThumbnail),
		DurationMinutes: DefaultCourseDuration,
		Videos:          []models.CourseVideo{{ID: "", Title: DefaultLessonTitle}},
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.DurationMinutes != nil {
		course.DurationMinutes = *req.DurationMinutes
	}

	if err := s.repo.Upsert(ctx, course); err != nil {
		return nil, internalError(err, "failed to create course")
	}
	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		Actor:      actorIndex(actor),
		Action:     models.AuditActionCoursesSave,
		Resource:   "courses",
		ResourceID: course.ID,
	})
	return course, nil
}

// newCourseID sorts by creation time within the key-ordered catalog.
func (s *CourseService) newCourseID() string {
	return fmt.Sprintf("course-%d-%s", s.now().UnixMilli(), uuid.NewString()[:8])
}

func firstNonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
