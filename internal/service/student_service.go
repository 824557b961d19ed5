package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/apiwada-admin-api/internal/dto"
	"github.com/noah-isme/apiwada-admin-api/internal/models"
	appErrors "github.com/noah-isme/apiwada-admin-api/pkg/errors"
)

type studentRepository interface {
	Register(ctx context.Context, profile models.Profile) (*models.User, error)
	FindByContact(ctx context.Context, contact string) (*models.User, error)
	FindByIndex(ctx context.Context, index string) (*models.User, error)
	ListStudents(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// StudentService implements student registration and the console's student management.
type StudentService struct {
	users     studentRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs a StudentService.
func NewStudentService(users studentRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{users: users, audit: audit, validator: validate, logger: logger, now: time.Now}
}

// Register creates a student account. The index number is allocated by the repository.
func (s *StudentService) Register(ctx context.Context, req dto.RegisterRequest) (*models.UserView, error) {
	req.Contact = models.NormalizeContact(req.Contact)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid registration payload")
	}

	if _, err := s.users.FindByContact(ctx, req.Contact); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "contact already registered")
	} else if !isNotFound(err) {
		return nil, internalError(err, "failed to check contact")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internalError(err, "failed to hash password")
	}

	user, err := s.users.Register(ctx, models.Profile{
		Name:         strings.TrimSpace(req.Name),
		Contact:      req.Contact,
		PasswordHash: string(hash),
		School:       req.School,
		Birthday:     req.Birthday,
		ExamYear:     req.ExamYear,
	})
	if err != nil {
		return nil, internalError(err, "failed to register student")
	}

	s.logger.Info("student registered", zap.String("index", user.IndexNumber))
	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		Actor:      user.IndexNumber,
		Action:     models.AuditActionRegister,
		Resource:   "student",
		ResourceID: user.IndexNumber,
	})
	view := user.Public()
	return &view, nil
}

// List returns students whose name, index number or contact contains search, ignoring case.
func (s *StudentService) List(ctx context.Context, search string) ([]models.UserView, *models.Pagination, error) {
	students, err := s.users.ListStudents(ctx)
	if err != nil {
		return nil, nil, internalError(err, "failed to list students")
	}

	needle := strings.ToLower(strings.TrimSpace(search))
	if needle != "" {
		students = lo.Filter(students, func(u models.User, _ int) bool {
			return strings.Contains(strings.ToLower(u.Name), needle) ||
				strings.Contains(strings.ToLower(u.IndexNumber), needle) ||
				strings.Contains(strings.ToLower(u.Contact), needle)
		})
	}

	views := lo.Map(students, func(u models.User, _ int) models.UserView { return u.Public() })
	return views, &models.Pagination{Page: 1, PageSize: len(views), TotalCount: len(views)}, nil
}

// Get returns one student.
func (s *StudentService) Get(ctx context.Context, index string) (*models.UserView, error) {
	user, err := s.load(ctx, index)
	if err != nil {
		return nil, err
	}
	view := user.Public()
	return &view, nil
}

// Update replaces the editable fields of a student record. Concurrent edits are not merged.
func (s *StudentService) Update(ctx context.Context, actor *models.JWTClaims, index string, req dto.UpdateStudentRequest) (*models.UserView, error) {
	req.Contact = models.NormalizeContact(req.Contact)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	user, err := s.load(ctx, index)
	if err != nil {
		return nil, err
	}
	if holder, err := s.users.FindByContact(ctx, req.Contact); err == nil && holder.IndexNumber != user.IndexNumber {
		return nil, appErrors.Clone(appErrors.ErrConflict, "contact already registered")
	} else if err != nil && !isNotFound(err) {
		return nil, internalError(err, "failed to check contact")
	}

	user.Name = req.Name
	user.Contact = req.Contact
	user.School = req.School
	user.Birthday = req.Birthday
	user.ExamYear = req.ExamYear
	user.ActiveCourses = lo.Uniq(lo.Compact(req.ActiveCourses))
	user.Marks = req.Marks
	if user.Marks == nil {
		user.Marks = []models.Mark{}
	}
	user.WatchTime = req.WatchTime
	if user.WatchTime == nil {
		user.WatchTime = map[string]int{}
	}

	return s.save(ctx, actor, user, models.AuditActionUserUpdate)
}

// AddMark appends an exam result. An empty label becomes "Exam N" where N is the new mark count.
func (s *StudentService) AddMark(ctx context.Context, actor *models.JWTClaims, index string, req dto.AddMarkRequest) (*models.UserView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid mark payload")
	}
	user, err := s.load(ctx, index)
	if err != nil {
		return nil, err
	}

	label := strings.TrimSpace(req.Label)
	if label == "" {
		label = fmt.Sprintf("Exam %d", len(user.Marks)+1)
	}
	user.Marks = append(user.Marks, models.Mark{
		Label: label,
		Score: *req.Score,
		Date:  s.now().UTC().Format(time.RFC3339),
	})

	return s.save(ctx, actor, user, models.AuditActionUserUpdate)
}

// ResetPassword replaces the student's password hash.
func (s *StudentService) ResetPassword(ctx context.Context, actor *models.JWTClaims, index string, req dto.ResetPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid password payload")
	}
	user, err := s.load(ctx, index)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return internalError(err, "failed to hash password")
	}
	user.PasswordHash = string(hash)

	_, err = s.save(ctx, actor, user, models.AuditActionPasswordReset)
	return err
}

// ToggleCourse grants courseID when the student lacks it and revokes it otherwise.
func (s *StudentService) ToggleCourse(ctx context.Context, actor *models.JWTClaims, index, courseID string) (*models.UserView, error) {
	if strings.TrimSpace(courseID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course id required")
	}
	user, err := s.load(ctx, index)
	if err != nil {
		return nil, err
	}

	if user.HasCourse(courseID) {
		user.ActiveCourses = lo.Without(user.ActiveCourses, courseID)
	} else {
		user.ActiveCourses = append(user.ActiveCourses, courseID)
	}

	return s.save(ctx, actor, user, models.AuditActionUserUpdate)
}

// RecordWatchTime adds minutes to the caller's own viewing total for a course they hold.
func (s *StudentService) RecordWatchTime(ctx context.Context, actor *models.JWTClaims, req dto.WatchTimeRequest) (*models.UserView, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid watch time payload")
	}
	user, err := s.users.FindByIndex(ctx, actor.IndexNumber)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, internalError(err, "failed to load user")
	}
	if user.Role == models.RoleStudent && !user.HasCourse(req.CourseID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "course not active for this student")
	}

	user.WatchTime[req.CourseID] += req.Minutes
	if err := s.users.Update(ctx, user); err != nil {
		return nil, internalError(err, "failed to record watch time")
	}
	view := user.Public()
	return &view, nil
}

func (s *StudentService) load(ctx context.Context, index string) (*models.User, error) {
	user, err := s.users.FindByIndex(ctx, index)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, internalError(err, "failed to load student")
	}
	if user.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return user, nil
}

func (s *StudentService) save(ctx context.Context, actor *models.JWTClaims, user *models.User, action string) (*models.UserView, error) {
	if err := s.users.Update(ctx, user); err != nil {
		return nil, internalError(err, "failed to update student")
	}
	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		Actor:      actorIndex(actor),
		Action:     action,
		Resource:   "student",
		ResourceID: user.IndexNumber,
	})
	view := user.Public()
	return &view, nil
}
