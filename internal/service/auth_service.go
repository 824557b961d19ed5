package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/apiwada-admin-api/internal/dto"
	"github.com/noah-isme/apiwada-admin-api/internal/models"
	"github.com/noah-isme/apiwada-admin-api/internal/repository"
	appErrors "github.com/noah-isme/apiwada-admin-api/pkg/errors"
)

type authUserRepository interface {
	FindByContact(ctx context.Context, contact string) (*models.User, error)
	RegisterAdmin(ctx context.Context, profile models.Profile, capabilities []models.Capability) (*models.User, error)
}

type sessionStore interface {
	Create(ctx context.Context, user *models.User) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

type auditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AdminBootstrap describes the console operator ensured at start-up.
type AdminBootstrap struct {
	Contact      string
	Password     string
	Name         string
	Capabilities []string
}

// AuthService provides authentication use cases.
type AuthService struct {
	users     authUserRepository
	sessions  sessionStore
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, sessions sessionStore, audit auditRecorder, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	return &AuthService{users: users, sessions: sessions, audit: audit, validator: validate, logger: logger, config: config}
}

// Login verifies credentials, opens a session and issues an access token bound to it.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	req.Contact = models.NormalizeContact(req.Contact)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}

	user, err := s.users.FindByContact(ctx, req.Contact)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, internalError(err, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	session, err := s.sessions.Create(ctx, user)
	if err != nil {
		return nil, internalError(err, "failed to open session")
	}

	issuedAt := time.Now().UTC()
	token, err := s.generateAccessToken(user, session.ID, issuedAt)
	if err != nil {
		return nil, internalError(err, "failed to create access token")
	}

	s.record(ctx, &models.AuditLog{
		Actor:      user.IndexNumber,
		Action:     models.AuditActionLogin,
		Resource:   "auth",
		ResourceID: session.ID,
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	})

	return &dto.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		SessionID:   session.ID,
		User:        session.User.Public(),
		IssuedAt:    issuedAt,
	}, nil
}

// Logout ends the session referenced by claims.
func (s *AuthService) Logout(ctx context.Context, claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		return internalError(err, "failed to end session")
	}
	s.record(ctx, &models.AuditLog{
		Actor:      claims.IndexNumber,
		Action:     models.AuditActionLogout,
		Resource:   "auth",
		ResourceID: claims.SessionID,
	})
	return nil
}

// Me returns the user snapshot of a live session.
func (s *AuthService) Me(ctx context.Context, sessionID string) (*models.UserView, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
		}
		return nil, internalError(err, "failed to load session")
	}
	view := session.User.Public()
	return &view, nil
}

// ValidateToken parses an access token and checks that its session is still live.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	if _, err := s.sessions.Get(ctx, claims.SessionID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
		}
		return nil, internalError(err, "failed to load session")
	}

	return claims, nil
}

// EnsureAdmin registers the bootstrap operator unless a user with the same contact exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, admin AdminBootstrap) error {
	if admin.Contact == "" || admin.Password == "" {
		s.logger.Info("admin bootstrap skipped: ADMIN_CONTACT or ADMIN_PASSWORD not set")
		return nil
	}

	capabilities := make([]models.Capability, 0, len(admin.Capabilities))
	for _, raw := range admin.Capabilities {
		c := models.Capability(raw)
		if !models.ValidCapability(c) {
			return fmt.Errorf("unknown admin capability %q", raw)
		}
		capabilities = append(capabilities, c)
	}

	existing, err := s.users.FindByContact(ctx, admin.Contact)
	if err == nil {
		s.logger.Info("admin account present", zap.String("index", existing.IndexNumber))
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user, err := s.users.RegisterAdmin(ctx, models.Profile{Name: admin.Name, Contact: admin.Contact, PasswordHash: string(hash)}, capabilities)
	if err != nil {
		return fmt.Errorf("register admin: %w", err)
	}
	s.logger.Info("admin account created", zap.String("index", user.IndexNumber))
	return nil
}

func (s *AuthService) generateAccessToken(user *models.User, sessionID string, issuedAt time.Time) (string, error) {
	claims := &models.JWTClaims{
		IndexNumber:  user.IndexNumber,
		Role:         user.Role,
		Capabilities: user.Capabilities,
		SessionID:    sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.IndexNumber,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}

func (s *AuthService) record(ctx context.Context, log *models.AuditLog) {
	recordAudit(ctx, s.audit, s.logger, log)
}
