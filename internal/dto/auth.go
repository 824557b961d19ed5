package dto

import (
	"time"

	"github.com/noah-isme/apiwada-admin-api/internal/models"
)

// RegisterRequest is the student self-registration payload.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Contact  string `json:"contact" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	School   string `json:"school"`
	Birthday string `json:"birthday"`
	ExamYear string `json:"examYear" validate:"required"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Contact   string `json:"contact" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the access token and the signed-in user.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresIn   int64           `json:"expires_in"`
	SessionID   string          `json:"session_id"`
	User        models.UserView `json:"user"`
	IssuedAt    time.Time       `json:"issued_at"`
}

// WatchTimeRequest adds viewing minutes to one of the caller's courses.
type WatchTimeRequest struct {
	CourseID string `json:"courseId" validate:"required"`
	Minutes  int    `json:"minutes" validate:"required,gt=0"`
}
