package dto

import "github.com/noah-isme/apiwada-admin-api/internal/models"

// UpdateStudentRequest replaces the editable fields of a student record.
type UpdateStudentRequest struct {
	Name          string         `json:"name" validate:"required"`
	Contact       string         `json:"contact" validate:"required"`
	School        string         `json:"school"`
	Birthday      string         `json:"birthday"`
	ExamYear      string         `json:"examYear"`
	ActiveCourses []string       `json:"activeCourses"`
	Marks         []models.Mark  `json:"marks"`
	WatchTime     map[string]int `json:"watchTime"`
}

// AddMarkRequest records an exam result. An empty label is numbered automatically.
type AddMarkRequest struct {
	Label string `json:"label"`
	Score *int   `json:"score" validate:"required"`
}

// ResetPasswordRequest sets a new password for a student.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// ExportRequest selects the roster format.
type ExportRequest struct {
	Format string `json:"format" validate:"omitempty,oneof=csv pdf xlsx"`
}
