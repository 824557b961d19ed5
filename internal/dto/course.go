package dto

import "github.com/noah-isme/apiwada-admin-api/internal/models"

// SaveCoursesRequest replaces the entire catalog.
type SaveCoursesRequest struct {
	Courses []models.Course `json:"courses" validate:"dive"`
}

// CreateCourseRequest drafts a new course. Omitted fields take the catalog defaults.
type CreateCourseRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Price           *int   `json:"price" validate:"omitempty,gte=0"`
	Thumbnail       string `json:"thumbnail"`
	DurationMinutes *int   `json:"durationMinutes" validate:"omitempty,gte=0"`
}
