package models

// CourseVideo is one lesson of a course.
type CourseVideo struct {
	ID    string `json:"id"`
	Title string `json:"title" validate:"required"`
}

// Course is the document stored at courses/<id>.
type Course struct {
	ID              string        `json:"id" validate:"required"`
	Title           string        `json:"title" validate:"required"`
	Description     string        `json:"description"`
	Price           int           `json:"price" validate:"gte=0"`
	Thumbnail       string        `json:"thumbnail"`
	DurationMinutes int           `json:"durationMinutes" validate:"gte=0"`
	Videos          []CourseVideo `json:"videos" validate:"dive"`
}
