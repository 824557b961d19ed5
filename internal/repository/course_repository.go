package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/apiwada-admin-api/internal/models"
	"github.com/noah-isme/apiwada-admin-api/pkg/docstore"
)

// CollectionCourses stores one document per course keyed by id.
const CollectionCourses = "courses"

// CourseRepository persists the course catalog.
type CourseRepository struct {
	store docstore.Store
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(store docstore.Store) *CourseRepository {
	return &CourseRepository{store: store}
}

// List returns the catalog ordered by course id. An empty store yields an empty catalog.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	docs, err := r.store.List(ctx, CollectionCourses)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	courses, err := docstore.DecodeAll[models.Course](docs)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// Save replaces the whole catalog with courses.
func (r *CourseRepository) Save(ctx context.Context, courses []models.Course) error {
	docs := make(map[string]interface{}, len(courses))
	for _, c := range courses {
		docs[c.ID] = c
	}
	if err := r.store.ReplaceAll(ctx, CollectionCourses, docs); err != nil {
		return fmt.Errorf("save courses: %w", err)
	}
	return nil
}

// Upsert writes a single course document.
func (r *CourseRepository) Upsert(ctx context.Context, course *models.Course) error {
	if err := r.store.Put(ctx, CollectionCourses, course.ID, course); err != nil {
		return fmt.Errorf("upsert course %s: %w", course.ID, err)
	}
	return nil
}
