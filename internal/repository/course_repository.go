package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"coursegen/internal/model"
)

var ErrRecordNotFound = errors.New("record not found")

// updatableCourseFields are the only columns touched after creation.
var updatableCourseFields = map[string]bool{
	model.FieldQnA:        true,
	model.FieldFlashcards: true,
}

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("create course failed: %w", err)
	}
	return nil
}

func (r *CourseRepository) ListByUserID(ctx context.Context, userID uint) ([]model.CourseSummary, error) {
	list := make([]model.CourseSummary, 0)
	if err := r.db.WithContext(ctx).
		Model(&model.Course{}).
		Select("id", "title").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list courses failed: %w", err)
	}
	return list, nil
}

func (r *CourseRepository) GetByIDAndUserID(ctx context.Context, id string, userID uint) (*model.Course, error) {
	var course model.Course
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course failed: %w", err)
	}
	return &course, nil
}

// UpdateFields writes a partial update keyed by id. Each call is independent;
// concurrent readers may see the row before or after it lands.
func (r *CourseRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	for name := range fields {
		if !updatableCourseFields[name] {
			return fmt.Errorf("update course failed: field %q is not updatable", name)
		}
	}

	result := r.db.WithContext(ctx).Model(&model.Course{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update course failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
