package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"coursegen/internal/model"
)

type EnrichmentEventRepository struct {
	db *gorm.DB
}

func NewEnrichmentEventRepository(db *gorm.DB) *EnrichmentEventRepository {
	return &EnrichmentEventRepository{db: db}
}

func (r *EnrichmentEventRepository) Create(ctx context.Context, event *model.EnrichmentEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create enrichment event failed: %w", err)
	}
	return nil
}

// ListByCourseID returns the events of one course, oldest first.
func (r *EnrichmentEventRepository) ListByCourseID(ctx context.Context, courseID string, userID uint) ([]model.EnrichmentEvent, error) {
	list := make([]model.EnrichmentEvent, 0)
	if err := r.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list enrichment events failed: %w", err)
	}
	return list, nil
}
