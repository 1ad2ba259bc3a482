package repository

import (
	"fmt"

	"gorm.io/gorm"

	"testforge/internal/model"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create appends a feedback entry. There is no update or delete path; newer
// entries supersede older ones for the same key.
func (r *FeedbackRepository) Create(fb *model.Feedback) error {
	if err := r.db.Create(fb).Error; err != nil {
		return fmt.Errorf("create feedback failed: %w", err)
	}
	return nil
}

// ListByKey returns the most recent `limit` entries for (productTitle,
// feature), ordered oldest to newest so callers can weight recency.
func (r *FeedbackRepository) ListByKey(productTitle, feature string, limit int) ([]model.Feedback, error) {
	if limit <= 0 {
		limit = 3
	}
	var entries []model.Feedback
	err := r.db.
		Where("product_title = ? AND feature = ?", productTitle, feature).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list feedback failed: %w", err)
	}
	// Reverse into oldest-first order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
