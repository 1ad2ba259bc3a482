package repository

import (
	"fmt"

	"gorm.io/gorm"

	"testforge/internal/model"
)

type PromptRepository struct {
	db *gorm.DB
}

func NewPromptRepository(db *gorm.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

func (r *PromptRepository) Create(p *model.StoredPrompt) error {
	if err := r.db.Create(p).Error; err != nil {
		return fmt.Errorf("create stored prompt failed: %w", err)
	}
	return nil
}

// ListByTitle returns stored prompts for a title; feature narrows the result
// when non-empty. Newest first so callers can pick the latest override.
func (r *PromptRepository) ListByTitle(title, feature string) ([]model.StoredPrompt, error) {
	q := r.db.Where("title = ?", title)
	if feature != "" {
		q = q.Where("feature = ?", feature)
	}
	var prompts []model.StoredPrompt
	if err := q.Order("created_at DESC").Find(&prompts).Error; err != nil {
		return nil, fmt.Errorf("list stored prompts failed: %w", err)
	}
	return prompts, nil
}
