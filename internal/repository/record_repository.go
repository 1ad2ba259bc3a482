package repository

import (
	"fmt"

	"gorm.io/gorm"

	"testforge/internal/model"
)

type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Create(record *model.GenerationRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("create generation record failed: %w", err)
	}
	return nil
}

func (r *RecordRepository) ListByProduct(productTitle string, limit int) ([]model.GenerationRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var records []model.GenerationRecord
	err := r.db.
		Where("product_title = ?", productTitle).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list generation records failed: %w", err)
	}
	return records, nil
}
