package repository

import (
	"fmt"

	"gorm.io/gorm"

	"testforge/internal/model"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// ListByDocumentID returns all chunks for the document in positional order.
// Chunk writes go through DocumentRepository.ReplaceWithChunks so a
// document and its chunks change together.
func (r *ChunkRepository) ListByDocumentID(documentID uint) ([]model.DocumentChunk, error) {
	var chunks []model.DocumentChunk
	if err := r.db.Where("document_id = ?", documentID).Order("position ASC").Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list document chunks failed: %w", err)
	}
	return chunks, nil
}
