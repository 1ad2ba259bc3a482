package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"testforge/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// GetByTitle returns the newest document with the given title across
// doc_types, or nil when the title is unknown.
func (r *DocumentRepository) GetByTitle(title string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("title = ?", title).Order("uploaded_at DESC").First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document by title failed: %w", err)
	}
	return &doc, nil
}

// ListTitles returns distinct titles, optionally filtered by doc_type.
func (r *DocumentRepository) ListTitles(docType string) ([]string, error) {
	q := r.db.Model(&model.Document{}).Distinct("title").Order("title ASC")
	if docType != "" {
		q = q.Where("doc_type = ?", docType)
	}
	var titles []string
	if err := q.Pluck("title", &titles).Error; err != nil {
		return nil, fmt.Errorf("list document titles failed: %w", err)
	}
	return titles, nil
}

// ReplaceWithChunks swaps in a new version of (title, doc_type): the
// previous document and its chunks are removed and the new rows written
// in one transaction, so a failed upload never destroys the old
// version. Returns whether a previous version existed.
func (r *DocumentRepository) ReplaceWithChunks(doc *model.Document, chunks []model.DocumentChunk) (bool, error) {
	replaced := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Document
		err := tx.Where("title = ? AND doc_type = ?", doc.Title, doc.DocType).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Where("document_id = ?", existing.ID).Delete(&model.DocumentChunk{}).Error; err != nil {
				return fmt.Errorf("delete previous chunks failed: %w", err)
			}
			if err := tx.Delete(&model.Document{}, existing.ID).Error; err != nil {
				return fmt.Errorf("delete previous document failed: %w", err)
			}
			replaced = true
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return fmt.Errorf("get previous document failed: %w", err)
		}

		if err := tx.Create(doc).Error; err != nil {
			return fmt.Errorf("create document failed: %w", err)
		}
		for i := range chunks {
			chunks[i].DocumentID = doc.ID
		}
		if len(chunks) > 0 {
			if err := tx.Create(&chunks).Error; err != nil {
				return fmt.Errorf("create document chunks failed: %w", err)
			}
		}
		return nil
	})
	return replaced, err
}

// DeleteWithChunks removes the document for (title, doc_type) and its
// chunks in one transaction. Returns false when the title is unknown.
func (r *DocumentRepository) DeleteWithChunks(title, docType string) (bool, error) {
	removed := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var doc model.Document
		if err := tx.Where("title = ? AND doc_type = ?", title, docType).First(&doc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("get document failed: %w", err)
		}
		if err := tx.Where("document_id = ?", doc.ID).Delete(&model.DocumentChunk{}).Error; err != nil {
			return fmt.Errorf("delete document chunks failed: %w", err)
		}
		if err := tx.Delete(&model.Document{}, doc.ID).Error; err != nil {
			return fmt.Errorf("delete document failed: %w", err)
		}
		removed = true
		return nil
	})
	return removed, err
}
