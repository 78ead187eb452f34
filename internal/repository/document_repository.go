package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"docuchat/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(documentID uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.First(&doc, documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

// GetByIDAndSessionID looks a document up inside the caller's ownership
// scope. A miss and a foreign document are indistinguishable: both nil.
func (r *DocumentRepository) GetByIDAndSessionID(documentID, sessionID uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("id = ? AND session_id = ?", documentID, sessionID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) ListBySessionID(sessionID uint) ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Where("session_id = ?", sessionID).Order("uploaded_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, nil
}

// MarkProcessed flips the processed flag and records the generated summary.
func (r *DocumentRepository) MarkProcessed(documentID uint, summary string) error {
	err := r.db.Model(&model.Document{}).
		Where("id = ?", documentID).
		Updates(map[string]interface{}{
			"is_processed": true,
			"summary":      summary,
		}).Error
	if err != nil {
		return fmt.Errorf("mark document processed failed: %w", err)
	}
	return nil
}
