package repository

import (
	"fmt"

	"gorm.io/gorm"

	"docuchat/internal/model"
)

type TurnRepository struct {
	db *gorm.DB
}

func NewTurnRepository(db *gorm.DB) *TurnRepository {
	return &TurnRepository{db: db}
}

// AppendPair appends the user question and the assistant answer to the
// conversation log in one transaction, question first.
func (r *TurnRepository) AppendPair(sessionID, documentID uint, question, answer string) error {
	turns := []model.ChatTurn{
		{SessionID: sessionID, DocumentID: documentID, Role: "user", Content: question},
		{SessionID: sessionID, DocumentID: documentID, Role: "assistant", Content: answer},
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for i := range turns {
			if err := tx.Create(&turns[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append chat turns failed: %w", err)
	}
	return nil
}

// ListRecent returns the last limit turns for the conversation, oldest first.
func (r *TurnRepository) ListRecent(sessionID, documentID uint, limit int) ([]model.ChatTurn, error) {
	if limit <= 0 {
		limit = 10
	}

	var turns []model.ChatTurn
	err := r.db.
		Where("session_id = ? AND document_id = ?", sessionID, documentID).
		Order("id DESC").
		Limit(limit).
		Find(&turns).Error
	if err != nil {
		return nil, fmt.Errorf("list chat turns failed: %w", err)
	}

	// reverse into chronological order
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}
