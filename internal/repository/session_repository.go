package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"docuchat/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(session *model.Session) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("create session failed: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByToken(token string) (*model.Session, error) {
	var session model.Session
	if err := r.db.Where("token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session by token failed: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) GetByID(sessionID uint) (*model.Session, error) {
	var session model.Session
	if err := r.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session failed: %w", err)
	}
	return &session, nil
}

// Touch bumps last activity and slides expiration in one write.
func (r *SessionRepository) Touch(sessionID uint, lastActivity, expiresAt time.Time) error {
	err := r.db.Model(&model.Session{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"last_activity": lastActivity,
			"expires_at":    expiresAt,
		}).Error
	if err != nil {
		return fmt.Errorf("touch session failed: %w", err)
	}
	return nil
}

// ListExpired returns all sessions whose expiration is before now.
func (r *SessionRepository) ListExpired(now time.Time) ([]model.Session, error) {
	var sessions []model.Session
	if err := r.db.Where("expires_at < ?", now).Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list expired sessions failed: %w", err)
	}
	return sessions, nil
}

// DeleteByID removes the session row. Documents, jobs and chat turns go with
// it through the foreign-key cascade. Returns whether a row existed.
func (r *SessionRepository) DeleteByID(sessionID uint) (bool, error) {
	res := r.db.Delete(&model.Session{}, sessionID)
	if res.Error != nil {
		return false, fmt.Errorf("delete session failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
