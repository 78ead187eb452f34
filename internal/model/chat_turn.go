package model

import "time"

// ChatTurn is one message in the append-only conversation log keyed by
// (session, document).
type ChatTurn struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SessionID  uint      `gorm:"not null;index:idx_chat_turns_conversation" json:"session_id"`
	Session    *Session  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	DocumentID uint      `gorm:"not null;index:idx_chat_turns_conversation" json:"document_id"`
	Document   *Document `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Role       string    `gorm:"size:16;not null" json:"role"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
