package model

import "time"

type Document struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   uint      `gorm:"not null;index" json:"session_id"`
	Session     *Session  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Filename    string    `gorm:"size:256;not null" json:"filename"`
	StoragePath string    `gorm:"size:512;not null" json:"-"`
	Summary     string    `gorm:"type:text" json:"summary,omitempty"`
	IsProcessed bool      `gorm:"not null;default:false" json:"is_processed"`
	UploadedAt  time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}
