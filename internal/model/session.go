package model

import "time"

// Session is an anonymous, cookie-carried ownership scope. Everything a
// visitor uploads or asks hangs off one of these rows.
type Session struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Token        string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	ExpiresAt    time.Time `gorm:"index" json:"expires_at"`
}

// Valid reports whether the session has not yet expired.
func (s *Session) Valid(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
