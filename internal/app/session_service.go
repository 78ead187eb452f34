package app

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"docuchat/internal/model"
)

const sessionTokenBytes = 32 // 64 hex characters on the wire

// SessionService owns the anonymous session lifecycle: minting, sliding
// expiration and destruction. Every request-scoped operation elsewhere takes
// a session id this service has vouched for.
type SessionService struct {
	sessions SessionStore
	ttl      time.Duration
}

func NewSessionService(sessions SessionStore, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionService{sessions: sessions, ttl: ttl}
}

// ValidateOrCreate resolves the cookie token to a live session. A valid token
// bumps last activity and slides the expiration; anything else mints a fresh
// session with a new unguessable token. Never a hard auth failure.
func (s *SessionService) ValidateOrCreate(token string) (*model.Session, error) {
	now := time.Now()

	if token != "" {
		session, err := s.sessions.GetByToken(token)
		if err != nil {
			return nil, err
		}
		if session != nil && session.Valid(now) {
			expiresAt := now.Add(s.ttl)
			if err := s.sessions.Touch(session.ID, now, expiresAt); err != nil {
				return nil, err
			}
			session.LastActivity = now
			session.ExpiresAt = expiresAt
			return session, nil
		}
	}

	return s.create(now)
}

// Extend resets the expiration to now+TTL (sliding window).
func (s *SessionService) Extend(sessionID uint) (*model.Session, error) {
	session, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	now := time.Now()
	expiresAt := now.Add(s.ttl)
	if err := s.sessions.Touch(session.ID, now, expiresAt); err != nil {
		return nil, err
	}
	session.LastActivity = now
	session.ExpiresAt = expiresAt
	return session, nil
}

// Destroy deletes the session row; owned documents, jobs and turns cascade
// away at the storage layer. Returns whether a row existed.
func (s *SessionService) Destroy(sessionID uint) (bool, error) {
	return s.sessions.DeleteByID(sessionID)
}

func (s *SessionService) create(now time.Time) (*model.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	session := &model.Session{
		Token:        token,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func generateToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token failed: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
