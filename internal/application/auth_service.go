package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionRepository captures the persistence interactions for issued sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, token string) (Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// AuthService issues and validates sessions for users who completed a
// federated login. There are no passwords here; the OAuth providers own
// credential verification.
type AuthService struct {
	sessions       SessionRepository
	users          UserDirectory
	adminUserID    string
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(sessions SessionRepository, users UserDirectory, adminUserID string, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(sessions, users, adminUserID, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(sessions SessionRepository, users UserDirectory, adminUserID string, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		sessions:       sessions,
		users:          users,
		adminUserID:    adminUserID,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// IssueSession creates a session for a user whose identity the OAuth
// callback has just confirmed. Expired sessions are swept opportunistically.
func (s *AuthService) IssueSession(ctx context.Context, userID string) (Session, error) {
	if s == nil {
		return Session{}, fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return Session{}, fmt.Errorf("session repository not configured")
	}
	if userID == "" {
		return Session{}, ErrForbidden
	}

	now := s.now()
	session := Session{
		Token:     s.tokenGenerator(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if err := s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
		return Session{}, err
	}

	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return Session{}, err
	}

	s.loggerWith(ctx, "IssueSession", "user_id", userID).InfoContext(ctx, "session issued")

	return session, nil
}

// ValidateSession resolves a token to the acting principal. Expired sessions
// fail with ErrSessionExpired, unknown tokens with ErrNotFound.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (Principal, error) {
	if s == nil {
		return Principal{}, fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return Principal{}, fmt.Errorf("session repository not configured")
	}
	if token == "" {
		return Principal{}, ErrNotFound
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if isNotFoundError(err) {
			return Principal{}, ErrNotFound
		}
		return Principal{}, err
	}

	if !session.ExpiresAt.After(s.now()) {
		return Principal{}, ErrSessionExpired
	}

	return Principal{
		UserID:  session.UserID,
		IsAdmin: s.adminUserID != "" && session.UserID == s.adminUserID,
	}, nil
}

// RevokeSession deletes a session token. Revoking an unknown token is a no-op.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}
	if token == "" {
		return nil
	}

	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		if isNotFoundError(err) {
			return nil
		}
		return err
	}

	s.loggerWith(ctx, "RevokeSession").InfoContext(ctx, "session revoked")

	return nil
}
