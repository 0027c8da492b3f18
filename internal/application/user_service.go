package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// UserRepository captures the persistence operations needed by the user service.
type UserRepository interface {
	UpsertUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
}

// UserService maintains the directory of identity-provider profiles.
type UserService struct {
	users  UserRepository
	logger *slog.Logger
}

// NewUserService wires dependencies for the user directory.
func NewUserService(users UserRepository) *UserService {
	return NewUserServiceWithLogger(users, nil)
}

// NewUserServiceWithLogger constructs a UserService with a specified logger.
func NewUserServiceWithLogger(users UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: defaultLogger(logger)}
}

// UpsertUser creates or refreshes the profile row for the externally
// authenticated identity. The write is a single atomic upsert with
// last-write-wins semantics; repeating it with different profile data is
// not an error.
func (s *UserService) UpsertUser(ctx context.Context, profile UserProfile) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	if strings.TrimSpace(profile.UserID) == "" {
		return User{}, ErrBadRequest
	}

	user := User{
		UserID:      strings.TrimSpace(profile.UserID),
		Username:    strings.TrimSpace(profile.Username),
		MailAddress: strings.ToLower(strings.TrimSpace(profile.MailAddress)),
	}

	if err := s.users.UpsertUser(ctx, user); err != nil {
		return User{}, err
	}

	serviceLogger(ctx, s.logger, "UserService", "UpsertUser", "user_id", user.UserID).
		InfoContext(ctx, "user profile upserted")

	return user, nil
}

// GetUser resolves a stored profile by external identity.
func (s *UserService) GetUser(ctx context.Context, id string) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return User{}, mapRepoError(err)
	}

	return user, nil
}
