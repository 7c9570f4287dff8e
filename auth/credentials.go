package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stocks-trader/errs"
	"stocks-trader/models"
	"stocks-trader/repository"
)

// ErrInvalidCredentials is returned for both unknown users and wrong passwords.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", errs.ErrUnauthorized)

const maxUsernameLen = 80

type Store struct {
	users repository.UsersRepository
}

func NewStore(users repository.UsersRepository) *Store {
	return &Store{users: users}
}

func (s *Store) Register(ctx context.Context, username, password string) (*models.User, error) {
	const op = "auth.Register"

	username = strings.TrimSpace(username)
	if username == "" || len(username) > maxUsernameLen {
		return nil, fmt.Errorf("%s: %w: username must be 1-%d characters", op, errs.ErrInvalidArgument, maxUsernameLen)
	}
	if password == "" {
		return nil, fmt.Errorf("%s: %w: password is required", op, errs.ErrInvalidArgument)
	}

	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%s: %w: username %q", op, errs.ErrConflict, username)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	salt, hash, err := GenerateHash(password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := &models.User{
		Username:     username,
		Salt:         salt,
		PasswordHash: hash,
	}

	// The unique index still guards against a concurrent registration.
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Store) Verify(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth.Verify: %w", err)
	}

	if !CheckHash(password, user.Salt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// UpdatePassword replaces salt and digest. The caller's session is the proof of identity.
func (s *Store) UpdatePassword(ctx context.Context, userID uint, newPassword string) error {
	const op = "auth.UpdatePassword"

	if newPassword == "" {
		return fmt.Errorf("%s: %w: new password is required", op, errs.ErrInvalidArgument)
	}

	salt, hash, err := GenerateHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.users.UpdatePassword(ctx, userID, salt, hash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) User(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}
