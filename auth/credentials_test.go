package auth_test

import (
	"context"
	"errors"
	"testing"

	"stocks-trader/auth"
	"stocks-trader/database"
	"stocks-trader/errs"
	"stocks-trader/repository"
)

func newStore(t *testing.T) *auth.Store {
	return auth.NewStore(repository.NewUsersRepository(database.OpenTest(t)))
}

func TestRegisterAndVerify(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	user, err := s.Register(ctx, "alice", "pass1234")
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	if user.ID == 0 || user.Salt == "" || user.PasswordHash == "" {
		t.Fatalf("Register() = %+v, want persisted user with salt and hash", user)
	}
	if user.PasswordHash == "pass1234" {
		t.Error("password stored in clear")
	}

	got, err := s.Verify(ctx, "alice", "pass1234")
	if err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("Verify() user id = %d, want %d", got.ID, user.ID)
	}

	t.Run("wrong_password", func(t *testing.T) {
		if _, err := s.Verify(ctx, "alice", "pass12345"); !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("Verify() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown_user", func(t *testing.T) {
		_, err := s.Verify(ctx, "bob", "pass1234")
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("Verify() error = %v, want ErrInvalidCredentials", err)
		}
		if !errors.Is(err, errs.ErrUnauthorized) {
			t.Errorf("Verify() error = %v, want it to be ErrUnauthorized", err)
		}
	})
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	if _, err := s.Register(ctx, "alice", "first"); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	if _, err := s.Register(ctx, "alice", "second"); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("Register() duplicate error = %v, want ErrConflict", err)
	}

	if _, err := s.Verify(ctx, "alice", "first"); err != nil {
		t.Errorf("original credentials no longer valid: %v", err)
	}
	if _, err := s.Verify(ctx, "alice", "second"); err == nil {
		t.Error("duplicate registration overwrote the password")
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newStore(t)

	if _, err := s.Register(context.Background(), " ", "x"); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Errorf("Register() empty username error = %v, want ErrInvalidArgument", err)
	}
	if _, err := s.Register(context.Background(), "carol", ""); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Errorf("Register() empty password error = %v, want ErrInvalidArgument", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	user, _ := s.Register(ctx, "dave", "old")

	if err := s.UpdatePassword(ctx, user.ID, "new"); err != nil {
		t.Fatalf("UpdatePassword() unexpected error: %v", err)
	}

	if _, err := s.Verify(ctx, "dave", "old"); err == nil {
		t.Error("old password still valid after update")
	}
	if _, err := s.Verify(ctx, "dave", "new"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}

	if err := s.UpdatePassword(ctx, user.ID, ""); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Errorf("UpdatePassword() empty error = %v, want ErrInvalidArgument", err)
	}
	if err := s.UpdatePassword(ctx, 9999, "x"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("UpdatePassword() unknown user error = %v, want ErrNotFound", err)
	}
}
