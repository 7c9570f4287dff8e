package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"stocks-trader/errs"
)

func TestIssueParseRevoke(t *testing.T) {
	ctx := context.Background()
	m := NewManager("test_secret", time.Hour, NewMemoryStore())

	token, issued, err := m.Issue(ctx, 42)
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	claims, err := m.Parse(ctx, token)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if claims.ID != issued.ID {
		t.Errorf("Parse() session id = %q, want %q", claims.ID, issued.ID)
	}
	if id, err := claims.UserID(); err != nil || id != 42 {
		t.Errorf("UserID() = %d, %v, want 42", id, err)
	}

	if err := m.Revoke(ctx, claims); err != nil {
		t.Fatalf("Revoke() unexpected error: %v", err)
	}
	if _, err := m.Parse(ctx, token); !errors.Is(err, errs.ErrUnauthorized) {
		t.Errorf("Parse() after revoke error = %v, want ErrUnauthorized", err)
	}
}

func TestParseRejects(t *testing.T) {
	ctx := context.Background()
	m := NewManager("test_secret", time.Hour, NewMemoryStore())

	token, _, _ := m.Issue(ctx, 1)

	t.Run("wrong_secret", func(t *testing.T) {
		other := NewManager("another_secret", time.Hour, m.store)
		if _, err := other.Parse(ctx, token); !errors.Is(err, errs.ErrUnauthorized) {
			t.Errorf("Parse() error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.Parse(ctx, "not-a-token"); !errors.Is(err, errs.ErrUnauthorized) {
			t.Errorf("Parse() error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		late := NewManager("test_secret", time.Hour, m.store)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		if _, err := late.Parse(ctx, token); !errors.Is(err, errs.ErrUnauthorized) {
			t.Errorf("Parse() error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("unknown_session", func(t *testing.T) {
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
			ID:        "forged",
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test_secret"))
		if _, err := m.Parse(ctx, forged); !errors.Is(err, errs.ErrUnauthorized) {
			t.Errorf("Parse() error = %v, want ErrUnauthorized", err)
		}
	})
}
