package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"stocks-trader/errs"
)

type Claims struct {
	jwt.RegisteredClaims
}

// UserID returns the numeric user id carried in the subject.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad subject %q", errs.ErrUnauthorized, c.Subject)
	}

	return uint(id), nil
}

// Manager issues HS256 session tokens and tracks them in a Store so logout
// takes effect before expiry.
type Manager struct {
	secret []byte
	ttl    time.Duration
	store  Store
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration, store Store) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		store:  store,
		now:    time.Now,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) Issue(ctx context.Context, userID uint) (string, *Claims, error) {
	const op = "session.Issue"

	now := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("%s: sign: %w", op, err)
	}

	if err := m.store.Save(ctx, claims.ID, userID, m.ttl); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	return token, claims, nil
}

func (m *Manager) Parse(ctx context.Context, token string) (*Claims, error) {
	const op = "session.Parse"

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%s: %w: %v", op, errs.ErrUnauthorized, err)
	}

	if claims.ID == "" {
		return nil, fmt.Errorf("%s: %w: missing session id", op, errs.ErrUnauthorized)
	}

	active, err := m.store.Exists(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !active {
		return nil, fmt.Errorf("%s: %w: session revoked", op, errs.ErrUnauthorized)
	}

	return claims, nil
}

func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil {
		return errors.New("session.Revoke: nil claims")
	}

	if err := m.store.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("session.Revoke: %w", err)
	}

	return nil
}
