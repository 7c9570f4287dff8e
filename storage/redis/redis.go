package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"stocks-trader/config"
	"stocks-trader/quotes"
)

// New connects to redis and checks the connection with a PING.
func New(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("storage/redis: ping %s: %w", cfg.Addr, err)
	}

	return rdb, nil
}

const sessionPrefix = "session:"

// SessionStore keeps active session ids with their expiry in redis.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func (s *SessionStore) Save(ctx context.Context, id string, userID uint, ttl time.Duration) error {
	return s.rdb.Set(ctx, sessionPrefix+id, strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

func (s *SessionStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.rdb.Exists(ctx, sessionPrefix+id).Result()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionPrefix+id).Err()
}

// QuoteCache is the redis backend of the quote client cache.
type QuoteCache struct {
	rdb *redis.Client
}

var _ quotes.Cache = (*QuoteCache)(nil)

func NewQuoteCache(rdb *redis.Client) *QuoteCache {
	return &QuoteCache{rdb: rdb}
}

func (c *QuoteCache) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, quotes.ErrCacheMiss
		}
		return nil, err
	}

	return raw, nil
}

func (c *QuoteCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}
