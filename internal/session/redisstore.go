package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/telecomplus/contratos/internal/config"
	"github.com/telecomplus/contratos/internal/models"
)

const redisSessionKey = "telecomplus:session"

// RedisStore persists the session in redis so that several front-end
// processes share one credential. The rolling TTL is enforced by the key
// expiration.
type RedisStore struct {
	db  *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, cfg config.RedisConnection, ttl time.Duration) (*RedisStore, error) {
	const op = "session.NewRedisStore"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &RedisStore{db: db, ttl: ttl}, nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, token string, user models.Usuario) error {
	const op = "session.RedisStore.Save"
	rec := Record{
		Token:     token,
		Usuario:   user,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.db.Set(ctx, redisSessionKey, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context) (Record, bool, error) {
	const op = "session.RedisStore.Load"
	val, err := s.db.Get(ctx, redisSessionKey).Result()
	if err == redis.Nil {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("%s: %w", op, err)
	}
	var rec Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		_ = s.db.Del(ctx, redisSessionKey).Err()
		return Record{}, false, nil
	}
	if rec.Expired(time.Now()) {
		_ = s.db.Del(ctx, redisSessionKey).Err()
		return Record{}, false, nil
	}
	return rec, true, nil
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context) error {
	const op = "session.RedisStore.Clear"
	if err := s.db.Del(ctx, redisSessionKey).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
