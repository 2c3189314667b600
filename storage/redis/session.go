package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"ridebook/config"
	"ridebook/pkg/logger"
	"ridebook/storage"
)

type sessionStore struct {
	rdb *goredis.Client
	log logger.ILogger
}

func New(ctx context.Context, cfg config.Config, log logger.ILogger) (storage.ISessionStorage, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect Redis", logger.Error(err))
		_ = rdb.Close()
		return nil, err
	}

	log.Info("Redis connected")
	return NewSessionStore(rdb, log), nil
}

func NewSessionStore(rdb *goredis.Client, log logger.ILogger) storage.ISessionStorage {
	return &sessionStore{rdb: rdb, log: log}
}

func sessionKey(userID string) string {
	return "session:" + userID
}

func (s *sessionStore) Save(ctx context.Context, userID, jti string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, sessionKey(userID), jti, ttl).Err(); err != nil {
		s.log.Error("failed to save session", logger.String("user_id", userID), logger.Error(err))
		return err
	}
	return nil
}

// Active returns the current token id, or "" when the user has no session.
func (s *sessionStore) Active(ctx context.Context, userID string) (string, error) {
	jti, err := s.rdb.Get(ctx, sessionKey(userID)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	return jti, err
}

func (s *sessionStore) Delete(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, sessionKey(userID)).Err()
}

func (s *sessionStore) Close() error {
	return s.rdb.Close()
}
