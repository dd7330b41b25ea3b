package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix = "user:"
)

// RedisStore はユーザーを Redis に JSON で保存します。
type RedisStore struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRedisStore は RedisStore を作成します。
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		now: time.Now,
	}
}

// FindByUsername はユーザー情報を取得します。
func (s *RedisStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	data, err := s.rdb.Get(ctx, userKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, unavailable(err)
	}
	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decode user %q: %w", username, err)
	}
	return &user, nil
}

// Create は SETNX でユーザーを登録します。キーが既にあれば ErrDuplicateUsername です。
func (s *RedisStore) Create(ctx context.Context, username, passwordHash string) (*User, error) {
	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}

	created, err := s.rdb.SetNX(ctx, userKey(username), payload, 0).Result()
	if err != nil {
		return nil, unavailable(err)
	}
	if !created {
		return nil, ErrDuplicateUsername
	}
	return user, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func userKey(username string) string {
	return userKeyPrefix + username
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
