// Package otp stores one-time codes and password-reset grants.
package otp

import (
	"context"
	"errors"
	"time"

	"tracker_server/core/domain"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	codeKeyPrefix  = "otp:code:"
	grantKeyPrefix = "otp:reset:"
)

// RedisStore keeps OTP records in Redis so every API instance sees them.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, rec *domain.OTPRecord, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, codeKeyPrefix+rec.Email, data, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, email string) (*domain.OTPRecord, error) {
	data, err := s.client.Get(ctx, codeKeyPrefix+email).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec domain.OTPRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, codeKeyPrefix+email).Err()
}

func (s *RedisStore) GrantReset(ctx context.Context, email string, ttl time.Duration) error {
	return s.client.Set(ctx, grantKeyPrefix+email, "1", ttl).Err()
}

// ConsumeReset uses GETDEL so two concurrent resets cannot share one grant.
func (s *RedisStore) ConsumeReset(ctx context.Context, email string) (bool, error) {
	err := s.client.GetDel(ctx, grantKeyPrefix+email).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
