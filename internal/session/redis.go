package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists session state in Redis with a sliding TTL.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore. An empty prefix defaults to
// "gull:session"; a non-positive ttl defaults to 30 days.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	trimmed := strings.TrimSpace(prefix)
	if trimmed == "" {
		trimmed = "gull:session"
	}
	trimmed = strings.TrimSuffix(trimmed, ":")
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RedisStore{client: client, prefix: trimmed, ttl: ttl}
}

func (s *RedisStore) sessionKey(sessionID string) string {
	return fmt.Sprintf("%s:auth:%s", s.prefix, sessionID)
}

func (s *RedisStore) impersonationKey(sessionID string) string {
	return fmt.Sprintf("%s:impersonation:%s", s.prefix, sessionID)
}

func (s *RedisStore) set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, payload, s.ttl).Err()
}

func (s *RedisStore) get(ctx context.Context, key string, out interface{}) error {
	payload, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal(payload, out)
}

func (s *RedisStore) SaveSession(ctx context.Context, rec Record) error {
	return s.set(ctx, s.sessionKey(rec.SessionID), rec)
}

func (s *RedisStore) GetSession(ctx context.Context, sessionID string) (*Record, error) {
	var rec Record
	if err := s.get(ctx, s.sessionKey(sessionID), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisStore) DeleteSession(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.sessionKey(sessionID)).Err()
}

func (s *RedisStore) SaveImpersonation(ctx context.Context, imp Impersonation) error {
	return s.set(ctx, s.impersonationKey(imp.SessionID), imp)
}

func (s *RedisStore) GetImpersonation(ctx context.Context, sessionID string) (*Impersonation, error) {
	var imp Impersonation
	if err := s.get(ctx, s.impersonationKey(sessionID), &imp); err != nil {
		return nil, err
	}
	return &imp, nil
}

func (s *RedisStore) DeleteImpersonation(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.impersonationKey(sessionID)).Err()
}
