package repository

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
	preferenceKeyPrefix = "portal:pref:"
	roleCacheKeyPrefix  = "portal:roles:"
)

// RedisPreferenceStore keeps preferences in a Redis hash per user.
type RedisPreferenceStore struct {
	client redis.UniversalClient
}

// NewRedisPreferenceStore creates a preference store backed by client.
func NewRedisPreferenceStore(client redis.UniversalClient) *RedisPreferenceStore {
	return &RedisPreferenceStore{client: client}
}

func (s *RedisPreferenceStore) Get(ctx context.Context, userID uuid.UUID, key string) (string, bool, error) {
	value, err := s.client.HGet(ctx, preferenceKeyPrefix+userID.String(), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get preference: %w", err)
	}
	return value, true, nil
}

func (s *RedisPreferenceStore) Set(ctx context.Context, userID uuid.UUID, key, value string) error {
	if err := s.client.HSet(ctx, preferenceKeyPrefix+userID.String(), key, value).Err(); err != nil {
		return fmt.Errorf("redis set preference: %w", err)
	}
	return nil
}

// CachedRoleReader serves role lookups from Redis and falls back to next on a
// miss. Cache errors are treated as misses.
type CachedRoleReader struct {
	next   RoleReader
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCachedRoleReader wraps next with a Redis cache entry per user.
func NewCachedRoleReader(next RoleReader, client redis.UniversalClient, ttl time.Duration) *CachedRoleReader {
	return &CachedRoleReader{next: next, client: client, ttl: ttl}
}

func (c *CachedRoleReader) ListRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	key := roleCacheKeyPrefix + userID.String()

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var roles []string
		if json.Unmarshal(raw, &roles) == nil {
			return roles, nil
		}
	}

	roles, err := c.next.ListRoles(ctx, userID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(roles); err == nil {
		_ = c.client.Set(ctx, key, raw, c.ttl).Err()
	}
	return roles, nil
}

// Invalidate drops the cached roles for userID.
func (c *CachedRoleReader) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, roleCacheKeyPrefix+userID.String()).Err()
}

var (
	_ PreferenceStore = (*RedisPreferenceStore)(nil)
	_ RoleReader      = (*CachedRoleReader)(nil)
)
