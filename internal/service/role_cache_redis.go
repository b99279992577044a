package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// RedisRoleCacheStore stores role names as a redis set per user. Keys carry
// a hash of the user name.
type RedisRoleCacheStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisRoleCacheStore(client redis.UniversalClient, prefix string) *RedisRoleCacheStore {
	if prefix == "" {
		prefix = "role_cache"
	}
	return &RedisRoleCacheStore{client: client, prefix: prefix}
}

func (s *RedisRoleCacheStore) Get(ctx context.Context, userName string) ([]string, bool, error) {
	key := s.key(userName)
	pipe := s.client.TxPipeline()
	exists := pipe.Exists(ctx, key)
	members := pipe.SMembers(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, false, oops.Code("ROLE_CACHE_BACKEND").Wrap(err)
	}
	if exists.Val() == 0 {
		return nil, false, nil
	}
	roles := make([]string, 0, len(members.Val()))
	for _, role := range members.Val() {
		if role != roleCacheEmptyMarker {
			roles = append(roles, role)
		}
	}
	return roles, true, nil
}

func (s *RedisRoleCacheStore) Set(ctx context.Context, userName string, roles []string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	key := s.key(userName)
	members := make([]any, 0, len(roles)+1)
	members = append(members, roleCacheEmptyMarker)
	for _, role := range roles {
		members = append(members, role)
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return oops.Code("ROLE_CACHE_BACKEND").Wrap(err)
	}
	return nil
}

func (s *RedisRoleCacheStore) Invalidate(ctx context.Context, userName string) error {
	if err := s.client.Del(ctx, s.key(userName)).Err(); err != nil {
		return oops.Code("ROLE_CACHE_BACKEND").Wrap(err)
	}
	return nil
}

// roleCacheEmptyMarker keeps the set alive for users holding no roles.
const roleCacheEmptyMarker = "\x00"

func (s *RedisRoleCacheStore) key(userName string) string {
	sum := sha256.Sum256([]byte(normalizeLoginIdentity(userName)))
	return s.prefix + ":" + hex.EncodeToString(sum[:])
}
