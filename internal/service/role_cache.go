package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sandeepkv93/workout-auth-service/internal/observability"
)

// RoleCacheStore keeps the role names of a credential keyed by user name.
type RoleCacheStore interface {
	Get(ctx context.Context, userName string) ([]string, bool, error)
	Set(ctx context.Context, userName string, roles []string, ttl time.Duration) error
	Invalidate(ctx context.Context, userName string) error
}

// RoleSource is the uncached lookup behind CachedRoleResolver.
type RoleSource interface {
	RoleNamesForUser(ctx context.Context, userName string) ([]string, error)
}

type roleCacheEntry struct {
	roles     []string
	expiresAt time.Time
}

type InMemoryRoleCacheStore struct {
	mu    sync.RWMutex
	store map[string]roleCacheEntry
	now   func() time.Time
}

func NewInMemoryRoleCacheStore() *InMemoryRoleCacheStore {
	return &InMemoryRoleCacheStore{
		store: make(map[string]roleCacheEntry),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *InMemoryRoleCacheStore) Get(_ context.Context, userName string) ([]string, bool, error) {
	key := normalizeLoginIdentity(userName)
	s.mu.RLock()
	entry, ok := s.store[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		if current, still := s.store[key]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(s.store, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]string(nil), entry.roles...), true, nil
}

func (s *InMemoryRoleCacheStore) Set(_ context.Context, userName string, roles []string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[normalizeLoginIdentity(userName)] = roleCacheEntry{
		roles:     append([]string(nil), roles...),
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *InMemoryRoleCacheStore) Invalidate(_ context.Context, userName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, normalizeLoginIdentity(userName))
	return nil
}

// CachedRoleResolver answers role checks from the cache and collapses
// concurrent misses for the same user into one source lookup.
type CachedRoleResolver struct {
	store  RoleCacheStore
	source RoleSource
	ttl    time.Duration
	sf     singleflight.Group
}

func NewCachedRoleResolver(store RoleCacheStore, source RoleSource, ttl time.Duration) *CachedRoleResolver {
	return &CachedRoleResolver{store: store, source: source, ttl: ttl}
}

func (r *CachedRoleResolver) RoleNamesForUser(ctx context.Context, userName string) ([]string, error) {
	if strings.TrimSpace(userName) == "" {
		return nil, invalidArgument("user name is empty")
	}
	if roles, ok := r.cached(ctx, userName); ok {
		observability.RecordRoleCacheEvent(ctx, "hit")
		return roles, nil
	}

	key := "roles:" + normalizeLoginIdentity(userName)
	result, err, shared := r.sf.Do(key, func() (any, error) {
		if roles, ok := r.cached(ctx, userName); ok {
			return roles, nil
		}
		roles, err := r.source.RoleNamesForUser(ctx, userName)
		if err != nil {
			return nil, err
		}
		if r.store != nil && r.ttl > 0 {
			_ = r.store.Set(ctx, userName, roles, r.ttl)
		}
		return roles, nil
	})
	if shared {
		observability.RecordRoleCacheEvent(ctx, "singleflight_shared")
	} else {
		observability.RecordRoleCacheEvent(ctx, "miss")
	}
	if err != nil {
		return nil, err
	}
	roles, ok := result.([]string)
	if !ok {
		return nil, fmt.Errorf("unexpected role lookup result %T", result)
	}
	return append([]string(nil), roles...), nil
}

// evictRoles drops the cached roles of userName after a role or credential
// change. A failed eviction leaves the entry to expire with its ttl.
func evictRoles(ctx context.Context, store RoleCacheStore, userName string) {
	if store == nil || strings.TrimSpace(userName) == "" {
		return
	}
	if err := store.Invalidate(ctx, userName); err != nil {
		observability.RecordRoleCacheEvent(ctx, "evict_error")
		slog.WarnContext(ctx, "role cache eviction failed", "error", err)
		return
	}
	observability.RecordRoleCacheEvent(ctx, "evict")
}

func (r *CachedRoleResolver) cached(ctx context.Context, userName string) ([]string, bool) {
	if r.store == nil || r.ttl <= 0 {
		return nil, false
	}
	roles, ok, err := r.store.Get(ctx, userName)
	if err != nil {
		observability.RecordRoleCacheEvent(ctx, "backend_error")
		return nil, false
	}
	return roles, ok
}
