package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

// LoginGuardPolicy shapes the cooldown that follows repeated failed logins:
// FreeAttempts failures cost nothing, then each further failure waits
// BaseDelay*Multiplier^n, capped at MaxDelay. Counters expire after ResetWindow.
type LoginGuardPolicy struct {
	FreeAttempts int
	BaseDelay    time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	ResetWindow  time.Duration
}

// LoginGuard tracks failed logins per user name and per client address.
type LoginGuard interface {
	Check(ctx context.Context, userName, ip string) (time.Duration, error)
	RegisterFailure(ctx context.Context, userName, ip string) (time.Duration, error)
	Reset(ctx context.Context, userName, ip string) error
}

type NoopLoginGuard struct{}

func NewNoopLoginGuard() *NoopLoginGuard { return &NoopLoginGuard{} }

func (NoopLoginGuard) Check(context.Context, string, string) (time.Duration, error) { return 0, nil }

func (NoopLoginGuard) RegisterFailure(context.Context, string, string) (time.Duration, error) {
	return 0, nil
}

func (NoopLoginGuard) Reset(context.Context, string, string) error { return nil }

type loginGuardEntry struct {
	failCount     int
	lastFailureAt time.Time
	cooldownUntil time.Time
}

type InMemoryLoginGuard struct {
	mu     sync.Mutex
	policy LoginGuardPolicy
	data   map[string]loginGuardEntry
	now    func() time.Time
}

func NewInMemoryLoginGuard(policy LoginGuardPolicy) *InMemoryLoginGuard {
	return &InMemoryLoginGuard{
		policy: normalizeLoginGuardPolicy(policy),
		data:   make(map[string]loginGuardEntry),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (g *InMemoryLoginGuard) Check(_ context.Context, userName, ip string) (time.Duration, error) {
	now := g.now()
	g.mu.Lock()
	defer g.mu.Unlock()

	return max(
		g.activeCooldownLocked(now, loginGuardKey("id", normalizeLoginIdentity(userName))),
		g.activeCooldownLocked(now, loginGuardKey("ip", normalizeLoginIP(ip))),
	), nil
}

func (g *InMemoryLoginGuard) RegisterFailure(_ context.Context, userName, ip string) (time.Duration, error) {
	now := g.now()
	g.mu.Lock()
	defer g.mu.Unlock()

	return max(
		g.bumpLocked(now, loginGuardKey("id", normalizeLoginIdentity(userName))),
		g.bumpLocked(now, loginGuardKey("ip", normalizeLoginIP(ip))),
	), nil
}

func (g *InMemoryLoginGuard) Reset(_ context.Context, userName, ip string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.data, loginGuardKey("id", normalizeLoginIdentity(userName)))
	delete(g.data, loginGuardKey("ip", normalizeLoginIP(ip)))
	return nil
}

func (g *InMemoryLoginGuard) bumpLocked(now time.Time, key string) time.Duration {
	entry := g.data[key]
	if entry.lastFailureAt.IsZero() || now.Sub(entry.lastFailureAt) > g.policy.ResetWindow {
		entry.failCount = 0
	}
	entry.failCount++
	entry.lastFailureAt = now
	delay := loginGuardDelay(g.policy, entry.failCount)
	entry.cooldownUntil = now.Add(delay)
	g.data[key] = entry
	return delay
}

func (g *InMemoryLoginGuard) activeCooldownLocked(now time.Time, key string) time.Duration {
	entry, ok := g.data[key]
	if !ok {
		return 0
	}
	if now.Sub(entry.lastFailureAt) > g.policy.ResetWindow {
		delete(g.data, key)
		return 0
	}
	if !now.Before(entry.cooldownUntil) {
		return 0
	}
	return entry.cooldownUntil.Sub(now)
}

func loginGuardDelay(policy LoginGuardPolicy, failCount int) time.Duration {
	if failCount <= policy.FreeAttempts {
		return 0
	}
	power := math.Pow(policy.Multiplier, float64(failCount-policy.FreeAttempts-1))
	delay := time.Duration(float64(policy.BaseDelay) * power)
	return min(delay, policy.MaxDelay)
}

func loginGuardKey(dim, value string) string {
	return fmt.Sprintf("login:%s:%s", dim, value)
}

func normalizeLoginIdentity(userName string) string {
	v := strings.TrimSpace(strings.ToUpper(userName))
	if v == "" {
		return "anonymous"
	}
	return v
}

func normalizeLoginIP(ip string) string {
	v := strings.TrimSpace(strings.ToLower(ip))
	if v == "" {
		return "unknown"
	}
	return v
}

func normalizeLoginGuardPolicy(policy LoginGuardPolicy) LoginGuardPolicy {
	policy.FreeAttempts = max(policy.FreeAttempts, 0)
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = 2 * time.Second
	}
	if policy.Multiplier < 1 {
		policy.Multiplier = 2
	}
	if policy.MaxDelay < policy.BaseDelay {
		policy.MaxDelay = 5 * time.Minute
	}
	if policy.ResetWindow <= 0 {
		policy.ResetWindow = 30 * time.Minute
	}
	return policy
}
