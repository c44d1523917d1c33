// internal/app/system/ratelimit/lockout.go
package ratelimit

import (
	"context"
	"strings"
	"time"
)

// Lockout locks an account after maxAttempts failed logins. The lock lasts
// for duration from the failure that tripped it; a successful login clears
// both the failure count and the lock.
type Lockout struct {
	store       Store
	maxAttempts int
	duration    time.Duration
}

// NewLockout creates a Lockout over store.
func NewLockout(store Store, maxAttempts int, duration time.Duration) *Lockout {
	return &Lockout{store: store, maxAttempts: maxAttempts, duration: duration}
}

func failKey(username string) string {
	return "lockout:fails:" + strings.ToLower(strings.TrimSpace(username))
}

func lockKey(username string) string {
	return "lockout:locked:" + strings.ToLower(strings.TrimSpace(username))
}

// Locked reports whether username is currently locked.
func (l *Lockout) Locked(ctx context.Context, username string) (bool, error) {
	n, err := l.store.Get(ctx, lockKey(username))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RecordFailure counts a failed login and reports whether the account is now
// locked.
func (l *Lockout) RecordFailure(ctx context.Context, username string) (bool, error) {
	n, _, err := l.store.Incr(ctx, failKey(username), l.duration)
	if err != nil {
		return false, err
	}
	if n < int64(l.maxAttempts) {
		return false, nil
	}
	if _, _, err := l.store.Incr(ctx, lockKey(username), l.duration); err != nil {
		return false, err
	}
	return true, l.store.Reset(ctx, failKey(username))
}

// Reset clears failures and any lock for username.
func (l *Lockout) Reset(ctx context.Context, username string) error {
	if err := l.store.Reset(ctx, failKey(username)); err != nil {
		return err
	}
	return l.store.Reset(ctx, lockKey(username))
}
