package redisstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"coupon-issuer/internal/pkg/errs"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

const lockRetryInterval = 50 * time.Millisecond

var ErrLockNotAcquired = errs.New("lock not acquired")

// Locker is a lease-based mutual exclusion over Redis. A holder that dies
// loses the lock when the lease expires.
type Locker struct {
	client *redislock.Client
}

func NewLocker(rdb *redis.Client) *Locker {
	return &Locker{client: redislock.New(rdb)}
}

// Acquire waits up to wait for key, holding it for at most lease.
func (l *Locker) Acquire(ctx context.Context, key string, wait, lease time.Duration) (func(context.Context) error, error) {
	obtainCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	lock, err := l.client.Obtain(obtainCtx, key, lease, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(lockRetryInterval),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) ||
			(errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil) {
			return nil, errs.Wrapf(ErrLockNotAcquired, "key %s within %s", key, wait)
		}
		return nil, errs.Wrapf(err, "failed to obtain lock %s", key)
	}

	release := func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil {
			if errors.Is(err, redislock.ErrLockNotHeld) {
				slog.Warn("lock lease expired before release", "key", key, "lease", lease)
				return nil
			}
			return errs.Wrapf(err, "failed to release lock %s", key)
		}
		return nil
	}
	return release, nil
}

// Execute runs fn while holding key. The lock is released even if fn fails.
func (l *Locker) Execute(ctx context.Context, key string, wait, lease time.Duration, fn func(ctx context.Context) error) error {
	release, err := l.Acquire(ctx, key, wait, lease)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			slog.Error("failed to release lock", "key", key, "error", err)
		}
	}()

	return fn(ctx)
}
