package locker

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
)

const DEFAULT_LOCK_EXPIRY = 30 * time.Second

type Locker struct {
	rs     *redsync.Redsync
	expiry time.Duration
}

func New(rs *redsync.Redsync) *Locker {
	return &Locker{rs: rs, expiry: DEFAULT_LOCK_EXPIRY}
}

// TryLock takes the named mutex without waiting.
func (l *Locker) TryLock(ctx context.Context, name string) (func(), error) {
	mutex := l.rs.NewMutex(name, redsync.WithExpiry(l.expiry), redsync.WithTries(1))
	if err := mutex.TryLockContext(ctx); err != nil {
		return nil, err
	}

	return func() {
		// nolint:errcheck
		mutex.UnlockContext(context.Background())
	}, nil
}
