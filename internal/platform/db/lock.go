package db

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"gorm.io/gorm"
)

// AdvisoryLocker serializes batch jobs across process instances with
// session-scoped Postgres advisory locks. Locks are acquired with
// try-semantics on a dedicated connection; the lock releases automatically
// when the session ends, and an explicit unlock is attempted on release as a
// courtesy.
type AdvisoryLocker struct {
	db *gorm.DB
}

func NewAdvisoryLocker(db *gorm.DB) *AdvisoryLocker {
	return &AdvisoryLocker{db: db}
}

// TryAcquire attempts to take the advisory lock for key without blocking.
// Returns acquired=false immediately when another session holds it. The
// returned release func is safe to call multiple times and must be called
// once work finishes.
func (l *AdvisoryLocker) TryAcquire(ctx context.Context, key string) (release func(), acquired bool, err error) {
	sqlDB, err := l.db.DB()
	if err != nil {
		return nil, false, fmt.Errorf("advisory lock: get sql.DB: %w", err)
	}

	// The lock is bound to the session, so it needs a pinned connection.
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("advisory lock: get conn for %s: %w", key, err)
	}

	var got bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", hashToInt64(key)).Scan(&got); err != nil {
		conn.Close()
		return nil, false, fmt.Errorf("advisory lock: try acquire %s: %w", key, err)
	}
	if !got {
		conn.Close()
		return nil, false, nil
	}

	var releaseOnce sync.Once
	release = func() {
		releaseOnce.Do(func() {
			// Background context: the caller's ctx may already be cancelled.
			_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", hashToInt64(key))
			conn.Close()
		})
	}
	return release, true, nil
}

// hashToInt64 converts a lock key to the bigint pg_advisory_lock expects.
// The same key always produces the same hash value.
func hashToInt64(key string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	v := h.Sum64() & 0x7FFFFFFFFFFFFFFF
	return int64(v)
}
