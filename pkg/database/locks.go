package database

import (
	"context"
	"fmt"
	"time"
)

// weekLockClass namespaces the scheduler's advisory locks away from any
// other advisory-lock user of the same database.
const weekLockClass int32 = 7341

// TryWeekLock takes a transaction-scoped advisory lock keyed by the week
// start date. It returns false when another run for the same week already
// holds the lock; runs for different weeks do not contend. The lock is
// released automatically when the run's transaction commits or rolls back.
func (s *RunScope) TryWeekLock(ctx context.Context, weekStart time.Time) (bool, error) {
	epochDay := int32(weekStart.UTC().Unix() / 86400)

	var acquired bool
	err := s.Tx.QueryRow(ctx,
		"SELECT pg_try_advisory_xact_lock($1, $2)",
		weekLockClass, epochDay,
	).Scan(&acquired)
	if err != nil {
		return false, fmt.Errorf("failed to acquire week lock: %w", err)
	}
	return acquired, nil
}
