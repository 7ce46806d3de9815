package services

import (
	"context"
	"time"

	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/database"
)

// Run is one open orchestration transaction. Attach makes it visible to the
// repositories through the context; Commit and Rollback finish it. Rollback
// after Commit must be a no-op.
type Run interface {
	Attach(ctx context.Context) context.Context
	TryWeekLock(ctx context.Context, weekStart time.Time) (bool, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context)
}

// RunStore opens the transactional scope a scheduling run executes in.
type RunStore interface {
	BeginRun(ctx context.Context) (Run, error)
}

type databaseRunStore struct {
	db *database.DB
}

// NewDatabaseRunStore adapts the PostgreSQL pool to RunStore.
func NewDatabaseRunStore(db *database.DB) RunStore {
	return &databaseRunStore{db: db}
}

func (s *databaseRunStore) BeginRun(ctx context.Context) (Run, error) {
	scope, err := s.db.BeginRun(ctx)
	if err != nil {
		return nil, err
	}
	return scope, nil
}
