package database

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type contextKey string

// RunScopeKey is the context key for storing the run-scoped transaction.
const RunScopeKey contextKey = "runScope"

// RunScope wraps the single transaction one orchestration run executes in.
// Every repository operation during the run reads the transaction from
// context, so all bulk loads, the week deletion and the batch insert share
// one atomic unit of work.
type RunScope struct {
	Tx pgx.Tx
}

// GetRunScope retrieves the run-scoped transaction from context.
// Returns nil and false if not present.
func GetRunScope(ctx context.Context) (*RunScope, bool) {
	scope, ok := ctx.Value(RunScopeKey).(*RunScope)
	return scope, ok
}

// SetRunScope stores the run-scoped transaction in context.
func SetRunScope(ctx context.Context, scope *RunScope) context.Context {
	return context.WithValue(ctx, RunScopeKey, scope)
}

// BeginRun opens the transaction for one orchestration run. The returned
// scope MUST be finished with Commit or Rollback; Rollback after a
// successful Commit is a no-op, so `defer scope.Rollback(ctx)` is safe.
func (db *DB) BeginRun(ctx context.Context) (*RunScope, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &RunScope{Tx: tx}, nil
}

// Attach stores the scope in the context for repository access.
func (s *RunScope) Attach(ctx context.Context) context.Context {
	return SetRunScope(ctx, s)
}

// Commit commits the run's transaction.
func (s *RunScope) Commit(ctx context.Context) error {
	return s.Tx.Commit(ctx)
}

// Rollback aborts the run's transaction. Safe to call after Commit.
func (s *RunScope) Rollback(ctx context.Context) {
	_ = s.Tx.Rollback(ctx)
}
