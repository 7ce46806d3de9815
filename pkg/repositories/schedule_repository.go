package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/database"
	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/models"
)

// maxPriorEntriesPerKey caps how many open prior-week entries are retained
// per (equipment, type) group; only the most recent ones matter for
// conflict reporting.
const maxPriorEntriesPerKey = 5

// ScheduleRepository provides data access for the weekly PM schedule.
type ScheduleRepository interface {
	// LoadWeek returns every entry for the exact target week. The
	// orchestrator calls this before DeleteWeek so the already-scheduled
	// conflict check sees the state that is about to be wiped.
	LoadWeek(ctx context.Context, weekStart time.Time) ([]models.ScheduleEntry, error)

	// LoadUncompletedPrior returns Scheduled (not Completed) entries from
	// weeks strictly before beforeWeek, grouped by (equipment, type),
	// newest first, capped at the 5 most recent per group.
	LoadUncompletedPrior(ctx context.Context, beforeWeek time.Time) (map[models.ScheduleKey][]models.ScheduleEntry, error)

	// CountCompletedForWeek reports how many entries in the week already
	// carry Completed status. Used as a gate before destructive
	// regeneration.
	CountCompletedForWeek(ctx context.Context, weekStart time.Time) (int, error)

	// DeleteWeek removes every entry for the week, unconditionally.
	DeleteWeek(ctx context.Context, weekStart time.Time) (int64, error)

	// InsertBatch persists the run's schedule entries in one batch write.
	InsertBatch(ctx context.Context, entries []models.ScheduleEntry) error
}

type scheduleRepository struct{}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository() ScheduleRepository {
	return &scheduleRepository{}
}

var _ ScheduleRepository = (*scheduleRepository)(nil)

const scheduleColumns = `id, week_start, equipment_id, pm_type, technician, scheduled_date, status, created_at`

func (r *scheduleRepository) LoadWeek(ctx context.Context, weekStart time.Time) ([]models.ScheduleEntry, error) {
	scope, ok := database.GetRunScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no run scope in context")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM pm_schedule
		WHERE week_start = $1
		ORDER BY scheduled_date, equipment_id`, scheduleColumns)

	rows, err := scope.Tx.Query(ctx, query, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load week schedule: %w", err)
	}
	defer rows.Close()

	return scanScheduleEntries(rows)
}

func (r *scheduleRepository) LoadUncompletedPrior(ctx context.Context, beforeWeek time.Time) (map[models.ScheduleKey][]models.ScheduleEntry, error) {
	scope, ok := database.GetRunScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no run scope in context")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM pm_schedule
		WHERE week_start < $1 AND status = $2
		ORDER BY week_start DESC`, scheduleColumns)

	rows, err := scope.Tx.Query(ctx, query, beforeWeek, string(models.ScheduleStatusScheduled))
	if err != nil {
		return nil, fmt.Errorf("failed to load uncompleted prior entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanScheduleEntries(rows)
	if err != nil {
		return nil, err
	}

	grouped := make(map[models.ScheduleKey][]models.ScheduleEntry)
	for _, entry := range entries {
		key := entry.Key()
		if len(grouped[key]) >= maxPriorEntriesPerKey {
			continue
		}
		grouped[key] = append(grouped[key], entry)
	}

	return grouped, nil
}

func (r *scheduleRepository) CountCompletedForWeek(ctx context.Context, weekStart time.Time) (int, error) {
	scope, ok := database.GetRunScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no run scope in context")
	}

	var count int
	err := scope.Tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM pm_schedule WHERE week_start = $1 AND status = $2`,
		weekStart, string(models.ScheduleStatusCompleted),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed entries: %w", err)
	}
	return count, nil
}

func (r *scheduleRepository) DeleteWeek(ctx context.Context, weekStart time.Time) (int64, error) {
	scope, ok := database.GetRunScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no run scope in context")
	}

	tag, err := scope.Tx.Exec(ctx, `DELETE FROM pm_schedule WHERE week_start = $1`, weekStart)
	if err != nil {
		return 0, fmt.Errorf("failed to delete week schedule: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *scheduleRepository) InsertBatch(ctx context.Context, entries []models.ScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}

	scope, ok := database.GetRunScope(ctx)
	if !ok {
		return fmt.Errorf("no run scope in context")
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		if entry.Status == "" {
			entry.Status = models.ScheduleStatusScheduled
		}
		entry.CreatedAt = now

		rows = append(rows, []any{
			entry.ID,
			entry.WeekStart,
			entry.EquipmentID,
			string(entry.Type),
			entry.Technician,
			entry.ScheduledDate,
			string(entry.Status),
			entry.CreatedAt,
		})
	}

	_, err := scope.Tx.CopyFrom(ctx,
		pgx.Identifier{"pm_schedule"},
		[]string{"id", "week_start", "equipment_id", "pm_type", "technician", "scheduled_date", "status", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to insert schedule batch: %w", err)
	}

	return nil
}

func scanScheduleEntries(rows pgx.Rows) ([]models.ScheduleEntry, error) {
	var entries []models.ScheduleEntry
	for rows.Next() {
		var entry models.ScheduleEntry
		var pmType, status string

		err := rows.Scan(
			&entry.ID,
			&entry.WeekStart,
			&entry.EquipmentID,
			&pmType,
			&entry.Technician,
			&entry.ScheduledDate,
			&status,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}

		entry.Type = models.MaintenanceType(strings.ToUpper(strings.TrimSpace(pmType)))
		entry.Status = models.ScheduleStatus(strings.ToUpper(strings.TrimSpace(status)))
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule rows: %w", err)
	}

	return entries, nil
}
