package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/apperrors"
	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/dates"
	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/models"
	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/repositories"
)

// weekdaySpread is how many weekdays assignments are spread across.
const weekdaySpread = 5

// GenerateOptions tunes one scheduling run.
type GenerateOptions struct {
	// ForceRegenerateCompleted permits wiping a week that already holds
	// Completed entries. Without it such a run fails with
	// apperrors.ErrCompletedWorkExists instead of silently destroying
	// completion records.
	ForceRegenerateCompleted bool

	// Progress receives incremental reports during the run. Nil means no
	// reporting.
	Progress ProgressSink
}

// SchedulerService is the top-level entry point for weekly PM generation.
type SchedulerService interface {
	// GenerateWeeklySchedule replaces the target week's schedule: it ranks
	// due equipment, assigns technicians, and persists the result as one
	// atomic operation. weekStart must be the Monday of the target week;
	// weeklyTarget bounds the number of assignments produced.
	GenerateWeeklySchedule(ctx context.Context, weekStart time.Time, weeklyTarget int, opts GenerateOptions) (*models.ScheduleResult, error)
}

type schedulerService struct {
	store       RunStore
	equipment   repositories.EquipmentRepository
	history     repositories.HistoryRepository
	schedule    repositories.ScheduleRepository
	generator   *AssignmentGenerator
	technicians []string
	windowDays  int
	logger      *zap.Logger
	now         func() time.Time
}

// NewSchedulerService creates the scheduling orchestrator. technicians is
// the ordered roster assignments are distributed over; windowDays is the
// trailing completion-history window.
func NewSchedulerService(
	store RunStore,
	equipment repositories.EquipmentRepository,
	history repositories.HistoryRepository,
	schedule repositories.ScheduleRepository,
	generator *AssignmentGenerator,
	technicians []string,
	windowDays int,
	logger *zap.Logger,
) SchedulerService {
	return &schedulerService{
		store:       store,
		equipment:   equipment,
		history:     history,
		schedule:    schedule,
		generator:   generator,
		technicians: technicians,
		windowDays:  windowDays,
		logger:      logger.Named("scheduler"),
		now:         time.Now,
	}
}

var _ SchedulerService = (*schedulerService)(nil)

func (s *schedulerService) GenerateWeeklySchedule(ctx context.Context, weekStart time.Time, weeklyTarget int, opts GenerateOptions) (*models.ScheduleResult, error) {
	if len(s.technicians) == 0 {
		return failure(apperrors.ErrEmptyRoster), apperrors.ErrEmptyRoster
	}

	weekStart = dates.Midnight(weekStart)
	if weekStart.Weekday() != time.Monday {
		return failure(apperrors.ErrWeekStartNotMonday), apperrors.ErrWeekStartNotMonday
	}

	progress := opts.Progress
	if progress == nil {
		progress = NopProgress{}
	}

	logger := s.logger.With(zap.Time("week_start", weekStart))
	logger.Info("Starting weekly schedule generation",
		zap.Int("weekly_target", weeklyTarget),
		zap.Int("roster_size", len(s.technicians)))

	// The entire run executes inside one transaction; every repository call
	// below reads it from the context. Rollback after Commit is a no-op.
	run, err := s.store.BeginRun(ctx)
	if err != nil {
		return failure(err), err
	}
	defer run.Rollback(ctx)
	ctx = run.Attach(ctx)

	// Runs for the same week must not interleave: each one deletes and
	// rebuilds the week's rows. Different weeks proceed independently.
	acquired, err := run.TryWeekLock(ctx, weekStart)
	if err != nil {
		return failure(err), err
	}
	if !acquired {
		return failure(apperrors.ErrWeekRunInProgress), apperrors.ErrWeekRunInProgress
	}

	// Regeneration gate: wiping a week that already has completed entries
	// destroys completion records, so it needs an explicit force.
	completed, err := s.schedule.CountCompletedForWeek(ctx, weekStart)
	if err != nil {
		return failure(err), err
	}
	if completed > 0 {
		if !opts.ForceRegenerateCompleted {
			logger.Warn("Refusing to regenerate week with completed entries",
				zap.Int("completed_entries", completed))
			return failure(apperrors.ErrCompletedWorkExists), apperrors.ErrCompletedWorkExists
		}
		logger.Warn("Regenerating week despite completed entries; completion records will be destroyed",
			zap.Int("completed_entries", completed))
	}

	// Load the week's current schedule before deleting it, so the
	// already-scheduled conflict check can still see it.
	progress.Progress("loading schedule state", 0, 0)
	currentWeek, err := s.schedule.LoadWeek(ctx, weekStart)
	if err != nil {
		return failure(err), err
	}

	deleted, err := s.schedule.DeleteWeek(ctx, weekStart)
	if err != nil {
		return failure(err), err
	}
	logger.Info("Cleared existing week schedule", zap.Int64("deleted_rows", deleted))

	catalog, err := s.equipment.ListActive(ctx)
	if err != nil {
		return failure(err), err
	}
	catalogTotal, err := s.equipment.Count(ctx)
	if err != nil {
		return failure(err), err
	}
	logger.Info("Loaded equipment catalog",
		zap.Int("catalog_total", catalogTotal),
		zap.Int("schedulable", len(catalog)))
	if len(catalog) == 0 {
		logger.Info("No schedulable equipment; committing empty week")
		if err := run.Commit(ctx); err != nil {
			return failure(err), err
		}
		return emptySuccess(), nil
	}

	progress.Progress("loading history", 0, 0)
	snap, err := s.buildSnapshot(ctx, weekStart, currentWeek)
	if err != nil {
		return failure(err), err
	}

	assignments := s.generator.Generate(catalog, snap, weeklyTarget, progress)
	if len(assignments) == 0 {
		logger.Info("No assignments generated; committing empty week")
		if err := run.Commit(ctx); err != nil {
			return failure(err), err
		}
		return emptySuccess(), nil
	}

	entries := s.distribute(assignments, weekStart)

	// Last chance to honor cancellation before the write and commit.
	if err := ctx.Err(); err != nil {
		return failure(err), err
	}

	progress.Progress("persisting schedule", 0, len(entries))
	if err := s.schedule.InsertBatch(ctx, entries); err != nil {
		return failure(err), err
	}

	if err := run.Commit(ctx); err != nil {
		return failure(err), err
	}

	unique := make(map[string]struct{}, len(assignments))
	for _, a := range assignments {
		unique[a.EquipmentID] = struct{}{}
	}

	logger.Info("Weekly schedule generated",
		zap.Int("total_assignments", len(assignments)),
		zap.Int("unique_assets", len(unique)))

	return &models.ScheduleResult{
		Success:          true,
		TotalAssignments: len(assignments),
		UniqueAssets:     len(unique),
		Assignments:      assignments,
	}, nil
}

// buildSnapshot runs the bulk loads and assembles the run-scoped lookup
// maps. The snapshot dies with the run; no cache survives it.
func (s *schedulerService) buildSnapshot(ctx context.Context, weekStart time.Time, currentWeek []models.ScheduleEntry) (*WeekSnapshot, error) {
	completions, err := s.history.BulkLoadCompletions(ctx, s.windowDays)
	if err != nil {
		return nil, err
	}

	priorOpen, err := s.schedule.LoadUncompletedPrior(ctx, weekStart)
	if err != nil {
		return nil, err
	}

	overrides, err := s.history.BulkLoadAnnualOverrides(ctx)
	if err != nil {
		return nil, err
	}

	currentByKey := make(map[models.ScheduleKey]models.ScheduleEntry, len(currentWeek))
	for _, entry := range currentWeek {
		currentByKey[entry.Key()] = entry
	}

	return &WeekSnapshot{
		WeekStart:       weekStart,
		Today:           dates.Midnight(s.now()),
		Completions:     completions,
		CurrentWeek:     currentByKey,
		PriorOpen:       priorOpen,
		AnnualOverrides: overrides,
	}, nil
}

// distribute assigns technicians round-robin and spreads scheduled dates
// across the first five weekdays of the week.
func (s *schedulerService) distribute(assignments []models.Assignment, weekStart time.Time) []models.ScheduleEntry {
	entries := make([]models.ScheduleEntry, 0, len(assignments))
	for i, a := range assignments {
		entries = append(entries, models.ScheduleEntry{
			WeekStart:     weekStart,
			EquipmentID:   a.EquipmentID,
			Type:          a.Type,
			Technician:    s.technicians[i%len(s.technicians)],
			ScheduledDate: weekStart.AddDate(0, 0, i%weekdaySpread),
			Status:        models.ScheduleStatusScheduled,
		})
	}
	return entries
}

func failure(err error) *models.ScheduleResult {
	return &models.ScheduleResult{Success: false, Error: err.Error()}
}

func emptySuccess() *models.ScheduleResult {
	return &models.ScheduleResult{Success: true, Assignments: []models.Assignment{}}
}
