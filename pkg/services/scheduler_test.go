package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/apperrors"
	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/models"
)

// mockRun implements Run without a database.
type mockRun struct {
	lockAcquired bool
	lockErr      error
	committed    bool
	rolledBack   bool
	commitErr    error
}

func (m *mockRun) Attach(ctx context.Context) context.Context { return ctx }

func (m *mockRun) TryWeekLock(_ context.Context, _ time.Time) (bool, error) {
	return m.lockAcquired, m.lockErr
}

func (m *mockRun) Commit(_ context.Context) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committed = true
	return nil
}

func (m *mockRun) Rollback(_ context.Context) {
	if !m.committed {
		m.rolledBack = true
	}
}

type mockRunStore struct {
	run      *mockRun
	beginErr error
}

func (m *mockRunStore) BeginRun(_ context.Context) (Run, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	return m.run, nil
}

type mockEquipmentRepo struct {
	equipment []models.Equipment
	listErr   error
}

func (m *mockEquipmentRepo) ListActive(_ context.Context) ([]models.Equipment, error) {
	return m.equipment, m.listErr
}

func (m *mockEquipmentRepo) Count(_ context.Context) (int, error) {
	return len(m.equipment), nil
}

type mockHistoryRepo struct {
	completions map[string][]models.CompletionRecord
	overrides   map[string]time.Time
	loadErr     error
}

func (m *mockHistoryRepo) BulkLoadCompletions(_ context.Context, _ int) (map[string][]models.CompletionRecord, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.completions == nil {
		return map[string][]models.CompletionRecord{}, nil
	}
	return m.completions, nil
}

func (m *mockHistoryRepo) BulkLoadAnnualOverrides(_ context.Context) (map[string]time.Time, error) {
	if m.overrides == nil {
		return map[string]time.Time{}, nil
	}
	return m.overrides, nil
}

type mockScheduleRepo struct {
	week           []models.ScheduleEntry
	prior          map[models.ScheduleKey][]models.ScheduleEntry
	completedCount int
	deletedWeeks   []time.Time
	inserted       []models.ScheduleEntry
	insertErr      error
}

func (m *mockScheduleRepo) LoadWeek(_ context.Context, _ time.Time) ([]models.ScheduleEntry, error) {
	return m.week, nil
}

func (m *mockScheduleRepo) LoadUncompletedPrior(_ context.Context, _ time.Time) (map[models.ScheduleKey][]models.ScheduleEntry, error) {
	if m.prior == nil {
		return map[models.ScheduleKey][]models.ScheduleEntry{}, nil
	}
	return m.prior, nil
}

func (m *mockScheduleRepo) CountCompletedForWeek(_ context.Context, _ time.Time) (int, error) {
	return m.completedCount, nil
}

func (m *mockScheduleRepo) DeleteWeek(_ context.Context, weekStart time.Time) (int64, error) {
	m.deletedWeeks = append(m.deletedWeeks, weekStart)
	return int64(len(m.week)), nil
}

func (m *mockScheduleRepo) InsertBatch(_ context.Context, entries []models.ScheduleEntry) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, entries...)
	return nil
}

type schedulerFixture struct {
	svc      *schedulerService
	run      *mockRun
	schedule *mockScheduleRepo
}

func newSchedulerFixture(equipment []models.Equipment, technicians []string) *schedulerFixture {
	run := &mockRun{lockAcquired: true}
	schedule := &mockScheduleRepo{}
	generator := NewAssignmentGenerator(NewEligibilityEvaluator(), func(string) int { return models.DefaultPriorityTier }, zap.NewNop())

	svc := NewSchedulerService(
		&mockRunStore{run: run},
		&mockEquipmentRepo{equipment: equipment},
		&mockHistoryRepo{},
		schedule,
		generator,
		technicians,
		400,
		zap.NewNop(),
	).(*schedulerService)
	svc.now = func() time.Time { return testToday }

	return &schedulerFixture{svc: svc, run: run, schedule: schedule}
}

func activeMonthly(ids ...string) []models.Equipment {
	out := make([]models.Equipment, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Equipment{ID: id, Description: id, RequiresMonthly: true, Status: models.EquipmentStatusActive})
	}
	return out
}

var roster = []string{"D. Harmon", "K. Osei", "R. Vance"}

func TestScheduler_EmptyRoster(t *testing.T) {
	f := newSchedulerFixture(activeMonthly("E1"), nil)

	result, err := f.svc.GenerateWeeklySchedule(context.Background(), testWeekStart, 10, GenerateOptions{})

	require.ErrorIs(t, err, apperrors.ErrEmptyRoster)
	assert.False(t, result.Success)
	assert.Empty(t, f.schedule.deletedWeeks, "nothing may be touched on validation failure")
}

func TestScheduler_WeekStartMustBeMonday(t *testing.T) {
	f := newSchedulerFixture(activeMonthly("E1"), roster)
	tuesday := testWeekStart.AddDate(0, 0, 1)

	result, err := f.svc.GenerateWeeklySchedule(context.Background(), tuesday, 10, GenerateOptions{})

	require.ErrorIs(t, err, apperrors.ErrWeekStartNotMonday)
	assert.False(t, result.Success)
}

func TestScheduler_WeekLockBusy(t *testing.T) {
	f := newSchedulerFixture(activeMonthly("E1"), roster)
	f.run.lockAcquired = false

	result, err := f.svc.GenerateWeeklySchedule(context.Background(), testWeekStart, 10, GenerateOptions{})

	require.ErrorIs(t, err, apperrors.ErrWeekRunInProgress)
	assert.False(t, result.Success)
	assert.True(t, f.run.rolledBack)
	assert.Empty(t, f.schedule.deletedWeeks)
}

func TestScheduler_CompletedWorkGate(t *testing.T) {
	f := newSchedulerFixture(activeMonthly("E1"), roster)
	f.schedule.completedCount = 2

	result, err := f.svc.GenerateWeeklySchedule(context.Background(), testWeekStart, 10, GenerateOptions{})

	require.ErrorIs(t, err, apperrors.ErrCompletedWorkExists)
	assert.False(t, result.Success)
	assert.True(t, f.run.rolledBack)
	assert.Empty(t, f.schedule.deletedWeeks, "the completed week must survive")
}

func TestScheduler_CompletedWorkForced(t *testing.T) {
	f := newSchedulerFixture(activeMonthly("E1"), roster)
	f.schedule.completedCount = 2

	result, err := f.svc.GenerateWeeklySchedule(context.Background(), testWeekStart, 10, GenerateOptions{ForceRegenerateCompleted: true})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, f.schedule.deletedWeeks, 1)
}

func TestScheduler_HappyPath(t *testing.T) {
	f := newSchedulerFixture(activeMonthly("E1", "E2", "E3", "E4", "E5", "E6", "E7"), roster)

	result, err := f.svc.GenerateWeeklySchedule(context.Background(), testWeekStart, 10, GenerateOptions{})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 7, result.TotalAssignments)
	assert.Equal(t, 7, result.UniqueAssets)
	assert.True(t, f.run.committed)
	require.Len(t, f.schedule.inserted, 7)

	for i, entry := range f.schedule.inserted {
		assert.Equal(t, roster[i%len(roster)], entry.Technician, "round-robin roster assignment")
		assert.Equal(t, testWeekStart.AddDate(0, 0, i%5), entry.ScheduledDate, "weekday spread")
		assert.Equal(t, models.ScheduleStatusScheduled, entry.Status)
		assert.Equal(t, testWeekStart, entry.WeekStart)
	}
}

func TestScheduler_ZeroTarget(t *testing.T) {
	f := newSchedulerFixture(activeMonthly("E1", "E2"), roster)

	result, err := f.svc.GenerateWeeklySchedule(context.Background(), testWeekStart, 0, GenerateOptions{})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Zero(t, result.TotalAssignments)
	assert.Empty(t, result.Assignments)
	assert.True(t, f.run.committed, "an empty week still commits")
	assert.Empty(t, f.schedule.inserted)
}

func TestScheduler_EmptyCatalog(t *testing.T) {
	f := newSchedulerFixture(nil, roster)

	result, err := f.svc.GenerateWeeklySchedule(context.Background(), testWeekStart, 10, GenerateOptions{})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Zero(t, result.TotalAssignments)
	assert.True(t, f.run.committed)
}

func TestScheduler_InsertFailureRollsBack(t *testing.T) {
	f := newSchedulerFixture(activeMonthly("E1"), roster)
	f.schedule.insertErr = errors.New("disk full")

	result, err := f.svc.GenerateWeeklySchedule(context.Background(), testWeekStart, 10, GenerateOptions{})

	require.Error(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "disk full")
	assert.True(t, f.run.rolledBack)
	assert.False(t, f.run.committed)
}

func TestScheduler_CapacityBound(t *testing.T) {
	f := newSchedulerFixture(activeMonthly("E1", "E2", "E3", "E4", "E5"), roster)

	result, err := f.svc.GenerateWeeklySchedule(context.Background(), testWeekStart, 3, GenerateOptions{})

	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Assignments), 3)
	assert.Equal(t, 3, result.TotalAssignments)
}

func TestScheduler_CancelledContext(t *testing.T) {
	f := newSchedulerFixture(activeMonthly("E1"), roster)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.svc.GenerateWeeklySchedule(ctx, testWeekStart, 10, GenerateOptions{})

	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, result.Success)
	assert.False(t, f.run.committed)
}
