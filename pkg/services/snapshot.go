package services

import (
	"time"

	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/models"
)

// WeekSnapshot is the run-scoped, in-memory view of everything one
// scheduling run evaluates against. It is built from the repository bulk
// loads at the start of a run and discarded with the run, so no state leaks
// between runs. All lookups are O(1) by equipment or (equipment, type).
type WeekSnapshot struct {
	WeekStart time.Time
	Today     time.Time

	// Completions by equipment identifier, newest first, all types mixed.
	Completions map[string][]models.CompletionRecord

	// CurrentWeek is the target week's schedule as it stood before
	// deletion, keyed by (equipment, type).
	CurrentWeek map[models.ScheduleKey]models.ScheduleEntry

	// PriorOpen holds still-Scheduled entries from earlier weeks, newest
	// first, capped per key by the repository.
	PriorOpen map[models.ScheduleKey][]models.ScheduleEntry

	// AnnualOverrides maps equipment to an explicit next-annual-due date.
	AnnualOverrides map[string]time.Time
}

// LatestCompletion returns the most recent completion of the given type for
// the equipment, or nil when the window holds none.
func (s *WeekSnapshot) LatestCompletion(equipmentID string, t models.MaintenanceType) *models.CompletionRecord {
	for i := range s.Completions[equipmentID] {
		rec := &s.Completions[equipmentID][i]
		if rec.Type == t {
			return rec
		}
	}
	return nil
}
