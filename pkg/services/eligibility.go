package services

import (
	"fmt"
	"time"

	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/dates"
	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/models"
)

// Priority scoring. Higher is more urgent; the externally supplied
// criticality tier always outranks the score (see AssignmentGenerator).
const (
	priorityNeverCompletedMonthly = 1000
	priorityNeverCompletedAnnual  = 900
	priorityOverdueCap            = 999
	priorityOverdueBase           = 500
	priorityWindowBase            = 300

	// overdueEscalationDays is how far past the ideal frequency an item may
	// run before its score switches from the proximity band to the steeply
	// escalating overdue band.
	overdueEscalationDays = 10

	// Annual override handling: not due while more than leadDays out,
	// stale once more than staleDays past due.
	annualOverrideLeadDays  = 7
	annualOverrideStaleDays = 30

	// Cross-type guards: an annual PM is blocked right after a monthly one
	// and vice versa.
	monthlyBlocksAnnualDays = 7
	annualBlocksMonthlyDays = 30
)

// EligibilityEvaluator decides whether one equipment item is due for one
// maintenance type in the target week. It is a pure function of the
// equipment row and the run's WeekSnapshot; the rules form an explicit
// early-return chain so the stale-override fallthrough stays visible.
type EligibilityEvaluator struct{}

// NewEligibilityEvaluator creates a new evaluator.
func NewEligibilityEvaluator() *EligibilityEvaluator {
	return &EligibilityEvaluator{}
}

// Evaluate applies the decision rules in order; the first matching rule
// wins.
func (e *EligibilityEvaluator) Evaluate(eq *models.Equipment, t models.MaintenanceType, snap *WeekSnapshot) models.EligibilityResult {
	// Rule 1: equipment not flagged for this cycle.
	if !eq.Requires(t) {
		return models.EligibilityResult{
			Status: models.EligibilityNotDue,
			Reason: fmt.Sprintf("not flagged for %s PM", cycleName(t)),
		}
	}

	key := models.ScheduleKey{EquipmentID: eq.ID, Type: t}

	// Rule 2: an uncompleted prior-week entry blocks new work of the same
	// type until it is resolved. Cite the oldest open entry.
	if open := snap.PriorOpen[key]; len(open) > 0 {
		oldest := open[len(open)-1]
		return models.EligibilityResult{
			Status: models.EligibilityConflicted,
			Reason: fmt.Sprintf("uncompleted %s PM from week of %s (assigned to %s)",
				cycleName(t), oldest.WeekStart.Format("2006-01-02"), oldest.Technician),
		}
	}

	// Rule 3 (annual only): explicit override date. A stale override falls
	// through to the history-based rules below.
	if t == models.MaintenanceAnnual {
		if override, ok := snap.AnnualOverrides[eq.ID]; ok {
			daysUntil := dates.DaysBetween(snap.Today, override)

			if daysUntil > annualOverrideLeadDays {
				return models.EligibilityResult{
					Status: models.EligibilityNotDue,
					Reason: fmt.Sprintf("annual PM override due in %d days", daysUntil),
				}
			}
			if daysUntil >= -annualOverrideStaleDays {
				overdue := max(0, -daysUntil)
				return models.EligibilityResult{
					Status:      models.EligibilityDue,
					Reason:      fmt.Sprintf("annual PM due per override date %s", override.Format("2006-01-02")),
					Priority:    priorityOverdueBase + 10*overdue,
					DaysOverdue: overdue,
				}
			}
			// Override is more than 30 days past: treat it as stale.
		}
	}

	// Rule 4: completed too recently for another cycle of the same type.
	last := snap.LatestCompletion(eq.ID, t)
	if last != nil {
		if since := dates.DaysBetween(last.CompletedAt, snap.Today); since < t.MinIntervalDays() {
			return models.EligibilityResult{
				Status: models.EligibilityRecentlyCompleted,
				Reason: fmt.Sprintf("%s PM completed %d days ago", cycleName(t), since),
			}
		}
	}

	// Rule 5: cross-type guard.
	if result, blocked := e.crossTypeConflict(eq.ID, t, snap); blocked {
		return result
	}

	// Rule 6: already on this week's (pre-deletion) schedule.
	if _, ok := snap.CurrentWeek[key]; ok {
		return models.EligibilityResult{
			Status: models.EligibilityConflicted,
			Reason: fmt.Sprintf("%s PM already scheduled this week", cycleName(t)),
		}
	}

	// Rule 7: determine the last completion date, preferring the history
	// record over the catalog's denormalized cache. Neither means the
	// equipment has never been maintained: most conservative, highest
	// priority.
	var lastDate time.Time
	switch {
	case last != nil:
		lastDate = last.CompletedAt
	case eq.LastCompleted(t) != nil:
		lastDate = *eq.LastCompleted(t)
	default:
		priority := priorityNeverCompletedMonthly
		if t == models.MaintenanceAnnual {
			priority = priorityNeverCompletedAnnual
		}
		return models.EligibilityResult{
			Status:   models.EligibilityDue,
			Reason:   fmt.Sprintf("%s PM never completed", cycleName(t)),
			Priority: priority,
		}
	}

	// Rule 8: date arithmetic against the cycle's due window.
	return e.scoreByAge(lastDate, t, snap.Today)
}

// crossTypeConflict blocks an annual PM right after a monthly completion and
// a monthly PM right after an annual completion.
func (e *EligibilityEvaluator) crossTypeConflict(equipmentID string, t models.MaintenanceType, snap *WeekSnapshot) (models.EligibilityResult, bool) {
	other := models.MaintenanceMonthly
	blockDays := monthlyBlocksAnnualDays
	if t == models.MaintenanceMonthly {
		other = models.MaintenanceAnnual
		blockDays = annualBlocksMonthlyDays
	}

	rec := snap.LatestCompletion(equipmentID, other)
	if rec == nil {
		return models.EligibilityResult{}, false
	}

	since := dates.DaysBetween(rec.CompletedAt, snap.Today)
	if since > blockDays {
		return models.EligibilityResult{}, false
	}

	return models.EligibilityResult{
		Status: models.EligibilityConflicted,
		Reason: fmt.Sprintf("blocked by recent %s PM (%d days ago)", cycleName(other), since),
	}, true
}

// scoreByAge turns days-since-last-completion into a due decision.
// Inside and near the due window the score rewards proximity to the ideal
// date; more than overdueEscalationDays past ideal it escalates 10 points
// per day, capped just below the never-completed scores.
func (e *EligibilityEvaluator) scoreByAge(lastDate time.Time, t models.MaintenanceType, today time.Time) models.EligibilityResult {
	daysSince := dates.DaysBetween(lastDate, today)

	if daysSince < t.MinIntervalDays() {
		return models.EligibilityResult{
			Status: models.EligibilityNotDue,
			Reason: fmt.Sprintf("%s PM due in %d days", cycleName(t), t.MinIntervalDays()-daysSince),
		}
	}

	daysOverdue := daysSince - t.IdealFrequencyDays()
	if daysOverdue > overdueEscalationDays {
		return models.EligibilityResult{
			Status:      models.EligibilityDue,
			Reason:      fmt.Sprintf("%s PM %d days overdue", cycleName(t), daysOverdue),
			Priority:    min(priorityOverdueBase+10*daysOverdue, priorityOverdueCap),
			DaysOverdue: daysOverdue,
		}
	}

	distance := daysOverdue
	if distance < 0 {
		distance = -distance
	}
	reason := fmt.Sprintf("%s PM due (last completed %d days ago)", cycleName(t), daysSince)
	if daysSince > t.MaxIntervalDays() {
		reason = fmt.Sprintf("%s PM past the due window (last completed %d days ago)", cycleName(t), daysSince)
	}
	return models.EligibilityResult{
		Status:      models.EligibilityDue,
		Reason:      reason,
		Priority:    priorityWindowBase - distance,
		DaysOverdue: max(0, daysOverdue),
	}
}

func cycleName(t models.MaintenanceType) string {
	if t == models.MaintenanceAnnual {
		return "annual"
	}
	return "monthly"
}
