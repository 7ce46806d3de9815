package services

import (
	"slices"

	"go.uber.org/zap"

	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/models"
)

// TierFunc resolves the externally configured criticality tier for an
// equipment identifier (1 most critical .. 99 default).
type TierFunc func(equipmentID string) int

// AssignmentGenerator walks the active equipment catalog, evaluates each
// applicable maintenance type, and turns the DUE results into a ranked,
// capacity-bounded candidate list.
type AssignmentGenerator struct {
	evaluator *EligibilityEvaluator
	tierFor   TierFunc
	logger    *zap.Logger
}

// NewAssignmentGenerator creates a new generator.
func NewAssignmentGenerator(evaluator *EligibilityEvaluator, tierFor TierFunc, logger *zap.Logger) *AssignmentGenerator {
	return &AssignmentGenerator{
		evaluator: evaluator,
		tierFor:   tierFor,
		logger:    logger.Named("assignment-generator"),
	}
}

// Generate produces the ordered assignment list for the week. Within a week
// the monthly and annual cycles are mutually exclusive per equipment:
// annual is only evaluated when monthly produced no candidate. Candidates
// sort by (tier ascending, priority score descending); the sort is stable,
// so ties keep catalog order. The list is truncated to maxAssignments.
func (g *AssignmentGenerator) Generate(equipment []models.Equipment, snap *WeekSnapshot, maxAssignments int, progress ProgressSink) []models.Assignment {
	if progress == nil {
		progress = NopProgress{}
	}

	candidates := make([]models.Assignment, 0, len(equipment))
	total := len(equipment)

	for i := range equipment {
		eq := &equipment[i]
		progress.Progress("evaluating equipment", i+1, total)

		if eq.Status != models.EquipmentStatusActive {
			continue
		}

		monthly := g.evaluator.Evaluate(eq, models.MaintenanceMonthly, snap)
		if monthly.Status == models.EligibilityDue {
			candidates = append(candidates, g.candidate(eq, models.MaintenanceMonthly, monthly))
			continue // monthly and annual never share a week
		}

		annual := g.evaluator.Evaluate(eq, models.MaintenanceAnnual, snap)
		if annual.Status == models.EligibilityDue {
			candidates = append(candidates, g.candidate(eq, models.MaintenanceAnnual, annual))
		}
	}

	slices.SortStableFunc(candidates, func(a, b models.Assignment) int {
		if a.Tier != b.Tier {
			return a.Tier - b.Tier
		}
		return b.Priority - a.Priority
	})

	if maxAssignments < 0 {
		maxAssignments = 0
	}
	if len(candidates) > maxAssignments {
		g.logger.Info("Truncating candidate list to weekly capacity",
			zap.Int("candidates", len(candidates)),
			zap.Int("capacity", maxAssignments))
		candidates = candidates[:maxAssignments]
	}

	return candidates
}

func (g *AssignmentGenerator) candidate(eq *models.Equipment, t models.MaintenanceType, result models.EligibilityResult) models.Assignment {
	return models.Assignment{
		EquipmentID: eq.ID,
		Type:        t,
		Description: eq.Description,
		Tier:        g.tierFor(eq.ID),
		Priority:    result.Priority,
		Reason:      result.Reason,
	}
}
