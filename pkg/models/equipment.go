package models

import "time"

// EquipmentStatus is the operating state recorded on the equipment catalog.
type EquipmentStatus string

const (
	EquipmentStatusActive       EquipmentStatus = "ACTIVE"
	EquipmentStatusMissing      EquipmentStatus = "MISSING"
	EquipmentStatusRunToFailure EquipmentStatus = "RUN_TO_FAILURE"
)

// DefaultPriorityTier is assigned to equipment with no configured tier.
// Lower tiers are more critical (1 highest, 99 default).
const DefaultPriorityTier = 99

// Equipment is one row of the equipment catalog. The catalog is owned by
// equipment-management collaborators; the scheduler treats it as read-only.
// LastMonthlyPM and LastAnnualPM are denormalized caches of the most recent
// completion dates and may lag the completion history.
type Equipment struct {
	ID              string
	Description     string
	RequiresMonthly bool
	RequiresAnnual  bool
	LastMonthlyPM   *time.Time
	LastAnnualPM    *time.Time
	Status          EquipmentStatus
}

// Requires reports whether the equipment is flagged for the given PM cycle.
func (e *Equipment) Requires(t MaintenanceType) bool {
	if t == MaintenanceAnnual {
		return e.RequiresAnnual
	}
	return e.RequiresMonthly
}

// LastCompleted returns the denormalized last completion date for the given
// cycle, or nil when the catalog has none.
func (e *Equipment) LastCompleted(t MaintenanceType) *time.Time {
	if t == MaintenanceAnnual {
		return e.LastAnnualPM
	}
	return e.LastMonthlyPM
}
