package models

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleStatus is the lifecycle state of a schedule entry.
type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "SCHEDULED"
	ScheduleStatusCompleted ScheduleStatus = "COMPLETED"
)

// ScheduleEntry is one planned PM task in a given week. Entries are created
// by the scheduling orchestrator and later marked completed by the external
// completion workflow.
type ScheduleEntry struct {
	ID            uuid.UUID
	WeekStart     time.Time
	EquipmentID   string
	Type          MaintenanceType
	Technician    string
	ScheduledDate time.Time
	Status        ScheduleStatus
	CreatedAt     time.Time
}

// ScheduleKey identifies the (equipment, cycle) pair schedule entries and
// conflicts are grouped by.
type ScheduleKey struct {
	EquipmentID string
	Type        MaintenanceType
}

// Key returns the entry's grouping key.
func (e *ScheduleEntry) Key() ScheduleKey {
	return ScheduleKey{EquipmentID: e.EquipmentID, Type: e.Type}
}

// ScheduleResult is the outcome of one orchestration run.
type ScheduleResult struct {
	Success          bool
	TotalAssignments int
	UniqueAssets     int
	Assignments      []Assignment
	Error            string
}
