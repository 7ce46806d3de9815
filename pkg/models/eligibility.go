package models

// EligibilityStatus classifies one (equipment, maintenance type, week)
// evaluation.
type EligibilityStatus string

const (
	EligibilityDue               EligibilityStatus = "DUE"
	EligibilityNotDue            EligibilityStatus = "NOT_DUE"
	EligibilityRecentlyCompleted EligibilityStatus = "RECENTLY_COMPLETED"
	EligibilityConflicted        EligibilityStatus = "CONFLICTED"
)

// EligibilityResult is the transient outcome of one evaluation. Priority is
// higher-is-more-urgent and only meaningful when Status is DUE.
type EligibilityResult struct {
	Status      EligibilityStatus
	Reason      string
	Priority    int
	DaysOverdue int
}

// Assignment is a candidate (or accepted) PM task for the target week.
type Assignment struct {
	EquipmentID string
	Type        MaintenanceType
	Description string
	Tier        int
	Priority    int
	Reason      string
}
