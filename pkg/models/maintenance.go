package models

import "time"

// MaintenanceType identifies a preventive-maintenance cycle.
type MaintenanceType string

const (
	MaintenanceMonthly MaintenanceType = "MONTHLY"
	MaintenanceAnnual  MaintenanceType = "ANNUAL"
)

// ValidMaintenanceType reports whether t is a known PM cycle.
func ValidMaintenanceType(t MaintenanceType) bool {
	return t == MaintenanceMonthly || t == MaintenanceAnnual
}

// MinIntervalDays is the minimum number of days between two completions of
// the same type. A completion more recent than this makes the equipment
// RECENTLY_COMPLETED rather than due.
func (t MaintenanceType) MinIntervalDays() int {
	if t == MaintenanceAnnual {
		return 365
	}
	return 30
}

// MaxIntervalDays is the upper edge of the on-time due window.
func (t MaintenanceType) MaxIntervalDays() int {
	if t == MaintenanceAnnual {
		return 370
	}
	return 35
}

// IdealFrequencyDays is the target spacing between completions. Overdue
// scoring is measured from this value.
func (t MaintenanceType) IdealFrequencyDays() int {
	if t == MaintenanceAnnual {
		return 365
	}
	return 30
}

// CompletionRecord is an immutable historical fact: one finished PM task.
// Created by the completion workflow outside this core; read-only here.
type CompletionRecord struct {
	EquipmentID string
	Type        MaintenanceType
	CompletedAt time.Time
	Technician  string
}
