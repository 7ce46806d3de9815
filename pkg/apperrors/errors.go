package apperrors

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrEmptyRoster         = errors.New("technician roster is empty")
	ErrWeekStartNotMonday  = errors.New("week start must be a Monday")
	ErrWeekRunInProgress   = errors.New("a scheduling run for this week is already in progress")
	ErrCompletedWorkExists = errors.New("week contains completed entries; regeneration would destroy them")
)
