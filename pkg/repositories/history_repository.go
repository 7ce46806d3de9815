package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/database"
	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/dates"
	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/models"
)

// DefaultCompletionWindowDays is the trailing history window bulk loads
// cover when the caller does not override it. 400 days covers an annual
// cycle plus slack.
const DefaultCompletionWindowDays = 400

// HistoryRepository bulk-loads the completion history and override data one
// orchestration run needs, replacing per-equipment queries with single scans
// the evaluator can index in memory.
type HistoryRepository interface {
	// BulkLoadCompletions loads every completion inside the trailing window,
	// grouped by equipment identifier, newest first within each group.
	BulkLoadCompletions(ctx context.Context, windowDays int) (map[string][]models.CompletionRecord, error)

	// BulkLoadAnnualOverrides loads the per-equipment "next annual due"
	// override dates, independent of completion history.
	BulkLoadAnnualOverrides(ctx context.Context) (map[string]time.Time, error)
}

type historyRepository struct{}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository() HistoryRepository {
	return &historyRepository{}
}

var _ HistoryRepository = (*historyRepository)(nil)

func (r *historyRepository) BulkLoadCompletions(ctx context.Context, windowDays int) (map[string][]models.CompletionRecord, error) {
	scope, ok := database.GetRunScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no run scope in context")
	}

	if windowDays <= 0 {
		windowDays = DefaultCompletionWindowDays
	}
	cutoff := dates.Midnight(time.Now().UTC()).AddDate(0, 0, -windowDays)

	query := `
		SELECT equipment_id, pm_type, completed_at, technician
		FROM pm_completions
		WHERE completed_at >= $1
		ORDER BY completed_at DESC, id DESC`

	rows, err := scope.Tx.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk load completions: %w", err)
	}
	defer rows.Close()

	completions := make(map[string][]models.CompletionRecord)
	for rows.Next() {
		var rec models.CompletionRecord
		var pmType string

		if err := rows.Scan(&rec.EquipmentID, &pmType, &rec.CompletedAt, &rec.Technician); err != nil {
			return nil, fmt.Errorf("failed to scan completion row: %w", err)
		}

		rec.Type = models.MaintenanceType(strings.ToUpper(strings.TrimSpace(pmType)))
		completions[rec.EquipmentID] = append(completions[rec.EquipmentID], rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completion rows: %w", err)
	}

	return completions, nil
}

func (r *historyRepository) BulkLoadAnnualOverrides(ctx context.Context) (map[string]time.Time, error) {
	scope, ok := database.GetRunScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no run scope in context")
	}

	rows, err := scope.Tx.Query(ctx, `SELECT equipment_id, next_due FROM annual_pm_overrides`)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk load annual overrides: %w", err)
	}
	defer rows.Close()

	overrides := make(map[string]time.Time)
	for rows.Next() {
		var equipmentID, nextDue string
		if err := rows.Scan(&equipmentID, &nextDue); err != nil {
			return nil, fmt.Errorf("failed to scan annual override row: %w", err)
		}

		// An override with an unparseable date is no override at all.
		if d, ok := dates.Parse(nextDue); ok {
			overrides[equipmentID] = d
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating annual override rows: %w", err)
	}

	return overrides, nil
}
