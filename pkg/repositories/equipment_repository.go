package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/database"
	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/dates"
	"github.com/StuartB-arch/AIT-CMMS-NEON-sub000/pkg/models"
)

// EquipmentRepository provides read access to the equipment catalog. The
// catalog is owned by equipment-management collaborators; this engine never
// writes it.
type EquipmentRepository interface {
	// ListActive loads the schedulable catalog: equipment whose status is
	// not Missing or RunToFailure and which no collaborator table has
	// flagged as missing or run-to-failure.
	ListActive(ctx context.Context) ([]models.Equipment, error)
	Count(ctx context.Context) (int, error)
}

type equipmentRepository struct{}

// NewEquipmentRepository creates a new equipment repository.
func NewEquipmentRepository() EquipmentRepository {
	return &equipmentRepository{}
}

var _ EquipmentRepository = (*equipmentRepository)(nil)

func (r *equipmentRepository) ListActive(ctx context.Context) ([]models.Equipment, error) {
	scope, ok := database.GetRunScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no run scope in context")
	}

	query := `
		SELECT e.id, e.description, e.requires_monthly, e.requires_annual,
		       e.last_monthly_pm, e.last_annual_pm, e.status
		FROM equipment e
		WHERE UPPER(e.status) NOT IN ('MISSING', 'RUN_TO_FAILURE')
		  AND NOT EXISTS (SELECT 1 FROM missing_equipment m WHERE m.equipment_id = e.id)
		  AND NOT EXISTS (SELECT 1 FROM run_to_failure_log f WHERE f.equipment_id = e.id)
		ORDER BY e.id`

	rows, err := scope.Tx.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active equipment: %w", err)
	}
	defer rows.Close()

	var equipment []models.Equipment
	for rows.Next() {
		var eq models.Equipment
		var status string
		var lastMonthly, lastAnnual *string

		err := rows.Scan(
			&eq.ID,
			&eq.Description,
			&eq.RequiresMonthly,
			&eq.RequiresAnnual,
			&lastMonthly,
			&lastAnnual,
			&status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan equipment row: %w", err)
		}

		eq.Status = models.EquipmentStatus(strings.ToUpper(strings.TrimSpace(status)))

		// Legacy date strings: unparseable values mean "no date on record".
		if lastMonthly != nil {
			if d, ok := dates.Parse(*lastMonthly); ok {
				eq.LastMonthlyPM = &d
			}
		}
		if lastAnnual != nil {
			if d, ok := dates.Parse(*lastAnnual); ok {
				eq.LastAnnualPM = &d
			}
		}

		equipment = append(equipment, eq)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating equipment rows: %w", err)
	}

	return equipment, nil
}

func (r *equipmentRepository) Count(ctx context.Context) (int, error) {
	scope, ok := database.GetRunScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no run scope in context")
	}

	var count int
	if err := scope.Tx.QueryRow(ctx, `SELECT COUNT(*) FROM equipment`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count equipment: %w", err)
	}
	return count, nil
}
