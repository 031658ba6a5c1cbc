package postgres

import (
	"context"
	"fmt"

	"github.com/motordesk/dealer-api/internal/domain/entity"
	"github.com/motordesk/dealer-api/internal/domain/repository"
)

var _ repository.ServiceRecordRepository = (*ServiceRecordRepo)(nil)

// ServiceRecordRepo reads service history for document annotation.
type ServiceRecordRepo struct {
	q Querier
}

// NewServiceRecordRepository builds the adapter. Pass a pool or a tx (Querier).
func NewServiceRecordRepository(q Querier) *ServiceRecordRepo {
	return &ServiceRecordRepo{q: q}
}

// ListByVehicle returns the vehicle's known service entries, oldest first.
func (r *ServiceRecordRepo) ListByVehicle(ctx context.Context, vehicleID string) ([]entity.ServiceRecord, error) {
	const query = `
		SELECT id, vehicle_id, service_date, odometer, description, garage
		FROM service_records WHERE vehicle_id = $1 ORDER BY service_date`
	rows, err := r.q.Query(ctx, query, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("list service records: %w", err)
	}
	defer rows.Close()

	var out []entity.ServiceRecord
	for rows.Next() {
		var rec entity.ServiceRecord
		var garage *string
		if err := rows.Scan(&rec.ID, &rec.VehicleID, &rec.Date, &rec.Odometer, &rec.Description, &garage); err != nil {
			return nil, fmt.Errorf("scan service record: %w", err)
		}
		rec.Garage = deref(garage)
		out = append(out, rec)
	}
	return out, rows.Err()
}
