package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/motordesk/dealer-api/internal/domain/entity"
	"github.com/motordesk/dealer-api/internal/domain/repository"
)

var _ repository.VehicleRepository = (*VehicleRepo)(nil)

// VehicleRepo is the read adapter over the stock records.
type VehicleRepo struct {
	q Querier
}

// NewVehicleRepository builds the adapter. Pass a pool or a tx (Querier).
func NewVehicleRepository(q Querier) *VehicleRepo {
	return &VehicleRepo{q: q}
}

// GetByID returns (nil, nil) when the vehicle does not exist.
func (r *VehicleRepo) GetByID(ctx context.Context, id string) (*entity.Vehicle, error) {
	const query = `
		SELECT id, dealer_id, registration, vin, make, model, derivative, colour,
		       mileage, first_registered,
		       acquisition_price, acquisition_date, supplier_name,
		       created_at, updated_at
		FROM vehicles WHERE id = $1`

	var v entity.Vehicle
	var vin, derivative, colour, supplier *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.DealerID, &v.Registration, &vin, &v.Make, &v.Model, &derivative, &colour,
		&v.Mileage, &v.FirstRegistered,
		&v.AcquisitionPrice, &v.AcquisitionDate, &supplier,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	v.VIN = deref(vin)
	v.Derivative = deref(derivative)
	v.Colour = deref(colour)
	v.SupplierName = deref(supplier)
	return &v, nil
}
