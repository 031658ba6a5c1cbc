package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/motordesk/dealer-api/internal/domain/entity"
	"github.com/motordesk/dealer-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo is the read adapter over buyer contacts.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository builds the adapter. Pass a pool or a tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// GetByID returns (nil, nil) when the customer does not exist.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	const query = `
		SELECT id, dealer_id, first_name, last_name, email, phone,
		       address_line1, address_line2, town, postcode,
		       created_at, updated_at
		FROM customers WHERE id = $1`

	var c entity.Customer
	var firstName, email, phone, line1, line2, town, postcode *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.DealerID, &firstName, &c.LastName, &email, &phone,
		&line1, &line2, &town, &postcode,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	c.FirstName = deref(firstName)
	c.Email = deref(email)
	c.Phone = deref(phone)
	c.AddressLine1 = deref(line1)
	c.AddressLine2 = deref(line2)
	c.Town = deref(town)
	c.Postcode = deref(postcode)
	return &c, nil
}
