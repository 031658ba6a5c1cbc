package postgres

import (
	"context"
	"fmt"

	"github.com/motordesk/dealer-api/internal/domain"
	"github.com/motordesk/dealer-api/internal/domain/entity"
	"github.com/motordesk/dealer-api/internal/domain/repository"
)

var _ repository.DocumentCounterRepository = (*CounterRepo)(nil)

// CounterRepo allocates document numbers from per-(dealer, type) counters.
type CounterRepo struct {
	q Querier
}

// NewCounterRepository builds the adapter. Pass a pool or a tx (Querier).
func NewCounterRepository(q Querier) *CounterRepo {
	return &CounterRepo{q: q}
}

// NextNumber reserves the next sequence number for the dealer and document
// type. The whole read-increment-write happens in one statement, so two
// concurrent callers can never observe the same value: the row is created on
// first use and the ON CONFLICT arm increments under the row lock. A
// reserved number is burned even if the caller later fails; sequences may
// gap but never repeat.
func (r *CounterRepo) NextNumber(ctx context.Context, dealerID string, t entity.DocumentType, defaultPrefix string) (string, int64, error) {
	const query = `
		INSERT INTO document_counters (dealer_id, doc_type, prefix, last_number)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (dealer_id, doc_type)
		DO UPDATE SET last_number = document_counters.last_number + 1
		RETURNING prefix, last_number`

	var prefix string
	var number int64
	if err := r.q.QueryRow(ctx, query, dealerID, t, defaultPrefix).Scan(&prefix, &number); err != nil {
		// Allocation has no partial-failure mode; callers can retry.
		return "", 0, fmt.Errorf("%w: allocate document number: %v", domain.ErrStorageUnavailable, err)
	}
	return prefix, number, nil
}
