package repository

import (
	"context"

	"github.com/motordesk/dealer-api/internal/domain/entity"
)

// DocumentCounterRepository allocates document numbers. NextNumber must be a
// single atomic increment against durable storage: concurrent callers for the
// same (dealer, type) get distinct, strictly increasing values, never a
// re-read of the same one. A plain read-then-write here is a data race and a
// duplicate invoice number waiting to happen.
//
// On first use for a pair the counter is created with defaultPrefix and the
// first value returned is 1. Failures are infrastructure errors: nothing was
// allocated and the caller may retry.
type DocumentCounterRepository interface {
	NextNumber(ctx context.Context, dealerID string, t entity.DocumentType, defaultPrefix string) (prefix string, number int64, err error)
}
