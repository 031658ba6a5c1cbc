package invoicing

import (
	"context"
	"time"

	"github.com/motordesk/dealer-api/internal/domain/repository"
)

// TxRunner runs fn inside one storage transaction with deal and document
// repositories bound to it. Used where a receipt, its payment entry and the
// status move must land together.
type TxRunner interface {
	RunInvoicing(ctx context.Context, fn func(
		deals repository.DealRepository,
		docs repository.DocumentRepository,
	) error) error
}

// LogoURLSigner issues a time-limited URL for an object in file storage.
// File storage itself is an external collaborator; only this contract is
// consumed here.
type LogoURLSigner interface {
	SignedURL(key string, ttl time.Duration) (string, error)
}
