package repository

import (
	"context"
	"time"

	"github.com/motordesk/dealer-api/internal/domain/entity"
)

// DocumentRepository is the persistence port for issued documents. Snapshots
// are written once by Create and never updated; only status, void metadata
// and signature timestamps may change afterwards.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.SalesDocument) error
	GetByID(ctx context.Context, id string) (*entity.SalesDocument, error)
	// GetActiveByDealAndType returns the single non-void document of the
	// given type for a deal, or nil when none exists. This is the
	// existing-document check that makes issuance idempotent.
	GetActiveByDealAndType(ctx context.Context, dealID string, t entity.DocumentType) (*entity.SalesDocument, error)
	// GetByTokenHash looks a document up by its stored share-token digest.
	GetByTokenHash(ctx context.Context, hash string) (*entity.SalesDocument, error)
	ListByDeal(ctx context.Context, dealID string) ([]*entity.SalesDocument, error)

	Void(ctx context.Context, id, reason string, at time.Time) error
	// SetSignatures stamps whichever signature times are non-nil; already
	// captured signatures are never cleared.
	SetSignatures(ctx context.Context, id string, buyerSignedAt, sellerSignedAt *time.Time) error
}
