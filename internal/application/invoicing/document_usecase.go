package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/motordesk/dealer-api/internal/application/dto"
	"github.com/motordesk/dealer-api/internal/domain"
	"github.com/motordesk/dealer-api/internal/domain/entity"
	"github.com/motordesk/dealer-api/internal/domain/repository"
	"github.com/motordesk/dealer-api/internal/domain/share"
	"github.com/motordesk/dealer-api/pkg/logger"
)

// DocumentUseCase reads and voids issued documents, including the public
// share-token path.
type DocumentUseCase struct {
	docs       repository.DocumentRepository
	deals      repository.DealRepository
	dealers    repository.DealerRepository
	logoSigner LogoURLSigner
	log        *logger.Logger
}

// NewDocumentUseCase constructs the use case.
func NewDocumentUseCase(
	docs repository.DocumentRepository,
	deals repository.DealRepository,
	dealers repository.DealerRepository,
	logoSigner LogoURLSigner,
	log *logger.Logger,
) *DocumentUseCase {
	return &DocumentUseCase{docs: docs, deals: deals, dealers: dealers, logoSigner: logoSigner, log: log}
}

// GetByShareToken is the public, unauthenticated read. The presented token is
// digested and looked up; expiry and digest mismatch both surface as a plain
// not-found so callers cannot probe which property failed.
func (uc *DocumentUseCase) GetByShareToken(ctx context.Context, token string) (*dto.DocumentResponse, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	doc, err := uc.docs.GetByTokenHash(ctx, share.Hash(token))
	if err != nil {
		return nil, err
	}
	if doc == nil || !share.Verify(token, doc.ShareTokenHash, doc.ShareExpiresAt, time.Now()) {
		return nil, domain.ErrNotFound
	}

	uc.refreshLogoURL(ctx, doc)
	return dto.NewDocumentResponse(doc), nil
}

// GetByID is the staff read.
func (uc *DocumentUseCase) GetByID(ctx context.Context, dealerID, id string) (*dto.DocumentResponse, error) {
	doc, err := uc.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if doc.DealerID != dealerID {
		return nil, domain.ErrForbidden
	}
	uc.refreshLogoURL(ctx, doc)
	return dto.NewDocumentResponse(doc), nil
}

// ListByDeal returns every document ever issued for a deal, voided included.
func (uc *DocumentUseCase) ListByDeal(ctx context.Context, dealerID, dealID string) ([]*dto.DocumentResponse, error) {
	d, err := uc.deals.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	if d.DealerID != dealerID {
		return nil, domain.ErrForbidden
	}
	docs, err := uc.docs.ListByDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, dto.NewDocumentResponse(doc))
	}
	return out, nil
}

// Void marks a document VOID. Snapshots are never corrected in place: voiding
// an invoice reopens the deal so a corrected document can be issued fresh.
func (uc *DocumentUseCase) Void(ctx context.Context, dealerID, id string, in dto.VoidDocumentRequest) (*dto.DocumentResponse, error) {
	doc, err := uc.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if doc.DealerID != dealerID {
		return nil, domain.ErrForbidden
	}
	if doc.Voided() {
		return nil, fmt.Errorf("%w: document is already void", domain.ErrConflict)
	}

	now := time.Now()
	if err := uc.docs.Void(ctx, doc.ID, in.Reason, now); err != nil {
		return nil, err
	}
	doc.Status = entity.DocumentVoid
	doc.VoidedAt = &now
	doc.VoidReason = in.Reason

	if doc.Type == entity.DocumentInvoice {
		d, err := uc.deals.GetByID(ctx, doc.DealID)
		if err == nil && d != nil && d.Status == entity.DealStatusInvoiced {
			if err := uc.deals.UpdateStatus(ctx, d.ID, entity.DealStatusDepositTaken, now); err != nil {
				return nil, err
			}
		}
	}

	uc.log.Info().
		Str("document_id", doc.ID).
		Str("document_number", doc.Number).
		Str("reason", in.Reason).
		Msg("document voided")
	return dto.NewDocumentResponse(doc), nil
}

// refreshLogoURL re-signs the letterhead logo link for this view. The stored
// snapshot is left untouched; only the response carries the fresh URL.
func (uc *DocumentUseCase) refreshLogoURL(ctx context.Context, doc *entity.SalesDocument) {
	if uc.logoSigner == nil {
		return
	}
	dealer, err := uc.dealers.GetByID(ctx, doc.DealerID)
	if err != nil || dealer == nil || dealer.LogoKey == "" {
		return
	}
	url, err := uc.logoSigner.SignedURL(dealer.LogoKey, DefaultLogoURLTTL)
	if err != nil {
		uc.log.Warn().Err(err).Str("document_id", doc.ID).Msg("could not re-sign logo url")
		return
	}
	doc.Snapshot.Letterhead.LogoURL = url
}
