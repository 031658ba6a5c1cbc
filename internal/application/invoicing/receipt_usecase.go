package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/motordesk/dealer-api/internal/application/dto"
	"github.com/motordesk/dealer-api/internal/domain"
	"github.com/motordesk/dealer-api/internal/domain/deal"
	"github.com/motordesk/dealer-api/internal/domain/entity"
	"github.com/motordesk/dealer-api/internal/domain/repository"
	"github.com/motordesk/dealer-api/internal/domain/share"
	"github.com/motordesk/dealer-api/pkg/logger"
)

const defaultReceiptPrefix = "DR-"

// DepositReceiptUseCase issues deposit receipts and captures their
// signatures. The receipt records the delivery fee charged at deposit time,
// which the invoice later credits back if delivery is waived.
type DepositReceiptUseCase struct {
	tx        TxRunner
	deals     repository.DealRepository
	docs      repository.DocumentRepository
	counters  repository.DocumentCounterRepository
	vehicles  repository.VehicleRepository
	dealers   repository.DealerRepository
	customers repository.CustomerRepository
	snapshots *SnapshotBuilder

	shareTTL time.Duration
	log      *logger.Logger
}

// NewDepositReceiptUseCase constructs the use case.
func NewDepositReceiptUseCase(
	tx TxRunner,
	deals repository.DealRepository,
	docs repository.DocumentRepository,
	counters repository.DocumentCounterRepository,
	vehicles repository.VehicleRepository,
	dealers repository.DealerRepository,
	customers repository.CustomerRepository,
	snapshots *SnapshotBuilder,
	shareTTL time.Duration,
	log *logger.Logger,
) *DepositReceiptUseCase {
	if shareTTL <= 0 {
		shareTTL = share.DefaultTTL
	}
	return &DepositReceiptUseCase{
		tx:        tx,
		deals:     deals,
		docs:      docs,
		counters:  counters,
		vehicles:  vehicles,
		dealers:   dealers,
		customers: customers,
		snapshots: snapshots,
		shareTTL:  shareTTL,
		log:       log,
	}
}

// IssueReceipt takes a deposit against a draft deal: records the payment
// entry, freezes the delivery fee charged today, issues the numbered receipt
// document and moves the deal to DEPOSIT_TAKEN. Payment, document and status
// land in one transaction. Re-invoking against a deal that already holds a
// non-void receipt returns that receipt.
func (uc *DepositReceiptUseCase) IssueReceipt(ctx context.Context, dealerID, dealID string, in dto.IssueReceiptRequest) (*dto.DocumentResponse, error) {
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

	if existing, err := uc.docs.GetActiveByDealAndType(ctx, dealID, entity.DocumentDepositReceipt); err != nil {
		return nil, err
	} else if existing != nil {
		return dto.NewDocumentResponse(existing), nil
	}

	if d.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: deal is %s", domain.ErrConflict, d.Status)
	}
	if !in.DepositAmount.IsPositive() {
		return nil, fmt.Errorf("%w: deposit amount must be positive", domain.ErrInvalidInput)
	}
	if d.CustomerID == "" {
		return nil, domain.NewPrecondition("customerId", "attach a buyer before taking a deposit")
	}
	if d.VehiclePrice == nil {
		return nil, domain.NewPrecondition("vehiclePrice", "agree and record a vehicle sale price")
	}

	vehicle, err := uc.vehicles.GetByID(ctx, d.VehicleID)
	if err != nil {
		return nil, err
	}
	dealer, err := uc.dealers.GetByID(ctx, d.DealerID)
	if err != nil {
		return nil, err
	}
	buyer, err := uc.customers.GetByID(ctx, d.CustomerID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil || dealer == nil || buyer == nil {
		return nil, domain.ErrNotFound
	}
	terms, err := uc.dealers.GetTermsText(ctx, d.DealerID, d.BuyerCategory, d.Channel)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	depositEntry := entity.Payment{
		ID:     uuid.New().String(),
		DealID: d.ID,
		Type:   entity.PaymentDeposit,
		Amount: in.DepositAmount,
		Method: in.PaymentMethod,
		PaidAt: now,
	}

	// Compute with the new deposit and today's delivery fee included.
	d.DeliveryFee = in.DeliveryFee
	payments := append(append([]entity.Payment{}, d.Payments...), depositEntry)
	totals, err := deal.ComputeTotals(pricingInput(d))
	if err != nil {
		return nil, err
	}
	breakdown := deal.SummarisePayments(payments)
	pxNet := deal.NetPartExchange(d.PartExchange, d.PartExchanges)
	balance := deal.BalanceDue(totals.GrandTotal, breakdown.TotalPaid, pxNet)

	prefix := dealer.ReceiptPrefix
	if prefix == "" {
		prefix = defaultReceiptPrefix
	}
	prefix, seq, err := uc.counters.NextNumber(ctx, d.DealerID, entity.DocumentDepositReceipt, prefix)
	if err != nil {
		return nil, err
	}

	token, err := share.New()
	if err != nil {
		return nil, fmt.Errorf("mint share token: %w", err)
	}

	snapDeal := *d
	snapDeal.Payments = payments
	snapshot, err := uc.snapshots.Build(ctx, SnapshotInput{
		Deal:     &snapDeal,
		Vehicle:  vehicle,
		Dealer:   dealer,
		Buyer:    buyer,
		Totals:   totals,
		Payments: breakdown,
		PXNet:    pxNet,
		Balance:  balance,
		Terms:    terms,
	})
	if err != nil {
		return nil, err
	}

	doc := &entity.SalesDocument{
		ID:             uuid.New().String(),
		DealID:         d.ID,
		DealerID:       d.DealerID,
		Type:           entity.DocumentDepositReceipt,
		Number:         FormatDocumentNumber(prefix, seq),
		Sequence:       seq,
		Status:         entity.DocumentIssued,
		IssuedAt:       now,
		ShareTokenHash: token.Hash,
		ShareExpiresAt: now.Add(uc.shareTTL),
		Snapshot:       snapshot,
		CreatedAt:      now,
	}

	err = uc.tx.RunInvoicing(ctx, func(deals repository.DealRepository, docs repository.DocumentRepository) error {
		if err := deals.AddPayment(ctx, &depositEntry); err != nil {
			return err
		}
		if err := deals.SetDeliveryFeeAtDeposit(ctx, d.ID, in.DeliveryFee); err != nil {
			return err
		}
		if err := docs.Create(ctx, doc); err != nil {
			return err
		}
		if d.Status == entity.DealStatusDraft {
			if err := deals.UpdateStatus(ctx, d.ID, entity.DealStatusDepositTaken, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("deal_id", d.ID).
		Str("document_id", doc.ID).
		Str("document_number", doc.Number).
		Str("deposit", in.DepositAmount.StringFixed(2)).
		Msg("deposit receipt issued")

	return dto.NewDocumentResponse(doc), nil
}

// RecordSignatures stamps buyer/seller signature times on a deposit receipt.
// Signatures are append-only: a flag stamps a missing signature, it never
// clears a captured one.
func (uc *DepositReceiptUseCase) RecordSignatures(ctx context.Context, dealerID, documentID string, in dto.SignReceiptRequest) (*dto.DocumentResponse, error) {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if doc.DealerID != dealerID {
		return nil, domain.ErrForbidden
	}
	if doc.Type != entity.DocumentDepositReceipt {
		return nil, fmt.Errorf("%w: signatures are captured on deposit receipts only", domain.ErrInvalidInput)
	}
	if doc.Voided() {
		return nil, fmt.Errorf("%w: document is void", domain.ErrConflict)
	}

	now := time.Now()
	var buyerAt, sellerAt *time.Time
	if in.BuyerSigned && doc.BuyerSignedAt == nil {
		buyerAt = &now
		doc.BuyerSignedAt = &now
	}
	if in.SellerSigned && doc.SellerSignedAt == nil {
		sellerAt = &now
		doc.SellerSignedAt = &now
	}
	if buyerAt != nil || sellerAt != nil {
		if err := uc.docs.SetSignatures(ctx, doc.ID, buyerAt, sellerAt); err != nil {
			return nil, err
		}
	}
	return dto.NewDocumentResponse(doc), nil
}
