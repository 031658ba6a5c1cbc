package invoicing

import (
	"context"
	"errors"
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

const defaultInvoicePrefix = "INV-"

// IssueInvoiceUseCase turns an in-progress deal into a numbered, frozen
// invoice document and commits the deal's new status.
type IssueInvoiceUseCase struct {
	deals     repository.DealRepository
	docs      repository.DocumentRepository
	counters  repository.DocumentCounterRepository
	vehicles  repository.VehicleRepository
	dealers   repository.DealerRepository
	customers repository.CustomerRepository
	snapshots *SnapshotBuilder

	shareBaseURL string
	shareTTL     time.Duration

	log *logger.Logger
}

// NewIssueInvoiceUseCase constructs the use case. shareBaseURL is the public
// origin the share link is built on; shareTTL bounds public access.
func NewIssueInvoiceUseCase(
	deals repository.DealRepository,
	docs repository.DocumentRepository,
	counters repository.DocumentCounterRepository,
	vehicles repository.VehicleRepository,
	dealers repository.DealerRepository,
	customers repository.CustomerRepository,
	snapshots *SnapshotBuilder,
	shareBaseURL string,
	shareTTL time.Duration,
	log *logger.Logger,
) *IssueInvoiceUseCase {
	if shareTTL <= 0 {
		shareTTL = share.DefaultTTL
	}
	return &IssueInvoiceUseCase{
		deals:        deals,
		docs:         docs,
		counters:     counters,
		vehicles:     vehicles,
		dealers:      dealers,
		customers:    customers,
		snapshots:    snapshots,
		shareBaseURL: shareBaseURL,
		shareTTL:     shareTTL,
		log:          log,
	}
}

// IssueInvoice runs the full issuance pipeline:
// existing-document short-circuit → guards → behavioral inputs → computation
// → number allocation → share token → snapshot persist → status commit.
//
// The operation is idempotent under retry: a second call (or a retry after a
// crash between document creation and the status update) finds the existing
// non-void invoice, resumes the status update if needed and returns the same
// document instead of allocating a second number.
func (uc *IssueInvoiceUseCase) IssueInvoice(ctx context.Context, dealerID, dealID string, in dto.IssueInvoiceRequest) (*dto.IssueInvoiceResponse, error) {
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
	// A cancelled deal never replays its paperwork, even if an invoice was
	// issued before the cancellation and left unvoided.
	if d.Status == entity.DealStatusCancelled {
		return nil, fmt.Errorf("%w: deal is %s", domain.ErrConflict, d.Status)
	}

	// Cheap existing-document check before any paid work. Protects against
	// duplicate clicks and crash-window retries.
	if existing, err := uc.docs.GetActiveByDealAndType(ctx, dealID, entity.DocumentInvoice); err != nil {
		return nil, err
	} else if existing != nil {
		return uc.resume(ctx, d, existing)
	}

	vehicle, err := uc.vehicles.GetByID(ctx, d.VehicleID)
	if err != nil {
		return nil, err
	}
	receipt, err := uc.docs.GetActiveByDealAndType(ctx, dealID, entity.DocumentDepositReceipt)
	if err != nil {
		return nil, err
	}
	// Guards run before behavioral inputs touch anything: a precondition
	// failure must leave the deal exactly as it was, and a retry after the
	// operator fixes it must not find half-applied finance state.
	if err := deal.CheckInvoiceGuards(deal.InvoiceGuards{Deal: d, Vehicle: vehicle, DepositReceipt: receipt}); err != nil {
		return nil, err
	}

	if err := uc.applyBehavioralInputs(ctx, d, in); err != nil {
		return nil, err
	}

	totals, err := deal.ComputeTotals(pricingInput(d))
	if err != nil {
		return nil, err
	}
	breakdown := deal.SummarisePayments(d.Payments)
	pxNet := deal.NetPartExchange(d.PartExchange, d.PartExchanges)
	balance := deal.BalanceDue(totals.GrandTotal, breakdown.TotalPaid, pxNet)

	dealer, err := uc.dealers.GetByID(ctx, d.DealerID)
	if err != nil {
		return nil, err
	}
	if dealer == nil {
		return nil, domain.ErrNotFound
	}
	buyer, err := uc.customers.GetByID(ctx, d.CustomerID)
	if err != nil {
		return nil, err
	}
	if buyer == nil {
		return nil, domain.NewPrecondition("customerId", "the attached buyer no longer exists")
	}
	terms, err := uc.dealers.GetTermsText(ctx, d.DealerID, d.BuyerCategory, d.Channel)
	if err != nil {
		return nil, err
	}

	// The one true atomic step: nothing past this point may run without a
	// reserved number, and a failure before persisting is recovered by the
	// existing-document check on retry.
	prefix := dealer.InvoicePrefix
	if prefix == "" {
		prefix = defaultInvoicePrefix
	}
	prefix, seq, err := uc.counters.NextNumber(ctx, d.DealerID, entity.DocumentInvoice, prefix)
	if err != nil {
		return nil, err
	}
	number := FormatDocumentNumber(prefix, seq)

	token, err := share.New()
	if err != nil {
		return nil, fmt.Errorf("mint share token: %w", err)
	}

	now := time.Now()
	snapshot, err := uc.snapshots.Build(ctx, SnapshotInput{
		Deal:     d,
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
		Type:           entity.DocumentInvoice,
		Number:         number,
		Sequence:       seq,
		Status:         entity.DocumentIssued,
		IssuedAt:       now,
		ShareTokenHash: token.Hash,
		ShareExpiresAt: now.Add(uc.shareTTL),
		Snapshot:       snapshot,
		CreatedAt:      now,
	}
	if err := uc.docs.Create(ctx, doc); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// Lost a race with a concurrent issuance for the same deal;
			// return the winner's document.
			if existing, lookupErr := uc.docs.GetActiveByDealAndType(ctx, dealID, entity.DocumentInvoice); lookupErr == nil && existing != nil {
				return uc.resume(ctx, d, existing)
			}
		}
		return nil, err
	}

	if err := uc.deals.UpdateStatus(ctx, d.ID, entity.DealStatusInvoiced, now); err != nil {
		// The document exists; a retry resumes through the short-circuit.
		return nil, err
	}

	uc.log.Info().
		Str("deal_id", d.ID).
		Str("document_id", doc.ID).
		Str("document_number", number).
		Str("grand_total", totals.GrandTotal.StringFixed(2)).
		Msg("invoice issued")

	return &dto.IssueInvoiceResponse{
		Success:        true,
		DealID:         d.ID,
		DealStatus:     string(entity.DealStatusInvoiced),
		DocumentID:     doc.ID,
		DocumentNumber: doc.Number,
		ShareToken:     token.Plain,
		ShareURL:       uc.shareURL(token.Plain),
		GrandTotal:     totals.GrandTotal,
		BalanceDue:     balance,
	}, nil
}

// resume is the idempotent short-circuit: an invoice already exists. When the
// previous attempt died between document creation and the status commit, the
// status update is replayed here; otherwise nothing is written. The plain
// share token cannot be returned again (only its digest was kept).
func (uc *IssueInvoiceUseCase) resume(ctx context.Context, d *entity.Deal, existing *entity.SalesDocument) (*dto.IssueInvoiceResponse, error) {
	status := d.Status
	if status == entity.DealStatusDraft || status == entity.DealStatusDepositTaken {
		if err := uc.deals.UpdateStatus(ctx, d.ID, entity.DealStatusInvoiced, time.Now()); err != nil {
			return nil, err
		}
		status = entity.DealStatusInvoiced
		uc.log.Warn().
			Str("deal_id", d.ID).
			Str("document_id", existing.ID).
			Msg("resumed interrupted issuance: document existed without status update")
	}
	return &dto.IssueInvoiceResponse{
		Success:        true,
		DealID:         d.ID,
		DealStatus:     string(status),
		DocumentID:     existing.ID,
		DocumentNumber: existing.Number,
		GrandTotal:     existing.Snapshot.GrandTotal,
		BalanceDue:     existing.Snapshot.BalanceDue,
	}, nil
}

// applyBehavioralInputs mutates the deal's finance selection and payment
// entries before computation, per the request.
func (uc *IssueInvoiceUseCase) applyBehavioralInputs(ctx context.Context, d *entity.Deal, in dto.IssueInvoiceRequest) error {
	if in.CancelFinance {
		if err := uc.deals.SetFinance(ctx, d.ID, nil); err != nil {
			return err
		}
		d.Finance = nil
	}

	if !in.CancelFinance && in.FinanceCompanyID != "" {
		sel := &entity.FinanceSelection{
			Active:      true,
			CompanyID:   in.FinanceCompanyID,
			CompanyName: in.FinanceCompanyName,
		}
		if d.Finance != nil {
			sel.Advance = d.Finance.Advance
		}
		if err := uc.deals.SetFinance(ctx, d.ID, sel); err != nil {
			return err
		}
		d.Finance = sel

		// A confirmed finance company becomes the invoice recipient unless
		// one was set explicitly.
		if d.InvoiceRecipientID == "" && d.InvoiceRecipientName == "" {
			if err := uc.deals.SetInvoiceRecipient(ctx, d.ID, in.FinanceCompanyID, in.FinanceCompanyName); err != nil {
				return err
			}
			d.InvoiceRecipientID = in.FinanceCompanyID
			d.InvoiceRecipientName = in.FinanceCompanyName
		}
	}

	if in.FinanceAdvanceAmount != nil && in.FinanceAdvanceAmount.IsPositive() {
		// A retry of an interrupted issuance must not record the advance
		// twice. One live advance entry per deal.
		for _, p := range d.Payments {
			if p.Type == entity.PaymentFinanceAdvance && !p.Reversed {
				return nil
			}
		}
		method := in.PaymentMethod
		if method == "" {
			method = "FINANCE"
		}
		p := &entity.Payment{
			ID:     uuid.New().String(),
			DealID: d.ID,
			Type:   entity.PaymentFinanceAdvance,
			Amount: *in.FinanceAdvanceAmount,
			Method: method,
			PaidAt: time.Now(),
		}
		if err := uc.deals.AddPayment(ctx, p); err != nil {
			return err
		}
		d.Payments = append(d.Payments, *p)
	}
	return nil
}

// pricingInput assembles the pure computation input from the deal.
func pricingInput(d *entity.Deal) deal.PricingInput {
	price := entity.VehiclePrice{}
	if d.VehiclePrice != nil {
		price = *d.VehiclePrice
	}
	return deal.PricingInput{
		Scheme:               d.Scheme,
		Price:                price,
		AddOns:               d.AddOns,
		Warranty:             d.Warranty,
		DeliveryFee:          d.DeliveryFee,
		DeliveryFeeAtDeposit: d.DeliveryFeeAtDeposit,
	}
}

// FormatDocumentNumber renders an allocated sequence with its prefix, e.g.
// "INV-00042".
func FormatDocumentNumber(prefix string, seq int64) string {
	return fmt.Sprintf("%s%05d", prefix, seq)
}

func (uc *IssueInvoiceUseCase) shareURL(token string) string {
	if uc.shareBaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/api/public/documents/%s", uc.shareBaseURL, token)
}
