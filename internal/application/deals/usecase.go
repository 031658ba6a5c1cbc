// Package deals exposes the day-to-day deal operations around the invoicing
// engine: the live settlement view, payment entries and lifecycle moves.
package deals

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
	"github.com/motordesk/dealer-api/pkg/logger"
)

// DealUseCase wraps the deal repository with the settlement arithmetic and
// the state machine.
type DealUseCase struct {
	deals repository.DealRepository
	log   *logger.Logger
}

// NewDealUseCase constructs the use case.
func NewDealUseCase(deals repository.DealRepository, log *logger.Logger) *DealUseCase {
	return &DealUseCase{deals: deals, log: log}
}

// GetSettlement computes the live financial picture of a deal. Unlike an
// issued document this is recomputed from the current record on every call.
func (uc *DealUseCase) GetSettlement(ctx context.Context, dealerID, dealID string) (*dto.DealSettlementResponse, error) {
	d, err := uc.load(ctx, dealerID, dealID)
	if err != nil {
		return nil, err
	}

	price := entity.VehiclePrice{}
	if d.VehiclePrice != nil {
		price = *d.VehiclePrice
	}
	totals, err := deal.ComputeTotals(deal.PricingInput{
		Scheme:               d.Scheme,
		Price:                price,
		AddOns:               d.AddOns,
		Warranty:             d.Warranty,
		DeliveryFee:          d.DeliveryFee,
		DeliveryFeeAtDeposit: d.DeliveryFeeAtDeposit,
	})
	if err != nil {
		return nil, err
	}
	breakdown := deal.SummarisePayments(d.Payments)
	pxNet := deal.NetPartExchange(d.PartExchange, d.PartExchanges)

	return &dto.DealSettlementResponse{
		DealID:         d.ID,
		Status:         d.Status,
		Scheme:         d.Scheme,
		Subtotal:       totals.Subtotal,
		TotalVAT:       totals.TotalVAT,
		Delivery:       totals.Delivery,
		DeliveryCredit: totals.DeliveryCredit,
		GrandTotal:     totals.GrandTotal,
		TotalPaid:      breakdown.TotalPaid,
		DepositPaid:    breakdown.DepositPaid,
		FinanceAdvance: breakdown.FinanceAdvance,
		OtherPayments:  breakdown.OtherPayments,
		PXNetValue:     pxNet,
		BalanceDue:     deal.BalanceDue(totals.GrandTotal, breakdown.TotalPaid, pxNet),
	}, nil
}

// RecordPayment appends a payment entry. Finance advances are recorded by the
// invoicing flow; this endpoint takes deposits and ad-hoc payments.
func (uc *DealUseCase) RecordPayment(ctx context.Context, dealerID, dealID string, in dto.RecordPaymentRequest) error {
	d, err := uc.load(ctx, dealerID, dealID)
	if err != nil {
		return err
	}
	if d.Status.IsTerminal() {
		return fmt.Errorf("%w: deal is %s", domain.ErrConflict, d.Status)
	}
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: payment amount must be positive", domain.ErrInvalidInput)
	}
	switch in.Type {
	case entity.PaymentDeposit, entity.PaymentFinanceAdvance, entity.PaymentOther:
	default:
		return fmt.Errorf("%w: unknown payment type %q", domain.ErrInvalidInput, in.Type)
	}

	paidAt := time.Now()
	if in.PaidAt != nil {
		paidAt = *in.PaidAt
	}
	return uc.deals.AddPayment(ctx, &entity.Payment{
		ID:     uuid.New().String(),
		DealID: d.ID,
		Type:   in.Type,
		Amount: in.Amount,
		Method: in.Method,
		PaidAt: paidAt,
	})
}

// ReversePayment flags an entry as reversed. The entry stays on the record
// and simply stops counting towards settlement.
func (uc *DealUseCase) ReversePayment(ctx context.Context, dealerID, dealID, paymentID string) error {
	d, err := uc.load(ctx, dealerID, dealID)
	if err != nil {
		return err
	}
	for _, p := range d.Payments {
		if p.ID == paymentID {
			if p.Reversed {
				return fmt.Errorf("%w: payment is already reversed", domain.ErrConflict)
			}
			return uc.deals.ReversePayment(ctx, d.ID, paymentID, time.Now())
		}
	}
	return domain.ErrNotFound
}

// MarkDelivered moves INVOICED → DELIVERED.
func (uc *DealUseCase) MarkDelivered(ctx context.Context, dealerID, dealID string) error {
	return uc.transition(ctx, dealerID, dealID, entity.DealStatusDelivered)
}

// MarkCompleted moves DELIVERED → COMPLETED.
func (uc *DealUseCase) MarkCompleted(ctx context.Context, dealerID, dealID string) error {
	return uc.transition(ctx, dealerID, dealID, entity.DealStatusCompleted)
}

// Cancel cancels a deal from any non-terminal state.
func (uc *DealUseCase) Cancel(ctx context.Context, dealerID, dealID string, in dto.CancelDealRequest) error {
	err := uc.transition(ctx, dealerID, dealID, entity.DealStatusCancelled)
	if err == nil {
		uc.log.Info().Str("deal_id", dealID).Str("reason", in.Reason).Msg("deal cancelled")
	}
	return err
}

func (uc *DealUseCase) transition(ctx context.Context, dealerID, dealID string, target entity.DealStatus) error {
	d, err := uc.load(ctx, dealerID, dealID)
	if err != nil {
		return err
	}
	if err := deal.Transition(d.Status, target); err != nil {
		return err
	}
	return uc.deals.UpdateStatus(ctx, d.ID, target, time.Now())
}

func (uc *DealUseCase) load(ctx context.Context, dealerID, dealID string) (*entity.Deal, error) {
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
	return d, nil
}
