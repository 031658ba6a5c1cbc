package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/motordesk/dealer-api/internal/domain/entity"
)

// DealRepository is the persistence port for deals. GetByID loads the full
// working record: add-ons, warranty, finance, trade-ins and payments.
type DealRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Deal, error)
	// UpdateStatus moves the deal and stamps the matching lifecycle
	// timestamp. It does not touch any other field.
	UpdateStatus(ctx context.Context, id string, status entity.DealStatus, at time.Time) error
	// SetFinance replaces (or clears, with nil) the finance selection.
	SetFinance(ctx context.Context, id string, f *entity.FinanceSelection) error
	// SetInvoiceRecipient records who the invoice is addressed to.
	SetInvoiceRecipient(ctx context.Context, id, recipientID, recipientName string) error
	// SetDeliveryFeeAtDeposit records the fee charged when the deposit was
	// taken. Both the agreed delivery fee and its frozen at-deposit copy
	// take this value, so the later delivery-credit computation starts from
	// the fee the receipt actually charged.
	SetDeliveryFeeAtDeposit(ctx context.Context, id string, fee decimal.Decimal) error

	AddPayment(ctx context.Context, p *entity.Payment) error
	ReversePayment(ctx context.Context, dealID, paymentID string, at time.Time) error
}
