package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/motordesk/dealer-api/internal/domain/entity"
)

// DealSettlementResponse is the live financial picture of a deal for the
// sales screen. Unlike a document snapshot it is recomputed on every read.
type DealSettlementResponse struct {
	DealID string            `json:"saleId"`
	Status entity.DealStatus `json:"status"`
	Scheme entity.VATScheme  `json:"scheme"`

	Subtotal       decimal.Decimal `json:"subtotal"`
	TotalVAT       decimal.Decimal `json:"totalVat"`
	Delivery       decimal.Decimal `json:"delivery"`
	DeliveryCredit decimal.Decimal `json:"deliveryCredit"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`

	TotalPaid      decimal.Decimal `json:"totalPaid"`
	DepositPaid    decimal.Decimal `json:"depositPaid"`
	FinanceAdvance decimal.Decimal `json:"financeAdvance"`
	OtherPayments  decimal.Decimal `json:"otherPayments"`

	PXNetValue decimal.Decimal `json:"pxNetValue"`
	BalanceDue decimal.Decimal `json:"balanceDue"`
}

// RecordPaymentRequest appends a payment entry to a deal.
type RecordPaymentRequest struct {
	Type   entity.PaymentType `json:"type"`
	Amount decimal.Decimal    `json:"amount"`
	Method string             `json:"method,omitempty"`
	PaidAt *time.Time         `json:"paidAt,omitempty"`
}

// CancelDealRequest cancels a deal with an optional reason.
type CancelDealRequest struct {
	Reason string `json:"reason,omitempty"`
}
