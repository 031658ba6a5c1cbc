package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/motordesk/dealer-api/internal/domain/entity"
)

// IssueInvoiceRequest carries the behavioral inputs applied to the deal
// before computation. All fields are optional.
type IssueInvoiceRequest struct {
	PaymentMethod        string           `json:"paymentMethod,omitempty"`
	FinanceCompanyID     string           `json:"financeCompanyId,omitempty"`
	FinanceCompanyName   string           `json:"financeCompanyName,omitempty"`
	FinanceAdvanceAmount *decimal.Decimal `json:"financeAdvanceAmount,omitempty"`
	CancelFinance        bool             `json:"cancelFinance,omitempty"`
}

// IssueInvoiceResponse is the result of invoice issuance. ShareToken is the
// only time the plain token is ever revealed.
type IssueInvoiceResponse struct {
	Success        bool            `json:"success"`
	DealID         string          `json:"saleId"`
	DealStatus     string          `json:"saleStatus"`
	DocumentID     string          `json:"documentId"`
	DocumentNumber string          `json:"documentNumber"`
	ShareToken     string          `json:"shareToken,omitempty"`
	ShareURL       string          `json:"shareUrl,omitempty"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
	BalanceDue     decimal.Decimal `json:"balanceDue"`
}

// IssueReceiptRequest issues a deposit receipt and records the deposit taken.
type IssueReceiptRequest struct {
	DepositAmount decimal.Decimal `json:"depositAmount"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	DeliveryFee   decimal.Decimal `json:"deliveryFee"`
}

// SignReceiptRequest captures wet signatures on a deposit receipt. Flags only
// set signatures; they never clear them.
type SignReceiptRequest struct {
	BuyerSigned  bool `json:"buyerSigned"`
	SellerSigned bool `json:"sellerSigned"`
}

// VoidDocumentRequest voids an issued document.
type VoidDocumentRequest struct {
	Reason string `json:"reason"`
}

// DocumentResponse is the read model of an issued document, snapshot
// included. Used by both the staff endpoints and the public share view.
type DocumentResponse struct {
	ID             string                  `json:"id"`
	DealID         string                  `json:"saleId"`
	Type           entity.DocumentType     `json:"type"`
	Number         string                  `json:"number"`
	Status         entity.DocumentStatus   `json:"status"`
	IssuedAt       time.Time               `json:"issuedAt"`
	VoidedAt       *time.Time              `json:"voidedAt,omitempty"`
	VoidReason     string                  `json:"voidReason,omitempty"`
	BuyerSignedAt  *time.Time              `json:"buyerSignedAt,omitempty"`
	SellerSignedAt *time.Time              `json:"sellerSignedAt,omitempty"`
	Snapshot       entity.DocumentSnapshot `json:"snapshot"`
}

// NewDocumentResponse maps an entity to the read model.
func NewDocumentResponse(doc *entity.SalesDocument) *DocumentResponse {
	return &DocumentResponse{
		ID:             doc.ID,
		DealID:         doc.DealID,
		Type:           doc.Type,
		Number:         doc.Number,
		Status:         doc.Status,
		IssuedAt:       doc.IssuedAt,
		VoidedAt:       doc.VoidedAt,
		VoidReason:     doc.VoidReason,
		BuyerSignedAt:  doc.BuyerSignedAt,
		SellerSignedAt: doc.SellerSignedAt,
		Snapshot:       doc.Snapshot,
	}
}
