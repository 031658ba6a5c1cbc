package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType is the kind of sales document.
type DocumentType string

const (
	DocumentInvoice        DocumentType = "INVOICE"
	DocumentDepositReceipt DocumentType = "DEPOSIT_RECEIPT"
)

// IsValid reports whether t is a known document type.
func (t DocumentType) IsValid() bool {
	return t == DocumentInvoice || t == DocumentDepositReceipt
}

// DocumentStatus: issued documents are immutable; corrections void the
// document and issue a new one.
type DocumentStatus string

const (
	DocumentIssued DocumentStatus = "ISSUED"
	DocumentVoid   DocumentStatus = "VOID"
)

// DocumentCounter is the per (dealer, document type) sequence. Created lazily
// on first allocation and mutated only by the allocator, via a single atomic
// increment statement.
type DocumentCounter struct {
	DealerID   string
	Type       DocumentType
	Prefix     string
	LastNumber int64
	UpdatedAt  time.Time
}

// SalesDocument is a frozen, uniquely numbered financial document. The
// snapshot payload is written once at issuance and never patched; the deal it
// came from stays fully editable.
type SalesDocument struct {
	ID       string
	DealID   string
	DealerID string
	Type     DocumentType
	Number   string // formatted, e.g. "INV-00042"
	Sequence int64  // allocated counter value behind Number

	Status     DocumentStatus
	IssuedAt   time.Time
	VoidedAt   *time.Time
	VoidReason string

	// Public access: only the token digest is stored, never the token.
	ShareTokenHash string
	ShareExpiresAt time.Time

	// Wet-signature capture, deposit receipts only.
	BuyerSignedAt  *time.Time
	SellerSignedAt *time.Time

	Snapshot DocumentSnapshot

	CreatedAt time.Time
}

// Voided reports whether the document no longer counts.
func (d *SalesDocument) Voided() bool {
	return d.Status == DocumentVoid
}

// FullySigned reports whether both parties have signed (deposit receipts).
func (d *SalesDocument) FullySigned() bool {
	return d.BuyerSignedAt != nil && d.SellerSignedAt != nil
}

// DocumentSnapshot is the denormalized, self-contained payload of an issued
// document. Every figure needed to reproduce GrandTotal is stored inside it;
// auditing never re-fetches the deal, vehicle or dealer.
type DocumentSnapshot struct {
	Scheme        VATScheme     `json:"scheme"`
	BuyerCategory BuyerCategory `json:"buyerCategory"`
	Channel       SaleChannel   `json:"channel"`

	Vehicle VehicleSnapshot `json:"vehicle"`

	Buyer             PartySnapshot `json:"buyer"`
	InvoiceRecipient  PartySnapshot `json:"invoiceRecipient"`
	DeliveryRecipient PartySnapshot `json:"deliveryRecipient"`

	Lines []DocumentLine `json:"lines"`

	Subtotal       decimal.Decimal `json:"subtotal"`
	TotalVAT       decimal.Decimal `json:"totalVat"`
	Delivery       decimal.Decimal `json:"delivery"`
	DeliveryCredit decimal.Decimal `json:"deliveryCredit"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`

	Payments PaymentSnapshot `json:"payments"`

	PartExchanges []PartExchangeSnapshot `json:"partExchanges,omitempty"`
	PXNetValue    decimal.Decimal        `json:"pxNetValue"`

	BalanceDue decimal.Decimal `json:"balanceDue"`

	WarrantyTerms string `json:"warrantyTerms,omitempty"`
	TermsText     string `json:"termsText"`

	Letterhead LetterheadSnapshot `json:"letterhead"`

	ServiceHistory []ServiceRecordSnapshot `json:"serviceHistory,omitempty"`
}

// VehicleSnapshot is the frozen vehicle description.
type VehicleSnapshot struct {
	Registration string `json:"registration"`
	VIN          string `json:"vin,omitempty"`
	Description  string `json:"description"`
	Colour       string `json:"colour,omitempty"`
	Mileage      int    `json:"mileage"`
}

// PartySnapshot is one of buyer / invoice recipient / delivery recipient.
// The three may differ: buyer is the registered keeper, the invoice recipient
// may be a finance company, delivery may go to a different address.
type PartySnapshot struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// DocumentLine is one priced row on the document.
type DocumentLine struct {
	Kind        string          `json:"kind"` // VEHICLE, ADDON, WARRANTY, DELIVERY, CREDIT
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Net         decimal.Decimal `json:"net"`
	VAT         decimal.Decimal `json:"vat"`
	Gross       decimal.Decimal `json:"gross"`
}

// PaymentSnapshot is the settlement rollup at issuance time.
type PaymentSnapshot struct {
	TotalPaid      decimal.Decimal        `json:"totalPaid"`
	DepositPaid    decimal.Decimal        `json:"depositPaid"`
	FinanceAdvance decimal.Decimal        `json:"financeAdvance"`
	OtherPayments  decimal.Decimal        `json:"otherPayments"`
	Entries        []PaymentEntrySnapshot `json:"entries,omitempty"`
}

// PaymentEntrySnapshot is one non-reversed payment as frozen on the document.
type PaymentEntrySnapshot struct {
	Type   PaymentType     `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method,omitempty"`
	PaidAt time.Time       `json:"paidAt"`
}

// PartExchangeSnapshot is one trade-in as frozen on the document.
type PartExchangeSnapshot struct {
	Registration string          `json:"registration,omitempty"`
	Description  string          `json:"description"`
	Allowance    decimal.Decimal `json:"allowance"`
	Settlement   decimal.Decimal `json:"settlement"`
	NetValue     decimal.Decimal `json:"netValue"`
}

// LetterheadSnapshot freezes the seller branding. LogoURL is time-limited and
// re-signed on each public view, never stored durable.
type LetterheadSnapshot struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	VATNumber     string `json:"vatNumber,omitempty"`
	CompanyNumber string `json:"companyNumber,omitempty"`
	BankName      string `json:"bankName,omitempty"`
	SortCode      string `json:"sortCode,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	LogoURL       string `json:"logoUrl,omitempty"`
}

// ServiceRecordSnapshot annotates the document with known service history.
type ServiceRecordSnapshot struct {
	Date        time.Time `json:"date"`
	Odometer    int       `json:"odometer"`
	Description string    `json:"description"`
	Garage      string    `json:"garage,omitempty"`
}
