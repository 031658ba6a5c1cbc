package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// VATScheme is the VAT treatment of the whole sale.
type VATScheme string

const (
	// SchemeMargin taxes only the dealer margin; nothing is itemised to the buyer.
	SchemeMargin VATScheme = "MARGIN"
	// SchemeVATQualifying itemises VAT at the standard rate.
	SchemeVATQualifying VATScheme = "VAT_QUALIFYING"
)

// IsValid reports whether s is a known scheme.
func (s VATScheme) IsValid() bool {
	return s == SchemeMargin || s == SchemeVATQualifying
}

// VATTreatment is the per-line-item VAT treatment, independent of the scheme.
type VATTreatment string

const (
	TreatmentStandard VATTreatment = "STANDARD"
	TreatmentExempt   VATTreatment = "EXEMPT"
)

// SaleChannel distinguishes distance sales (different consumer-rights terms,
// no wet signatures required) from in-person sales.
type SaleChannel string

const (
	ChannelDistance SaleChannel = "DISTANCE"
	ChannelInPerson SaleChannel = "IN_PERSON"
)

// BuyerCategory selects the applicable terms text.
type BuyerCategory string

const (
	BuyerConsumer BuyerCategory = "CONSUMER"
	BuyerBusiness BuyerCategory = "BUSINESS"
)

// DealStatus is the lifecycle state of a sale.
type DealStatus string

const (
	DealStatusDraft        DealStatus = "DRAFT"
	DealStatusDepositTaken DealStatus = "DEPOSIT_TAKEN"
	DealStatusInvoiced     DealStatus = "INVOICED"
	DealStatusDelivered    DealStatus = "DELIVERED"
	DealStatusCompleted    DealStatus = "COMPLETED"
	DealStatusCancelled    DealStatus = "CANCELLED"
)

// IsValid reports whether s is a known status.
func (s DealStatus) IsValid() bool {
	switch s {
	case DealStatusDraft, DealStatusDepositTaken, DealStatusInvoiced,
		DealStatusDelivered, DealStatusCompleted, DealStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s DealStatus) IsTerminal() bool {
	return s == DealStatusCompleted || s == DealStatusCancelled
}

// CanTransitionTo reports whether the target transition is legal.
// CANCELLED is reachable from any non-terminal state.
func (s DealStatus) CanTransitionTo(target DealStatus) bool {
	if target == DealStatusCancelled {
		return !s.IsTerminal()
	}
	switch s {
	case DealStatusDraft:
		return target == DealStatusDepositTaken || target == DealStatusInvoiced
	case DealStatusDepositTaken:
		return target == DealStatusInvoiced
	case DealStatusInvoiced:
		return target == DealStatusDelivered || target == DealStatusDepositTaken
	case DealStatusDelivered:
		return target == DealStatusCompleted
	}
	return false
}

// VehiclePrice holds the agreed vehicle amount. Which fields carry meaning
// depends on the scheme: margin deals price gross only, VAT-qualifying deals
// price net plus VAT. A nil VehiclePrice on the deal means "not priced yet";
// a zero price is valid.
type VehiclePrice struct {
	Net   decimal.Decimal
	VAT   decimal.Decimal
	Gross decimal.Decimal
}

// AddOn is an extra sold with the vehicle (paint protection, mats, GAP...).
type AddOn struct {
	ID        string
	Name      string
	Quantity  decimal.Decimal
	UnitNet   decimal.Decimal
	Treatment VATTreatment
	VATRate   decimal.Decimal // fraction, e.g. 0.20
}

// Net returns quantity * unit net price.
func (a AddOn) Net() decimal.Decimal {
	return a.Quantity.Mul(a.UnitNet)
}

// VAT returns the VAT for the line. Only standard-rated add-ons carry VAT,
// regardless of the deal's scheme.
func (a AddOn) VAT() decimal.Decimal {
	if a.Treatment != TreatmentStandard {
		return decimal.Zero
	}
	return a.Net().Mul(a.VATRate)
}

// Warranty types with no monetary contribution.
const (
	WarrantyTypeTrade = "TRADE" // sold as seen, display-only terms line
	WarrantyTypeNone  = "NONE"
)

// Warranty is the warranty selection on a deal. Included warranties are priced
// gross; net and VAT are derived from the treatment at computation time.
// Included and a trade/no-warranty Type are mutually exclusive.
type Warranty struct {
	Included   bool
	Type       string // empty for a priced warranty, or WarrantyTypeTrade/WarrantyTypeNone
	Gross      decimal.Decimal
	Treatment  VATTreatment
	VATRate    decimal.Decimal
	Months     int
	ClaimLimit decimal.Decimal
}

// FinanceSelection records third-party finance on the deal.
type FinanceSelection struct {
	Active        bool
	CompanyID     string
	CompanyName   string
	Advance       decimal.Decimal
	ToBeConfirmed bool
}

// PartExchange is a trade-in vehicle netted against the sale price.
// Deals may carry a legacy single PartExchange, a PartExchanges list, or both
// during the migration period; every source counts.
type PartExchange struct {
	ID                 string
	Registration       string
	Description        string
	Allowance          decimal.Decimal
	Settlement         decimal.Decimal // outstanding finance settled by the dealer
	VATQualifying      bool
	OutstandingFinance bool
	FinanceCompany     string
}

// NetValue returns allowance minus settlement for this trade-in.
func (p PartExchange) NetValue() decimal.Decimal {
	return p.Allowance.Sub(p.Settlement)
}

// PaymentType buckets payment entries for the settlement rollup.
type PaymentType string

const (
	PaymentDeposit        PaymentType = "DEPOSIT"
	PaymentFinanceAdvance PaymentType = "FINANCE_ADVANCE"
	PaymentOther          PaymentType = "OTHER"
)

// Payment is one money-in entry against a deal. Reversed entries stay on the
// record but never count towards settlement.
type Payment struct {
	ID         string
	DealID     string
	Type       PaymentType
	Amount     decimal.Decimal
	Method     string // CARD, BANK_TRANSFER, CASH, FINANCE...
	PaidAt     time.Time
	Reversed   bool
	ReversedAt *time.Time
}

// Deal is the mutable working record of a vehicle sale. Sales staff edit it
// freely until a document freezes a view of it; issued documents never change
// when the deal is edited afterwards.
type Deal struct {
	ID       string
	DealerID string
	Status   DealStatus

	CustomerID string // buyer; empty until a buyer is attached
	VehicleID  string

	Scheme        VATScheme
	BuyerCategory BuyerCategory
	Channel       SaleChannel

	VehiclePrice *VehiclePrice // nil = not priced yet; zero is a valid price

	AddOns   []AddOn
	Warranty *Warranty
	Finance  *FinanceSelection

	PartExchange  *PartExchange  // legacy single trade-in
	PartExchanges []PartExchange // newer multi trade-in list

	Payments []Payment

	DeliveryFee          decimal.Decimal  // current agreed delivery charge
	DeliveryFeeAtDeposit *decimal.Decimal // fee charged when the deposit was taken
	DeliveryAddress      string

	// Optional overrides; when empty the buyer fills both roles.
	InvoiceRecipientID    string
	InvoiceRecipientName  string
	DeliveryRecipientName string

	CreatedAt      time.Time
	UpdatedAt      time.Time
	DepositTakenAt *time.Time
	InvoicedAt     *time.Time
	DeliveredAt    *time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
}

// NonReversedPayments returns the payment entries that count towards settlement.
func (d *Deal) NonReversedPayments() []Payment {
	out := make([]Payment, 0, len(d.Payments))
	for _, p := range d.Payments {
		if !p.Reversed {
			out = append(out, p)
		}
	}
	return out
}
