// Package deal holds the pure settlement arithmetic and the lifecycle rules
// for a vehicle sale. Nothing in this package touches storage.
package deal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/motordesk/dealer-api/internal/domain"
	"github.com/motordesk/dealer-api/internal/domain/entity"
	"github.com/motordesk/dealer-api/pkg/money"
)

// PricingInput is everything the VAT computation needs. It is assembled from
// the deal and never read back from storage mid-computation.
type PricingInput struct {
	Scheme   entity.VATScheme
	Price    entity.VehiclePrice
	AddOns   []entity.AddOn
	Warranty *entity.Warranty

	DeliveryFee decimal.Decimal
	// DeliveryFeeAtDeposit is the fee charged when the deposit was taken,
	// nil if no deposit receipt recorded one.
	DeliveryFeeAtDeposit *decimal.Decimal
}

// Totals is the computed financial picture of a deal. All fields are rounded
// to 2dp half up.
type Totals struct {
	Subtotal decimal.Decimal
	TotalVAT decimal.Decimal

	WarrantyNet   decimal.Decimal
	WarrantyVAT   decimal.Decimal
	WarrantyGross decimal.Decimal

	Delivery       decimal.Decimal
	DeliveryCredit decimal.Decimal

	GrandTotal decimal.Decimal
}

// ComputeTotals turns the priced components of a sale into net/VAT/gross
// figures under the deal's VAT scheme.
//
// VAT_QUALIFYING: subtotal = vehicle net + Σ add-on net; totalVAT =
// vehicle VAT + Σ add-on VAT (standard-rated lines only). MARGIN: nothing is
// itemised, subtotal = vehicle gross + Σ add-on net + Σ add-on VAT and
// totalVAT is zero. Either way the warranty gross, delivery fee and delivery
// credit land on the grand total.
func ComputeTotals(in PricingInput) (Totals, error) {
	if !in.Scheme.IsValid() {
		return Totals{}, fmt.Errorf("%w: unknown VAT scheme %q", domain.ErrInvalidInput, in.Scheme)
	}

	warrantyNet, warrantyVAT, warrantyGross, err := warrantyAmounts(in.Warranty)
	if err != nil {
		return Totals{}, err
	}

	var addOnNet, addOnVAT decimal.Decimal
	for _, a := range in.AddOns {
		addOnNet = addOnNet.Add(a.Net())
		// Per-line treatment decides VAT, never the scheme.
		addOnVAT = addOnVAT.Add(a.VAT())
	}

	credit := deliveryCredit(in.DeliveryFee, in.DeliveryFeeAtDeposit)

	t := Totals{
		WarrantyNet:    warrantyNet,
		WarrantyVAT:    warrantyVAT,
		WarrantyGross:  warrantyGross,
		Delivery:       money.Round2(in.DeliveryFee),
		DeliveryCredit: credit,
	}

	switch in.Scheme {
	case entity.SchemeVATQualifying:
		t.Subtotal = money.Round2(in.Price.Net.Add(addOnNet))
		t.TotalVAT = money.Round2(in.Price.VAT.Add(addOnVAT))
	case entity.SchemeMargin:
		t.Subtotal = money.Round2(in.Price.Gross.Add(addOnNet).Add(addOnVAT))
		t.TotalVAT = decimal.Zero
	}

	t.GrandTotal = money.Round2(t.Subtotal.
		Add(t.TotalVAT).
		Add(t.Delivery).
		Add(t.WarrantyGross).
		Sub(t.DeliveryCredit))
	return t, nil
}

// warrantyAmounts derives net/VAT from the warranty's gross price and its own
// treatment. A warranty flagged as trade/no-warranty contributes zero; a
// warranty that is both included and flagged trade is an invalid record and
// is rejected rather than guessed at.
func warrantyAmounts(w *entity.Warranty) (net, vat, gross decimal.Decimal, err error) {
	if w == nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, nil
	}
	if w.Included && w.Type != "" {
		return decimal.Zero, decimal.Zero, decimal.Zero,
			fmt.Errorf("%w: warranty cannot be both included and of type %s", domain.ErrInvalidInput, w.Type)
	}
	if !w.Included {
		return decimal.Zero, decimal.Zero, decimal.Zero, nil
	}
	gross = money.Round2(w.Gross)
	if w.Treatment == entity.TreatmentStandard {
		net = money.Round2(gross.Div(decimal.NewFromInt(1).Add(w.VATRate)))
		vat = gross.Sub(net)
		return net, vat, gross, nil
	}
	return gross, decimal.Zero, gross, nil
}

// deliveryCredit returns the amount to credit back when a delivery fee was
// charged at deposit time but the fee has since been waived. Without this the
// buyer silently pays for delivery that was later removed.
func deliveryCredit(current decimal.Decimal, chargedAtDeposit *decimal.Decimal) decimal.Decimal {
	if chargedAtDeposit == nil || !chargedAtDeposit.IsPositive() {
		return decimal.Zero
	}
	if current.IsZero() {
		return money.Round2(*chargedAtDeposit)
	}
	return decimal.Zero
}

// WarrantyTermsLine returns the display-only terms string for a warranty
// selection. Trade and no-warranty types produce a line and no money.
func WarrantyTermsLine(w *entity.Warranty) string {
	if w == nil {
		return ""
	}
	switch w.Type {
	case entity.WarrantyTypeTrade:
		return "Trade sale: sold as seen, no warranty given or implied."
	case entity.WarrantyTypeNone:
		return "Sold without warranty."
	}
	if !w.Included {
		return ""
	}
	line := fmt.Sprintf("%d month warranty", w.Months)
	if w.ClaimLimit.IsPositive() {
		line += fmt.Sprintf(", claim limit %s", money.FormatGBP(w.ClaimLimit))
	}
	return line + "."
}
