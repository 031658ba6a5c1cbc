package deal_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motordesk/dealer-api/internal/domain"
	"github.com/motordesk/dealer-api/internal/domain/deal"
	"github.com/motordesk/dealer-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// ComputeTotals is the canary for the settlement arithmetic: these vectors are
// worked by hand and any drift in a branch, a rounding call or the credit
// logic fails immediately.
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func standardAddOn(name, unitNet string) entity.AddOn {
	return entity.AddOn{
		Name:      name,
		Quantity:  decimal.NewFromInt(1),
		UnitNet:   dec(unitNet),
		Treatment: entity.TreatmentStandard,
		VATRate:   dec("0.20"),
	}
}

func TestComputeTotals_VATQualifying_Vector(t *testing.T) {
	// Vehicle net 10,000.00 + VAT 2,000.00, one standard add-on net 100.00
	// (VAT 20.00), delivery 50.00, no warranty, no credit.
	totals, err := deal.ComputeTotals(deal.PricingInput{
		Scheme: entity.SchemeVATQualifying,
		Price: entity.VehiclePrice{
			Net:   dec("10000.00"),
			VAT:   dec("2000.00"),
			Gross: dec("12000.00"),
		},
		AddOns:      []entity.AddOn{standardAddOn("Paint protection", "100.00")},
		DeliveryFee: dec("50.00"),
	})
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(dec("10100.00")), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.TotalVAT.Equal(dec("2020.00")), "totalVAT = %s", totals.TotalVAT)
	assert.True(t, totals.GrandTotal.Equal(dec("12170.00")), "grandTotal = %s", totals.GrandTotal)
}

func TestComputeTotals_Margin_Vector(t *testing.T) {
	// Vehicle gross 12,000.00, one add-on net 100.00 with VAT 20.00, free
	// delivery. Margin scheme never breaks VAT out.
	totals, err := deal.ComputeTotals(deal.PricingInput{
		Scheme: entity.SchemeMargin,
		Price:  entity.VehiclePrice{Gross: dec("12000.00")},
		AddOns: []entity.AddOn{standardAddOn("GAP insurance", "100.00")},
	})
	require.NoError(t, err)

	assert.True(t, totals.TotalVAT.IsZero(), "margin scheme must not itemise VAT")
	assert.True(t, totals.Subtotal.Equal(dec("12120.00")), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.GrandTotal.Equal(dec("12120.00")), "grandTotal = %s", totals.GrandTotal)
}

func TestComputeTotals_ExemptAddOn_NoVATEvenWhenQualifying(t *testing.T) {
	// The line's own treatment decides its VAT, never the deal scheme.
	exempt := entity.AddOn{
		Name:      "Warranty admin",
		Quantity:  decimal.NewFromInt(1),
		UnitNet:   dec("100.00"),
		Treatment: entity.TreatmentExempt,
		VATRate:   dec("0.20"),
	}
	totals, err := deal.ComputeTotals(deal.PricingInput{
		Scheme: entity.SchemeVATQualifying,
		Price:  entity.VehiclePrice{Net: dec("10000.00"), VAT: dec("2000.00")},
		AddOns: []entity.AddOn{exempt},
	})
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(dec("10100.00")))
	assert.True(t, totals.TotalVAT.Equal(dec("2000.00")), "exempt add-on must not add VAT")
}

func TestComputeTotals_DeliveryCredit_WaivedAfterDeposit(t *testing.T) {
	// 75.00 charged at deposit time, delivery later set free: the original
	// charge comes back as a credit instead of silently disappearing.
	charged := dec("75.00")
	totals, err := deal.ComputeTotals(deal.PricingInput{
		Scheme:               entity.SchemeMargin,
		Price:                entity.VehiclePrice{Gross: dec("12000.00")},
		DeliveryFee:          decimal.Zero,
		DeliveryFeeAtDeposit: &charged,
	})
	require.NoError(t, err)

	assert.True(t, totals.DeliveryCredit.Equal(dec("75.00")))
	assert.True(t, totals.GrandTotal.Equal(dec("11925.00")), "grandTotal = %s", totals.GrandTotal)
}

func TestComputeTotals_DeliveryStillCharged_NoCredit(t *testing.T) {
	charged := dec("75.00")
	totals, err := deal.ComputeTotals(deal.PricingInput{
		Scheme:               entity.SchemeMargin,
		Price:                entity.VehiclePrice{Gross: dec("12000.00")},
		DeliveryFee:          dec("75.00"),
		DeliveryFeeAtDeposit: &charged,
	})
	require.NoError(t, err)

	assert.True(t, totals.DeliveryCredit.IsZero())
	assert.True(t, totals.GrandTotal.Equal(dec("12075.00")))
}

func TestComputeTotals_WarrantyStandard_DerivedFromGross(t *testing.T) {
	// Gross 600.00 at 20%: net = 600 / 1.2 = 500.00, VAT = 100.00.
	totals, err := deal.ComputeTotals(deal.PricingInput{
		Scheme: entity.SchemeMargin,
		Price:  entity.VehiclePrice{Gross: dec("12000.00")},
		Warranty: &entity.Warranty{
			Included:  true,
			Gross:     dec("600.00"),
			Treatment: entity.TreatmentStandard,
			VATRate:   dec("0.20"),
			Months:    12,
		},
	})
	require.NoError(t, err)

	assert.True(t, totals.WarrantyNet.Equal(dec("500.00")), "warrantyNet = %s", totals.WarrantyNet)
	assert.True(t, totals.WarrantyVAT.Equal(dec("100.00")), "warrantyVAT = %s", totals.WarrantyVAT)
	assert.True(t, totals.GrandTotal.Equal(dec("12600.00")))
}

func TestComputeTotals_WarrantyExempt_GrossIsNet(t *testing.T) {
	totals, err := deal.ComputeTotals(deal.PricingInput{
		Scheme: entity.SchemeMargin,
		Price:  entity.VehiclePrice{Gross: dec("12000.00")},
		Warranty: &entity.Warranty{
			Included:  true,
			Gross:     dec("600.00"),
			Treatment: entity.TreatmentExempt,
		},
	})
	require.NoError(t, err)

	assert.True(t, totals.WarrantyNet.Equal(dec("600.00")))
	assert.True(t, totals.WarrantyVAT.IsZero())
}

func TestComputeTotals_TradeWarranty_ContributesNothing(t *testing.T) {
	totals, err := deal.ComputeTotals(deal.PricingInput{
		Scheme:   entity.SchemeMargin,
		Price:    entity.VehiclePrice{Gross: dec("12000.00")},
		Warranty: &entity.Warranty{Type: entity.WarrantyTypeTrade, Gross: dec("600.00")},
	})
	require.NoError(t, err)

	assert.True(t, totals.WarrantyGross.IsZero())
	assert.True(t, totals.GrandTotal.Equal(dec("12000.00")))
}

func TestComputeTotals_WarrantyIncludedAndTrade_Rejected(t *testing.T) {
	// Included and trade-type at the same time is an invalid record; the
	// engine refuses rather than picking a precedence.
	_, err := deal.ComputeTotals(deal.PricingInput{
		Scheme:   entity.SchemeMargin,
		Price:    entity.VehiclePrice{Gross: dec("12000.00")},
		Warranty: &entity.Warranty{Included: true, Type: entity.WarrantyTypeTrade, Gross: dec("600.00")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestComputeTotals_UnknownScheme_Rejected(t *testing.T) {
	_, err := deal.ComputeTotals(deal.PricingInput{Scheme: "FLAT_RATE"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWarrantyTermsLine(t *testing.T) {
	assert.Equal(t, "", deal.WarrantyTermsLine(nil))
	assert.Contains(t, deal.WarrantyTermsLine(&entity.Warranty{Type: entity.WarrantyTypeTrade}), "no warranty")
	assert.Contains(t,
		deal.WarrantyTermsLine(&entity.Warranty{Included: true, Months: 12, ClaimLimit: dec("1000")}),
		"12 month warranty")
}
