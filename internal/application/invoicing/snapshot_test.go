package invoicing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motordesk/dealer-api/internal/application/invoicing"
	"github.com/motordesk/dealer-api/internal/domain/deal"
	"github.com/motordesk/dealer-api/internal/domain/entity"
)

type fakeServiceRecordRepo struct{ records []entity.ServiceRecord }

func (r *fakeServiceRecordRepo) ListByVehicle(_ context.Context, _ string) ([]entity.ServiceRecord, error) {
	return r.records, nil
}

// snapshotDeal is a fully loaded VAT-qualifying sale: an add-on, an included
// warranty, a waived delivery fee that was charged at deposit, two trade-ins
// and distinct invoice/delivery recipients.
func snapshotDeal() *entity.Deal {
	feeAtDeposit := dec("75.00")
	return &entity.Deal{
		ID:            testDealID,
		DealerID:      testDealerID,
		Status:        entity.DealStatusDepositTaken,
		CustomerID:    "cust-1",
		VehicleID:     "veh-1",
		Scheme:        entity.SchemeVATQualifying,
		BuyerCategory: entity.BuyerBusiness,
		Channel:       entity.ChannelInPerson,
		VehiclePrice:  &entity.VehiclePrice{Net: dec("10000.00"), VAT: dec("2000.00"), Gross: dec("12000.00")},
		AddOns: []entity.AddOn{
			{Name: "Paint protection", Quantity: decimal.NewFromInt(1), UnitNet: dec("100.00"),
				Treatment: entity.TreatmentStandard, VATRate: dec("0.20")},
		},
		Warranty: &entity.Warranty{
			Included: true, Gross: dec("120.00"), Treatment: entity.TreatmentStandard,
			VATRate: dec("0.20"), Months: 12, ClaimLimit: dec("500.00"),
		},
		PartExchange: &entity.PartExchange{Registration: "AB12 CDE", Allowance: dec("3000.00"), Settlement: dec("500.00")},
		PartExchanges: []entity.PartExchange{
			{Registration: "FG34 HIJ", Description: "2015 Ford Fiesta", Allowance: dec("1000.00")},
		},
		Payments: []entity.Payment{
			{ID: "pay-1", DealID: testDealID, Type: entity.PaymentDeposit, Amount: dec("1000.00"), PaidAt: time.Now()},
			{ID: "pay-2", DealID: testDealID, Type: entity.PaymentOther, Amount: dec("200.00"), Reversed: true},
		},
		DeliveryFee:           decimal.Zero,
		DeliveryFeeAtDeposit:  &feeAtDeposit,
		InvoiceRecipientName:  "Northgate Finance",
		DeliveryRecipientName: "Site Office",
		DeliveryAddress:       "Unit 4, Trade Park",
	}
}

func buildSnapshot(t *testing.T, d *entity.Deal) entity.DocumentSnapshot {
	t.Helper()
	first := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	vehicle := &entity.Vehicle{
		ID: "veh-1", Registration: "LX69 XYZ", VIN: "WBA00000000000000",
		Make: "BMW", Model: "320d", Derivative: "M Sport", Colour: "Black",
		Mileage: 41200, FirstRegistered: &first,
	}
	dealer := &entity.Dealer{
		ID: testDealerID, Name: "Motordesk Motors", TradingName: "Motordesk Motors Ltd",
		VATNumber: "GB123456789", LogoKey: "logos/md.png",
		BankName: "Barclays", SortCode: "20-00-00", AccountNumber: "12345678",
	}
	buyer := &entity.Customer{
		ID: "cust-1", FirstName: "Jade", LastName: "Okafor",
		AddressLine1: "1 High St", Town: "Leeds", Postcode: "LS1 1AA",
		Email: "jade@example.com",
	}

	totals, err := deal.ComputeTotals(deal.PricingInput{
		Scheme: d.Scheme, Price: *d.VehiclePrice, AddOns: d.AddOns, Warranty: d.Warranty,
		DeliveryFee: d.DeliveryFee, DeliveryFeeAtDeposit: d.DeliveryFeeAtDeposit,
	})
	require.NoError(t, err)
	breakdown := deal.SummarisePayments(d.Payments)
	pxNet := deal.NetPartExchange(d.PartExchange, d.PartExchanges)

	records := &fakeServiceRecordRepo{records: []entity.ServiceRecord{
		{VehicleID: "veh-1", Date: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), Odometer: 38000, Description: "Oil and filter service", Garage: "BMW Leeds"},
	}}
	builder := invoicing.NewSnapshotBuilder(fakeLogoSigner{}, records)

	snap, err := builder.Build(context.Background(), invoicing.SnapshotInput{
		Deal:     d,
		Vehicle:  vehicle,
		Dealer:   dealer,
		Buyer:    buyer,
		Totals:   totals,
		Payments: breakdown,
		PXNet:    pxNet,
		Balance:  deal.BalanceDue(totals.GrandTotal, breakdown.TotalPaid, pxNet),
		Terms:    "Business in-person terms.",
	})
	require.NoError(t, err)
	return snap
}

func TestSnapshotBuild_SelfContainedTotals(t *testing.T) {
	snap := buildSnapshot(t, snapshotDeal())

	// 10,100 net + 2,020 VAT + 120 warranty − 75 delivery credit.
	assert.True(t, snap.Subtotal.Equal(dec("10100.00")), "subtotal = %s", snap.Subtotal)
	assert.True(t, snap.TotalVAT.Equal(dec("2020.00")), "totalVat = %s", snap.TotalVAT)
	assert.True(t, snap.DeliveryCredit.Equal(dec("75.00")))
	assert.True(t, snap.GrandTotal.Equal(dec("12165.00")), "grandTotal = %s", snap.GrandTotal)

	// The payload must reconcile from its own lines alone.
	lineGross := decimal.Zero
	for _, l := range snap.Lines {
		lineGross = lineGross.Add(l.Gross)
	}
	assert.True(t, lineGross.Equal(snap.GrandTotal), "Σ line gross %s != grandTotal %s", lineGross, snap.GrandTotal)

	// 12,165 − 1,000 deposit (the reversed 200 never counts) − 3,500 PX.
	assert.True(t, snap.Payments.TotalPaid.Equal(dec("1000.00")))
	assert.True(t, snap.PXNetValue.Equal(dec("3500.00")))
	assert.True(t, snap.BalanceDue.Equal(dec("7665.00")), "balanceDue = %s", snap.BalanceDue)
}

func TestSnapshotBuild_Lines(t *testing.T) {
	snap := buildSnapshot(t, snapshotDeal())

	kinds := make([]string, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		kinds = append(kinds, l.Kind)
	}
	// Delivery is waived, so no DELIVERY line; the deposit-time charge comes
	// back as a negative CREDIT line.
	assert.Equal(t, []string{"VEHICLE", "ADDON", "WARRANTY", "CREDIT"}, kinds)

	vehicle := snap.Lines[0]
	assert.True(t, vehicle.Net.Equal(dec("10000.00")))
	assert.True(t, vehicle.VAT.Equal(dec("2000.00")))
	assert.True(t, vehicle.Gross.Equal(dec("12000.00")))

	warranty := snap.Lines[2]
	assert.True(t, warranty.Net.Equal(dec("100.00")))
	assert.True(t, warranty.VAT.Equal(dec("20.00")))
	assert.Contains(t, warranty.Description, "12 month warranty")
	assert.Contains(t, warranty.Description, "£500.00")

	credit := snap.Lines[3]
	assert.True(t, credit.Gross.Equal(dec("-75.00")))
	assert.Contains(t, credit.Description, "£75.00")
}

func TestSnapshotBuild_MarginSchemeShowsNoVAT(t *testing.T) {
	d := snapshotDeal()
	d.Scheme = entity.SchemeMargin
	snap := buildSnapshot(t, d)

	assert.True(t, snap.TotalVAT.IsZero(), "margin documents never itemise VAT")
	vehicle := snap.Lines[0]
	assert.True(t, vehicle.VAT.IsZero())
	assert.True(t, vehicle.Gross.Equal(dec("12000.00")))

	lineGross := decimal.Zero
	for _, l := range snap.Lines {
		lineGross = lineGross.Add(l.Gross)
	}
	assert.True(t, lineGross.Equal(snap.GrandTotal))
}

func TestSnapshotBuild_Parties(t *testing.T) {
	snap := buildSnapshot(t, snapshotDeal())

	assert.Equal(t, "Jade Okafor", snap.Buyer.Name)
	assert.Equal(t, "1 High St, Leeds, LS1 1AA", snap.Buyer.Address)
	assert.Equal(t, "Northgate Finance", snap.InvoiceRecipient.Name)
	assert.Equal(t, "Site Office", snap.DeliveryRecipient.Name)
	assert.Equal(t, "Unit 4, Trade Park", snap.DeliveryRecipient.Address)
}

func TestSnapshotBuild_PartiesDefaultToBuyer(t *testing.T) {
	d := snapshotDeal()
	d.InvoiceRecipientName = ""
	d.DeliveryRecipientName = ""
	d.DeliveryAddress = ""
	snap := buildSnapshot(t, d)

	assert.Equal(t, snap.Buyer, snap.InvoiceRecipient)
	assert.Equal(t, snap.Buyer, snap.DeliveryRecipient)
}

func TestSnapshotBuild_PartExchangesAndExtras(t *testing.T) {
	snap := buildSnapshot(t, snapshotDeal())

	require.Len(t, snap.PartExchanges, 2, "legacy single and list entries both freeze")
	assert.Equal(t, "AB12 CDE", snap.PartExchanges[0].Registration)
	assert.True(t, snap.PartExchanges[0].NetValue.Equal(dec("2500.00")))
	assert.Equal(t, "2015 Ford Fiesta", snap.PartExchanges[1].Description)

	assert.Equal(t, "Motordesk Motors Ltd", snap.Letterhead.Name)
	assert.Equal(t, "GB123456789", snap.Letterhead.VATNumber)
	assert.Contains(t, snap.Letterhead.LogoURL, "logos/md.png")
	assert.Equal(t, "Business in-person terms.", snap.TermsText)
	assert.Equal(t, "2019 BMW 320d M Sport", snap.Vehicle.Description)

	require.Len(t, snap.ServiceHistory, 1)
	assert.Equal(t, "Oil and filter service", snap.ServiceHistory[0].Description)
}
