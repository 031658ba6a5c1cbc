package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/motordesk/dealer-api/internal/domain/deal"
	"github.com/motordesk/dealer-api/internal/domain/entity"
	"github.com/motordesk/dealer-api/internal/domain/repository"
	"github.com/motordesk/dealer-api/pkg/money"
)

// DefaultLogoURLTTL bounds the letterhead logo link baked into a freshly
// built snapshot; public views re-sign it on each read.
const DefaultLogoURLTTL = 15 * time.Minute

// SnapshotBuilder composes the frozen document payload. Everything the
// payload needs is passed in; after Build the payload is self-contained and
// nothing in it is ever re-fetched or patched.
type SnapshotBuilder struct {
	logoSigner     LogoURLSigner
	serviceRecords repository.ServiceRecordRepository // optional, may be nil
}

// NewSnapshotBuilder constructs the builder. serviceRecords may be nil when
// no service-history source is configured.
func NewSnapshotBuilder(logoSigner LogoURLSigner, serviceRecords repository.ServiceRecordRepository) *SnapshotBuilder {
	return &SnapshotBuilder{logoSigner: logoSigner, serviceRecords: serviceRecords}
}

// SnapshotInput is the full picture at issuance time.
type SnapshotInput struct {
	Deal     *entity.Deal
	Vehicle  *entity.Vehicle
	Dealer   *entity.Dealer
	Buyer    *entity.Customer
	Totals   deal.Totals
	Payments deal.PaymentBreakdown
	PXNet    decimal.Decimal
	Balance  decimal.Decimal
	Terms    string
}

// Build assembles the denormalized snapshot.
func (b *SnapshotBuilder) Build(ctx context.Context, in SnapshotInput) (entity.DocumentSnapshot, error) {
	d := in.Deal

	snap := entity.DocumentSnapshot{
		Scheme:        d.Scheme,
		BuyerCategory: d.BuyerCategory,
		Channel:       d.Channel,
		Vehicle: entity.VehicleSnapshot{
			Registration: in.Vehicle.Registration,
			VIN:          in.Vehicle.VIN,
			Description:  in.Vehicle.Description(),
			Colour:       in.Vehicle.Colour,
			Mileage:      in.Vehicle.Mileage,
		},
		Subtotal:       in.Totals.Subtotal,
		TotalVAT:       in.Totals.TotalVAT,
		Delivery:       in.Totals.Delivery,
		DeliveryCredit: in.Totals.DeliveryCredit,
		GrandTotal:     in.Totals.GrandTotal,
		PXNetValue:     in.PXNet,
		BalanceDue:     in.Balance,
		WarrantyTerms:  deal.WarrantyTermsLine(d.Warranty),
		TermsText:      in.Terms,
	}

	snap.Buyer, snap.InvoiceRecipient, snap.DeliveryRecipient = parties(d, in.Buyer)
	snap.Lines = b.lines(d, in.Totals)
	snap.Payments = paymentSnapshot(d, in.Payments)
	snap.PartExchanges = partExchanges(d)

	letterhead, err := b.letterhead(in.Dealer)
	if err != nil {
		return entity.DocumentSnapshot{}, err
	}
	snap.Letterhead = letterhead

	if b.serviceRecords != nil {
		records, err := b.serviceRecords.ListByVehicle(ctx, in.Vehicle.ID)
		if err == nil {
			for _, r := range records {
				snap.ServiceHistory = append(snap.ServiceHistory, entity.ServiceRecordSnapshot{
					Date:        r.Date,
					Odometer:    r.Odometer,
					Description: r.Description,
					Garage:      r.Garage,
				})
			}
		}
		// Service history only annotates; a failed lookup never blocks issuance.
	}
	return snap, nil
}

// parties resolves buyer, invoice recipient and delivery recipient. The three
// may differ: the invoice may be addressed to a finance company and delivery
// may go to another name/address.
func parties(d *entity.Deal, buyer *entity.Customer) (b, inv, del entity.PartySnapshot) {
	b = entity.PartySnapshot{
		Name:    buyer.FullName(),
		Address: buyer.Address(),
		Email:   buyer.Email,
		Phone:   buyer.Phone,
	}
	inv = b
	if d.InvoiceRecipientName != "" {
		inv = entity.PartySnapshot{Name: d.InvoiceRecipientName}
	}
	del = b
	if d.DeliveryRecipientName != "" || d.DeliveryAddress != "" {
		del = entity.PartySnapshot{Name: d.DeliveryRecipientName, Address: d.DeliveryAddress}
		if del.Name == "" {
			del.Name = b.Name
		}
	}
	return b, inv, del
}

func (b *SnapshotBuilder) lines(d *entity.Deal, t deal.Totals) []entity.DocumentLine {
	one := decimal.NewFromInt(1)
	var lines []entity.DocumentLine

	price := entity.VehiclePrice{}
	if d.VehiclePrice != nil {
		price = *d.VehiclePrice
	}
	switch d.Scheme {
	case entity.SchemeVATQualifying:
		lines = append(lines, entity.DocumentLine{
			Kind: "VEHICLE", Description: "Vehicle sale price", Quantity: one,
			Net: money.Round2(price.Net), VAT: money.Round2(price.VAT),
			Gross: money.Round2(price.Net.Add(price.VAT)),
		})
	default:
		// Margin scheme: gross throughout, nothing itemised.
		lines = append(lines, entity.DocumentLine{
			Kind: "VEHICLE", Description: "Vehicle sale price", Quantity: one,
			Net: money.Round2(price.Gross), Gross: money.Round2(price.Gross),
		})
	}

	for _, a := range d.AddOns {
		lines = append(lines, entity.DocumentLine{
			Kind: "ADDON", Description: a.Name, Quantity: a.Quantity,
			Net:   money.Round2(a.Net()),
			VAT:   money.Round2(a.VAT()),
			Gross: money.Round2(a.Net().Add(a.VAT())),
		})
	}

	if d.Warranty != nil && d.Warranty.Included {
		lines = append(lines, entity.DocumentLine{
			Kind: "WARRANTY", Description: deal.WarrantyTermsLine(d.Warranty), Quantity: one,
			Net: t.WarrantyNet, VAT: t.WarrantyVAT, Gross: t.WarrantyGross,
		})
	}

	if t.Delivery.IsPositive() {
		lines = append(lines, entity.DocumentLine{
			Kind: "DELIVERY", Description: "Delivery", Quantity: one,
			Net: t.Delivery, Gross: t.Delivery,
		})
	}
	if t.DeliveryCredit.IsPositive() {
		lines = append(lines, entity.DocumentLine{
			Kind:        "CREDIT",
			Description: fmt.Sprintf("Delivery charged at deposit (%s), since waived", money.FormatGBP(t.DeliveryCredit)),
			Quantity:    one,
			Net:         t.DeliveryCredit.Neg(),
			Gross:       t.DeliveryCredit.Neg(),
		})
	}
	return lines
}

func paymentSnapshot(d *entity.Deal, b deal.PaymentBreakdown) entity.PaymentSnapshot {
	snap := entity.PaymentSnapshot{
		TotalPaid:      b.TotalPaid,
		DepositPaid:    b.DepositPaid,
		FinanceAdvance: b.FinanceAdvance,
		OtherPayments:  b.OtherPayments,
	}
	for _, p := range d.NonReversedPayments() {
		snap.Entries = append(snap.Entries, entity.PaymentEntrySnapshot{
			Type: p.Type, Amount: p.Amount, Method: p.Method, PaidAt: p.PaidAt,
		})
	}
	return snap
}

func partExchanges(d *entity.Deal) []entity.PartExchangeSnapshot {
	var out []entity.PartExchangeSnapshot
	add := func(px entity.PartExchange) {
		desc := px.Description
		if desc == "" {
			desc = fmt.Sprintf("Part exchange %s", px.Registration)
		}
		out = append(out, entity.PartExchangeSnapshot{
			Registration: px.Registration,
			Description:  desc,
			Allowance:    money.Round2(px.Allowance),
			Settlement:   money.Round2(px.Settlement),
			NetValue:     money.Round2(px.NetValue()),
		})
	}
	if d.PartExchange != nil {
		add(*d.PartExchange)
	}
	for _, px := range d.PartExchanges {
		add(px)
	}
	return out
}

func (b *SnapshotBuilder) letterhead(dealer *entity.Dealer) (entity.LetterheadSnapshot, error) {
	lh := entity.LetterheadSnapshot{
		Name:          dealer.TradingName,
		Phone:         dealer.Phone,
		Email:         dealer.Email,
		VATNumber:     dealer.VATNumber,
		CompanyNumber: dealer.CompanyNumber,
		BankName:      dealer.BankName,
		SortCode:      dealer.SortCode,
		AccountNumber: dealer.AccountNumber,
	}
	if lh.Name == "" {
		lh.Name = dealer.Name
	}
	address := dealer.AddressLine1
	for _, p := range []string{dealer.AddressLine2, dealer.Town, dealer.Postcode} {
		if p != "" {
			address += ", " + p
		}
	}
	lh.Address = address

	if dealer.LogoKey != "" && b.logoSigner != nil {
		url, err := b.logoSigner.SignedURL(dealer.LogoKey, DefaultLogoURLTTL)
		if err != nil {
			return entity.LetterheadSnapshot{}, fmt.Errorf("sign logo url: %w", err)
		}
		lh.LogoURL = url
	}
	return lh, nil
}
