package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/motordesk/dealer-api/internal/domain/entity"
	"github.com/motordesk/dealer-api/internal/domain/repository"
)

var _ repository.DealRepository = (*DealRepo)(nil)

// DealRepo implements DealRepository (usable with pool or tx).
type DealRepo struct {
	q Querier
}

// NewDealRepository builds the adapter. Pass a pool or a tx (Querier).
func NewDealRepository(q Querier) *DealRepo {
	return &DealRepo{q: q}
}

// GetByID loads a deal with its add-ons, trade-ins and payment entries.
// Returns (nil, nil) when the deal does not exist.
func (r *DealRepo) GetByID(ctx context.Context, id string) (*entity.Deal, error) {
	const query = `
		SELECT id, dealer_id, status, customer_id, vehicle_id,
		       scheme, buyer_category, channel,
		       price_net, price_vat, price_gross,
		       warranty_included, warranty_type, warranty_gross, warranty_treatment,
		       warranty_vat_rate, warranty_months, warranty_claim_limit,
		       finance_active, finance_company_id, finance_company_name,
		       finance_advance, finance_tbc,
		       delivery_fee, delivery_fee_at_deposit, delivery_address,
		       invoice_recipient_id, invoice_recipient_name, delivery_recipient_name,
		       created_at, updated_at,
		       deposit_taken_at, invoiced_at, delivered_at, completed_at, cancelled_at
		FROM deals WHERE id = $1`

	var d entity.Deal
	var customerID *string
	var priceNet, priceVAT, priceGross *decimal.Decimal
	var wIncluded *bool
	var wType, wTreatment *string
	var wGross, wVATRate, wClaimLimit *decimal.Decimal
	var wMonths *int
	var fActive, fTBC *bool
	var fCompanyID, fCompanyName *string
	var fAdvance *decimal.Decimal
	var deliveryAddress, invRecipID, invRecipName, delRecipName *string

	err := r.q.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.DealerID, &d.Status, &customerID, &d.VehicleID,
		&d.Scheme, &d.BuyerCategory, &d.Channel,
		&priceNet, &priceVAT, &priceGross,
		&wIncluded, &wType, &wGross, &wTreatment,
		&wVATRate, &wMonths, &wClaimLimit,
		&fActive, &fCompanyID, &fCompanyName,
		&fAdvance, &fTBC,
		&d.DeliveryFee, &d.DeliveryFeeAtDeposit, &deliveryAddress,
		&invRecipID, &invRecipName, &delRecipName,
		&d.CreatedAt, &d.UpdatedAt,
		&d.DepositTakenAt, &d.InvoicedAt, &d.DeliveredAt, &d.CompletedAt, &d.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get deal: %w", err)
	}

	d.CustomerID = deref(customerID)
	d.DeliveryAddress = deref(deliveryAddress)
	d.InvoiceRecipientID = deref(invRecipID)
	d.InvoiceRecipientName = deref(invRecipName)
	d.DeliveryRecipientName = deref(delRecipName)

	// price_gross NULL means the vehicle has not been priced; a zero price is
	// stored as zero and stays valid.
	if priceGross != nil {
		p := entity.VehiclePrice{Gross: *priceGross}
		if priceNet != nil {
			p.Net = *priceNet
		}
		if priceVAT != nil {
			p.VAT = *priceVAT
		}
		d.VehiclePrice = &p
	}

	if wIncluded != nil {
		w := entity.Warranty{
			Included:  *wIncluded,
			Type:      deref(wType),
			Treatment: entity.VATTreatment(deref(wTreatment)),
		}
		if wGross != nil {
			w.Gross = *wGross
		}
		if wVATRate != nil {
			w.VATRate = *wVATRate
		}
		if wMonths != nil {
			w.Months = *wMonths
		}
		if wClaimLimit != nil {
			w.ClaimLimit = *wClaimLimit
		}
		d.Warranty = &w
	}

	if fActive != nil {
		f := entity.FinanceSelection{
			Active:      *fActive,
			CompanyID:   deref(fCompanyID),
			CompanyName: deref(fCompanyName),
		}
		if fAdvance != nil {
			f.Advance = *fAdvance
		}
		if fTBC != nil {
			f.ToBeConfirmed = *fTBC
		}
		d.Finance = &f
	}

	if err := r.loadAddOns(ctx, &d); err != nil {
		return nil, err
	}
	if err := r.loadPartExchanges(ctx, &d); err != nil {
		return nil, err
	}
	if err := r.loadPayments(ctx, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DealRepo) loadAddOns(ctx context.Context, d *entity.Deal) error {
	const query = `
		SELECT id, name, quantity, unit_net, treatment, vat_rate
		FROM deal_addons WHERE deal_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, d.ID)
	if err != nil {
		return fmt.Errorf("list deal addons: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a entity.AddOn
		if err := rows.Scan(&a.ID, &a.Name, &a.Quantity, &a.UnitNet, &a.Treatment, &a.VATRate); err != nil {
			return fmt.Errorf("scan addon: %w", err)
		}
		d.AddOns = append(d.AddOns, a)
	}
	return rows.Err()
}

func (r *DealRepo) loadPartExchanges(ctx context.Context, d *entity.Deal) error {
	const query = `
		SELECT id, registration, description, allowance, settlement,
		       vat_qualifying, outstanding_finance, finance_company, is_legacy
		FROM deal_part_exchanges WHERE deal_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, d.ID)
	if err != nil {
		return fmt.Errorf("list part exchanges: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var px entity.PartExchange
		var reg, desc, finCo *string
		var legacy bool
		if err := rows.Scan(&px.ID, &reg, &desc, &px.Allowance, &px.Settlement,
			&px.VATQualifying, &px.OutstandingFinance, &finCo, &legacy); err != nil {
			return fmt.Errorf("scan part exchange: %w", err)
		}
		px.Registration = deref(reg)
		px.Description = deref(desc)
		px.FinanceCompany = deref(finCo)
		// Older records keep the single trade-in slot; newer ones land in the
		// list. Settlement arithmetic folds both in.
		if legacy && d.PartExchange == nil {
			p := px
			d.PartExchange = &p
			continue
		}
		d.PartExchanges = append(d.PartExchanges, px)
	}
	return rows.Err()
}

func (r *DealRepo) loadPayments(ctx context.Context, d *entity.Deal) error {
	const query = `
		SELECT id, type, amount, method, paid_at, reversed, reversed_at
		FROM deal_payments WHERE deal_id = $1 ORDER BY paid_at`
	rows, err := r.q.Query(ctx, query, d.ID)
	if err != nil {
		return fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p := entity.Payment{DealID: d.ID}
		var method *string
		if err := rows.Scan(&p.ID, &p.Type, &p.Amount, &method, &p.PaidAt, &p.Reversed, &p.ReversedAt); err != nil {
			return fmt.Errorf("scan payment: %w", err)
		}
		p.Method = deref(method)
		d.Payments = append(d.Payments, p)
	}
	return rows.Err()
}

// UpdateStatus moves the deal and stamps the matching lifecycle timestamp.
func (r *DealRepo) UpdateStatus(ctx context.Context, id string, status entity.DealStatus, at time.Time) error {
	stampCol := map[entity.DealStatus]string{
		entity.DealStatusDepositTaken: "deposit_taken_at",
		entity.DealStatusInvoiced:     "invoiced_at",
		entity.DealStatusDelivered:    "delivered_at",
		entity.DealStatusCompleted:    "completed_at",
		entity.DealStatusCancelled:    "cancelled_at",
	}[status]

	query := `UPDATE deals SET status = $2, updated_at = $3 WHERE id = $1`
	if stampCol != "" {
		query = fmt.Sprintf(`UPDATE deals SET status = $2, updated_at = $3, %s = $3 WHERE id = $1`, stampCol)
	}
	tag, err := r.q.Exec(ctx, query, id, status, at)
	if err != nil {
		return fmt.Errorf("update deal status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update deal status: deal %s not found", id)
	}
	return nil
}

// SetFinance replaces the finance selection. nil clears it.
func (r *DealRepo) SetFinance(ctx context.Context, id string, f *entity.FinanceSelection) error {
	const query = `
		UPDATE deals
		SET finance_active = $2, finance_company_id = $3, finance_company_name = $4,
		    finance_advance = $5, finance_tbc = $6, updated_at = now()
		WHERE id = $1`
	var (
		active, tbc            *bool
		companyID, companyName *string
		advance                *decimal.Decimal
	)
	if f != nil {
		active = &f.Active
		tbc = &f.ToBeConfirmed
		companyID = nullIfEmpty(f.CompanyID)
		companyName = nullIfEmpty(f.CompanyName)
		advance = &f.Advance
	}
	if _, err := r.q.Exec(ctx, query, id, active, companyID, companyName, advance, tbc); err != nil {
		return fmt.Errorf("set finance: %w", err)
	}
	return nil
}

// SetInvoiceRecipient overrides who the invoice is addressed to.
func (r *DealRepo) SetInvoiceRecipient(ctx context.Context, id, recipientID, recipientName string) error {
	const query = `
		UPDATE deals
		SET invoice_recipient_id = $2, invoice_recipient_name = $3, updated_at = now()
		WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, id, nullIfEmpty(recipientID), nullIfEmpty(recipientName)); err != nil {
		return fmt.Errorf("set invoice recipient: %w", err)
	}
	return nil
}

// SetDeliveryFeeAtDeposit records the delivery fee charged when the deposit
// was taken. The agreed fee is overwritten too, otherwise a stored fee that
// disagrees with the receipt would fake a waived-delivery credit later.
func (r *DealRepo) SetDeliveryFeeAtDeposit(ctx context.Context, id string, fee decimal.Decimal) error {
	const query = `UPDATE deals SET delivery_fee = $2, delivery_fee_at_deposit = $2, updated_at = now() WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, id, fee); err != nil {
		return fmt.Errorf("set delivery fee at deposit: %w", err)
	}
	return nil
}

// AddPayment appends a payment entry.
func (r *DealRepo) AddPayment(ctx context.Context, p *entity.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	const query = `
		INSERT INTO deal_payments (id, deal_id, type, amount, method, paid_at, reversed)
		VALUES ($1, $2, $3, $4, $5, $6, false)`
	if _, err := r.q.Exec(ctx, query, p.ID, p.DealID, p.Type, p.Amount, nullIfEmpty(p.Method), p.PaidAt); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// ReversePayment flags an entry as reversed; the row stays for the audit
// trail.
func (r *DealRepo) ReversePayment(ctx context.Context, dealID, paymentID string, at time.Time) error {
	const query = `
		UPDATE deal_payments SET reversed = true, reversed_at = $3
		WHERE id = $2 AND deal_id = $1 AND NOT reversed`
	tag, err := r.q.Exec(ctx, query, dealID, paymentID, at)
	if err != nil {
		return fmt.Errorf("reverse payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reverse payment: payment %s not found or already reversed", paymentID)
	}
	return nil
}
