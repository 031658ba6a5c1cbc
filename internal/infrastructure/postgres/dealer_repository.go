package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/motordesk/dealer-api/internal/domain/entity"
	"github.com/motordesk/dealer-api/internal/domain/repository"
)

var _ repository.DealerRepository = (*DealerRepo)(nil)

// DealerRepo reads dealer letterhead data and terms templates.
type DealerRepo struct {
	q Querier
}

// NewDealerRepository builds the adapter. Pass a pool or a tx (Querier).
func NewDealerRepository(q Querier) *DealerRepo {
	return &DealerRepo{q: q}
}

// GetByID returns (nil, nil) when the dealer does not exist.
func (r *DealerRepo) GetByID(ctx context.Context, id string) (*entity.Dealer, error) {
	const query = `
		SELECT id, name, trading_name, address_line1, address_line2, town, postcode,
		       phone, email, vat_number, company_number,
		       bank_name, sort_code, account_number, logo_key,
		       invoice_prefix, receipt_prefix,
		       created_at, updated_at
		FROM dealers WHERE id = $1`

	var d entity.Dealer
	var tradingName, line2, town, postcode, phone, email *string
	var vatNo, companyNo, bankName, sortCode, accountNo, logoKey *string
	var invoicePrefix, receiptPrefix *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Name, &tradingName, &d.AddressLine1, &line2, &town, &postcode,
		&phone, &email, &vatNo, &companyNo,
		&bankName, &sortCode, &accountNo, &logoKey,
		&invoicePrefix, &receiptPrefix,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dealer: %w", err)
	}
	d.TradingName = deref(tradingName)
	d.AddressLine2 = deref(line2)
	d.Town = deref(town)
	d.Postcode = deref(postcode)
	d.Phone = deref(phone)
	d.Email = deref(email)
	d.VATNumber = deref(vatNo)
	d.CompanyNumber = deref(companyNo)
	d.BankName = deref(bankName)
	d.SortCode = deref(sortCode)
	d.AccountNumber = deref(accountNo)
	d.LogoKey = deref(logoKey)
	d.InvoicePrefix = deref(invoicePrefix)
	d.ReceiptPrefix = deref(receiptPrefix)
	return &d, nil
}

// GetTermsText returns the terms body for the buyer category and sale
// channel. When no exact template exists it falls back to the dealer's
// default (the row with empty category and channel), then to "".
func (r *DealerRepo) GetTermsText(ctx context.Context, dealerID string, category entity.BuyerCategory, channel entity.SaleChannel) (string, error) {
	const query = `
		SELECT body FROM terms_templates
		WHERE dealer_id = $1
		  AND (buyer_category = $2 OR buyer_category = '')
		  AND (channel = $3 OR channel = '')
		ORDER BY (buyer_category <> '') DESC, (channel <> '') DESC
		LIMIT 1`

	var body string
	err := r.q.QueryRow(ctx, query, dealerID, category, channel).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get terms text: %w", err)
	}
	return body, nil
}
