package invoicing_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/motordesk/dealer-api/internal/application/invoicing"
	"github.com/motordesk/dealer-api/internal/domain/entity"
	"github.com/motordesk/dealer-api/internal/domain/repository"
	"github.com/motordesk/dealer-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// In-memory repository fakes. They honor the same contracts as the Postgres
// adapters, including the atomic-increment guarantee of the counter.
// ──────────────────────────────────────────────────────────────────────────────

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "development", Level: "error"})
}

type fakeDealRepo struct {
	mu    sync.Mutex
	deals map[string]*entity.Deal
}

var _ repository.DealRepository = (*fakeDealRepo)(nil)

func newFakeDealRepo(deals ...*entity.Deal) *fakeDealRepo {
	r := &fakeDealRepo{deals: map[string]*entity.Deal{}}
	for _, d := range deals {
		r.deals[d.ID] = d
	}
	return r
}

func (r *fakeDealRepo) GetByID(_ context.Context, id string) (*entity.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deals[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDealRepo) UpdateStatus(_ context.Context, id string, status entity.DealStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deals[id]
	if !ok {
		return fmt.Errorf("deal %s not found", id)
	}
	d.Status = status
	switch status {
	case entity.DealStatusDepositTaken:
		d.DepositTakenAt = &at
	case entity.DealStatusInvoiced:
		d.InvoicedAt = &at
	case entity.DealStatusDelivered:
		d.DeliveredAt = &at
	case entity.DealStatusCompleted:
		d.CompletedAt = &at
	case entity.DealStatusCancelled:
		d.CancelledAt = &at
	}
	return nil
}

func (r *fakeDealRepo) SetFinance(_ context.Context, id string, f *entity.FinanceSelection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deals[id].Finance = f
	return nil
}

func (r *fakeDealRepo) SetInvoiceRecipient(_ context.Context, id, recipientID, recipientName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deals[id].InvoiceRecipientID = recipientID
	r.deals[id].InvoiceRecipientName = recipientName
	return nil
}

func (r *fakeDealRepo) SetDeliveryFeeAtDeposit(_ context.Context, id string, fee decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := fee
	r.deals[id].DeliveryFee = fee
	r.deals[id].DeliveryFeeAtDeposit = &f
	return nil
}

func (r *fakeDealRepo) AddPayment(_ context.Context, p *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deals[p.DealID]
	if !ok {
		return fmt.Errorf("deal %s not found", p.DealID)
	}
	d.Payments = append(d.Payments, *p)
	return nil
}

func (r *fakeDealRepo) ReversePayment(_ context.Context, dealID, paymentID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.deals[dealID]
	for i := range d.Payments {
		if d.Payments[i].ID == paymentID {
			d.Payments[i].Reversed = true
			d.Payments[i].ReversedAt = &at
			return nil
		}
	}
	return fmt.Errorf("payment %s not found", paymentID)
}

type fakeDocRepo struct {
	mu   sync.Mutex
	docs map[string]*entity.SalesDocument
}

var _ repository.DocumentRepository = (*fakeDocRepo)(nil)

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: map[string]*entity.SalesDocument{}}
}

func (r *fakeDocRepo) Create(_ context.Context, doc *entity.SalesDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeDocRepo) GetByID(_ context.Context, id string) (*entity.SalesDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeDocRepo) GetActiveByDealAndType(_ context.Context, dealID string, t entity.DocumentType) (*entity.SalesDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.DealID == dealID && doc.Type == t && doc.Status != entity.DocumentVoid {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeDocRepo) GetByTokenHash(_ context.Context, hash string) (*entity.SalesDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.ShareTokenHash == hash {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeDocRepo) ListByDeal(_ context.Context, dealID string) ([]*entity.SalesDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.SalesDocument
	for _, doc := range r.docs {
		if doc.DealID == dealID {
			cp := *doc
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeDocRepo) Void(_ context.Context, id, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return fmt.Errorf("document %s not found", id)
	}
	doc.Status = entity.DocumentVoid
	doc.VoidReason = reason
	doc.VoidedAt = &at
	return nil
}

func (r *fakeDocRepo) SetSignatures(_ context.Context, id string, buyerSignedAt, sellerSignedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return fmt.Errorf("document %s not found", id)
	}
	if buyerSignedAt != nil {
		doc.BuyerSignedAt = buyerSignedAt
	}
	if sellerSignedAt != nil {
		doc.SellerSignedAt = sellerSignedAt
	}
	return nil
}

// fakeCounterRepo serialises increments with a mutex, mirroring the atomic
// UPSERT the Postgres adapter performs in a single statement.
type fakeCounterRepo struct {
	mu       sync.Mutex
	counters map[string]*entity.DocumentCounter
}

var _ repository.DocumentCounterRepository = (*fakeCounterRepo)(nil)

func newFakeCounterRepo() *fakeCounterRepo {
	return &fakeCounterRepo{counters: map[string]*entity.DocumentCounter{}}
}

func (r *fakeCounterRepo) NextNumber(_ context.Context, dealerID string, t entity.DocumentType, defaultPrefix string) (string, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := dealerID + "|" + string(t)
	c, ok := r.counters[key]
	if !ok {
		c = &entity.DocumentCounter{DealerID: dealerID, Type: t, Prefix: defaultPrefix}
		r.counters[key] = c
	}
	c.LastNumber++
	return c.Prefix, c.LastNumber, nil
}

type fakeVehicleRepo struct{ vehicles map[string]*entity.Vehicle }

var _ repository.VehicleRepository = (*fakeVehicleRepo)(nil)

func (r *fakeVehicleRepo) GetByID(_ context.Context, id string) (*entity.Vehicle, error) {
	return r.vehicles[id], nil
}

type fakeDealerRepo struct {
	dealers map[string]*entity.Dealer
	terms   string
}

var _ repository.DealerRepository = (*fakeDealerRepo)(nil)

func (r *fakeDealerRepo) GetByID(_ context.Context, id string) (*entity.Dealer, error) {
	return r.dealers[id], nil
}

func (r *fakeDealerRepo) GetTermsText(_ context.Context, _ string, category entity.BuyerCategory, channel entity.SaleChannel) (string, error) {
	if r.terms != "" {
		return r.terms, nil
	}
	return fmt.Sprintf("terms for %s/%s", category, channel), nil
}

type fakeCustomerRepo struct{ customers map[string]*entity.Customer }

var _ repository.CustomerRepository = (*fakeCustomerRepo)(nil)

func (r *fakeCustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	return r.customers[id], nil
}

type fakeLogoSigner struct{}

var _ invoicing.LogoURLSigner = (*fakeLogoSigner)(nil)

func (fakeLogoSigner) SignedURL(key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://assets.test/%s?expires=%d", key, int64(ttl.Seconds())), nil
}

// fakeTxRunner has no real transaction; it hands the live fakes to fn, which
// is enough for asserting the callback's effects.
type fakeTxRunner struct {
	deals repository.DealRepository
	docs  repository.DocumentRepository
}

var _ invoicing.TxRunner = (*fakeTxRunner)(nil)

func (r *fakeTxRunner) RunInvoicing(ctx context.Context, fn func(repository.DealRepository, repository.DocumentRepository) error) error {
	return fn(r.deals, r.docs)
}
