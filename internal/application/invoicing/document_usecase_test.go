package invoicing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motordesk/dealer-api/internal/application/dto"
	"github.com/motordesk/dealer-api/internal/application/invoicing"
	"github.com/motordesk/dealer-api/internal/domain"
	"github.com/motordesk/dealer-api/internal/domain/entity"
)

func newDocumentUseCase(f *fixture) *invoicing.DocumentUseCase {
	dealers := &fakeDealerRepo{dealers: map[string]*entity.Dealer{
		testDealerID: {ID: testDealerID, Name: "Motordesk Motors", LogoKey: "logos/md.png"},
	}}
	return invoicing.NewDocumentUseCase(f.docs, f.deals, dealers, fakeLogoSigner{}, testLogger())
}

func TestGetByShareToken(t *testing.T) {
	f := newFixture(t)
	docs := newDocumentUseCase(f)
	ctx := context.Background()

	issued, err := f.uc.IssueInvoice(ctx, testDealerID, testDealID, dto.IssueInvoiceRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, issued.ShareToken)

	got, err := docs.GetByShareToken(ctx, issued.ShareToken)
	require.NoError(t, err)
	assert.Equal(t, issued.DocumentID, got.ID)
	assert.Equal(t, issued.DocumentNumber, got.Number)
	assert.NotEmpty(t, got.Snapshot.Letterhead.LogoURL, "public view carries a freshly signed logo link")

	_, err = docs.GetByShareToken(ctx, "not-the-token")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = docs.GetByShareToken(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByShareToken_ExpiredLooksLikeMissing(t *testing.T) {
	f := newFixture(t)
	docs := newDocumentUseCase(f)
	ctx := context.Background()

	issued, err := f.uc.IssueInvoice(ctx, testDealerID, testDealID, dto.IssueInvoiceRequest{})
	require.NoError(t, err)

	// Age the stored expiry past now.
	f.docs.mu.Lock()
	f.docs.docs[issued.DocumentID].ShareExpiresAt = time.Now().Add(-time.Minute)
	f.docs.mu.Unlock()

	_, err = docs.GetByShareToken(ctx, issued.ShareToken)
	assert.ErrorIs(t, err, domain.ErrNotFound, "expiry and mismatch must be indistinguishable")
}

func TestVoidInvoice_ReopensDealAndAllowsReissue(t *testing.T) {
	f := newFixture(t)
	docs := newDocumentUseCase(f)
	ctx := context.Background()

	first, err := f.uc.IssueInvoice(ctx, testDealerID, testDealID, dto.IssueInvoiceRequest{})
	require.NoError(t, err)

	voided, err := docs.Void(ctx, testDealerID, first.DocumentID, dto.VoidDocumentRequest{Reason: "wrong price keyed"})
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentVoid, voided.Status)
	assert.Equal(t, "wrong price keyed", voided.VoidReason)
	require.NotNil(t, voided.VoidedAt)

	d, _ := f.deals.GetByID(ctx, testDealID)
	assert.Equal(t, entity.DealStatusDepositTaken, d.Status, "voiding the invoice reopens the deal")

	// The void document stays on record; a fresh issuance takes the next number.
	second, err := f.uc.IssueInvoice(ctx, testDealerID, testDealID, dto.IssueInvoiceRequest{})
	require.NoError(t, err)
	assert.NotEqual(t, first.DocumentID, second.DocumentID)
	assert.Equal(t, "INV-00002", second.DocumentNumber, "voided numbers are never reused")

	all, err := docs.ListByDeal(ctx, testDealerID, testDealID)
	require.NoError(t, err)
	assert.Len(t, all, 2, "history keeps the voided document")

	_, err = docs.Void(ctx, testDealerID, first.DocumentID, dto.VoidDocumentRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict, "double void conflicts")
}

func TestDocumentTenancy(t *testing.T) {
	f := newFixture(t)
	docs := newDocumentUseCase(f)
	ctx := context.Background()

	issued, err := f.uc.IssueInvoice(ctx, testDealerID, testDealID, dto.IssueInvoiceRequest{})
	require.NoError(t, err)

	_, err = docs.GetByID(ctx, "other-dealer", issued.DocumentID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = docs.Void(ctx, "other-dealer", issued.DocumentID, dto.VoidDocumentRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = docs.ListByDeal(ctx, "other-dealer", testDealID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = docs.GetByID(ctx, testDealerID, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
