package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/motordesk/dealer-api/internal/domain"
	"github.com/motordesk/dealer-api/internal/domain/entity"
	"github.com/motordesk/dealer-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo persists issued sales documents. The snapshot payload lives in
// a jsonb column and is written exactly once; nothing ever updates it.
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository builds the adapter. Pass a pool or a tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

const documentColumns = `
	id, deal_id, dealer_id, doc_type, number, sequence, status,
	issued_at, voided_at, void_reason,
	share_token_hash, share_expires_at,
	buyer_signed_at, seller_signed_at,
	snapshot, created_at`

// Create inserts the document. A partial unique index on (deal_id, doc_type)
// WHERE status <> 'VOID' backs the one-active-document rule; losing that
// race surfaces as ErrDuplicate so the caller can return the winner.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.SalesDocument) error {
	snapshot, err := json.Marshal(doc.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	const query = `
		INSERT INTO sales_documents (id, deal_id, dealer_id, doc_type, number, sequence, status,
			issued_at, share_token_hash, share_expires_at, snapshot, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.q.Exec(ctx, query,
		doc.ID, doc.DealID, doc.DealerID, doc.Type, doc.Number, doc.Sequence, doc.Status,
		doc.IssuedAt, doc.ShareTokenHash, doc.ShareExpiresAt, snapshot, doc.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: active document already exists for deal", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetByID returns (nil, nil) when the document does not exist.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.SalesDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM sales_documents WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetActiveByDealAndType returns the live (non-void) document of the given
// type for a deal, or (nil, nil).
func (r *DocumentRepo) GetActiveByDealAndType(ctx context.Context, dealID string, t entity.DocumentType) (*entity.SalesDocument, error) {
	query := `SELECT ` + documentColumns + `
		FROM sales_documents
		WHERE deal_id = $1 AND doc_type = $2 AND status <> 'VOID'`
	return r.scanOne(r.q.QueryRow(ctx, query, dealID, t))
}

// GetByTokenHash looks a document up by its share-token digest.
func (r *DocumentRepo) GetByTokenHash(ctx context.Context, hash string) (*entity.SalesDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM sales_documents WHERE share_token_hash = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, hash))
}

// ListByDeal returns every document ever issued for the deal, voided
// included, oldest first.
func (r *DocumentRepo) ListByDeal(ctx context.Context, dealID string) ([]*entity.SalesDocument, error) {
	query := `SELECT ` + documentColumns + `
		FROM sales_documents WHERE deal_id = $1 ORDER BY issued_at`
	rows, err := r.q.Query(ctx, query, dealID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []*entity.SalesDocument
	for rows.Next() {
		doc, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Void marks the document VOID. The row, its number and its snapshot stay on
// record forever.
func (r *DocumentRepo) Void(ctx context.Context, id, reason string, at time.Time) error {
	const query = `
		UPDATE sales_documents SET status = 'VOID', void_reason = $2, voided_at = $3
		WHERE id = $1 AND status <> 'VOID'`
	tag, err := r.q.Exec(ctx, query, id, nullIfEmpty(reason), at)
	if err != nil {
		return fmt.Errorf("void document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: document missing or already void", domain.ErrConflict)
	}
	return nil
}

// SetSignatures stamps signature times. nil arguments leave the matching
// column untouched, so captured signatures are never cleared.
func (r *DocumentRepo) SetSignatures(ctx context.Context, id string, buyerSignedAt, sellerSignedAt *time.Time) error {
	const query = `
		UPDATE sales_documents
		SET buyer_signed_at  = COALESCE($2, buyer_signed_at),
		    seller_signed_at = COALESCE($3, seller_signed_at)
		WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, id, buyerSignedAt, sellerSignedAt); err != nil {
		return fmt.Errorf("set signatures: %w", err)
	}
	return nil
}

func (r *DocumentRepo) scanOne(row pgx.Row) (*entity.SalesDocument, error) {
	var doc entity.SalesDocument
	var voidReason *string
	var snapshot []byte
	err := row.Scan(
		&doc.ID, &doc.DealID, &doc.DealerID, &doc.Type, &doc.Number, &doc.Sequence, &doc.Status,
		&doc.IssuedAt, &doc.VoidedAt, &voidReason,
		&doc.ShareTokenHash, &doc.ShareExpiresAt,
		&doc.BuyerSignedAt, &doc.SellerSignedAt,
		&snapshot, &doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	doc.VoidReason = deref(voidReason)
	if err := json.Unmarshal(snapshot, &doc.Snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &doc, nil
}
