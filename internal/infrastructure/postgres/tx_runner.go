package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/motordesk/dealer-api/internal/application/invoicing"
	"github.com/motordesk/dealer-api/internal/domain/repository"
)

var _ invoicing.TxRunner = (*TxRunner)(nil)

// TxRunner executes callbacks inside a PostgreSQL transaction.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner builds the runner on the pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunInvoicing begins a transaction, runs fn with deal and document repos
// bound to it and commits, or rolls everything back on error. Deposit
// issuance uses this so the payment entry, the document and the status move
// land together or not at all.
func (r *TxRunner) RunInvoicing(ctx context.Context, fn func(
	deals repository.DealRepository,
	docs repository.DocumentRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewDealRepository(tx), NewDocumentRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
