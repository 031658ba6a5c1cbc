package deal

import (
	"github.com/shopspring/decimal"

	"github.com/motordesk/dealer-api/internal/domain/entity"
	"github.com/motordesk/dealer-api/pkg/money"
)

// PaymentBreakdown is the settlement rollup of a deal's payment entries.
type PaymentBreakdown struct {
	TotalPaid      decimal.Decimal
	DepositPaid    decimal.Decimal
	FinanceAdvance decimal.Decimal
	OtherPayments  decimal.Decimal
}

// SummarisePayments excludes reversed entries and partitions the rest by
// type. Each entry lands in exactly one bucket; the buckets always sum to
// TotalPaid.
func SummarisePayments(payments []entity.Payment) PaymentBreakdown {
	var b PaymentBreakdown
	for _, p := range payments {
		if p.Reversed {
			continue
		}
		b.TotalPaid = b.TotalPaid.Add(p.Amount)
		switch p.Type {
		case entity.PaymentDeposit:
			b.DepositPaid = b.DepositPaid.Add(p.Amount)
		case entity.PaymentFinanceAdvance:
			b.FinanceAdvance = b.FinanceAdvance.Add(p.Amount)
		default:
			b.OtherPayments = b.OtherPayments.Add(p.Amount)
		}
	}
	b.TotalPaid = money.Round2(b.TotalPaid)
	b.DepositPaid = money.Round2(b.DepositPaid)
	b.FinanceAdvance = money.Round2(b.FinanceAdvance)
	b.OtherPayments = money.Round2(b.OtherPayments)
	return b
}
