package deal

import (
	"github.com/shopspring/decimal"

	"github.com/motordesk/dealer-api/pkg/money"
)

// BalanceDue is what the buyer still owes:
// grand total − non-reversed payments − net part-exchange value.
// Zero means fully settled.
func BalanceDue(grandTotal, totalPaid, pxNetValue decimal.Decimal) decimal.Decimal {
	return money.Round2(grandTotal.Sub(totalPaid).Sub(pxNetValue))
}
